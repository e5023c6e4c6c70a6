// Package seed loads the sample storefront data used in development and demos.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/ecomstore/backend/internal/domain/catalog"
	"github.com/ecomstore/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the document shape of fixtures.yaml
type Fixtures struct {
	Users    []UserFixture    `yaml:"users"`
	Products []ProductFixture `yaml:"products"`
}

// UserFixture is a sample account with its clear-text password
type UserFixture struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// ProductFixture is a sample catalog entry
type ProductFixture struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Price         string   `yaml:"price"`
	OriginalPrice string   `yaml:"original_price,omitempty"`
	Images        []string `yaml:"images"`
	Category      string   `yaml:"category"`
	Brand         string   `yaml:"brand"`
	Stock         int      `yaml:"stock"`
	Featured      bool     `yaml:"featured"`
	Ratings       struct {
		Average float64 `yaml:"average"`
		Count   int     `yaml:"count"`
	} `yaml:"ratings"`
	Tags []string `yaml:"tags"`
}

// DefaultFixtures returns the embedded sample data
func DefaultFixtures() (*Fixtures, error) {
	return ParseFixtures(defaultFixtures)
}

// ParseFixtures decodes a fixtures document, rejecting unknown keys
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &f, nil
}

// ToUser builds the domain user, hashing the password
func (u UserFixture) ToUser() (*identity.User, error) {
	switch identity.Role(u.Role) {
	case identity.RoleAdmin:
		return identity.NewAdminUser(u.Name, u.Email, u.Password)
	case identity.RoleUser, "":
		return identity.NewUser(u.Name, u.Email, u.Password)
	default:
		return nil, fmt.Errorf("user %s: unknown role %q", u.Email, u.Role)
	}
}

// ToProduct builds the domain product with its stored ratings
func (p ProductFixture) ToProduct() (*catalog.Product, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return nil, fmt.Errorf("product %q: invalid price %q: %w", p.Name, p.Price, err)
	}
	var original *decimal.Decimal
	if p.OriginalPrice != "" {
		v, err := decimal.NewFromString(p.OriginalPrice)
		if err != nil {
			return nil, fmt.Errorf("product %q: invalid original price %q: %w", p.Name, p.OriginalPrice, err)
		}
		original = &v
	}
	category, err := catalog.ParseCategory(p.Category)
	if err != nil {
		return nil, fmt.Errorf("product %q: %w", p.Name, err)
	}

	product, err := catalog.NewProduct(catalog.ProductDetails{
		Name:          p.Name,
		Description:   p.Description,
		Price:         price,
		OriginalPrice: original,
		Images:        p.Images,
		Category:      category,
		Brand:         p.Brand,
		Stock:         p.Stock,
		Featured:      p.Featured,
		Tags:          p.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("product %q: %w", p.Name, err)
	}
	product.Ratings = catalog.Ratings{Average: p.Ratings.Average, Count: p.Ratings.Count}
	return product, nil
}
