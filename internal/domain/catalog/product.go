package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 2000
	maxBrandLength       = 100
	maxImages            = 10
	maxTags              = 20
)

// Ratings summarises the reviews left on a product
type Ratings struct {
	Average float64
	Count   int
}

// Product is the aggregate root for a sellable catalog item
type Product struct {
	shared.BaseAggregateRoot
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Images        []string
	Category      Category
	Brand         string
	Stock         int
	Featured      bool
	IsActive      bool
	Ratings       Ratings
	Tags          []string
	Reviews       []Review
}

// ProductDetails carries the admin-editable fields of a new product
type ProductDetails struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Images        []string
	Category      Category
	Brand         string
	Stock         int
	Featured      bool
	Tags          []string
}

// ProductChanges is a partial update; nil fields are left untouched
type ProductChanges struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	OriginalPrice *decimal.Decimal
	Images        *[]string
	Category      *Category
	Brand         *string
	Stock         *int
	Featured      *bool
	IsActive      *bool
	Tags          *[]string
}

// NewProduct creates a new active product
func NewProduct(d ProductDetails) (*Product, error) {
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(d.Name),
		Description:       strings.TrimSpace(d.Description),
		Price:             d.Price,
		OriginalPrice:     d.OriginalPrice,
		Images:            normalizeList(d.Images),
		Category:          d.Category,
		Brand:             strings.TrimSpace(d.Brand),
		Stock:             d.Stock,
		Featured:          d.Featured,
		IsActive:          true,
		Tags:              normalizeTags(d.Tags),
		Reviews:           make([]Review, 0),
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update applies a partial update and re-validates the product
func (p *Product) Update(c ProductChanges) error {
	next := *p
	if c.Name != nil {
		next.Name = strings.TrimSpace(*c.Name)
	}
	if c.Description != nil {
		next.Description = strings.TrimSpace(*c.Description)
	}
	if c.Price != nil {
		next.Price = *c.Price
	}
	if c.OriginalPrice != nil {
		op := *c.OriginalPrice
		next.OriginalPrice = &op
	}
	if c.Images != nil {
		next.Images = normalizeList(*c.Images)
	}
	if c.Category != nil {
		next.Category = *c.Category
	}
	if c.Brand != nil {
		next.Brand = strings.TrimSpace(*c.Brand)
	}
	if c.Stock != nil {
		next.Stock = *c.Stock
	}
	if c.Featured != nil {
		next.Featured = *c.Featured
	}
	if c.IsActive != nil {
		next.IsActive = *c.IsActive
	}
	if c.Tags != nil {
		next.Tags = normalizeTags(*c.Tags)
	}
	if err := next.validate(); err != nil {
		return err
	}

	stockChanged := next.Stock != p.Stock
	oldStock := p.Stock

	p.Name = next.Name
	p.Description = next.Description
	p.Price = next.Price
	p.OriginalPrice = next.OriginalPrice
	p.Images = next.Images
	p.Category = next.Category
	p.Brand = next.Brand
	p.Stock = next.Stock
	p.Featured = next.Featured
	p.IsActive = next.IsActive
	p.Tags = next.Tags
	p.touch()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
	if stockChanged {
		p.AddDomainEvent(NewProductStockChangedEvent(p, oldStock, "admin_update"))
	}
	return nil
}

// MarkDeleted records the deletion of the product
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

// PrimaryImage returns the first image URL, or an empty string
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// IsPurchasable reports whether qty units can currently be sold
func (p *Product) IsPurchasable(qty int) bool {
	return p.IsActive && qty > 0 && p.Stock >= qty
}

// DecreaseStock removes qty units from stock
func (p *Product) DecreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.Stock < qty {
		return NewInsufficientStockError(p.Name, p.Stock)
	}
	old := p.Stock
	p.Stock -= qty
	p.touch()
	p.AddDomainEvent(NewProductStockChangedEvent(p, old, "sale"))
	return nil
}

// IncreaseStock returns qty units to stock
func (p *Product) IncreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	old := p.Stock
	p.Stock += qty
	p.touch()
	p.AddDomainEvent(NewProductStockChangedEvent(p, old, "restock"))
	return nil
}

// NewInsufficientStockError builds the error reported when an order line exceeds stock
func NewInsufficientStockError(name string, available int) *shared.DomainError {
	return shared.NewDomainError("INSUFFICIENT_STOCK",
		fmt.Sprintf("Not enough stock for %s. Available: %d", name, available))
}

func (p *Product) touch() {
	p.MarkModified(time.Time{})
}

func (p *Product) validate() error {
	if p.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len([]rune(p.Name)) > maxNameLength {
		return shared.NewDomainError("INVALID_NAME", fmt.Sprintf("Product name cannot exceed %d characters", maxNameLength))
	}
	if p.Description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Product description cannot be empty")
	}
	if len([]rune(p.Description)) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", fmt.Sprintf("Product description cannot exceed %d characters", maxDescriptionLength))
	}
	if p.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if p.OriginalPrice != nil && p.OriginalPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Original price cannot be negative")
	}
	if !p.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown product category: "+string(p.Category))
	}
	if len(p.Brand) > maxBrandLength {
		return shared.NewDomainError("INVALID_BRAND", fmt.Sprintf("Brand cannot exceed %d characters", maxBrandLength))
	}
	if p.Stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	if len(p.Images) > maxImages {
		return shared.NewDomainError("INVALID_IMAGES", fmt.Sprintf("A product can have at most %d images", maxImages))
	}
	if len(p.Tags) > maxTags {
		return shared.NewDomainError("INVALID_TAGS", fmt.Sprintf("A product can have at most %d tags", maxTags))
	}
	return nil
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// normalizeTags lower-cases, trims and de-duplicates tags preserving order
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
