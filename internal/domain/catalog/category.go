package catalog

import "github.com/ecomstore/backend/internal/domain/shared"

// Category groups products on the storefront
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
	CategoryHome        Category = "home"
	CategorySports      Category = "sports"
	CategoryBeauty      Category = "beauty"
	CategoryToys        Category = "toys"
	CategoryOther       Category = "other"
)

// AllCategories returns every supported category in display order
func AllCategories() []Category {
	return []Category{
		CategoryElectronics,
		CategoryClothing,
		CategoryBooks,
		CategoryHome,
		CategorySports,
		CategoryBeauty,
		CategoryToys,
		CategoryOther,
	}
}

// IsValid checks if the category is one of the supported values
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// ParseCategory validates s and returns it as a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", shared.NewDomainError("INVALID_CATEGORY", "Unknown product category: "+s)
	}
	return c, nil
}
