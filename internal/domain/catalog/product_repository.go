package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageLimit     = 12
	MaxPageLimit         = 100
	DefaultFeaturedLimit = 8
)

// ProductSort selects the ordering of a product listing
type ProductSort string

const (
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortRating    ProductSort = "rating"
	SortNewest    ProductSort = "newest"
)

// ParseProductSort maps a query value to a sort; unknown values fall back to newest
func ParseProductSort(s string) ProductSort {
	switch ProductSort(s) {
	case SortPriceAsc, SortPriceDesc, SortRating, SortNewest:
		return ProductSort(s)
	}
	return SortNewest
}

// ProductQuery describes a storefront product listing
type ProductQuery struct {
	Category        Category
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Search          string
	Sort            ProductSort
	Page            int
	Limit           int
	IncludeInactive bool
}

// Normalize applies paging defaults and bounds
func (q ProductQuery) Normalize() ProductQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	q.Sort = ParseProductSort(string(q.Sort))
	return q
}

// Offset returns the number of rows to skip
func (q ProductQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID loads a product together with its reviews
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs loads products without reviews; missing ids are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// Search returns one page of products matching q and the total match count
	Search(ctx context.Context, q ProductQuery) ([]Product, int64, error)

	// FindFeatured returns active featured products, best rated first
	FindFeatured(ctx context.Context, limit int) ([]Product, error)

	// Save creates or updates a product and its reviews.
	// Updates fail with ErrConcurrencyConflict if the stored version moved on.
	Save(ctx context.Context, product *Product) error

	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementStock atomically removes qty units if at least qty are available.
	// Returns ErrInsufficientStock when the guard fails and ErrNotFound when the product is missing.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error

	// IncrementStock atomically returns qty units to stock
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}
