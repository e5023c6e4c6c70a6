package catalog

import (
	"time"

	"github.com/ecomstore/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListProductsRequest holds the public listing query string
type ListProductsRequest struct {
	Category string   `form:"category" binding:"omitempty,oneof=electronics clothing books home sports beauty toys other"`
	MinPrice *float64 `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice *float64 `form:"maxPrice" binding:"omitempty,min=0"`
	Search   string   `form:"search" binding:"omitempty,max=200"`
	Sort     string   `form:"sort"`
	Page     int      `form:"page" binding:"omitempty,min=1"`
	Limit    int      `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ToQuery converts the request into a repository query
func (r ListProductsRequest) ToQuery() catalog.ProductQuery {
	q := catalog.ProductQuery{
		Category: catalog.Category(r.Category),
		Search:   r.Search,
		Sort:     catalog.ParseProductSort(r.Sort),
		Page:     r.Page,
		Limit:    r.Limit,
	}
	if r.MinPrice != nil {
		v := decimal.NewFromFloat(*r.MinPrice)
		q.MinPrice = &v
	}
	if r.MaxPrice != nil {
		v := decimal.NewFromFloat(*r.MaxPrice)
		q.MaxPrice = &v
	}
	return q.Normalize()
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name          string           `json:"name" binding:"required,min=1,max=100"`
	Description   string           `json:"description" binding:"required,min=1,max=2000"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Images        []string         `json:"images" binding:"omitempty,max=10,dive,max=500"`
	Category      string           `json:"category" binding:"required,oneof=electronics clothing books home sports beauty toys other"`
	Brand         string           `json:"brand" binding:"omitempty,max=100"`
	Stock         int              `json:"stock" binding:"min=0"`
	Featured      bool             `json:"featured"`
	Tags          []string         `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

// ToDetails maps the request onto the domain constructor input
func (r CreateProductRequest) ToDetails() catalog.ProductDetails {
	price := decimal.Zero
	if r.Price != nil {
		price = *r.Price
	}
	return catalog.ProductDetails{
		Name:          r.Name,
		Description:   r.Description,
		Price:         price,
		OriginalPrice: r.OriginalPrice,
		Images:        r.Images,
		Category:      catalog.Category(r.Category),
		Brand:         r.Brand,
		Stock:         r.Stock,
		Featured:      r.Featured,
		Tags:          r.Tags,
	}
}

// UpdateProductRequest is a partial update; absent fields are left untouched
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description   *string          `json:"description" binding:"omitempty,min=1,max=2000"`
	Price         *decimal.Decimal `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Images        *[]string        `json:"images" binding:"omitempty,max=10,dive,max=500"`
	Category      *string          `json:"category" binding:"omitempty,oneof=electronics clothing books home sports beauty toys other"`
	Brand         *string          `json:"brand" binding:"omitempty,max=100"`
	Stock         *int             `json:"stock" binding:"omitempty,min=0"`
	Featured      *bool            `json:"featured"`
	IsActive      *bool            `json:"is_active"`
	Tags          *[]string        `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

// ToChanges maps the request onto domain changes
func (r UpdateProductRequest) ToChanges() catalog.ProductChanges {
	changes := catalog.ProductChanges{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Images:        r.Images,
		Brand:         r.Brand,
		Stock:         r.Stock,
		Featured:      r.Featured,
		IsActive:      r.IsActive,
		Tags:          r.Tags,
	}
	if r.Category != nil {
		c := catalog.Category(*r.Category)
		changes.Category = &c
	}
	return changes
}

// AddReviewRequest is the body of POST /products/:id/reviews
type AddReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=1000"`
}

// RatingsResponse is the aggregated rating of a product
type RatingsResponse struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ReviewerResponse identifies the author of a review
type ReviewerResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID        uuid.UUID        `json:"id"`
	User      ReviewerResponse `json:"user"`
	Rating    int              `json:"rating"`
	Comment   string           `json:"comment"`
	CreatedAt time.Time        `json:"created_at"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Images        []string         `json:"images"`
	Category      string           `json:"category"`
	Brand         string           `json:"brand,omitempty"`
	Stock         int              `json:"stock"`
	Featured      bool             `json:"featured"`
	IsActive      bool             `json:"is_active"`
	Ratings       RatingsResponse  `json:"ratings"`
	Tags          []string         `json:"tags"`
	Reviews       []ReviewResponse `json:"reviews"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// PaginationResponse describes the page returned by a listing
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ProductListResponse is the body of GET /products
type ProductListResponse struct {
	Products   []ProductResponse  `json:"products"`
	Pagination PaginationResponse `json:"pagination"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	reviews := make([]ReviewResponse, len(p.Reviews))
	for i, r := range p.Reviews {
		reviews[i] = ReviewResponse{
			ID:        r.ID,
			User:      ReviewerResponse{ID: r.UserID, Name: r.UserName},
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		}
	}
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Images:        nonNil(p.Images),
		Category:      p.Category.String(),
		Brand:         p.Brand,
		Stock:         p.Stock,
		Featured:      p.Featured,
		IsActive:      p.IsActive,
		Ratings:       RatingsResponse{Average: p.Ratings.Average, Count: p.Ratings.Count},
		Tags:          nonNil(p.Tags),
		Reviews:       reviews,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
