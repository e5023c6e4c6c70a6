package catalog

import (
	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated      = "ProductCreated"
	EventTypeProductUpdated      = "ProductUpdated"
	EventTypeProductDeleted      = "ProductDeleted"
	EventTypeProductReviewed     = "ProductReviewed"
	EventTypeProductStockChanged = "ProductStockChanged"
)

// ProductEventTypes lists every event that changes what the storefront shows for a product
func ProductEventTypes() []string {
	return []string{
		EventTypeProductCreated,
		EventTypeProductUpdated,
		EventTypeProductDeleted,
		EventTypeProductReviewed,
		EventTypeProductStockChanged,
	}
}

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Category  Category        `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Featured  bool            `json:"featured"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Name:            p.Name,
		Category:        p.Category,
		Price:           p.Price,
		Featured:        p.Featured,
	}
}

// ProductUpdatedEvent is published when admin-editable fields change
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Featured  bool            `json:"featured"`
	IsActive  bool            `json:"is_active"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(p *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Name:            p.Name,
		Price:           p.Price,
		Featured:        p.Featured,
		IsActive:        p.IsActive,
	}
}

// ProductDeletedEvent is published when a product is removed from the catalog
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
}

// NewProductDeletedEvent creates a new ProductDeletedEvent
func NewProductDeletedEvent(p *Product) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Name:            p.Name,
	}
}

// ProductReviewedEvent is published when a customer reviews a product
type ProductReviewedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID `json:"product_id"`
	ReviewID      uuid.UUID `json:"review_id"`
	UserID        uuid.UUID `json:"user_id"`
	Rating        int       `json:"rating"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
}

// NewProductReviewedEvent creates a new ProductReviewedEvent
func NewProductReviewedEvent(p *Product, r *Review) *ProductReviewedEvent {
	return &ProductReviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductReviewed, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		ReviewID:        r.ID,
		UserID:          r.UserID,
		Rating:          r.Rating,
		AverageRating:   p.Ratings.Average,
		ReviewCount:     p.Ratings.Count,
	}
}

// ProductStockChangedEvent is published whenever the sellable quantity changes
type ProductStockChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	OldStock  int       `json:"old_stock"`
	NewStock  int       `json:"new_stock"`
	Reason    string    `json:"reason"`
}

// NewProductStockChangedEvent creates a new ProductStockChangedEvent
func NewProductStockChangedEvent(p *Product, oldStock int, reason string) *ProductStockChangedEvent {
	return &ProductStockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStockChanged, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		OldStock:        oldStock,
		NewStock:        p.Stock,
		Reason:          reason,
	}
}
