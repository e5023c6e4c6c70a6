package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemRequest is the body of POST /cart/add
type AddItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=1,max=1000"`
}

// UpdateItemRequest is the body of PUT /cart/update.
// A quantity of zero or less removes the line.
type UpdateItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"max=1000"`
}

// CartProduct is the product summary embedded in a cart line
type CartProduct struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Images   []string        `json:"images"`
	Stock    int             `json:"stock"`
	IsActive bool            `json:"is_active"`
}

// CartLine is one populated cart line
type CartLine struct {
	Product   CartProduct     `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	AddedAt   time.Time       `json:"added_at"`
}

// CartView is the populated cart returned by every cart endpoint
type CartView struct {
	Items      []CartLine      `json:"items"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
