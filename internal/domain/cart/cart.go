// Package cart models the per-user shopping cart.
package cart

import (
	"time"

	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Cart errors
var (
	ErrItemNotInCart   = shared.NewDomainError("NOT_FOUND", "Item not found in cart")
	ErrNotEnoughStock  = shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock available")
	ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
)

// Item is one product line in a cart
type Item struct {
	ProductID uuid.UUID
	Quantity  int
	AddedAt   time.Time
}

// Cart holds the products a user intends to buy. There is exactly one cart per user.
type Cart struct {
	UserID    uuid.UUID
	Items     []Item
	UpdatedAt time.Time
}

// New returns an empty cart for userID
func New(userID uuid.UUID) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     make([]Item, 0),
		UpdatedAt: time.Now(),
	}
}

// Find returns the line for productID
func (c *Cart) Find(productID uuid.UUID) (*Item, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// QuantityOf returns the quantity of productID already in the cart
func (c *Cart) QuantityOf(productID uuid.UUID) int {
	if item, ok := c.Find(productID); ok {
		return item.Quantity
	}
	return 0
}

// Add merges qty units of productID into the cart.
// available is the product's current stock; the resulting line may not exceed it.
func (c *Cart) Add(productID uuid.UUID, qty, available int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if c.QuantityOf(productID)+qty > available {
		return ErrNotEnoughStock
	}
	if item, ok := c.Find(productID); ok {
		item.Quantity += qty
	} else {
		c.Items = append(c.Items, Item{ProductID: productID, Quantity: qty, AddedAt: time.Now()})
	}
	c.UpdatedAt = time.Now()
	return nil
}

// SetQuantity replaces the quantity of an existing line. A quantity of zero or less removes it.
func (c *Cart) SetQuantity(productID uuid.UUID, qty, available int) error {
	item, ok := c.Find(productID)
	if !ok {
		return ErrItemNotInCart
	}
	if qty <= 0 {
		c.Remove(productID)
		return nil
	}
	if qty > available {
		return ErrNotEnoughStock
	}
	item.Quantity = qty
	c.UpdatedAt = time.Now()
	return nil
}

// Remove drops the line for productID; removing an absent line is a no-op
func (c *Cart) Remove(productID uuid.UUID) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	c.UpdatedAt = time.Now()
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = make([]Item, 0)
	c.UpdatedAt = time.Now()
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalQuantity returns the number of units across all lines
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// ProductIDs returns the product of every line in cart order
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ProductID
	}
	return ids
}
