package models

import (
	"time"

	"github.com/ecomstore/backend/internal/domain/cart"
	"github.com/google/uuid"
)

// CartModel is the persistence model for a user's cart
type CartModel struct {
	UserID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UpdatedAt time.Time       `gorm:"not null"`
	Items     []CartItemModel `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel is one cart line
type CartItemModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity  int       `gorm:"not null"`
	AddedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the model to a Cart with lines in the order they were added
func (m *CartModel) ToDomain() *cart.Cart {
	c := &cart.Cart{
		UserID:    m.UserID,
		Items:     make([]cart.Item, 0, len(m.Items)),
		UpdatedAt: m.UpdatedAt,
	}
	for _, it := range m.Items {
		c.Items = append(c.Items, cart.Item{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			AddedAt:   it.AddedAt,
		})
	}
	return c
}

// CartModelFromDomain builds the model for c including its lines
func CartModelFromDomain(c *cart.Cart) *CartModel {
	m := &CartModel{
		UserID:    c.UserID,
		UpdatedAt: c.UpdatedAt,
		Items:     make([]CartItemModel, 0, len(c.Items)),
	}
	for _, it := range c.Items {
		m.Items = append(m.Items, CartItemModel{
			UserID:    c.UserID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			AddedAt:   it.AddedAt,
		})
	}
	return m
}
