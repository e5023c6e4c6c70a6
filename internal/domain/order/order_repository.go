package order

import (
	"context"

	"github.com/google/uuid"
)

// Paging defaults for the admin order list
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Query filters the admin order list
type Query struct {
	Status *Status
	Page   int
	Limit  int
}

// Normalize fills in paging defaults
func (q *Query) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
}

// Offset returns the row offset of the requested page
func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// Repository persists orders
type Repository interface {
	Create(ctx context.Context, order *Order) error
	// Update saves status, payment and tracking fields with an optimistic version check
	Update(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByUser returns the user's orders, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	// FindAll returns one page of orders, newest first, and the total match count
	FindAll(ctx context.Context, q Query) ([]Order, int64, error)
}
