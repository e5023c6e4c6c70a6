package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists carts
type Repository interface {
	// FindByUserID returns the user's cart, or an empty cart if none was saved yet
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error)
	// Save replaces the stored lines with the cart's current lines
	Save(ctx context.Context, cart *Cart) error
	// Clear removes every line of the user's cart
	Clear(ctx context.Context, userID uuid.UUID) error
}
