package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByEmail looks a user up by normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByIDs returns the users that exist among ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
