package shared

import (
	"time"

	"github.com/google/uuid"
)

// Now is the clock used to stamp entities. Timestamps are kept in UTC.
var Now = func() time.Time { return time.Now().UTC() }

// Entity is anything with a UUID identity and audit timestamps
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity carries the identity and timestamps shared by users, products and orders
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *BaseEntity) GetID() uuid.UUID        { return e.ID }
func (e *BaseEntity) GetCreatedAt() time.Time { return e.CreatedAt }
func (e *BaseEntity) GetUpdatedAt() time.Time { return e.UpdatedAt }

// IsZero reports whether the entity has not been assigned an identity yet
func (e *BaseEntity) IsZero() bool {
	return e.ID == uuid.Nil
}

// Touch stamps UpdatedAt with t, or the current time when t is zero
func (e *BaseEntity) Touch(t time.Time) {
	if t.IsZero() {
		t = Now()
	}
	e.UpdatedAt = t
}

// NewBaseEntity returns an entity with a fresh random ID created now
func NewBaseEntity() BaseEntity {
	now := Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}
