package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys so a retried request can be answered
// with the result of the first one.
type IdempotencyStore interface {
	// Reserve claims key with a placeholder value.
	// Returns false if the key is already held by another request or a stored result.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Get returns the stored result for key.
	// The bool is false if nothing is stored or the key is only reserved.
	Get(ctx context.Context, key string) (string, bool, error)

	// Complete stores the final result for a reserved key
	Complete(ctx context.Context, key, value string, ttl time.Duration) error

	// Release drops a reservation so the request can be retried
	Release(ctx context.Context, key string) error

	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a completed key is remembered. Default: 24 hours
	TTL time.Duration
	// ReservationTTL bounds how long an in-flight request holds its key. Default: 1 minute
	ReservationTTL time.Duration
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:            24 * time.Hour,
		ReservationTTL: time.Minute,
	}
}
