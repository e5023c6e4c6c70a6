package cache

import (
	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory picks Redis or in-memory implementations depending on whether a Redis client is available
type Factory struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a factory; client may be nil
func NewFactory(client redis.UniversalClient, opts ...FactoryOption) *Factory {
	f := &Factory{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// UsesRedis reports whether the factory builds Redis backed components
func (f *Factory) UsesRedis() bool {
	return f.client != nil
}

// IdempotencyStore returns the order idempotency key store
func (f *Factory) IdempotencyStore() shared.IdempotencyStore {
	if f.client != nil {
		f.logger.Info("using Redis idempotency store")
		return NewRedisIdempotencyStore(f.client, "order:idempotency:")
	}
	f.logger.Warn("Redis disabled, using in-memory idempotency store; keys are not shared between instances")
	return NewInMemoryIdempotencyStore()
}

// Store returns a response cache with the given key prefix
func (f *Factory) Store(keyPrefix string) Store {
	if f.client != nil {
		return NewRedisStore(f.client, keyPrefix)
	}
	return NewInMemoryStore()
}
