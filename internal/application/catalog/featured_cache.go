package catalog

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	featuredCacheKey   = "featured"
	defaultFeaturedTTL = 5 * time.Minute
)

// ResponseCache stores serialized responses by key.
// Implemented by the Redis and in-memory stores of the cache package.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// FeaturedLoader loads the featured products on a cache miss
type FeaturedLoader func(ctx context.Context) ([]ProductResponse, error)

// FeaturedCache is a read-through cache for the home page product list.
// Concurrent misses share one load. Cache failures are logged and served
// from the loader, so the cache can never take the endpoint down.
type FeaturedCache struct {
	store  ResponseCache
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// FeaturedCacheOption configures a FeaturedCache
type FeaturedCacheOption func(*FeaturedCache)

// WithFeaturedTTL sets how long a cached list stays valid
func WithFeaturedTTL(ttl time.Duration) FeaturedCacheOption {
	return func(c *FeaturedCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithFeaturedLogger sets the logger used for cache failures
func WithFeaturedLogger(logger *zap.Logger) FeaturedCacheOption {
	return func(c *FeaturedCache) {
		c.logger = logger
	}
}

// NewFeaturedCache creates a FeaturedCache on top of store
func NewFeaturedCache(store ResponseCache, opts ...FeaturedCacheOption) *FeaturedCache {
	c := &FeaturedCache{
		store:  store,
		ttl:    defaultFeaturedTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached list or loads, stores and returns a fresh one
func (c *FeaturedCache) Get(ctx context.Context, load FeaturedLoader) ([]ProductResponse, error) {
	if cached, ok := c.lookup(ctx); ok {
		return cached, nil
	}

	// the load is shared by concurrent callers and outlives any one of them
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(featuredCacheKey, func() (any, error) {
		products, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.save(loadCtx, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]ProductResponse), nil
}

// Invalidate drops the cached list
func (c *FeaturedCache) Invalidate(ctx context.Context) error {
	if err := c.store.Delete(ctx, featuredCacheKey); err != nil {
		c.logger.Warn("failed to invalidate featured products cache", zap.Error(err))
		return err
	}
	return nil
}

func (c *FeaturedCache) lookup(ctx context.Context) ([]ProductResponse, bool) {
	raw, ok, err := c.store.Get(ctx, featuredCacheKey)
	if err != nil {
		c.logger.Warn("featured products cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var products []ProductResponse
	if err := json.Unmarshal(raw, &products); err != nil {
		c.logger.Warn("discarding corrupt featured products cache entry", zap.Error(err))
		return nil, false
	}
	return products, true
}

func (c *FeaturedCache) save(ctx context.Context, products []ProductResponse) {
	raw, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn("failed to encode featured products", zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, featuredCacheKey, raw, c.ttl); err != nil {
		c.logger.Warn("featured products cache write failed", zap.Error(err))
	}
}
