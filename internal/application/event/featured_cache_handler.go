// Package event holds the cross-context domain event handlers.
package event

import (
	"context"
	"fmt"

	"github.com/ecomstore/backend/internal/domain/catalog"
	"github.com/ecomstore/backend/internal/domain/order"
	"github.com/ecomstore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FeaturedInvalidator drops the cached featured product list
type FeaturedInvalidator interface {
	Invalidate(ctx context.Context) error
}

// FeaturedCacheInvalidator clears the featured list whenever a product or its
// stock may have changed. Orders move stock without touching the product
// aggregate, so placements and cancellations count too.
type FeaturedCacheInvalidator struct {
	cache  FeaturedInvalidator
	logger *zap.Logger
}

// NewFeaturedCacheInvalidator creates a new FeaturedCacheInvalidator
func NewFeaturedCacheInvalidator(cache FeaturedInvalidator, logger *zap.Logger) *FeaturedCacheInvalidator {
	return &FeaturedCacheInvalidator{
		cache:  cache,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *FeaturedCacheInvalidator) EventTypes() []string {
	return append(catalog.ProductEventTypes(),
		order.EventTypeOrderPlaced,
		order.EventTypeOrderCancelled,
	)
}

// Handle invalidates the featured cache
func (h *FeaturedCacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Warn("Failed to invalidate featured products cache",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err))
		return fmt.Errorf("invalidate featured cache: %w", err)
	}
	h.logger.Debug("Featured products cache invalidated", zap.String("event_type", event.EventType()))
	return nil
}

var _ shared.EventHandler = (*FeaturedCacheInvalidator)(nil)
