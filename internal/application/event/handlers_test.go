package event

import (
	"context"
	"errors"
	"testing"

	"github.com/ecomstore/backend/internal/domain/catalog"
	"github.com/ecomstore/backend/internal/domain/order"
	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/ecomstore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockFeaturedInvalidator struct {
	mock.Mock
}

func (m *MockFeaturedInvalidator) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockOrderMetricsRecorder struct {
	mock.Mock
}

func (m *MockOrderMetricsRecorder) RecordOrderPlaced(paymentMethod string, itemCount int, total float64) {
	m.Called(paymentMethod, itemCount, total)
}

func (m *MockOrderMetricsRecorder) RecordOrderStatusChanged(from, to string) {
	m.Called(from, to)
}

func (m *MockOrderMetricsRecorder) RecordOrderCancelled(from string) {
	m.Called(from)
}

func newPlacedOrder(t *testing.T) *order.Order {
	t.Helper()
	addr, err := valueobject.NewAddress("1 Main St", "Springfield", "12345", "US")
	require.NoError(t, err)
	o, err := order.NewOrder(order.Placement{
		UserID: uuid.New(),
		Items: []order.Item{
			{ProductID: uuid.New(), Name: "Phone", Price: decimal.RequireFromString("19.99"), Quantity: 2},
		},
		ShippingAddress: addr,
		PaymentMethod:   order.PaymentCreditCard,
		ShippingFee:     decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	return o
}

func TestFeaturedCacheInvalidator(t *testing.T) {
	ctx := context.Background()

	t.Run("subscribes to product and stock moving order events", func(t *testing.T) {
		h := NewFeaturedCacheInvalidator(new(MockFeaturedInvalidator), zap.NewNop())
		types := h.EventTypes()
		for _, et := range catalog.ProductEventTypes() {
			assert.Contains(t, types, et)
		}
		assert.Contains(t, types, order.EventTypeOrderPlaced)
		assert.Contains(t, types, order.EventTypeOrderCancelled)
		assert.NotContains(t, types, order.EventTypeOrderStatusChanged)
	})

	t.Run("invalidates on every handled event", func(t *testing.T) {
		cache := new(MockFeaturedInvalidator)
		cache.On("Invalidate", ctx).Return(nil)
		h := NewFeaturedCacheInvalidator(cache, zap.NewNop())

		require.NoError(t, h.Handle(ctx, newPlacedOrder(t).GetDomainEvents()[0]))
		cache.AssertNumberOfCalls(t, "Invalidate", 1)
	})

	t.Run("reports cache failures", func(t *testing.T) {
		cache := new(MockFeaturedInvalidator)
		cache.On("Invalidate", ctx).Return(errors.New("redis down"))
		h := NewFeaturedCacheInvalidator(cache, zap.NewNop())

		err := h.Handle(ctx, newPlacedOrder(t).GetDomainEvents()[0])
		assert.ErrorContains(t, err, "redis down")
	})
}

func TestOrderMetricsHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("placed", func(t *testing.T) {
		rec := new(MockOrderMetricsRecorder)
		rec.On("RecordOrderPlaced", "credit_card", 2, 44.98).Return()
		h := NewOrderMetricsHandler(rec, zap.NewNop())

		require.NoError(t, h.Handle(ctx, newPlacedOrder(t).GetDomainEvents()[0]))
		rec.AssertExpectations(t)
	})

	t.Run("status change then cancellation", func(t *testing.T) {
		rec := new(MockOrderMetricsRecorder)
		rec.On("RecordOrderStatusChanged", "pending", "cancelled").Return()
		rec.On("RecordOrderCancelled", "pending").Return()
		h := NewOrderMetricsHandler(rec, zap.NewNop())

		o := newPlacedOrder(t)
		o.ClearDomainEvents()
		_, err := o.UpdateStatus(order.StatusUpdate{Status: order.StatusCancelled})
		require.NoError(t, err)
		for _, ev := range o.GetDomainEvents() {
			require.NoError(t, h.Handle(ctx, ev))
		}
		rec.AssertExpectations(t)
	})

	t.Run("rejects foreign events", func(t *testing.T) {
		h := NewOrderMetricsHandler(new(MockOrderMetricsRecorder), zap.NewNop())
		ev := shared.NewBaseDomainEvent("Something", "Thing", uuid.New())
		assert.Error(t, h.Handle(ctx, &ev))
	})
}
