package event

import (
	"context"
	"fmt"

	"github.com/ecomstore/backend/internal/domain/order"
	"github.com/ecomstore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderMetricsRecorder receives business counters derived from order events
type OrderMetricsRecorder interface {
	RecordOrderPlaced(paymentMethod string, itemCount int, total float64)
	RecordOrderStatusChanged(from, to string)
	RecordOrderCancelled(from string)
}

// OrderMetricsHandler feeds order events into an OrderMetricsRecorder
type OrderMetricsHandler struct {
	recorder OrderMetricsRecorder
	logger   *zap.Logger
}

// NewOrderMetricsHandler creates a new OrderMetricsHandler
func NewOrderMetricsHandler(recorder OrderMetricsRecorder, logger *zap.Logger) *OrderMetricsHandler {
	return &OrderMetricsHandler{
		recorder: recorder,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderMetricsHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
		order.EventTypeOrderCancelled,
	}
}

// Handle records the event
func (h *OrderMetricsHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		total, _ := e.TotalAmount.Float64()
		h.recorder.RecordOrderPlaced(e.PaymentMethod.String(), e.ItemCount, total)
	case *order.OrderStatusChangedEvent:
		h.recorder.RecordOrderStatusChanged(e.From.String(), e.To.String())
	case *order.OrderCancelledEvent:
		h.recorder.RecordOrderCancelled(e.From.String())
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}

var _ shared.EventHandler = (*OrderMetricsHandler)(nil)
