// Package event provides the in-process domain event bus.
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/ecomstore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultQueueSize = 256

// ErrBusStopTimeout is returned by Stop when queued events are still being
// delivered when the context expires
var ErrBusStopTimeout = errors.New("event bus: timed out draining queue")

type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus fans domain events out to subscribed handlers.
//
// Until Start is called, and again after Stop, events are delivered inline on
// the publishing goroutine. While running, events are queued and delivered in
// publish order by a single dispatcher goroutine. A full queue falls back to
// inline delivery so Publish never blocks on a slow handler.
type InMemoryEventBus struct {
	registry  *HandlerRegistry
	logger    *zap.Logger
	queueSize int

	mu      sync.RWMutex
	running bool
	queue   chan envelope
	wg      sync.WaitGroup
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithQueueSize sets the dispatcher queue capacity
func WithQueueSize(n int) BusOption {
	return func(b *InMemoryEventBus) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry:  NewHandlerRegistry(),
		logger:    logger,
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish hands events to their handlers. Handler failures are logged and
// never returned to the publisher.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		if !b.enqueue(ctx, event) {
			b.deliver(ctx, event)
		}
	}
	return nil
}

// enqueue reports whether the event was handed to the dispatcher
func (b *InMemoryEventBus) enqueue(ctx context.Context, event shared.DomainEvent) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.running {
		return false
	}
	select {
	case b.queue <- envelope{ctx: context.WithoutCancel(ctx), event: event}:
		return true
	default:
		b.logger.Warn("event queue full, delivering inline",
			zap.String("event_type", event.EventType()),
		)
		return false
	}
}

// Subscribe registers a handler for specific event types.
// With no explicit types the handler's own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start launches the dispatcher goroutine. Calling Start twice is a no-op.
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}

	b.queue = make(chan envelope, b.queueSize)
	b.running = true
	b.wg.Add(1)
	go b.dispatch(b.queue)

	b.logger.Info("event bus started", zap.Int("queue_size", b.queueSize))
	return nil
}

// Stop closes the queue and waits for queued events to be delivered
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.queue)
	b.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ErrBusStopTimeout
	}
}

func (b *InMemoryEventBus) dispatch(queue <-chan envelope) {
	defer b.wg.Done()
	for env := range queue {
		b.deliver(env.ctx, env.event)
	}
}

func (b *InMemoryEventBus) deliver(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.registry.GetHandlers(event.EventType()) {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

// dispatchToHandler runs one handler and turns a panic into a log line
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
