package shared

import "context"

// EventHandler reacts to published domain events. A handler whose EventTypes
// is empty receives every event.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher delivers domain events to subscribed handlers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers handlers. Types passed to Subscribe override the
// handler's own EventTypes.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is a publisher and subscriber with a lifecycle
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// PublishPending hands the aggregate's recorded events to pub and clears them.
// Events are cleared even when pub is nil or publishing fails, so a retry of
// the surrounding operation never re-announces them.
func PublishPending(ctx context.Context, pub EventPublisher, agg AggregateRoot) error {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if pub == nil || len(events) == 0 {
		return nil
	}
	return pub.Publish(ctx, events...)
}
