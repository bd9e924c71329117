package shared

import "context"

// EventHandler reacts to order and inventory events
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler wants; empty means all
	EventTypes() []string
}

// EventPublisher hands events to their subscribers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is an EventPublisher with subscription management and a lifecycle
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// OutboxEventSaver appends events to the outbox inside an open transaction.
// tx is the transaction handle of the persistence layer (a *gorm.DB).
type OutboxEventSaver interface {
	SaveEvents(ctx context.Context, tx interface{}, events ...DomainEvent) error
}
