package event

import (
	"context"
	"fmt"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events to the outbox inside the caller's transaction
type OutboxPublisher struct {
	serializer *EventSerializer
	maxRetries int
}

// OutboxPublisherOption configures an OutboxPublisher
type OutboxPublisherOption func(*OutboxPublisher)

// WithMaxRetries sets how many failed deliveries an entry survives before it is dead
func WithMaxRetries(n int) OutboxPublisherOption {
	return func(p *OutboxPublisher) {
		if n > 0 {
			p.maxRetries = n
		}
	}
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer, opts ...OutboxPublisherOption) *OutboxPublisher {
	p := &OutboxPublisher{
		serializer: serializer,
		maxRetries: shared.DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishWithTx stores events in the outbox using tx, so they commit or
// roll back together with the aggregate changes
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload, p.maxRetries))
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// SaveEvents implements shared.OutboxEventSaver; txProvider must be the transaction's *gorm.DB
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
	}
	return p.PublishWithTx(ctx, tx, events...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
