package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbox entry
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
	// MaxBackoff caps the delay between two delivery attempts
	MaxBackoff = 5 * time.Minute
)

// OutboxEntry is a domain event written in the same transaction as the
// state change that raised it, awaiting delivery to subscribers.
type OutboxEntry struct {
	ID            uuid.UUID
	StoreID       uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOutboxEntry wraps a serialized event for delivery. A non-positive
// maxRetries falls back to DefaultMaxRetries.
func NewOutboxEntry(event DomainEvent, payload []byte, maxRetries int) *OutboxEntry {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		StoreID:       event.StoreID(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    maxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// MarkSent records a successful delivery
func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.Status = OutboxStatusSent
	e.ProcessedAt = &now
	e.NextRetryAt = nil
	e.UpdatedAt = now
}

// MarkFailed records a failed delivery. The entry is scheduled again with
// exponential backoff until MaxRetries attempts have failed, then it is dead.
func (e *OutboxEntry) MarkFailed(cause string) {
	now := time.Now()
	e.RetryCount++
	e.LastError = cause
	e.UpdatedAt = now

	if e.RetryCount >= e.MaxRetries {
		e.Status = OutboxStatusDead
		e.NextRetryAt = nil
		return
	}

	e.Status = OutboxStatusFailed
	next := now.Add(Backoff(e.RetryCount))
	e.NextRetryAt = &next
}

// Backoff returns the delay before attempt n+1 after n failures: 1s, 2s, 4s
// and so on, capped at MaxBackoff
func Backoff(failures int) time.Duration {
	if failures < 1 {
		return 0
	}
	delay := DefaultBaseBackoff
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay >= MaxBackoff {
			return MaxBackoff
		}
	}
	return delay
}

// ResetForRetry moves a dead entry back to the pending queue with a fresh budget
func (e *OutboxEntry) ResetForRetry() error {
	if !e.IsDead() {
		return NewDomainErrorf(CodeInvalidState, "outbox entry is %s, only dead entries can be retried", e.Status)
	}
	e.Status = OutboxStatusPending
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	e.UpdatedAt = time.Now()
	return nil
}

// IsDead reports whether the entry exhausted its retries
func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

// OutboxRepository persists outbox entries
type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	// FindRetryable returns failed entries whose NextRetryAt is before the given time
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	FindDead(ctx context.Context, page, pageSize int) ([]*OutboxEntry, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)
	// MarkProcessing claims the given entries for the caller and returns the ones it won
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)
	Update(ctx context.Context, entry *OutboxEntry) error
	// DeleteOlderThan purges sent entries processed before the given time
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
}
