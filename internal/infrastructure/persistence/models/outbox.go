package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
)

// OutboxEntryModel maps an outbox_events row. The event envelope is written
// once with the business transaction; only the embedded delivery state
// changes afterwards.
type OutboxEntryModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID       uuid.UUID `gorm:"type:uuid;not null;index:idx_outbox_store_status,priority:1"`
	EventID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	EventType     string    `gorm:"type:varchar(255);not null"`
	AggregateType string    `gorm:"type:varchar(255);not null"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null"`
	Payload       []byte    `gorm:"type:jsonb;not null"`

	OutboxDelivery `gorm:"embedded"`

	CreatedAt time.Time `gorm:"not null;index:idx_outbox_status_created,priority:2"`
	UpdatedAt time.Time `gorm:"not null"`
}

// OutboxDelivery is the retry bookkeeping of an outbox row
type OutboxDelivery struct {
	Status      shared.OutboxStatus `gorm:"type:varchar(20);default:'PENDING';index:idx_outbox_store_status,priority:2;index:idx_outbox_status_created,priority:1"`
	RetryCount  int                 `gorm:"default:0"`
	MaxRetries  int                 `gorm:"default:5"`
	LastError   string              `gorm:"type:text"`
	NextRetryAt *time.Time          `gorm:"index:idx_outbox_next_retry"`
	ProcessedAt *time.Time
}

func (OutboxEntryModel) TableName() string {
	return "outbox_events"
}

// ToDomain converts the row into a domain entry
func (m *OutboxEntryModel) ToDomain() *shared.OutboxEntry {
	e := &shared.OutboxEntry{
		ID:            m.ID,
		StoreID:       m.StoreID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateType: m.AggregateType,
		AggregateID:   m.AggregateID,
		Payload:       m.Payload,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	d := m.OutboxDelivery
	e.Status, e.RetryCount, e.MaxRetries = d.Status, d.RetryCount, d.MaxRetries
	e.LastError, e.NextRetryAt, e.ProcessedAt = d.LastError, d.NextRetryAt, d.ProcessedAt
	return e
}

// FromDomain copies a domain entry into the row, normalising times to UTC
func (m *OutboxEntryModel) FromDomain(e *shared.OutboxEntry) {
	*m = OutboxEntryModel{
		ID:            e.ID,
		StoreID:       e.StoreID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Payload:       e.Payload,
		OutboxDelivery: OutboxDelivery{
			Status:      e.Status,
			RetryCount:  e.RetryCount,
			MaxRetries:  e.MaxRetries,
			LastError:   e.LastError,
			NextRetryAt: utcPtr(e.NextRetryAt),
			ProcessedAt: utcPtr(e.ProcessedAt),
		},
		CreatedAt: e.CreatedAt.UTC(),
		UpdatedAt: e.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// OutboxEntryModelFromDomain builds a row for insertion
func OutboxEntryModelFromDomain(e *shared.OutboxEntry) *OutboxEntryModel {
	var m OutboxEntryModel
	m.FromDomain(e)
	return &m
}
