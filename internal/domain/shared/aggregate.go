package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps shared by every persisted record
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func newBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// BaseAggregateRoot adds an optimistic-lock version and a buffer of events
// raised since the aggregate was loaded. The buffer is drained by the
// service layer into the outbox in the same transaction as the state change.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	pending []DomainEvent
}

// NewBaseAggregateRoot starts a fresh aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: newBaseEntity(), Version: 1}
}

// IncrementVersion bumps the version after a successful conditional write
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent queues an event and touches UpdatedAt
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
	a.UpdatedAt = time.Now()
}

// GetDomainEvents returns the queued events in the order they were raised
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

// ClearDomainEvents drops the queued events once they are in the outbox
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// StoreAggregateRoot is an aggregate owned by a single store.
// Orders and their adjustment requests are all store scoped.
type StoreAggregateRoot struct {
	BaseAggregateRoot
	StoreID uuid.UUID
}

// NewStoreAggregateRoot starts a fresh aggregate owned by storeID
func NewStoreAggregateRoot(storeID uuid.UUID) StoreAggregateRoot {
	return StoreAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), StoreID: storeID}
}

// BelongsTo reports whether the aggregate is owned by storeID
func (a *StoreAggregateRoot) BelongsTo(storeID uuid.UUID) bool {
	return a.StoreID == storeID
}
