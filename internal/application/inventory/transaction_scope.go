package inventory

import (
	"context"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// EventRecorder writes domain events into the transactional outbox
type EventRecorder interface {
	Record(ctx context.Context, events ...shared.DomainEvent) error
}

// TransactionalRepositories provides access to all inventory repositories within a transaction.
//
//   - InventoryRepo: stock levels, read and created here; quantities only change through the ledger.
//   - MovementRepo: the append-only movement log.
//   - Ledger: posts movements atomically against the levels.
type TransactionalRepositories interface {
	InventoryRepo() inventory.InventoryItemRepository
	MovementRepo() inventory.StockMovementRepository
	Ledger() inventory.Ledger
	Events() EventRecorder
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	inventoryRepo inventory.InventoryItemRepository
	movementRepo  inventory.StockMovementRepository
	ledger        inventory.Ledger
	events        EventRecorder
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	inventoryRepo inventory.InventoryItemRepository,
	movementRepo inventory.StockMovementRepository,
	ledger inventory.Ledger,
	events EventRecorder,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		inventoryRepo: inventoryRepo,
		movementRepo:  movementRepo,
		ledger:        ledger,
		events:        events,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InventoryRepo returns the inventory item repository.
func (s *NoOpTransactionScope) InventoryRepo() inventory.InventoryItemRepository {
	return s.inventoryRepo
}

// MovementRepo returns the movement log repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

// Ledger returns the inventory ledger.
func (s *NoOpTransactionScope) Ledger() inventory.Ledger {
	return s.ledger
}

// Events returns the event recorder.
func (s *NoOpTransactionScope) Events() EventRecorder {
	return s.events
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
