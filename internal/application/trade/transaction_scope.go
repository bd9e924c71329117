package trade

import (
	"context"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
)

// TransactionScope provides transactional access to the order repositories and the inventory ledger.
// Everything done through the repositories handed to fn commits or rolls back as one unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// EventRecorder writes domain events into the transactional outbox
type EventRecorder interface {
	Record(ctx context.Context, events ...shared.DomainEvent) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	OrderRepo() trade.OrderRepository
	ReturnRepo() trade.ReturnRepository
	ClaimRepo() trade.ClaimRepository
	ExchangeRepo() trade.ExchangeRepository
	OrderEditRepo() trade.OrderEditRepository
	// Ledger returns the inventory ledger bound to the current transaction
	Ledger() inventory.Ledger
	// Events returns the outbox writer bound to the current transaction
	Events() EventRecorder
}
