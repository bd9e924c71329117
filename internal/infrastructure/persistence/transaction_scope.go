package persistence

import (
	"context"

	appinv "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/inventory"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormTradeTransactionScope implements apptrade.TransactionScope using GORM transactions.
// Order repositories, the inventory ledger and the outbox all share one transaction.
type GormTradeTransactionScope struct {
	db      *gorm.DB
	outbox  shared.OutboxEventSaver
	numbers *OrderNumberGenerator
	logger  *zap.Logger
}

// NewGormTradeTransactionScope creates a new GormTradeTransactionScope.
// outbox may be nil, in which case recorded events are dropped.
func NewGormTradeTransactionScope(db *gorm.DB, outbox shared.OutboxEventSaver, numbers *OrderNumberGenerator, logger *zap.Logger) *GormTradeTransactionScope {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormTradeTransactionScope{db: db, outbox: outbox, numbers: numbers, logger: logger}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTradeTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTradeRepositories{tx: tx, scope: s})
	})
}

type gormTradeRepositories struct {
	tx    *gorm.DB
	scope *GormTradeTransactionScope
}

func (r *gormTradeRepositories) OrderRepo() trade.OrderRepository {
	return NewGormOrderRepository(r.tx, r.scope.numbers, r.scope.logger)
}

func (r *gormTradeRepositories) ReturnRepo() trade.ReturnRepository {
	return NewGormReturnRepository(r.tx)
}

func (r *gormTradeRepositories) ClaimRepo() trade.ClaimRepository {
	return NewGormClaimRepository(r.tx)
}

func (r *gormTradeRepositories) ExchangeRepo() trade.ExchangeRepository {
	return NewGormExchangeRepository(r.tx)
}

func (r *gormTradeRepositories) OrderEditRepo() trade.OrderEditRepository {
	return NewGormOrderEditRepository(r.tx)
}

func (r *gormTradeRepositories) Ledger() inventory.Ledger {
	return NewGormInventoryLedger(r.tx)
}

func (r *gormTradeRepositories) Events() apptrade.EventRecorder {
	return outboxRecorder{tx: r.tx, outbox: r.scope.outbox}
}

// GormInventoryTransactionScope implements appinv.TransactionScope using GORM transactions.
type GormInventoryTransactionScope struct {
	db     *gorm.DB
	outbox shared.OutboxEventSaver
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope.
func NewGormInventoryTransactionScope(db *gorm.DB, outbox shared.OutboxEventSaver) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db, outbox: outbox}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormInventoryRepositories{tx: tx, outbox: s.outbox})
	})
}

type gormInventoryRepositories struct {
	tx     *gorm.DB
	outbox shared.OutboxEventSaver
}

func (r *gormInventoryRepositories) InventoryRepo() inventory.InventoryItemRepository {
	return NewGormInventoryItemRepository(r.tx)
}

func (r *gormInventoryRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormInventoryRepositories) Ledger() inventory.Ledger {
	return NewGormInventoryLedger(r.tx)
}

func (r *gormInventoryRepositories) Events() appinv.EventRecorder {
	return outboxRecorder{tx: r.tx, outbox: r.outbox}
}

// outboxRecorder writes events into the outbox table of the open transaction
type outboxRecorder struct {
	tx     *gorm.DB
	outbox shared.OutboxEventSaver
}

func (r outboxRecorder) Record(ctx context.Context, events ...shared.DomainEvent) error {
	if r.outbox == nil || len(events) == 0 {
		return nil
	}
	return r.outbox.SaveEvents(ctx, r.tx, events...)
}

// Ensure the scopes implement their application interfaces
var (
	_ apptrade.TransactionScope          = (*GormTradeTransactionScope)(nil)
	_ apptrade.TransactionalRepositories = (*gormTradeRepositories)(nil)
	_ appinv.TransactionScope            = (*GormInventoryTransactionScope)(nil)
	_ appinv.TransactionalRepositories   = (*gormInventoryRepositories)(nil)
)
