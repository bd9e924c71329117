package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
)

// Ledger is the inventory ledger port used by the order orchestrators.
//
// Ledgers handed out by a transaction scope share the caller's transaction,
// so all movements of one order-level operation post together or not at all.
type Ledger interface {
	// Reserve holds qty units. INSUFFICIENT_STOCK unless available or backordered.
	Reserve(ctx context.Context, variantID, locationID uuid.UUID, qty int, ref Reference) (*StockMovement, error)
	// Release returns up to qty reserved units, clamping at zero.
	Release(ctx context.Context, variantID, locationID uuid.UUID, qty int, ref Reference) (*StockMovement, error)
	// Consume removes reserved units from stock. INSUFFICIENT_RESERVATION if not reserved.
	Consume(ctx context.Context, variantID, locationID uuid.UUID, qty int, ref Reference) (*StockMovement, error)
	// Adjust applies a signed manual correction. INVALID_ADJUSTMENT if on-hand would go negative.
	Adjust(ctx context.Context, variantID, locationID uuid.UUID, delta int, reason string, ref Reference) (*StockMovement, error)
	// Transfer moves on-hand units between two locations atomically.
	Transfer(ctx context.Context, variantID, fromLocationID, toLocationID uuid.UUID, qty int, reason string) ([]*StockMovement, error)
}

// InventoryItemRepository defines the interface for inventory item persistence
type InventoryItemRepository interface {
	// FindByVariantAndLocation finds the stock of a variant at a location
	FindByVariantAndLocation(ctx context.Context, variantID, locationID uuid.UUID) (*InventoryItem, error)

	// FindByVariant finds the stock of a variant across all locations
	FindByVariant(ctx context.Context, variantID uuid.UUID) ([]InventoryItem, error)

	// GetOrCreate gets the existing inventory item or creates an empty one
	GetOrCreate(ctx context.Context, variantID, locationID uuid.UUID) (*InventoryItem, error)

	// Save creates or updates an inventory item
	Save(ctx context.Context, item *InventoryItem) error
}

// MovementFilter narrows movement log queries
type MovementFilter struct {
	shared.Filter
	VariantID     *uuid.UUID
	LocationID    *uuid.UUID
	Type          *MovementType
	ReferenceType string
	ReferenceID   *uuid.UUID
	From          *time.Time
	To            *time.Time
}

// StockMovementRepository is the append-only movement log
type StockMovementRepository interface {
	// Create appends movements to the log
	Create(ctx context.Context, movements ...*StockMovement) error

	// FindAll lists movements matching the filter, newest first
	FindAll(ctx context.Context, filter MovementFilter) ([]StockMovement, int64, error)

	// FindByReference lists movements posted for one business document
	FindByReference(ctx context.Context, refType string, refID uuid.UUID) ([]StockMovement, error)
}
