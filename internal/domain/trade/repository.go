package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
)

// OrderFilter narrows order list queries
type OrderFilter struct {
	shared.Filter
	StoreID           uuid.UUID
	CustomerID        *uuid.UUID
	Status            *OrderStatus
	PaymentStatus     *PaymentStatus
	FulfillmentStatus *FulfillmentStatus
	From              *time.Time
	To                *time.Time
}

// OrderRepository defines the interface for order persistence.
// Loaded orders carry their items, transactions, fulfillments, refunds and history.
type OrderRepository interface {
	// FindByID finds an order by ID within a store
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate finds an order and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, storeID, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its number within a store
	FindByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (*Order, error)

	// FindByCartID finds the order created from a cart, if any
	FindByCartID(ctx context.Context, storeID, cartID uuid.UUID) (*Order, error)

	// FindAll lists orders matching the filter
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	// Save creates a new order with all its children
	Save(ctx context.Context, order *Order) error

	// SaveWithLock updates an order if its version is unchanged, then bumps
	// the version. CONCURRENCY_CONFLICT otherwise.
	SaveWithLock(ctx context.Context, order *Order) error

	// GenerateOrderNumber generates a unique order number for a store
	GenerateOrderNumber(ctx context.Context, storeID uuid.UUID) (string, error)
}

// ReturnRepository defines the interface for return persistence
type ReturnRepository interface {
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*Return, error)
	FindByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]Return, error)
	Save(ctx context.Context, r *Return) error
	SaveWithLock(ctx context.Context, r *Return) error

	// PendingQuantities sums, per order item, the units held by open returns of an order
	PendingQuantities(ctx context.Context, orderID uuid.UUID) (map[uuid.UUID]int, error)
}

// ClaimRepository defines the interface for claim persistence
type ClaimRepository interface {
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*Claim, error)
	FindByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]Claim, error)
	Save(ctx context.Context, c *Claim) error
	SaveWithLock(ctx context.Context, c *Claim) error
}

// ExchangeRepository defines the interface for exchange persistence
type ExchangeRepository interface {
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*Exchange, error)
	FindByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]Exchange, error)
	Save(ctx context.Context, e *Exchange) error
	SaveWithLock(ctx context.Context, e *Exchange) error
}

// OrderEditRepository defines the interface for order edit persistence
type OrderEditRepository interface {
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*OrderEdit, error)
	FindByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]OrderEdit, error)
	Save(ctx context.Context, e *OrderEdit) error
	SaveWithLock(ctx context.Context, e *OrderEdit) error
}
