package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
)

// InventoryItem is the stock of one variant at one location.
// The composite identifier is VariantID + LocationID.
//
// Quantity is the physical on-hand count. ReservedQuantity is the part of it
// promised to open orders. Available = Quantity - ReservedQuantity and only
// goes negative when the item allows backorder.
type InventoryItem struct {
	shared.BaseAggregateRoot
	VariantID        uuid.UUID
	LocationID       uuid.UUID
	Quantity         int
	ReservedQuantity int
	AllowBackorder   bool
}

// NewInventoryItem creates an empty inventory item for a variant-location pair
func NewInventoryItem(variantID, locationID uuid.UUID) (*InventoryItem, error) {
	if variantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Variant ID cannot be empty")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Location ID cannot be empty")
	}
	return &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		VariantID:         variantID,
		LocationID:        locationID,
	}, nil
}

// Available returns the quantity that can still be reserved
func (i *InventoryItem) Available() int {
	return i.Quantity - i.ReservedQuantity
}

// CanReserve reports whether qty units can be reserved right now
func (i *InventoryItem) CanReserve(qty int) bool {
	return i.AllowBackorder || i.Available() >= qty
}

// Reserve holds qty units for an order.
// Fails with INSUFFICIENT_STOCK unless enough is available or backorder is allowed.
func (i *InventoryItem) Reserve(qty int, ref Reference) (*StockMovement, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}
	if !i.CanReserve(qty) {
		return nil, shared.NewDomainErrorf(shared.CodeInsufficientStock,
			"Insufficient stock for variant %s at location %s: requested %d, available %d",
			i.VariantID, i.LocationID, qty, i.Available())
	}

	m := i.newMovement(MovementTypeReservation, qty, ref)
	i.ReservedQuantity += qty
	i.touch()
	return m.settle(i), nil
}

// Release gives back up to qty reserved units. Over-releasing never fails:
// the release is clamped to what is reserved and the movement is flagged
// with LevelWarning, since cancellation paths may race.
func (i *InventoryItem) Release(qty int, ref Reference) (*StockMovement, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}

	released := qty
	level := LevelInfo
	reason := ""
	if released > i.ReservedQuantity {
		released = i.ReservedQuantity
		level = LevelWarning
		reason = fmt.Sprintf("release of %d clamped to reserved %d", qty, i.ReservedQuantity)
	}

	m := i.newMovement(MovementTypeRelease, -released, ref)
	m.Level = level
	m.Reason = reason
	i.ReservedQuantity -= released
	i.touch()
	return m.settle(i), nil
}

// Consume removes qty units that were reserved from both reserved and on-hand.
// This is what happens when a fulfillment ships stock out of the location.
func (i *InventoryItem) Consume(qty int, ref Reference) (*StockMovement, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}
	if i.ReservedQuantity < qty {
		return nil, shared.NewDomainErrorf(shared.CodeInsufficientReservation,
			"Cannot consume %d units of variant %s at location %s: only %d reserved",
			qty, i.VariantID, i.LocationID, i.ReservedQuantity)
	}

	m := i.newMovement(MovementTypeConsumption, -qty, ref)
	i.ReservedQuantity -= qty
	i.Quantity -= qty
	i.touch()
	return m.settle(i), nil
}

// Adjust applies a manual correction to on-hand quantity, bypassing reservations
func (i *InventoryItem) Adjust(delta int, reason string, ref Reference) (*StockMovement, error) {
	return i.adjust(MovementTypeAdjustment, delta, reason, ref)
}

func (i *InventoryItem) adjust(t MovementType, delta int, reason string, ref Reference) (*StockMovement, error) {
	if delta == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidAdjustment, "Adjustment delta cannot be zero")
	}
	if i.Quantity+delta < 0 {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidAdjustment,
			"Adjustment of %d would make on-hand quantity negative (current %d)", delta, i.Quantity)
	}
	if !i.AllowBackorder && i.Quantity+delta < i.ReservedQuantity {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidAdjustment,
			"Adjustment of %d would leave less stock than is reserved (%d)", delta, i.ReservedQuantity)
	}

	m := i.newMovement(t, delta, ref)
	m.Reason = reason
	i.Quantity += delta
	i.touch()
	return m.settle(i), nil
}

// SetBackorder toggles whether the item can be reserved beyond available stock
func (i *InventoryItem) SetBackorder(allow bool) {
	i.AllowBackorder = allow
	i.touch()
}

func (i *InventoryItem) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

func validateQuantity(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError(shared.CodeValidation, "Quantity must be positive")
	}
	return nil
}
