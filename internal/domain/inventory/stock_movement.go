package inventory

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies an entry in the movement log
type MovementType string

const (
	MovementTypeReservation MovementType = "reservation"
	MovementTypeRelease     MovementType = "release"
	MovementTypeConsumption MovementType = "consumption"
	MovementTypeAdjustment  MovementType = "adjustment"
	MovementTypeTransferIn  MovementType = "transfer_in"
	MovementTypeTransferOut MovementType = "transfer_out"
)

// IsValid checks if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeReservation, MovementTypeRelease, MovementTypeConsumption,
		MovementTypeAdjustment, MovementTypeTransferIn, MovementTypeTransferOut:
		return true
	}
	return false
}

// AffectsOnHand reports whether the movement changes physical quantity
// (as opposed to only the reserved quantity)
func (t MovementType) AffectsOnHand() bool {
	switch t {
	case MovementTypeConsumption, MovementTypeAdjustment, MovementTypeTransferIn, MovementTypeTransferOut:
		return true
	}
	return false
}

// MovementLevel marks movements that record an anomaly
type MovementLevel string

const (
	LevelInfo    MovementLevel = "info"
	LevelWarning MovementLevel = "warning"
)

// Reference types for movements
const (
	ReferenceOrder       = "order"
	ReferenceFulfillment = "fulfillment"
	ReferenceReturn      = "return"
	ReferenceExchange    = "exchange"
	ReferenceOrderEdit   = "order_edit"
	ReferenceTransfer    = "transfer"
	ReferenceManual      = "manual"
)

// Reference identifies the business document behind a movement
type Reference struct {
	Type string
	ID   uuid.UUID
}

// NewReference creates a reference
func NewReference(refType string, id uuid.UUID) Reference {
	return Reference{Type: refType, ID: id}
}

// StockMovement is an immutable entry in the inventory movement log.
// Delta is signed: for reservation/release it applies to reserved quantity,
// for the other types to on-hand quantity.
type StockMovement struct {
	ID              uuid.UUID
	InventoryItemID uuid.UUID
	VariantID       uuid.UUID
	LocationID      uuid.UUID
	Type            MovementType
	Delta           int
	QuantityBefore  int
	QuantityAfter   int
	ReservedBefore  int
	ReservedAfter   int
	Reason          string
	Level           MovementLevel
	ReferenceType   string
	ReferenceID     uuid.UUID
	CreatedAt       time.Time
}

func (i *InventoryItem) newMovement(t MovementType, delta int, ref Reference) *StockMovement {
	return &StockMovement{
		ID:              uuid.New(),
		InventoryItemID: i.ID,
		VariantID:       i.VariantID,
		LocationID:      i.LocationID,
		Type:            t,
		Delta:           delta,
		QuantityBefore:  i.Quantity,
		ReservedBefore:  i.ReservedQuantity,
		Level:           LevelInfo,
		ReferenceType:   ref.Type,
		ReferenceID:     ref.ID,
		CreatedAt:       time.Now(),
	}
}

// settle records the post-mutation balances
func (m *StockMovement) settle(i *InventoryItem) *StockMovement {
	m.QuantityAfter = i.Quantity
	m.ReservedAfter = i.ReservedQuantity
	return m
}

// IsWarning reports whether the movement recorded an anomaly
func (m *StockMovement) IsWarning() bool {
	return m.Level == LevelWarning
}

// PostedMovement builds the movement for a change the store already applied
// in place. item carries the balances after the change.
func PostedMovement(item *InventoryItem, t MovementType, delta int, reason string, ref Reference) *StockMovement {
	m := item.newMovement(t, delta, ref)
	m.Reason = reason
	switch t {
	case MovementTypeReservation, MovementTypeRelease:
		m.ReservedBefore -= delta
	case MovementTypeConsumption:
		m.QuantityBefore -= delta
		m.ReservedBefore -= delta
	default:
		m.QuantityBefore -= delta
	}
	return m.settle(item)
}
