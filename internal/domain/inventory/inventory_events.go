package inventory

import (
	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInventoryItem = "InventoryItem"

// Event type constants
const (
	EventTypeStockReserved    = "StockReserved"
	EventTypeStockReleased    = "StockReleased"
	EventTypeStockConsumed    = "StockConsumed"
	EventTypeStockAdjusted    = "StockAdjusted"
	EventTypeStockTransferred = "StockTransferred"
)

// StockMovedEvent is raised for every movement posted to the ledger.
// The concrete event type follows the movement type.
type StockMovedEvent struct {
	shared.BaseDomainEvent
	MovementID    uuid.UUID     `json:"movement_id"`
	VariantID     uuid.UUID     `json:"variant_id"`
	LocationID    uuid.UUID     `json:"location_id"`
	MovementType  MovementType  `json:"movement_type"`
	Delta         int           `json:"delta"`
	QuantityAfter int           `json:"quantity_after"`
	ReservedAfter int           `json:"reserved_after"`
	Level         MovementLevel `json:"level"`
	ReferenceType string        `json:"reference_type,omitempty"`
	ReferenceID   uuid.UUID     `json:"reference_id,omitempty"`
}

// NewStockMovedEvent creates the event for a posted movement
func NewStockMovedEvent(m *StockMovement) *StockMovedEvent {
	return &StockMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventTypeFor(m.Type), AggregateTypeInventoryItem, m.InventoryItemID, uuid.Nil),
		MovementID:      m.ID,
		VariantID:       m.VariantID,
		LocationID:      m.LocationID,
		MovementType:    m.Type,
		Delta:           m.Delta,
		QuantityAfter:   m.QuantityAfter,
		ReservedAfter:   m.ReservedAfter,
		Level:           m.Level,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
	}
}

func eventTypeFor(t MovementType) string {
	switch t {
	case MovementTypeReservation:
		return EventTypeStockReserved
	case MovementTypeRelease:
		return EventTypeStockReleased
	case MovementTypeConsumption:
		return EventTypeStockConsumed
	case MovementTypeTransferIn, MovementTypeTransferOut:
		return EventTypeStockTransferred
	default:
		return EventTypeStockAdjusted
	}
}
