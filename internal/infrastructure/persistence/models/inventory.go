package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
)

// InventoryItemModel is the persistence model for the stock of a variant at a location.
// variant_id + location_id is unique.
type InventoryItemModel struct {
	AggregateModel
	VariantID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_variant_location,priority:1"`
	LocationID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_variant_location,priority:2"`
	Quantity         int       `gorm:"not null;default:0"`
	ReservedQuantity int       `gorm:"not null;default:0"`
	AllowBackorder   bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain InventoryItem.
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	return &inventory.InventoryItem{
		BaseAggregateRoot: m.ToAggregateRoot(),
		VariantID:         m.VariantID,
		LocationID:        m.LocationID,
		Quantity:          m.Quantity,
		ReservedQuantity:  m.ReservedQuantity,
		AllowBackorder:    m.AllowBackorder,
	}
}

// FromDomain populates the persistence model from a domain InventoryItem.
func (m *InventoryItemModel) FromDomain(i *inventory.InventoryItem) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.VariantID = i.VariantID
	m.LocationID = i.LocationID
	m.Quantity = i.Quantity
	m.ReservedQuantity = i.ReservedQuantity
	m.AllowBackorder = i.AllowBackorder
}

// InventoryItemModelFromDomain creates a new persistence model from a domain InventoryItem.
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}

// StockMovementModel is one row of the append-only movement log.
type StockMovementModel struct {
	ID              uuid.UUID               `gorm:"type:uuid;primary_key"`
	InventoryItemID uuid.UUID               `gorm:"type:uuid;not null;index"`
	VariantID       uuid.UUID               `gorm:"type:uuid;not null;index:idx_movement_variant_location,priority:1"`
	LocationID      uuid.UUID               `gorm:"type:uuid;not null;index:idx_movement_variant_location,priority:2"`
	Type            inventory.MovementType  `gorm:"type:varchar(20);not null"`
	Delta           int                     `gorm:"not null"`
	QuantityBefore  int                     `gorm:"not null"`
	QuantityAfter   int                     `gorm:"not null"`
	ReservedBefore  int                     `gorm:"not null"`
	ReservedAfter   int                     `gorm:"not null"`
	Reason          string                  `gorm:"type:varchar(255)"`
	Level           inventory.MovementLevel `gorm:"type:varchar(10);not null;default:'info'"`
	ReferenceType   string                  `gorm:"type:varchar(20);index:idx_movement_reference,priority:1"`
	ReferenceID     uuid.UUID               `gorm:"type:uuid;index:idx_movement_reference,priority:2"`
	CreatedAt       time.Time               `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() inventory.StockMovement {
	return inventory.StockMovement{
		ID:              m.ID,
		InventoryItemID: m.InventoryItemID,
		VariantID:       m.VariantID,
		LocationID:      m.LocationID,
		Type:            m.Type,
		Delta:           m.Delta,
		QuantityBefore:  m.QuantityBefore,
		QuantityAfter:   m.QuantityAfter,
		ReservedBefore:  m.ReservedBefore,
		ReservedAfter:   m.ReservedAfter,
		Reason:          m.Reason,
		Level:           m.Level,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		CreatedAt:       m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain StockMovement.
func (m *StockMovementModel) FromDomain(s *inventory.StockMovement) {
	m.ID = s.ID
	m.InventoryItemID = s.InventoryItemID
	m.VariantID = s.VariantID
	m.LocationID = s.LocationID
	m.Type = s.Type
	m.Delta = s.Delta
	m.QuantityBefore = s.QuantityBefore
	m.QuantityAfter = s.QuantityAfter
	m.ReservedBefore = s.ReservedBefore
	m.ReservedAfter = s.ReservedAfter
	m.Reason = s.Reason
	m.Level = s.Level
	m.ReferenceType = s.ReferenceType
	m.ReferenceID = s.ReferenceID
	m.CreatedAt = s.CreatedAt
}
