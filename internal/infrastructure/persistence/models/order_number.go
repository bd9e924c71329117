package models

import (
	"github.com/google/uuid"
)

// OrderNumberSequenceModel is the per-store, per-day order number counter
// used when no Redis is configured.
type OrderNumberSequenceModel struct {
	StoreID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Day     string    `gorm:"type:varchar(8);primaryKey"`
	Value   int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderNumberSequenceModel) TableName() string {
	return "order_number_sequences"
}
