package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryStatsProvider aggregates inventory_items for the reservation gauge
type GormInventoryStatsProvider struct {
	db *gorm.DB
}

// NewGormInventoryStatsProvider creates a new GormInventoryStatsProvider
func NewGormInventoryStatsProvider(db *gorm.DB) *GormInventoryStatsProvider {
	return &GormInventoryStatsProvider{db: db}
}

// ReservedByLocation returns reserved units per location, omitting locations with none
func (p *GormInventoryStatsProvider) ReservedByLocation(ctx context.Context) (map[uuid.UUID]int64, error) {
	type row struct {
		LocationID uuid.UUID `gorm:"column:location_id"`
		Reserved   int64     `gorm:"column:reserved"`
	}

	var rows []row
	err := p.db.WithContext(ctx).
		Table("inventory_items").
		Select("location_id, COALESCE(SUM(reserved_quantity), 0) AS reserved").
		Group("location_id").
		Having("SUM(reserved_quantity) > 0").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		out[r.LocationID] = r.Reserved
	}
	return out, nil
}
