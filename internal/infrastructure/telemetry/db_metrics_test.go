package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewDBMetrics_NilMeter(t *testing.T) {
	_, err := NewDBMetrics(nil, nil, 0, nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	mp, reader := newManualMeter(t)
	m, err := NewDBMetrics(mp.Meter("db"), nil, 100*time.Millisecond, nil)
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordQuery(ctx, "select", "orders", 10*time.Millisecond, nil)
	m.RecordQuery(ctx, "SELECT", "orders", 300*time.Millisecond, gorm.ErrRecordNotFound)
	m.RecordQuery(ctx, "update", "orders", time.Millisecond, errors.New("deadlock"))
	m.RecordQuery(ctx, "", "", time.Millisecond, nil)

	rm := collect(t, reader)
	assert.Equal(t, int64(2), intValue(t, rm, "db_query_total", AttrDBOperation.String("SELECT")))
	assert.Equal(t, int64(1), intValue(t, rm, "db_query_total", AttrDBOperation.String("UNKNOWN")))
	assert.Equal(t, int64(1), intValue(t, rm, "db_query_errors_total", AttrDBOperation.String("UPDATE")))
	assert.Equal(t, int64(0), intValue(t, rm, "db_query_errors_total", AttrDBOperation.String("SELECT")))
	assert.Equal(t, int64(1), intValue(t, rm, "db_slow_query_total", AttrDBTable.String("orders")))
}

func TestDBMetrics_RegisterAndPoolGauges(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	mp, reader := newManualMeter(t)
	m, err := NewDBMetrics(mp.Meter("db"), sqlDB, time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	require.NoError(t, m.Register(db))

	item := models.InventoryItemModel{VariantID: uuid.New(), LocationID: uuid.New(), Quantity: 2}
	item.ID = uuid.New()
	require.NoError(t, db.WithContext(context.Background()).Create(&item).Error)
	var items []models.InventoryItemModel
	require.NoError(t, db.WithContext(context.Background()).Find(&items).Error)

	rm := collect(t, reader)
	table := AttrDBTable.String("inventory_items")
	assert.Equal(t, int64(2), intValue(t, rm, "db_query_total", table))
	assert.Equal(t, int64(1), intValue(t, rm, "db_query_total", table, AttrDBOperation.String("INSERT")))
	assert.Equal(t, int64(1), intValue(t, rm, "db_query_total", table, AttrDBOperation.String("SELECT")))
	assert.Equal(t, int64(1), intValue(t, rm, "db_pool_connections_max"))
	_, ok := findMetric(rm, "db_pool_connections")
	assert.True(t, ok)
}

func TestSQLOperation(t *testing.T) {
	assert.Equal(t, "SELECT", sqlOperation("SELECT * FROM orders"))
	assert.Equal(t, "INSERT", sqlOperation("  INSERT INTO orders VALUES (1)"))
	assert.Equal(t, "", sqlOperation(""))
}
