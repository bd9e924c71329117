package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockOutboxStats struct {
	mock.Mock
}

func (m *mockOutboxStats) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[shared.OutboxStatus]int64)
	return counts, args.Error(1)
}

type mockInventoryStats struct {
	mock.Mock
}

func (m *mockInventoryStats) ReservedByLocation(ctx context.Context) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx)
	reserved, _ := args.Get(0).(map[uuid.UUID]int64)
	return reserved, args.Error(1)
}

func TestNewCommerceMetrics_NilMeter(t *testing.T) {
	_, err := NewCommerceMetrics(CommerceMetricsConfig{})
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestCommerceMetrics_Counters(t *testing.T) {
	mp, reader := newManualMeter(t)
	m, err := NewCommerceMetrics(CommerceMetricsConfig{Meter: mp.Meter("commerce")})
	require.NoError(t, err)
	ctx := context.Background()
	storeID := uuid.New()

	m.RecordOrderPlaced(ctx, storeID, "USD", decimal.RequireFromString("45.50"))
	m.RecordOrderPlaced(ctx, storeID, "USD", decimal.NewFromInt(10))
	m.RecordOrderCancelled(ctx, storeID, true)
	m.RecordPaymentCaptured(ctx, storeID, "USD", decimal.NewFromInt(30))
	m.RecordRefund(ctx, storeID, "USD", decimal.NewFromInt(5))
	m.RecordStockMovement(ctx, string(inventory.MovementTypeConsumption), -3, false)
	m.RecordStockMovement(ctx, string(inventory.MovementTypeRelease), -2, true)

	rm := collect(t, reader)
	store := AttrStoreID.String(storeID.String())
	assert.Equal(t, int64(2), intValue(t, rm, "commerce_orders_placed_total", store))
	assert.InDelta(t, 55.5, floatSum(t, rm, "commerce_order_value_total"), 1e-9)
	assert.Equal(t, int64(1), intValue(t, rm, "commerce_orders_cancelled_total", AttrWasPaid.Bool(true)))
	assert.Equal(t, int64(1), intValue(t, rm, "commerce_payments_captured_total", store))
	assert.InDelta(t, 30, floatSum(t, rm, "commerce_payment_captured_amount_total"), 1e-9)
	assert.InDelta(t, 5, floatSum(t, rm, "commerce_payment_refunded_amount_total"), 1e-9)

	consumption := AttrMovementType.String(string(inventory.MovementTypeConsumption))
	release := AttrMovementType.String(string(inventory.MovementTypeRelease))
	assert.Equal(t, int64(1), intValue(t, rm, "commerce_stock_movements_total", consumption))
	assert.Equal(t, int64(3), intValue(t, rm, "commerce_stock_units_total", consumption))
	assert.Equal(t, int64(2), intValue(t, rm, "commerce_stock_units_total", release))
	assert.Equal(t, int64(1), intValue(t, rm, "commerce_ledger_warnings_total", release))
}

func TestCommerceMetrics_Gauges(t *testing.T) {
	mp, reader := newManualMeter(t)
	outbox := new(mockOutboxStats)
	stock := new(mockInventoryStats)
	locationID := uuid.New()

	outbox.On("CountByStatus", mock.Anything).Return(map[shared.OutboxStatus]int64{
		shared.OutboxStatusPending: 4,
		shared.OutboxStatusDead:    1,
	}, nil)
	stock.On("ReservedByLocation", mock.Anything).Return(map[uuid.UUID]int64{locationID: 7}, nil)

	m, err := NewCommerceMetrics(CommerceMetricsConfig{
		Meter:     mp.Meter("commerce"),
		Outbox:    outbox,
		Inventory: stock,
	})
	require.NoError(t, err)

	rm := collect(t, reader)
	assert.Equal(t, int64(4), intValue(t, rm, "commerce_outbox_entries", AttrOutboxStatus.String(string(shared.OutboxStatusPending))))
	assert.Equal(t, int64(1), intValue(t, rm, "commerce_outbox_entries", AttrOutboxStatus.String(string(shared.OutboxStatusDead))))
	assert.Equal(t, int64(7), intValue(t, rm, "commerce_inventory_reserved_units", AttrLocationID.String(locationID.String())))
	outbox.AssertExpectations(t)
	stock.AssertExpectations(t)

	require.NoError(t, m.Close())
	assert.Empty(t, m.registrations)
}

func TestCommerceMetrics_GaugeProviderFailure(t *testing.T) {
	mp, reader := newManualMeter(t)
	core, logs := observer.New(zapcore.WarnLevel)
	outbox := new(mockOutboxStats)
	outbox.On("CountByStatus", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := NewCommerceMetrics(CommerceMetricsConfig{
		Meter:  mp.Meter("commerce"),
		Logger: zap.New(core),
		Outbox: outbox,
	})
	require.NoError(t, err)

	collect(t, reader)
	assert.Equal(t, 1, logs.FilterMessage("failed to count outbox entries").Len())
}

func TestEventMetricsHandler(t *testing.T) {
	mp, reader := newManualMeter(t)
	m, err := NewCommerceMetrics(CommerceMetricsConfig{Meter: mp.Meter("commerce")})
	require.NoError(t, err)
	h := NewEventMetricsHandler(m)
	ctx := context.Background()
	storeID, orderID := uuid.New(), uuid.New()

	placed := &trade.OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeOrderPlaced, trade.AggregateTypeOrder, orderID, storeID),
		OrderID:         orderID,
		Currency:        "EUR",
		GrandTotal:      decimal.NewFromInt(80),
	}
	refunded := &trade.PaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypePaymentRefunded, trade.AggregateTypeOrder, orderID, storeID),
		OrderID:         orderID,
		Amount:          decimal.NewFromInt(20),
		Currency:        "EUR",
	}
	captured := &trade.PaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypePaymentCaptured, trade.AggregateTypeOrder, orderID, storeID),
		Amount:          decimal.NewFromInt(80),
	}
	clamped := inventory.NewStockMovedEvent(&inventory.StockMovement{
		ID:    uuid.New(),
		Type:  inventory.MovementTypeRelease,
		Delta: -2,
		Level: inventory.LevelWarning,
	})

	for _, event := range []shared.DomainEvent{placed, refunded, captured, clamped} {
		require.NoError(t, h.Handle(ctx, event))
	}

	rm := collect(t, reader)
	assert.Equal(t, int64(1), intValue(t, rm, "commerce_orders_placed_total", AttrStoreID.String(storeID.String())))
	assert.InDelta(t, 80, floatSum(t, rm, "commerce_order_value_total"), 1e-9)
	assert.InDelta(t, 20, floatSum(t, rm, "commerce_payment_refunded_amount_total"), 1e-9)
	release := AttrMovementType.String(string(inventory.MovementTypeRelease))
	assert.Equal(t, int64(1), intValue(t, rm, "commerce_ledger_warnings_total", release))

	assert.Contains(t, h.EventTypes(), trade.EventTypeOrderPlaced)
	assert.Contains(t, h.EventTypes(), inventory.EventTypeStockTransferred)
}

func TestGormInventoryStatsProvider(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	warehouse, shop := uuid.New(), uuid.New()

	for _, row := range []struct {
		location uuid.UUID
		reserved int
	}{
		{warehouse, 3},
		{warehouse, 2},
		{shop, 0},
	} {
		item := models.InventoryItemModel{
			VariantID:        uuid.New(),
			LocationID:       row.location,
			Quantity:         10,
			ReservedQuantity: row.reserved,
		}
		item.ID = uuid.New()
		require.NoError(t, db.Create(&item).Error)
	}

	reserved, err := NewGormInventoryStatsProvider(db).ReservedByLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int64{warehouse: 5}, reserved)
}
