package telemetry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter is nil")

// OutboxStatsProvider reports the outbox backlog
type OutboxStatsProvider interface {
	CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error)
}

// InventoryStatsProvider reports reserved units per location
type InventoryStatsProvider interface {
	ReservedByLocation(ctx context.Context) (map[uuid.UUID]int64, error)
}

// CommerceMetricsConfig configures CommerceMetrics
type CommerceMetricsConfig struct {
	Meter     metric.Meter
	Logger    *zap.Logger
	Outbox    OutboxStatsProvider
	Inventory InventoryStatsProvider
}

// CommerceMetrics holds the order, payment and stock instruments.
// Backlog and reservation gauges are observed on every collection.
type CommerceMetrics struct {
	logger *zap.Logger

	ordersPlaced     *Counter
	orderValue       *FloatCounter
	ordersCancelled  *Counter
	paymentsCaptured *Counter
	capturedAmount   *FloatCounter
	refundedAmount   *FloatCounter
	stockMovements   *Counter
	stockUnits       *Counter
	ledgerWarnings   *Counter

	registrations []metric.Registration
}

// NewCommerceMetrics creates the instruments and registers the gauge callbacks
func NewCommerceMetrics(cfg CommerceMetricsConfig) (*CommerceMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &CommerceMetrics{logger: logger}

	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&m.ordersPlaced, "commerce_orders_placed_total", "Orders created at checkout", "{order}"},
		{&m.ordersCancelled, "commerce_orders_cancelled_total", "Orders cancelled", "{order}"},
		{&m.paymentsCaptured, "commerce_payments_captured_total", "Successful payment captures", "{payment}"},
		{&m.stockMovements, "commerce_stock_movements_total", "Ledger movements posted", "{movement}"},
		{&m.stockUnits, "commerce_stock_units_total", "Units moved by ledger movements", "{unit}"},
		{&m.ledgerWarnings, "commerce_ledger_warnings_total", "Ledger movements that were clamped", "{movement}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	money := []struct {
		dst        **FloatCounter
		name, desc string
	}{
		{&m.orderValue, "commerce_order_value_total", "Grand total of placed orders"},
		{&m.capturedAmount, "commerce_payment_captured_amount_total", "Amount captured from customers"},
		{&m.refundedAmount, "commerce_payment_refunded_amount_total", "Amount refunded to customers"},
	}
	for _, c := range money {
		counter, err := NewFloatCounter(cfg.Meter, c.name, c.desc, "{currency_unit}")
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	if cfg.Outbox != nil {
		if err := m.observeOutbox(cfg.Meter, cfg.Outbox); err != nil {
			return nil, err
		}
	}
	if cfg.Inventory != nil {
		if err := m.observeReservations(cfg.Meter, cfg.Inventory); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *CommerceMetrics) observeOutbox(meter metric.Meter, provider OutboxStatsProvider) error {
	gauge, err := meter.Int64ObservableGauge("commerce_outbox_entries",
		metric.WithDescription("Outbox entries by status"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return err
	}
	reg, err := meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		counts, err := provider.CountByStatus(ctx)
		if err != nil {
			m.logger.Warn("failed to count outbox entries", zap.Error(err))
			return nil
		}
		for status, n := range counts {
			o.ObserveInt64(gauge, n, metric.WithAttributes(AttrOutboxStatus.String(string(status))))
		}
		return nil
	}, gauge)
	if err != nil {
		return err
	}
	m.registrations = append(m.registrations, reg)
	return nil
}

func (m *CommerceMetrics) observeReservations(meter metric.Meter, provider InventoryStatsProvider) error {
	gauge, err := meter.Int64ObservableGauge("commerce_inventory_reserved_units",
		metric.WithDescription("Units held by open reservations per location"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return err
	}
	reg, err := meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		reserved, err := provider.ReservedByLocation(ctx)
		if err != nil {
			m.logger.Warn("failed to read reserved stock", zap.Error(err))
			return nil
		}
		for locationID, n := range reserved {
			o.ObserveInt64(gauge, n, metric.WithAttributes(AttrLocationID.String(locationID.String())))
		}
		return nil
	}, gauge)
	if err != nil {
		return err
	}
	m.registrations = append(m.registrations, reg)
	return nil
}

// RecordOrderPlaced counts a new order and its value
func (m *CommerceMetrics) RecordOrderPlaced(ctx context.Context, storeID uuid.UUID, currency string, grandTotal decimal.Decimal) {
	m.ordersPlaced.Inc(ctx, AttrStoreID.String(storeID.String()))
	m.orderValue.Add(ctx, grandTotal.InexactFloat64(),
		AttrStoreID.String(storeID.String()),
		AttrCurrency.String(currency),
	)
}

// RecordOrderCancelled counts a cancellation
func (m *CommerceMetrics) RecordOrderCancelled(ctx context.Context, storeID uuid.UUID, wasPaid bool) {
	m.ordersCancelled.Inc(ctx, AttrStoreID.String(storeID.String()), AttrWasPaid.Bool(wasPaid))
}

// RecordPaymentCaptured counts a capture and its amount
func (m *CommerceMetrics) RecordPaymentCaptured(ctx context.Context, storeID uuid.UUID, currency string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrStoreID.String(storeID.String()), AttrCurrency.String(currency)}
	m.paymentsCaptured.Inc(ctx, attrs...)
	m.capturedAmount.Add(ctx, amount.InexactFloat64(), attrs...)
}

// RecordRefund adds a refunded amount
func (m *CommerceMetrics) RecordRefund(ctx context.Context, storeID uuid.UUID, currency string, amount decimal.Decimal) {
	m.refundedAmount.Add(ctx, amount.InexactFloat64(),
		AttrStoreID.String(storeID.String()),
		AttrCurrency.String(currency),
	)
}

// RecordStockMovement counts a ledger posting and the units it moved
func (m *CommerceMetrics) RecordStockMovement(ctx context.Context, movementType string, delta int, warning bool) {
	attr := AttrMovementType.String(movementType)
	m.stockMovements.Inc(ctx, attr)
	if delta < 0 {
		delta = -delta
	}
	m.stockUnits.Add(ctx, int64(delta), attr)
	if warning {
		m.ledgerWarnings.Inc(ctx, attr)
	}
}

// Close unregisters the gauge callbacks
func (m *CommerceMetrics) Close() error {
	var errs []error
	for _, reg := range m.registrations {
		errs = append(errs, reg.Unregister())
	}
	m.registrations = nil
	return errors.Join(errs...)
}
