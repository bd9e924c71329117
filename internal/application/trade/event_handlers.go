package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderMetrics records order business metrics
type OrderMetrics interface {
	RecordOrderCancelled(ctx context.Context, storeID uuid.UUID, wasPaid bool)
	RecordPaymentCaptured(ctx context.Context, storeID uuid.UUID, currency string, amount decimal.Decimal)
}

// OrderCancelledHandler handles OrderCancelledEvent.
// Stock is released in the cancelling transaction; this handler reports
// cancellations that leave money to be refunded.
type OrderCancelledHandler struct {
	metrics OrderMetrics
	logger  *zap.Logger
}

// NewOrderCancelledHandler creates a new handler for order cancelled events
func NewOrderCancelledHandler(metrics OrderMetrics, logger *zap.Logger) *OrderCancelledHandler {
	return &OrderCancelledHandler{
		metrics: metrics,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderCancelledHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderCancelled}
}

// Handle processes an OrderCancelledEvent
func (h *OrderCancelledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	cancelledEvent, ok := event.(*trade.OrderCancelledEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", trade.EventTypeOrderCancelled),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeOrderCancelled, event.EventType())
	}

	released := 0
	for _, r := range cancelledEvent.Released {
		released += r.Quantity
	}
	h.logger.Info("processing order cancelled event",
		zap.String("order_id", cancelledEvent.OrderID.String()),
		zap.String("order_number", cancelledEvent.OrderNumber),
		zap.String("reason", cancelledEvent.Reason),
		zap.Int("units_released", released),
	)

	if cancelledEvent.WasPaid {
		h.logger.Warn("cancelled order holds customer money and needs a refund",
			zap.String("order_id", cancelledEvent.OrderID.String()),
			zap.String("order_number", cancelledEvent.OrderNumber),
			zap.String("payment_status", cancelledEvent.PaymentStatus),
		)
	}

	if h.metrics != nil {
		h.metrics.RecordOrderCancelled(ctx, event.StoreID(), cancelledEvent.WasPaid)
	}
	return nil
}

// PaymentCapturedHandler handles PaymentCaptured events and feeds the
// revenue metrics
type PaymentCapturedHandler struct {
	metrics OrderMetrics
	logger  *zap.Logger
}

// NewPaymentCapturedHandler creates a new handler for payment captured events
func NewPaymentCapturedHandler(metrics OrderMetrics, logger *zap.Logger) *PaymentCapturedHandler {
	return &PaymentCapturedHandler{
		metrics: metrics,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentCapturedHandler) EventTypes() []string {
	return []string{trade.EventTypePaymentCaptured}
}

// Handle processes a captured payment
func (h *PaymentCapturedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paymentEvent, ok := event.(*trade.PaymentEvent)
	if !ok || event.EventType() != trade.EventTypePaymentCaptured {
		h.logger.Error("unexpected event type",
			zap.String("expected", trade.EventTypePaymentCaptured),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypePaymentCaptured, event.EventType())
	}

	h.logger.Debug("payment captured",
		zap.String("order_id", paymentEvent.OrderID.String()),
		zap.String("transaction_id", paymentEvent.TransactionID.String()),
		zap.String("amount", paymentEvent.Amount.String()),
		zap.String("currency", paymentEvent.Currency),
	)

	if h.metrics != nil {
		h.metrics.RecordPaymentCaptured(ctx, event.StoreID(), paymentEvent.Currency, paymentEvent.Amount)
	}
	return nil
}

// Ensure handlers implement shared.EventHandler
var (
	_ shared.EventHandler = (*OrderCancelledHandler)(nil)
	_ shared.EventHandler = (*PaymentCapturedHandler)(nil)
)
