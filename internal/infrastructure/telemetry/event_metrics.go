package telemetry

import (
	"context"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
)

// EventMetricsHandler feeds CommerceMetrics from delivered outbox events.
// Unknown payload types are ignored.
type EventMetricsHandler struct {
	metrics *CommerceMetrics
}

// NewEventMetricsHandler creates the handler
func NewEventMetricsHandler(metrics *CommerceMetrics) *EventMetricsHandler {
	return &EventMetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler is interested in
func (h *EventMetricsHandler) EventTypes() []string {
	return []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypePaymentRefunded,
		inventory.EventTypeStockReserved,
		inventory.EventTypeStockReleased,
		inventory.EventTypeStockConsumed,
		inventory.EventTypeStockAdjusted,
		inventory.EventTypeStockTransferred,
	}
}

// Handle records the event
func (h *EventMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		h.metrics.RecordOrderPlaced(ctx, e.StoreID(), e.Currency, e.GrandTotal)
	case *trade.PaymentEvent:
		if e.EventType() == trade.EventTypePaymentRefunded {
			h.metrics.RecordRefund(ctx, e.StoreID(), e.Currency, e.Amount)
		}
	case *inventory.StockMovedEvent:
		h.metrics.RecordStockMovement(ctx, string(e.MovementType), e.Delta, e.Level == inventory.LevelWarning)
	}
	return nil
}

var _ shared.EventHandler = (*EventMetricsHandler)(nil)
