package inventory

import (
	"context"
	"fmt"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultLowStockThreshold is the available quantity at or below which an
// alert is raised
const DefaultLowStockThreshold = 5

// Alert types
const (
	AlertTypeLowStock    = "low_stock"
	AlertTypeOutOfStock  = "out_of_stock"
	AlertTypeBackordered = "backordered"
)

// StockBelowThresholdHandler watches ledger movements and raises an alert
// when the available quantity of a variant at a location drops to the
// threshold. It also reports releases that had to be clamped.
type StockBelowThresholdHandler struct {
	logger    *zap.Logger
	notifier  StockAlertNotifier
	threshold int
}

// StockAlertNotifier is the interface for sending stock alerts
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a stock level alert
type StockAlert struct {
	VariantID  string `json:"variant_id"`
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
	Reserved   int    `json:"reserved"`
	Available  int    `json:"available"`
	Threshold  int    `json:"threshold"`
	AlertType  string `json:"alert_type"` // low_stock, out_of_stock, backordered
	MovementID string `json:"movement_id"`
}

// NewStockBelowThresholdHandler creates a new handler for stock movements
func NewStockBelowThresholdHandler(threshold int, logger *zap.Logger) *StockBelowThresholdHandler {
	if threshold < 0 {
		threshold = DefaultLowStockThreshold
	}
	return &StockBelowThresholdHandler{
		logger:    logger,
		threshold: threshold,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockBelowThresholdHandler) WithNotifier(notifier StockAlertNotifier) *StockBelowThresholdHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockBelowThresholdHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeStockReserved,
		inventory.EventTypeStockReleased,
		inventory.EventTypeStockConsumed,
		inventory.EventTypeStockAdjusted,
		inventory.EventTypeStockTransferred,
	}
}

// Handle processes a StockMovedEvent
func (h *StockBelowThresholdHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	moved, ok := event.(*inventory.StockMovedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", "StockMovedEvent"),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected stock movement, got %s", event.EventType())
	}

	if moved.Level == inventory.LevelWarning {
		h.logger.Warn("ledger recorded a clamped movement",
			zap.String("movement_id", moved.MovementID.String()),
			zap.String("variant_id", moved.VariantID.String()),
			zap.String("location_id", moved.LocationID.String()),
			zap.String("movement_type", string(moved.MovementType)),
			zap.String("reference_type", moved.ReferenceType),
			zap.String("reference_id", moved.ReferenceID.String()),
		)
	}

	if raisesAvailability(moved) {
		return nil
	}

	available := moved.QuantityAfter - moved.ReservedAfter
	if available > h.threshold {
		return nil
	}

	alertType := AlertTypeLowStock
	switch {
	case available < 0:
		alertType = AlertTypeBackordered
	case available == 0:
		alertType = AlertTypeOutOfStock
	}

	alert := StockAlert{
		VariantID:  moved.VariantID.String(),
		LocationID: moved.LocationID.String(),
		Quantity:   moved.QuantityAfter,
		Reserved:   moved.ReservedAfter,
		Available:  available,
		Threshold:  h.threshold,
		AlertType:  alertType,
		MovementID: moved.MovementID.String(),
	}

	h.logger.Warn("stock below threshold detected",
		zap.String("variant_id", alert.VariantID),
		zap.String("location_id", alert.LocationID),
		zap.Int("available", available),
		zap.Int("threshold", h.threshold),
		zap.String("alert_type", alertType),
	)

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			// notification failure does not fail event handling
			h.logger.Error("failed to send stock alert notification",
				zap.String("variant_id", alert.VariantID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// raisesAvailability reports movements that can only increase available stock
func raisesAvailability(e *inventory.StockMovedEvent) bool {
	switch e.MovementType {
	case inventory.MovementTypeRelease:
		return true
	case inventory.MovementTypeReservation:
		return false
	}
	return e.Delta > 0
}

// Ensure StockBelowThresholdHandler implements shared.EventHandler
var _ shared.EventHandler = (*StockBelowThresholdHandler)(nil)

// LoggingStockAlertNotifier is a simple notifier that logs alerts
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("variant_id", alert.VariantID),
		zap.String("location_id", alert.LocationID),
		zap.Int("available", alert.Available),
		zap.Int("threshold", alert.Threshold),
	)
	return nil
}

// Ensure LoggingStockAlertNotifier implements StockAlertNotifier
var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
