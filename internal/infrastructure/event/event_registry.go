package event

import (
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
)

// RegisterAllEvents registers every event the order core writes to the outbox.
// The outbox processor cannot replay an event type that is missing here.
func RegisterAllEvents(serializer *EventSerializer) {
	// Order lifecycle
	serializer.Register(trade.EventTypeOrderPlaced, &trade.OrderPlacedEvent{})
	serializer.Register(trade.EventTypeOrderConfirmed, &trade.OrderConfirmedEvent{})
	serializer.Register(trade.EventTypeOrderCancelled, &trade.OrderCancelledEvent{})
	serializer.Register(trade.EventTypeOrderCompleted, &trade.OrderCompletedEvent{})

	// Payments
	serializer.Register(trade.EventTypePaymentAuthorized, &trade.PaymentEvent{})
	serializer.Register(trade.EventTypePaymentCaptured, &trade.PaymentEvent{})
	serializer.Register(trade.EventTypePaymentFailed, &trade.PaymentEvent{})
	serializer.Register(trade.EventTypePaymentRefunded, &trade.PaymentEvent{})

	// Fulfillments
	serializer.Register(trade.EventTypeFulfillmentCreated, &trade.FulfillmentEvent{})
	serializer.Register(trade.EventTypeFulfillmentShipped, &trade.FulfillmentEvent{})
	serializer.Register(trade.EventTypeFulfillmentDelivered, &trade.FulfillmentEvent{})
	serializer.Register(trade.EventTypeFulfillmentCancelled, &trade.FulfillmentEvent{})

	// Post-purchase adjustments
	serializer.Register(trade.EventTypeReturnRequested, &trade.ReturnEvent{})
	serializer.Register(trade.EventTypeReturnReceived, &trade.ReturnEvent{})
	serializer.Register(trade.EventTypeReturnCompleted, &trade.ReturnEvent{})
	serializer.Register(trade.EventTypeClaimApproved, &trade.ClaimApprovedEvent{})
	serializer.Register(trade.EventTypeExchangeCompleted, &trade.ExchangeCompletedEvent{})
	serializer.Register(trade.EventTypeOrderEditConfirmed, &trade.OrderEditConfirmedEvent{})

	// Inventory ledger
	serializer.Register(inventory.EventTypeStockReserved, &inventory.StockMovedEvent{})
	serializer.Register(inventory.EventTypeStockReleased, &inventory.StockMovedEvent{})
	serializer.Register(inventory.EventTypeStockConsumed, &inventory.StockMovedEvent{})
	serializer.Register(inventory.EventTypeStockAdjusted, &inventory.StockMovedEvent{})
	serializer.Register(inventory.EventTypeStockTransferred, &inventory.StockMovedEvent{})
}
