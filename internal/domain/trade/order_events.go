package trade

import (
	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeOrderPlaced          = "OrderPlaced"
	EventTypeOrderConfirmed       = "OrderConfirmed"
	EventTypeOrderCancelled       = "OrderCancelled"
	EventTypeOrderCompleted       = "OrderCompleted"
	EventTypePaymentAuthorized    = "PaymentAuthorized"
	EventTypePaymentCaptured      = "PaymentCaptured"
	EventTypePaymentFailed        = "PaymentFailed"
	EventTypePaymentRefunded      = "PaymentRefunded"
	EventTypeFulfillmentCreated   = "FulfillmentCreated"
	EventTypeFulfillmentShipped   = "FulfillmentShipped"
	EventTypeFulfillmentDelivered = "FulfillmentDelivered"
	EventTypeFulfillmentCancelled = "FulfillmentCancelled"
)

// OrderItemInfo represents item information for events
type OrderItemInfo struct {
	ItemID     uuid.UUID       `json:"item_id"`
	VariantID  uuid.UUID       `json:"variant_id"`
	LocationID uuid.UUID       `json:"location_id"`
	Title      string          `json:"title"`
	SKU        string          `json:"sku"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func itemInfos(items []OrderItem) []OrderItemInfo {
	infos := make([]OrderItemInfo, len(items))
	for i, item := range items {
		infos[i] = OrderItemInfo{
			ItemID:     item.ID,
			VariantID:  item.VariantID,
			LocationID: item.LocationID,
			Title:      item.Title,
			SKU:        item.SKU,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
	}
	return infos
}

// OrderPlacedEvent is raised when an order is created from a cart
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  *uuid.UUID      `json:"customer_id,omitempty"`
	Currency    string          `json:"currency"`
	Items       []OrderItemInfo `json:"items"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID, o.StoreID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Currency:        string(o.Currency),
		Items:           itemInfos(o.Items),
		GrandTotal:      o.GrandTotal,
	}
}

// EventType returns the event type name
func (e *OrderPlacedEvent) EventType() string {
	return EventTypeOrderPlaced
}

// OrderConfirmedEvent is raised when a pending order is confirmed
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// NewOrderConfirmedEvent creates a new OrderConfirmedEvent
func NewOrderConfirmedEvent(o *Order) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, AggregateTypeOrder, o.ID, o.StoreID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		GrandTotal:      o.GrandTotal,
	}
}

// EventType returns the event type name
func (e *OrderConfirmedEvent) EventType() string {
	return EventTypeOrderConfirmed
}

// StockRequestInfo is a released or consumed reservation in an event payload
type StockRequestInfo struct {
	OrderItemID uuid.UUID `json:"order_item_id"`
	VariantID   uuid.UUID `json:"variant_id"`
	LocationID  uuid.UUID `json:"location_id"`
	Quantity    int       `json:"quantity"`
}

func stockInfos(reqs []StockRequest) []StockRequestInfo {
	infos := make([]StockRequestInfo, len(reqs))
	for i, r := range reqs {
		infos[i] = StockRequestInfo(r)
	}
	return infos
}

// OrderCancelledEvent is raised when an order is cancelled.
// WasPaid tells subscribers a refund may be due; none is issued automatically.
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID          `json:"order_id"`
	OrderNumber   string             `json:"order_number"`
	Reason        string             `json:"reason"`
	WasPaid       bool               `json:"was_paid"`
	PaymentStatus string             `json:"payment_status"`
	Released      []StockRequestInfo `json:"released"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, releases []StockRequest, wasPaid bool) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID, o.StoreID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Reason:          o.CancelReason,
		WasPaid:         wasPaid,
		PaymentStatus:   o.PaymentStatus.String(),
		Released:        stockInfos(releases),
	}
}

// EventType returns the event type name
func (e *OrderCancelledEvent) EventType() string {
	return EventTypeOrderCancelled
}

// OrderCompletedEvent is raised when a processing order is completed
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(o *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, AggregateTypeOrder, o.ID, o.StoreID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		GrandTotal:      o.GrandTotal,
		TotalPaid:       o.TotalPaid,
	}
}

// EventType returns the event type name
func (e *OrderCompletedEvent) EventType() string {
	return EventTypeOrderCompleted
}

// PaymentEvent is raised for every recorded gateway transaction. The type
// depends on the transaction: authorized, captured, refunded or failed.
type PaymentEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	TransactionID    uuid.UUID       `json:"transaction_id"`
	TransactionType  string          `json:"transaction_type"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	GatewayReference string          `json:"gateway_reference,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	PaymentStatus    string          `json:"payment_status"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalRefunded    decimal.Decimal `json:"total_refunded"`
}

func paymentEventType(tx *Transaction) string {
	if tx.Status == TransactionStatusFailed {
		return EventTypePaymentFailed
	}
	switch tx.Type {
	case TransactionTypeAuthorization:
		return EventTypePaymentAuthorized
	case TransactionTypeRefund:
		return EventTypePaymentRefunded
	default:
		return EventTypePaymentCaptured
	}
}

func newPaymentEvent(o *Order, tx *Transaction) *PaymentEvent {
	return &PaymentEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(paymentEventType(tx), AggregateTypeOrder, o.ID, o.StoreID),
		OrderID:          o.ID,
		OrderNumber:      o.OrderNumber,
		TransactionID:    tx.ID,
		TransactionType:  string(tx.Type),
		Amount:           tx.Amount,
		Currency:         tx.Currency,
		GatewayReference: tx.GatewayReference,
		ErrorMessage:     tx.ErrorMessage,
		PaymentStatus:    o.PaymentStatus.String(),
		TotalPaid:        o.TotalPaid,
		TotalRefunded:    o.TotalRefunded,
	}
}

// FulfillmentEvent is raised on every fulfillment change
type FulfillmentEvent struct {
	shared.BaseDomainEvent
	OrderID           uuid.UUID          `json:"order_id"`
	OrderNumber       string             `json:"order_number"`
	FulfillmentID     uuid.UUID          `json:"fulfillment_id"`
	ShipmentStatus    string             `json:"shipment_status"`
	FulfillmentStatus string             `json:"fulfillment_status"`
	TrackingCompany   string             `json:"tracking_company,omitempty"`
	TrackingNumber    string             `json:"tracking_number,omitempty"`
	Items             []StockRequestInfo `json:"items"`
}

func newFulfillmentEvent(eventType string, o *Order, f *Fulfillment) *FulfillmentEvent {
	items := make([]StockRequestInfo, 0, len(f.Items))
	for _, fi := range f.Items {
		info := StockRequestInfo{OrderItemID: fi.OrderItemID, Quantity: fi.Quantity}
		if item := o.GetItem(fi.OrderItemID); item != nil {
			info.VariantID = item.VariantID
			info.LocationID = item.LocationID
		}
		items = append(items, info)
	}
	return &FulfillmentEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(eventType, AggregateTypeOrder, o.ID, o.StoreID),
		OrderID:           o.ID,
		OrderNumber:       o.OrderNumber,
		FulfillmentID:     f.ID,
		ShipmentStatus:    string(f.Status),
		FulfillmentStatus: o.FulfillmentStatus.String(),
		TrackingCompany:   f.Tracking.Company,
		TrackingNumber:    f.Tracking.Number,
		Items:             items,
	}
}

// NewFulfillmentCreatedEvent creates a FulfillmentCreated event
func NewFulfillmentCreatedEvent(o *Order, f *Fulfillment) *FulfillmentEvent {
	return newFulfillmentEvent(EventTypeFulfillmentCreated, o, f)
}

// NewFulfillmentShippedEvent creates a FulfillmentShipped event
func NewFulfillmentShippedEvent(o *Order, f *Fulfillment) *FulfillmentEvent {
	return newFulfillmentEvent(EventTypeFulfillmentShipped, o, f)
}

// NewFulfillmentDeliveredEvent creates a FulfillmentDelivered event
func NewFulfillmentDeliveredEvent(o *Order, f *Fulfillment) *FulfillmentEvent {
	return newFulfillmentEvent(EventTypeFulfillmentDelivered, o, f)
}

// NewFulfillmentCancelledEvent creates a FulfillmentCancelled event
func NewFulfillmentCancelledEvent(o *Order, f *Fulfillment) *FulfillmentEvent {
	return newFulfillmentEvent(EventTypeFulfillmentCancelled, o, f)
}
