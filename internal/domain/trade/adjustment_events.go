package trade

import (
	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeReturnRequested    = "ReturnRequested"
	EventTypeReturnReceived     = "ReturnReceived"
	EventTypeReturnCompleted    = "ReturnCompleted"
	EventTypeClaimApproved      = "ClaimApproved"
	EventTypeExchangeCompleted  = "ExchangeCompleted"
	EventTypeOrderEditConfirmed = "OrderEditConfirmed"
)

// ReturnItemInfo represents returned item information for events
type ReturnItemInfo struct {
	OrderItemID uuid.UUID `json:"order_item_id"`
	Quantity    int       `json:"quantity"`
	Restock     bool      `json:"restock"`
}

// ReturnEvent is raised as a return moves through its workflow
type ReturnEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID        `json:"return_id"`
	OrderID      uuid.UUID        `json:"order_id"`
	Status       string           `json:"status"`
	RefundAmount decimal.Decimal  `json:"refund_amount"`
	RefundID     *uuid.UUID       `json:"refund_id,omitempty"`
	Items        []ReturnItemInfo `json:"items"`
	// FulfillmentStatus of the order after the goods came back, on ReturnReceived
	FulfillmentStatus string `json:"fulfillment_status,omitempty"`
}

func newReturnEvent(eventType string, r *Return) *ReturnEvent {
	items := make([]ReturnItemInfo, len(r.Items))
	for i, ri := range r.Items {
		items[i] = ReturnItemInfo{OrderItemID: ri.OrderItemID, Quantity: ri.Quantity, Restock: ri.Restock}
	}
	return &ReturnEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeReturn, r.ID, r.StoreID),
		ReturnID:        r.ID,
		OrderID:         r.OrderID,
		Status:          string(r.Status),
		RefundAmount:    r.RefundAmount,
		RefundID:        r.RefundID,
		Items:           items,
	}
}

// NewReturnRequestedEvent creates a ReturnRequested event
func NewReturnRequestedEvent(r *Return) *ReturnEvent {
	return newReturnEvent(EventTypeReturnRequested, r)
}

// NewReturnReceivedEvent creates a ReturnReceived event
func NewReturnReceivedEvent(r *Return, o *Order) *ReturnEvent {
	e := newReturnEvent(EventTypeReturnReceived, r)
	e.FulfillmentStatus = o.FulfillmentStatus.String()
	return e
}

// NewReturnCompletedEvent creates a ReturnCompleted event
func NewReturnCompletedEvent(r *Return) *ReturnEvent {
	return newReturnEvent(EventTypeReturnCompleted, r)
}

// ClaimApprovedEvent is raised when a claim is approved
type ClaimApprovedEvent struct {
	shared.BaseDomainEvent
	ClaimID      uuid.UUID       `json:"claim_id"`
	OrderID      uuid.UUID       `json:"order_id"`
	ClaimType    string          `json:"claim_type"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	RefundID     *uuid.UUID      `json:"refund_id,omitempty"`
}

// NewClaimApprovedEvent creates a new ClaimApprovedEvent
func NewClaimApprovedEvent(c *Claim) *ClaimApprovedEvent {
	return &ClaimApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClaimApproved, AggregateTypeClaim, c.ID, c.StoreID),
		ClaimID:         c.ID,
		OrderID:         c.OrderID,
		ClaimType:       string(c.Type),
		RefundAmount:    c.RefundAmount,
		RefundID:        c.RefundID,
	}
}

// EventType returns the event type name
func (e *ClaimApprovedEvent) EventType() string {
	return EventTypeClaimApproved
}

// ExchangeCompletedEvent is raised when an exchange is completed
type ExchangeCompletedEvent struct {
	shared.BaseDomainEvent
	ExchangeID       uuid.UUID       `json:"exchange_id"`
	OrderID          uuid.UUID       `json:"order_id"`
	ReturnID         *uuid.UUID      `json:"return_id,omitempty"`
	AdditionalTotal  decimal.Decimal `json:"additional_total"`
	ReturnCredit     decimal.Decimal `json:"return_credit"`
	DifferenceAmount decimal.Decimal `json:"difference_amount"`
}

// NewExchangeCompletedEvent creates a new ExchangeCompletedEvent
func NewExchangeCompletedEvent(e *Exchange) *ExchangeCompletedEvent {
	return &ExchangeCompletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeExchangeCompleted, AggregateTypeExchange, e.ID, e.StoreID),
		ExchangeID:       e.ID,
		OrderID:          e.OrderID,
		ReturnID:         e.ReturnID,
		AdditionalTotal:  e.AdditionalTotal,
		ReturnCredit:     e.ReturnCredit,
		DifferenceAmount: e.DifferenceAmount,
	}
}

// EventType returns the event type name
func (e *ExchangeCompletedEvent) EventType() string {
	return EventTypeExchangeCompleted
}

// OrderEditConfirmedEvent is raised when an order edit is applied
type OrderEditConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderEditID      uuid.UUID       `json:"order_edit_id"`
	OrderID          uuid.UUID       `json:"order_id"`
	Changes          []string        `json:"changes"`
	DifferenceAmount decimal.Decimal `json:"difference_amount"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
}

// NewOrderEditConfirmedEvent creates a new OrderEditConfirmedEvent
func NewOrderEditConfirmedEvent(e *OrderEdit, o *Order) *OrderEditConfirmedEvent {
	kinds := make([]string, len(e.Changes))
	for i, c := range e.Changes {
		kinds[i] = c.Kind()
	}
	return &OrderEditConfirmedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderEditConfirmed, AggregateTypeOrderEdit, e.ID, e.StoreID),
		OrderEditID:      e.ID,
		OrderID:          o.ID,
		Changes:          kinds,
		DifferenceAmount: e.DifferenceAmount,
		GrandTotal:       o.GrandTotal,
	}
}

// EventType returns the event type name
func (e *OrderEditConfirmedEvent) EventType() string {
	return EventTypeOrderEditConfirmed
}
