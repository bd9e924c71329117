package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// OrderItem is a purchased line. Prices are snapshots taken at checkout and
// never looked up again.
type OrderItem struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ProductID         uuid.UUID
	VariantID         uuid.UUID
	LocationID        uuid.UUID
	Title             string
	SKU               string
	Quantity          int
	UnitPrice         decimal.Decimal
	DiscountAmount    decimal.Decimal
	TaxAmount         decimal.Decimal
	TotalPrice        decimal.Decimal // UnitPrice*Quantity - DiscountAmount + TaxAmount
	FulfilledQuantity int
	ReturnedQuantity  int
	ReservedQuantity  int // stock still held in the ledger for this line
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LineSubtotal returns UnitPrice * Quantity
func (i *OrderItem) LineSubtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// UnfulfilledQuantity returns the units not yet fulfilled
func (i *OrderItem) UnfulfilledQuantity() int {
	return i.Quantity - i.FulfilledQuantity
}

// ReturnableQuantity returns the fulfilled units not yet returned
func (i *OrderItem) ReturnableQuantity() int {
	return i.FulfilledQuantity - i.ReturnedQuantity
}

// LineInput describes a new order line (from a cart, an exchange or an edit)
type LineInput struct {
	ProductID  uuid.UUID
	VariantID  uuid.UUID
	LocationID uuid.UUID
	Title      string
	SKU        string
	UnitPrice  decimal.Decimal
	Quantity   int
}

// Validate checks the line input
func (l LineInput) Validate() error {
	if l.VariantID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Variant ID cannot be empty")
	}
	if l.LocationID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Location ID cannot be empty")
	}
	if l.Quantity <= 0 {
		return shared.NewDomainError(shared.CodeValidation, "Quantity must be positive")
	}
	if l.UnitPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Unit price cannot be negative")
	}
	return nil
}

func newOrderItem(orderID uuid.UUID, l LineInput) OrderItem {
	now := time.Now()
	return OrderItem{
		ID:             uuid.New(),
		OrderID:        orderID,
		ProductID:      l.ProductID,
		VariantID:      l.VariantID,
		LocationID:     l.LocationID,
		Title:          l.Title,
		SKU:            l.SKU,
		Quantity:       l.Quantity,
		UnitPrice:      l.UnitPrice,
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		TotalPrice:     decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Address is a shipping address snapshot
type Address struct {
	Name        string
	Line1       string
	Line2       string
	City        string
	Province    string
	PostalCode  string
	CountryCode string
	Phone       string
}

// StatusHistory is one append-only audit entry for a status change
type StatusHistory struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Field     string
	From      string
	To        string
	Reason    string
	ActorID   *uuid.UUID
	CreatedAt time.Time
}

// StockRequest tells the orchestrator which ledger movement an order
// mutation needs. The domain never talks to the ledger itself.
type StockRequest struct {
	OrderItemID uuid.UUID
	VariantID   uuid.UUID
	LocationID  uuid.UUID
	Quantity    int
}

// Order is the aggregate root for one purchase.
//
// Status, PaymentStatus and FulfillmentStatus are independent axes.
// PaymentStatus is derived from Transactions and FulfillmentStatus from
// fulfilled quantities; neither has a public setter. Monetary totals are
// derived by RecomputeTotals.
type Order struct {
	shared.StoreAggregateRoot
	OrderNumber       string
	CartID            *uuid.UUID
	CustomerID        *uuid.UUID
	Email             string
	Currency          valueobject.Currency
	Status            OrderStatus
	PaymentStatus     PaymentStatus
	FulfillmentStatus FulfillmentStatus

	// Inputs to the totals engine
	OrderDiscount decimal.Decimal  // cart-level discount, allocated to lines
	ShippingTotal decimal.Decimal  // resolved shipping cost
	TaxRate       decimal.Decimal  // rate applied to each line's net amount
	TaxOverride   *decimal.Decimal // externally resolved tax total, allocated to lines

	// Derived totals
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	GrandTotal    decimal.Decimal
	TotalPaid     decimal.Decimal
	TotalRefunded decimal.Decimal

	ShippingMethod  string
	ShippingAddress *Address
	Notes           string
	CancelReason    string
	ConfirmedAt     *time.Time
	CancelledAt     *time.Time
	CompletedAt     *time.Time

	Items        []OrderItem
	Transactions []Transaction
	Fulfillments []Fulfillment
	Refunds      []Refund
	History      []StatusHistory

	actorID *uuid.UUID
}

// CartSnapshot is the immutable view of a cart at the moment of checkout.
// Discount and shipping are already resolved by the cart.
type CartSnapshot struct {
	CartID          uuid.UUID
	StoreID         uuid.UUID
	CustomerID      *uuid.UUID
	Email           string
	Currency        valueobject.Currency
	Items           []LineInput
	DiscountTotal   decimal.Decimal
	ShippingTotal   decimal.Decimal
	ShippingMethod  string
	ShippingAddress *Address
	TaxTotal        *decimal.Decimal // nil lets the order apply its tax rate
}

// NewOrderFromCart snapshots a cart into a new pending order and computes its
// totals. Inventory reservation is the caller's job; it must happen in the
// same transaction that persists the order.
func NewOrderFromCart(cart CartSnapshot, orderNumber string, taxRate decimal.Decimal) (*Order, error) {
	if cart.StoreID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Store ID cannot be empty")
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order number cannot be empty")
	}
	if len(cart.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Cannot create an order from an empty cart")
	}
	if cart.DiscountTotal.IsNegative() || cart.ShippingTotal.IsNegative() || taxRate.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Discount, shipping and tax cannot be negative")
	}
	if cart.TaxTotal != nil && cart.TaxTotal.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Tax total cannot be negative")
	}
	currency := valueobject.DefaultCurrency
	if cart.Currency != "" {
		c, err := valueobject.ParseCurrency(string(cart.Currency))
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeValidation, err.Error())
		}
		currency = c
	}

	o := &Order{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(cart.StoreID),
		OrderNumber:        orderNumber,
		CustomerID:         cart.CustomerID,
		Email:              cart.Email,
		Currency:           currency,
		Status:             OrderStatusPending,
		PaymentStatus:      PaymentStatusPending,
		FulfillmentStatus:  FulfillmentStatusUnfulfilled,
		OrderDiscount:      currency.Round(cart.DiscountTotal),
		ShippingTotal:      currency.Round(cart.ShippingTotal),
		TaxRate:            taxRate,
		TotalPaid:          decimal.Zero,
		TotalRefunded:      decimal.Zero,
		ShippingMethod:     cart.ShippingMethod,
		ShippingAddress:    cart.ShippingAddress,
		Items:              make([]OrderItem, 0, len(cart.Items)),
		Transactions:       make([]Transaction, 0),
		Fulfillments:       make([]Fulfillment, 0),
		Refunds:            make([]Refund, 0),
		History:            make([]StatusHistory, 0),
	}
	if cart.CartID != uuid.Nil {
		cartID := cart.CartID
		o.CartID = &cartID
	}
	if cart.TaxTotal != nil {
		tax := currency.Round(*cart.TaxTotal)
		o.TaxOverride = &tax
	}

	for _, line := range cart.Items {
		if err := line.Validate(); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, newOrderItem(o.ID, line))
	}

	if err := o.RecomputeTotals(); err != nil {
		return nil, err
	}
	if o.TaxOverride != nil {
		o.TaxRate = effectiveTaxRate(o)
	}

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// ActingAs records who performs the following mutations in the status history
func (o *Order) ActingAs(actorID uuid.UUID) {
	if actorID == uuid.Nil {
		o.actorID = nil
		return
	}
	o.actorID = &actorID
}

// ReservationRequests lists the stock each line needs reserved at checkout
func (o *Order) ReservationRequests() []StockRequest {
	reqs := make([]StockRequest, 0, len(o.Items))
	for _, item := range o.Items {
		reqs = append(reqs, StockRequest{
			OrderItemID: item.ID,
			VariantID:   item.VariantID,
			LocationID:  item.LocationID,
			Quantity:    item.UnfulfilledQuantity() - item.ReservedQuantity,
		})
	}
	return reqs
}

// MarkReserved records that qty units of an item are now held in the ledger
func (o *Order) MarkReserved(itemID uuid.UUID, qty int) error {
	item := o.GetItem(itemID)
	if item == nil {
		return shared.NewDomainErrorf(shared.CodeNotFound, "Order item %s not found", itemID)
	}
	if item.ReservedQuantity+qty > item.UnfulfilledQuantity() {
		return shared.NewDomainErrorf(shared.CodeInvalidState,
			"Cannot reserve %d more units of item %s: only %d unfulfilled", qty, itemID, item.UnfulfilledQuantity())
	}
	item.ReservedQuantity += qty
	item.UpdatedAt = time.Now()
	return nil
}

// Confirm moves a pending order to confirmed
func (o *Order) Confirm(reason string) error {
	if o.Status == OrderStatusConfirmed {
		return nil
	}
	if err := o.transitionStatus(OrderStatusConfirmed, reason); err != nil {
		return err
	}
	now := time.Now()
	o.ConfirmedAt = &now
	o.AddDomainEvent(NewOrderConfirmedEvent(o))
	return nil
}

// StartProcessing moves a confirmed order to processing
func (o *Order) StartProcessing(reason string) error {
	return o.transitionStatus(OrderStatusProcessing, reason)
}

// Complete moves a processing order to completed. Every unit must be fulfilled.
func (o *Order) Complete(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return shared.NewTransitionError(FieldStatus, o.Status.String(), OrderStatusCompleted.String())
	}
	if !o.FulfillmentStatus.IsFullyFulfilled() {
		return shared.NewDomainErrorf(shared.CodeInvalidState,
			"Cannot complete order %s while it is %s", o.OrderNumber, o.FulfillmentStatus)
	}
	if err := o.transitionStatus(OrderStatusCompleted, reason); err != nil {
		return err
	}
	now := time.Now()
	o.CompletedAt = &now
	o.AddDomainEvent(NewOrderCompletedEvent(o))
	return nil
}

// Cancellation is the stock effect of cancelling an order
type Cancellation struct {
	// Restocks are units picked by pending fulfillments, back on hand
	Restocks []StockRequest
	// Releases are the reservations the order still held
	Releases []StockRequest
}

// Cancel cancels the order. Pending fulfillments are cancelled with it;
// a shipped or delivered one blocks the cancel. It never refunds: a paid
// order stays paid until an explicit refund.
func (o *Order) Cancel(reason string) (Cancellation, error) {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return Cancellation{}, shared.NewTransitionError(FieldStatus, o.Status.String(), OrderStatusCancelled.String())
	}
	picked := make(map[uuid.UUID]int)
	var pending []uuid.UUID
	for _, f := range o.Fulfillments {
		switch f.Status {
		case ShipmentStatusShipped, ShipmentStatusDelivered:
			return Cancellation{}, shared.NewDomainErrorf(shared.CodeInvalidState,
				"Cannot cancel order %s: fulfillment %s is %s", o.OrderNumber, f.ID, f.Status)
		case ShipmentStatusPending:
			pending = append(pending, f.ID)
			for _, fi := range f.Items {
				picked[fi.OrderItemID] += fi.Quantity
			}
		}
	}
	for i := range o.Items {
		item := &o.Items[i]
		if item.FulfilledQuantity-picked[item.ID] < item.ReturnedQuantity {
			return Cancellation{}, shared.NewDomainErrorf(shared.CodeInvalidState,
				"Cannot cancel order %s: units of %s were already returned", o.OrderNumber, item.Title)
		}
	}

	var c Cancellation
	held := make(map[uuid.UUID]int, len(o.Items))
	for _, item := range o.Items {
		held[item.ID] = item.ReservedQuantity
	}
	for _, id := range pending {
		restocks, err := o.CancelFulfillment(id)
		if err != nil {
			return Cancellation{}, err
		}
		c.Restocks = append(c.Restocks, restocks...)
	}

	now := time.Now()
	for i := range o.Items {
		item := &o.Items[i]
		if qty := held[item.ID]; qty > 0 {
			c.Releases = append(c.Releases, StockRequest{
				OrderItemID: item.ID,
				VariantID:   item.VariantID,
				LocationID:  item.LocationID,
				Quantity:    qty,
			})
		}
		if item.ReservedQuantity > 0 {
			item.ReservedQuantity = 0
			item.UpdatedAt = now
		}
	}

	wasPaid := o.PaymentStatus.IsCollected() || o.PaymentStatus == PaymentStatusAuthorized
	if err := o.transitionStatus(OrderStatusCancelled, reason); err != nil {
		return Cancellation{}, err
	}
	o.CancelledAt = &now
	o.CancelReason = reason
	o.AddDomainEvent(NewOrderCancelledEvent(o, c.Releases, wasPaid))
	return c, nil
}

// AddNote replaces the internal note on the order
func (o *Order) AddNote(note string) {
	o.Notes = note
	o.UpdatedAt = time.Now()
}

func (o *Order) transitionStatus(target OrderStatus, reason string) error {
	if o.Status == target {
		return nil
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewTransitionError(FieldStatus, o.Status.String(), target.String())
	}
	o.recordHistory(FieldStatus, o.Status.String(), target.String(), reason)
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) recordHistory(field, from, to, reason string) {
	o.History = append(o.History, StatusHistory{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Field:     field,
		From:      from,
		To:        to,
		Reason:    reason,
		ActorID:   o.actorID,
		CreatedAt: time.Now(),
	})
}

// GetItem returns the item with the given ID, or nil
func (o *Order) GetItem(itemID uuid.UUID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// GetFulfillment returns the fulfillment with the given ID, or nil
func (o *Order) GetFulfillment(id uuid.UUID) *Fulfillment {
	for i := range o.Fulfillments {
		if o.Fulfillments[i].ID == id {
			return &o.Fulfillments[i]
		}
	}
	return nil
}

// TotalQuantity returns the number of ordered units
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// BalanceDue returns what the customer still owes (never negative)
func (o *Order) BalanceDue() decimal.Decimal {
	due := o.GrandTotal.Sub(o.TotalPaid.Sub(o.TotalRefunded))
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// RefundableAmount returns what can still be refunded
func (o *Order) RefundableAmount() decimal.Decimal {
	return o.TotalPaid.Sub(o.TotalRefunded)
}

// IsEditable returns true while lines may still change
func (o *Order) IsEditable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed || o.Status == OrderStatusProcessing
}

// IsPending returns true if the order is pending
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// CheckIntegrity reports stored-state invariant violations. It is used on
// read to surface past corruption; it never blocks an operation.
func (o *Order) CheckIntegrity() []string {
	var violations []string
	if o.TotalRefunded.GreaterThan(o.TotalPaid) {
		violations = append(violations, fmt.Sprintf("total refunded %s exceeds total paid %s", o.TotalRefunded, o.TotalPaid))
	}
	expected := o.Subtotal.Sub(o.DiscountTotal).Add(o.ShippingTotal).Add(o.TaxTotal)
	if !expected.Equal(o.GrandTotal) {
		violations = append(violations, fmt.Sprintf("grand total %s does not match components %s", o.GrandTotal, expected))
	}
	for _, item := range o.Items {
		if item.FulfilledQuantity < 0 || item.FulfilledQuantity > item.Quantity {
			violations = append(violations, fmt.Sprintf("item %s fulfilled %d of %d", item.ID, item.FulfilledQuantity, item.Quantity))
		}
		if item.ReturnedQuantity < 0 || item.ReturnedQuantity > item.FulfilledQuantity {
			violations = append(violations, fmt.Sprintf("item %s returned %d of %d fulfilled", item.ID, item.ReturnedQuantity, item.FulfilledQuantity))
		}
	}
	return violations
}

// Clone returns a deep copy of the order's mutable state, used to preview changes
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	c.Transactions = append([]Transaction(nil), o.Transactions...)
	c.Fulfillments = make([]Fulfillment, len(o.Fulfillments))
	for i, f := range o.Fulfillments {
		f.Items = append([]FulfillmentItem(nil), f.Items...)
		c.Fulfillments[i] = f
	}
	c.Refunds = append([]Refund(nil), o.Refunds...)
	c.History = append([]StatusHistory(nil), o.History...)
	if o.TaxOverride != nil {
		tax := *o.TaxOverride
		c.TaxOverride = &tax
	}
	c.ClearDomainEvents()
	return &c
}
