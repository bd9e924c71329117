package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrderEdit = "OrderEdit"

// OrderEditStatus represents the status of an order edit
type OrderEditStatus string

const (
	OrderEditStatusCreated   OrderEditStatus = "created"
	OrderEditStatusRequested OrderEditStatus = "requested"
	OrderEditStatusConfirmed OrderEditStatus = "confirmed"
	OrderEditStatusDeclined  OrderEditStatus = "declined"
	OrderEditStatusCancelled OrderEditStatus = "cancelled"
)

// CanTransitionTo checks if the edit can move to target
func (s OrderEditStatus) CanTransitionTo(target OrderEditStatus) bool {
	switch s {
	case OrderEditStatusCreated:
		return target == OrderEditStatusRequested || target == OrderEditStatusCancelled
	case OrderEditStatusRequested:
		return target == OrderEditStatusConfirmed || target == OrderEditStatusDeclined || target == OrderEditStatusCancelled
	}
	return false
}

// Edit change kinds, as persisted
const (
	EditChangeItemAdd    = "item_add"
	EditChangeItemRemove = "item_remove"
	EditChangeItemUpdate = "item_update"
)

// EditChange is one typed operation of an order edit.
// The set is closed: ItemAdd, ItemRemove and ItemUpdate.
type EditChange interface {
	Kind() string
	editChange()
}

// ItemAdd adds a new line
type ItemAdd struct {
	ProductID  uuid.UUID
	VariantID  uuid.UUID
	LocationID uuid.UUID
	Title      string
	SKU        string
	UnitPrice  decimal.Decimal
	Quantity   int
}

// ItemRemove removes an unfulfilled line
type ItemRemove struct {
	OrderItemID uuid.UUID
}

// ItemUpdate changes the quantity of a line
type ItemUpdate struct {
	OrderItemID uuid.UUID
	Quantity    int
}

func (ItemAdd) Kind() string    { return EditChangeItemAdd }
func (ItemRemove) Kind() string { return EditChangeItemRemove }
func (ItemUpdate) Kind() string { return EditChangeItemUpdate }

func (ItemAdd) editChange()    {}
func (ItemRemove) editChange() {}
func (ItemUpdate) editChange() {}

// OrderEdit is a staged change to an order's lines.
// DifferenceAmount is fixed when the edit is requested; confirming applies
// the changes and fails if the order moved since.
type OrderEdit struct {
	shared.StoreAggregateRoot
	OrderID          uuid.UUID
	Status           OrderEditStatus
	Changes          []EditChange
	Note             string
	DifferenceAmount decimal.Decimal
	CreatedBy        *uuid.UUID
	DeclineReason    string
	RequestedAt      *time.Time
	ConfirmedAt      *time.Time
	DeclinedAt       *time.Time
	CancelledAt      *time.Time
}

// NewOrderEdit creates an edit in created status
func NewOrderEdit(order *Order, changes []EditChange, note string, createdBy *uuid.UUID) (*OrderEdit, error) {
	if !order.IsEditable() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot edit a %s order", order.Status)
	}
	if len(changes) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order edit has no changes")
	}
	if _, _, err := order.Clone().ApplyEdit(changes); err != nil {
		return nil, err
	}
	return &OrderEdit{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(order.StoreID),
		OrderID:            order.ID,
		Status:             OrderEditStatusCreated,
		Changes:            changes,
		Note:               note,
		DifferenceAmount:   decimal.Zero,
		CreatedBy:          createdBy,
	}, nil
}

// Request previews the edit on a copy of the order and stores the
// resulting grand total difference
func (e *OrderEdit) Request(order *Order) error {
	if err := e.checkOrder(order); err != nil {
		return err
	}
	if !e.Status.CanTransitionTo(OrderEditStatusRequested) {
		return shared.NewTransitionError("order_edit_status", string(e.Status), string(OrderEditStatusRequested))
	}
	preview := order.Clone()
	if _, _, err := preview.ApplyEdit(e.Changes); err != nil {
		return err
	}
	_ = e.transition(OrderEditStatusRequested)
	now := time.Now()
	e.DifferenceAmount = preview.GrandTotal.Sub(order.GrandTotal)
	e.RequestedAt = &now
	return nil
}

// Confirm applies the edit to the order and returns the stock to reserve and
// release. The realized difference must match the requested one.
func (e *OrderEdit) Confirm(order *Order) (reserves, releases []StockRequest, err error) {
	if err := e.checkOrder(order); err != nil {
		return nil, nil, err
	}
	if !e.Status.CanTransitionTo(OrderEditStatusConfirmed) {
		return nil, nil, shared.NewTransitionError("order_edit_status", string(e.Status), string(OrderEditStatusConfirmed))
	}

	before := order.GrandTotal
	snapshot := order.Clone()
	reserves, releases, err = order.ApplyEdit(e.Changes)
	if err != nil {
		return nil, nil, err
	}
	if realized := order.GrandTotal.Sub(before); !realized.Equal(e.DifferenceAmount) {
		order.restore(snapshot)
		return nil, nil, shared.NewDomainErrorf(shared.CodeInvalidState,
			"Order changed since edit was requested: difference is %s, expected %s", realized, e.DifferenceAmount)
	}

	now := time.Now()
	e.Status = OrderEditStatusConfirmed
	e.ConfirmedAt = &now
	e.UpdatedAt = now
	e.AddDomainEvent(NewOrderEditConfirmedEvent(e, order))
	return reserves, releases, nil
}

// Decline rejects a requested edit
func (e *OrderEdit) Decline(reason string) error {
	if err := e.transition(OrderEditStatusDeclined); err != nil {
		return err
	}
	now := time.Now()
	e.DeclineReason = reason
	e.DeclinedAt = &now
	return nil
}

// Cancel withdraws an edit before it is confirmed
func (e *OrderEdit) Cancel() error {
	if err := e.transition(OrderEditStatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	e.CancelledAt = &now
	return nil
}

func (e *OrderEdit) checkOrder(order *Order) error {
	if order.ID != e.OrderID {
		return shared.NewDomainError(shared.CodeValidation, "Order edit belongs to another order")
	}
	return nil
}

func (e *OrderEdit) transition(target OrderEditStatus) error {
	if !e.Status.CanTransitionTo(target) {
		return shared.NewTransitionError("order_edit_status", string(e.Status), string(target))
	}
	e.Status = target
	e.UpdatedAt = time.Now()
	return nil
}
