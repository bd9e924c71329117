package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeExchange = "Exchange"

// ExchangeStatus represents the status of an exchange
type ExchangeStatus string

const (
	ExchangeStatusPending    ExchangeStatus = "pending"
	ExchangeStatusProcessing ExchangeStatus = "processing"
	ExchangeStatusCompleted  ExchangeStatus = "completed"
	ExchangeStatusCancelled  ExchangeStatus = "cancelled"
)

// CanTransitionTo checks if the exchange can move to target
func (s ExchangeStatus) CanTransitionTo(target ExchangeStatus) bool {
	switch s {
	case ExchangeStatusPending:
		return target == ExchangeStatusProcessing || target == ExchangeStatusCancelled
	case ExchangeStatusProcessing:
		return target == ExchangeStatusCompleted || target == ExchangeStatusCancelled
	}
	return false
}

// ExchangePaymentStatus tracks whether the customer paid a positive difference
type ExchangePaymentStatus string

const (
	ExchangePaymentNotPaid ExchangePaymentStatus = "not_paid"
	ExchangePaymentPaid    ExchangePaymentStatus = "paid"
)

// ExchangeItem is a new line sent to the customer in exchange
type ExchangeItem struct {
	ID          uuid.UUID
	ExchangeID  uuid.UUID
	ProductID   uuid.UUID
	VariantID   uuid.UUID
	LocationID  uuid.UUID
	Title       string
	SKU         string
	UnitPrice   decimal.Decimal
	Quantity    int
	Reserved    bool
	OrderItemID *uuid.UUID // set once the line joins the order
}

func (i ExchangeItem) line() LineInput {
	return LineInput{
		ProductID:  i.ProductID,
		VariantID:  i.VariantID,
		LocationID: i.LocationID,
		Title:      i.Title,
		SKU:        i.SKU,
		UnitPrice:  i.UnitPrice,
		Quantity:   i.Quantity,
	}
}

// Exchange swaps returned goods for new ones.
//
//	DifferenceAmount = AdditionalTotal - ReturnCredit
//
// A positive difference is owed by the customer, a negative one is refunded.
type Exchange struct {
	shared.StoreAggregateRoot
	OrderID          uuid.UUID
	ReturnID         *uuid.UUID
	Status           ExchangeStatus
	PaymentStatus    ExchangePaymentStatus
	AdditionalItems  []ExchangeItem
	AdditionalTotal  decimal.Decimal
	ReturnCredit     decimal.Decimal
	DifferenceAmount decimal.Decimal
	Note             string
	TransactionID    *uuid.UUID
	RefundID         *uuid.UUID
	CompletedAt      *time.Time
	CancelledAt      *time.Time
}

// NewExchange prices an exchange against the order. ret is the optional
// linked return whose value is credited; it must not carry its own refund.
func NewExchange(order *Order, additional []LineInput, ret *Return, note string) (*Exchange, error) {
	if order.Status != OrderStatusConfirmed && order.Status != OrderStatusProcessing {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot exchange items of a %s order", order.Status)
	}
	if len(additional) == 0 && ret == nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Exchange requires returned or additional items")
	}

	e := &Exchange{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(order.StoreID),
		OrderID:            order.ID,
		Status:             ExchangeStatusPending,
		PaymentStatus:      ExchangePaymentNotPaid,
		AdditionalItems:    make([]ExchangeItem, 0, len(additional)),
		AdditionalTotal:    decimal.Zero,
		ReturnCredit:       decimal.Zero,
		Note:               note,
	}

	if ret != nil {
		if ret.OrderID != order.ID {
			return nil, shared.NewDomainError(shared.CodeValidation, "Return belongs to another order")
		}
		if ret.NeedsRefund() {
			return nil, shared.NewDomainError(shared.CodeInvalidState, "A return linked to an exchange cannot carry its own refund")
		}
		if ret.Status == ReturnStatusCancelled || ret.Status == ReturnStatusCompleted {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot link a %s return", ret.Status)
		}
		returnID := ret.ID
		e.ReturnID = &returnID
		e.ReturnCredit = ret.ReturnValue(order)
		ret.ExchangeID = &e.ID
	}

	if len(additional) > 0 {
		preview := order.Clone()
		if _, err := preview.AppendItems(additional, false); err != nil {
			return nil, err
		}
		e.AdditionalTotal = preview.GrandTotal.Sub(order.GrandTotal)
	}
	for _, line := range additional {
		e.AdditionalItems = append(e.AdditionalItems, ExchangeItem{
			ID:         uuid.New(),
			ExchangeID: e.ID,
			ProductID:  line.ProductID,
			VariantID:  line.VariantID,
			LocationID: line.LocationID,
			Title:      line.Title,
			SKU:        line.SKU,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
		})
	}
	e.DifferenceAmount = e.AdditionalTotal.Sub(e.ReturnCredit)
	return e, nil
}

// Process starts the exchange and returns the stock to reserve for the
// additional items
func (e *Exchange) Process() ([]StockRequest, error) {
	if err := e.transition(ExchangeStatusProcessing); err != nil {
		return nil, err
	}
	reserves := make([]StockRequest, 0, len(e.AdditionalItems))
	for i := range e.AdditionalItems {
		item := &e.AdditionalItems[i]
		item.Reserved = true
		reserves = append(reserves, StockRequest{
			VariantID:  item.VariantID,
			LocationID: item.LocationID,
			Quantity:   item.Quantity,
		})
	}
	return reserves, nil
}

// Cancel abandons the exchange and returns the reservations to release
func (e *Exchange) Cancel() ([]StockRequest, error) {
	if e.PaymentStatus == ExchangePaymentPaid {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Exchange difference was paid; refund it before cancelling")
	}
	if err := e.transition(ExchangeStatusCancelled); err != nil {
		return nil, err
	}
	now := time.Now()
	e.CancelledAt = &now
	releases := make([]StockRequest, 0, len(e.AdditionalItems))
	for i := range e.AdditionalItems {
		item := &e.AdditionalItems[i]
		if !item.Reserved {
			continue
		}
		item.Reserved = false
		releases = append(releases, StockRequest{
			VariantID:  item.VariantID,
			LocationID: item.LocationID,
			Quantity:   item.Quantity,
		})
	}
	return releases, nil
}

// OwesCustomer returns true if completing the exchange refunds money
func (e *Exchange) OwesCustomer() bool {
	return e.DifferenceAmount.IsNegative()
}

// MarkPaid records the customer's payment of a positive difference as a
// capture on the order
func (e *Exchange) MarkPaid(order *Order, gatewayReference string) (*Transaction, error) {
	if e.Status != ExchangeStatusProcessing {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot take payment for a %s exchange", e.Status)
	}
	if !e.DifferenceAmount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Exchange has no difference to pay")
	}
	if e.PaymentStatus == ExchangePaymentPaid {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Exchange difference already paid")
	}
	tx, err := order.AddTransaction(TransactionInput{
		Type:             TransactionTypeCapture,
		Status:           TransactionStatusSuccess,
		Amount:           e.DifferenceAmount,
		GatewayReference: gatewayReference,
	})
	if err != nil {
		return nil, err
	}
	e.PaymentStatus = ExchangePaymentPaid
	e.TransactionID = &tx.ID
	e.UpdatedAt = time.Now()
	return tx, nil
}

// RefundRequest builds the refund of a negative difference
func (e *Exchange) RefundRequest() RefundRequest {
	id := e.ID
	return RefundRequest{
		Amount:     e.DifferenceAmount.Neg(),
		Reason:     "exchange",
		Note:       e.Note,
		SourceType: RefundSourceExchange,
		SourceID:   &id,
	}
}

// Complete adds the additional items to the order (their stock is already
// reserved) and closes the linked return. The difference must be settled
// first: paid when positive, refunded when negative.
func (e *Exchange) Complete(order *Order, ret *Return, refund *Refund) error {
	if order.ID != e.OrderID {
		return shared.NewDomainError(shared.CodeValidation, "Exchange belongs to another order")
	}
	if !e.Status.CanTransitionTo(ExchangeStatusCompleted) {
		return shared.NewTransitionError("exchange_status", string(e.Status), string(ExchangeStatusCompleted))
	}
	switch {
	case e.DifferenceAmount.IsPositive() && e.PaymentStatus != ExchangePaymentPaid:
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Exchange difference of %s is not paid", e.DifferenceAmount)
	case e.OwesCustomer():
		if refund == nil || refund.Status != RefundStatusSucceeded || !refund.Amount.Equal(e.DifferenceAmount.Neg()) {
			return shared.NewDomainError(shared.CodeInvalidState, "Exchange difference has not been refunded")
		}
	}
	if e.ReturnID != nil {
		if ret == nil || ret.ID != *e.ReturnID {
			return shared.NewDomainError(shared.CodeValidation, "Linked return is required to complete the exchange")
		}
		if ret.Status != ReturnStatusReceived && ret.Status != ReturnStatusCompleted {
			return shared.NewDomainErrorf(shared.CodeInvalidState, "Returned items are not received yet (return is %s)", ret.Status)
		}
	}

	snapshot := order.Clone()
	if len(e.AdditionalItems) > 0 {
		lines := make([]LineInput, len(e.AdditionalItems))
		for i, item := range e.AdditionalItems {
			lines[i] = item.line()
		}
		before := order.GrandTotal
		ids, err := order.AppendItems(lines, true)
		if err != nil {
			return err
		}
		if realized := order.GrandTotal.Sub(before); !realized.Equal(e.AdditionalTotal) {
			order.restore(snapshot)
			return shared.NewDomainErrorf(shared.CodeInvalidState,
				"Order changed since exchange was created: additional total is %s, expected %s", realized, e.AdditionalTotal)
		}
		for i := range e.AdditionalItems {
			id := ids[i]
			e.AdditionalItems[i].OrderItemID = &id
		}
	}
	if ret != nil && ret.Status == ReturnStatusReceived {
		if err := ret.Complete(nil); err != nil {
			order.restore(snapshot)
			return err
		}
	}
	if refund != nil && e.OwesCustomer() {
		e.RefundID = &refund.ID
	}

	now := time.Now()
	e.Status = ExchangeStatusCompleted
	e.CompletedAt = &now
	e.UpdatedAt = now
	e.AddDomainEvent(NewExchangeCompletedEvent(e))
	return nil
}

// CheckCompletion reports the error Complete would return once the
// difference is settled. It works on copies; nothing passed in changes.
func (e *Exchange) CheckCompletion(order *Order, ret *Return) error {
	exchange := *e
	exchange.AdditionalItems = append([]ExchangeItem(nil), e.AdditionalItems...)
	exchange.ClearDomainEvents()

	var linked *Return
	if ret != nil {
		r := *ret
		r.Items = append([]ReturnItem(nil), ret.Items...)
		r.ClearDomainEvents()
		linked = &r
	}

	var refund *Refund
	if e.OwesCustomer() {
		refund = &Refund{ID: uuid.New(), OrderID: e.OrderID, Amount: e.DifferenceAmount.Neg(), Status: RefundStatusSucceeded}
	}
	return exchange.Complete(order.Clone(), linked, refund)
}

func (e *Exchange) transition(target ExchangeStatus) error {
	if !e.Status.CanTransitionTo(target) {
		return shared.NewTransitionError("exchange_status", string(e.Status), string(target))
	}
	e.Status = target
	e.UpdatedAt = time.Now()
	return nil
}
