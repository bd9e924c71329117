package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeReturn = "Return"

// ReturnStatus represents the status of a return
type ReturnStatus string

const (
	ReturnStatusRequested ReturnStatus = "requested"
	ReturnStatusReceived  ReturnStatus = "received"
	ReturnStatusCompleted ReturnStatus = "completed"
	ReturnStatusCancelled ReturnStatus = "cancelled"
)

// IsValid checks if the status is a valid ReturnStatus
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusRequested, ReturnStatusReceived, ReturnStatusCompleted, ReturnStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	switch s {
	case ReturnStatusRequested:
		return target == ReturnStatusReceived || target == ReturnStatusCancelled
	case ReturnStatusReceived:
		return target == ReturnStatusCompleted || target == ReturnStatusCancelled
	}
	return false
}

// IsOpen returns true while the return still holds returnable quantity
func (s ReturnStatus) IsOpen() bool {
	return s == ReturnStatusRequested
}

// ReturnItem is one returned line
type ReturnItem struct {
	ID          uuid.UUID
	ReturnID    uuid.UUID
	OrderItemID uuid.UUID
	Quantity    int
	Reason      string
	Note        string
	Restock     bool
	LocationID  *uuid.UUID // restock location; defaults to the order item's
}

// ReturnItemInput requests the return of qty units of an order item
type ReturnItemInput struct {
	OrderItemID uuid.UUID
	Quantity    int
	Reason      string
	Note        string
	Restock     bool
	LocationID  *uuid.UUID
}

// Return is a request to send fulfilled goods back
type Return struct {
	shared.StoreAggregateRoot
	OrderID      uuid.UUID
	Status       ReturnStatus
	Items        []ReturnItem
	RefundAmount decimal.Decimal
	Note         string
	ExchangeID   *uuid.UUID
	ClaimID      *uuid.UUID
	RefundID     *uuid.UUID
	ReceivedAt   *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
}

// NewReturn validates a return request against the order. pending holds,
// per order item, the units already claimed by other open returns.
func NewReturn(order *Order, inputs []ReturnItemInput, refundAmount decimal.Decimal, note string, pending map[uuid.UUID]int) (*Return, error) {
	if order.IsCancelled() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Cannot return items of a cancelled order")
	}
	if len(inputs) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Return requires at least one item")
	}
	if refundAmount.IsNegative() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidAmount, "Refund amount cannot be negative, got %s", refundAmount)
	}

	r := &Return{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(order.StoreID),
		OrderID:            order.ID,
		Status:             ReturnStatusRequested,
		Items:              make([]ReturnItem, 0, len(inputs)),
		RefundAmount:       order.Currency.Round(refundAmount),
		Note:               note,
	}

	requested := make(map[uuid.UUID]int, len(inputs))
	for _, in := range inputs {
		item := order.GetItem(in.OrderItemID)
		if item == nil {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Order item %s not found", in.OrderItemID)
		}
		if in.Quantity <= 0 {
			return nil, shared.NewDomainError(shared.CodeValidation, "Return quantity must be positive")
		}
		requested[item.ID] += in.Quantity
		returnable := item.ReturnableQuantity() - pending[item.ID]
		if requested[item.ID] > returnable {
			return nil, shared.NewDomainErrorf(shared.CodeOverReturn,
				"Cannot return %d units of %s: only %d returnable", requested[item.ID], item.Title, returnable)
		}
		r.Items = append(r.Items, ReturnItem{
			ID:          uuid.New(),
			ReturnID:    r.ID,
			OrderItemID: item.ID,
			Quantity:    in.Quantity,
			Reason:      in.Reason,
			Note:        in.Note,
			Restock:     in.Restock,
			LocationID:  in.LocationID,
		})
	}

	r.AddDomainEvent(NewReturnRequestedEvent(r))
	return r, nil
}

// Receive records the goods as back in hand. Returned quantities are added
// to the order and the restock requests for the ledger are returned.
func (r *Return) Receive(order *Order) ([]StockRequest, error) {
	if order.ID != r.OrderID {
		return nil, shared.NewDomainError(shared.CodeValidation, "Return belongs to another order")
	}
	if !r.Status.CanTransitionTo(ReturnStatusReceived) {
		return nil, shared.NewTransitionError("return_status", string(r.Status), string(ReturnStatusReceived))
	}

	snapshot := order.Clone()
	restocks := make([]StockRequest, 0, len(r.Items))
	for _, ri := range r.Items {
		if err := order.RecordReturn(ri.OrderItemID, ri.Quantity); err != nil {
			order.restore(snapshot)
			return nil, err
		}
		if !ri.Restock {
			continue
		}
		item := order.GetItem(ri.OrderItemID)
		location := item.LocationID
		if ri.LocationID != nil {
			location = *ri.LocationID
		}
		restocks = append(restocks, StockRequest{
			OrderItemID: item.ID,
			VariantID:   item.VariantID,
			LocationID:  location,
			Quantity:    ri.Quantity,
		})
	}

	now := time.Now()
	r.Status = ReturnStatusReceived
	r.ReceivedAt = &now
	r.UpdatedAt = now
	r.AddDomainEvent(NewReturnReceivedEvent(r, order))
	return restocks, nil
}

// RefundRequest builds the refund owed for this return, spread over its
// items by their sold value
func (r *Return) RefundRequest(order *Order) (RefundRequest, error) {
	weights := make([]decimal.Decimal, len(r.Items))
	for i, ri := range r.Items {
		weights[i] = order.UnitCredit(ri.OrderItemID).Mul(decimal.NewFromInt(int64(ri.Quantity)))
	}
	shares, err := allocate(r.RefundAmount, weights, order.Currency.Exponent())
	if err != nil {
		return RefundRequest{}, err
	}
	items := make([]RefundItem, len(r.Items))
	for i, ri := range r.Items {
		items[i] = RefundItem{OrderItemID: ri.OrderItemID, Quantity: ri.Quantity, Amount: shares[i]}
	}
	id := r.ID
	return RefundRequest{
		Amount:     r.RefundAmount,
		Reason:     "return",
		Note:       r.Note,
		Items:      items,
		SourceType: RefundSourceReturn,
		SourceID:   &id,
	}, nil
}

// NeedsRefund returns true if completing the return moves money
func (r *Return) NeedsRefund() bool {
	return r.RefundAmount.IsPositive()
}

// Complete closes a received return. A return with a refund amount needs the
// succeeded refund recorded on the order.
func (r *Return) Complete(refund *Refund) error {
	if !r.Status.CanTransitionTo(ReturnStatusCompleted) {
		return shared.NewTransitionError("return_status", string(r.Status), string(ReturnStatusCompleted))
	}
	if r.NeedsRefund() {
		if refund == nil || refund.Status != RefundStatusSucceeded {
			return shared.NewDomainError(shared.CodeInvalidState, "Return cannot complete without a successful refund")
		}
		if !refund.Amount.Equal(r.RefundAmount) {
			return shared.NewDomainErrorf(shared.CodeInvalidAmount,
				"Refund of %s does not match the agreed %s", refund.Amount, r.RefundAmount)
		}
		r.RefundID = &refund.ID
	}
	now := time.Now()
	r.Status = ReturnStatusCompleted
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.AddDomainEvent(NewReturnCompletedEvent(r))
	return nil
}

// Cancel withdraws the return. Units already received stay returned on the
// order; no money moves.
func (r *Return) Cancel() error {
	if !r.Status.CanTransitionTo(ReturnStatusCancelled) {
		return shared.NewTransitionError("return_status", string(r.Status), string(ReturnStatusCancelled))
	}
	now := time.Now()
	r.Status = ReturnStatusCancelled
	r.CancelledAt = &now
	r.UpdatedAt = now
	return nil
}

// Quantities returns the requested units per order item
func (r *Return) Quantities() map[uuid.UUID]int {
	q := make(map[uuid.UUID]int, len(r.Items))
	for _, ri := range r.Items {
		q[ri.OrderItemID] += ri.Quantity
	}
	return q
}

// ReturnValue returns what the returned units were sold for
func (r *Return) ReturnValue(order *Order) decimal.Decimal {
	total := decimal.Zero
	for _, ri := range r.Items {
		total = total.Add(order.UnitCredit(ri.OrderItemID).Mul(decimal.NewFromInt(int64(ri.Quantity))))
	}
	return order.Currency.Round(total)
}
