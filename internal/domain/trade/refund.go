package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RefundStatus is the outcome of a refund
type RefundStatus string

const (
	RefundStatusSucceeded RefundStatus = "succeeded"
	RefundStatusFailed    RefundStatus = "failed"
)

// Refund sources
const (
	RefundSourceOrder    = "order"
	RefundSourceReturn   = "return"
	RefundSourceClaim    = "claim"
	RefundSourceExchange = "exchange"
)

// RefundItem attributes part of a refund to an order item
type RefundItem struct {
	ID          uuid.UUID
	RefundID    uuid.UUID
	OrderItemID uuid.UUID
	Quantity    int
	Amount      decimal.Decimal
}

// Refund is one reimbursement, full or partial
type Refund struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	Amount        decimal.Decimal
	Reason        string
	Note          string
	Status        RefundStatus
	Goodwill      bool
	SourceType    string
	SourceID      *uuid.UUID
	TransactionID uuid.UUID
	Items         []RefundItem
	CreatedAt     time.Time
}

// RefundRequest asks for money back on an order
type RefundRequest struct {
	Amount     decimal.Decimal
	Reason     string
	Note       string
	Goodwill   bool // allows exceeding the order's grand total
	Items      []RefundItem
	SourceType string
	SourceID   *uuid.UUID
}

// GatewayOutcome is the result of the refund call to the payment provider
type GatewayOutcome struct {
	Succeeded bool
	Reference string
	Error     string
}

// ValidateRefund checks a refund request against the order's money state
// without mutating it. Orchestrators call it before contacting the gateway.
func (o *Order) ValidateRefund(req RefundRequest) error {
	if !req.Amount.IsPositive() {
		return shared.NewDomainErrorf(shared.CodeInvalidAmount, "Refund amount must be positive, got %s", req.Amount)
	}
	amount := o.Currency.Round(req.Amount)
	if o.TotalRefunded.Add(amount).GreaterThan(o.TotalPaid) {
		return shared.NewDomainErrorf(shared.CodeOverRefund,
			"Refund of %s exceeds the refundable amount %s", amount, o.RefundableAmount())
	}
	if !req.Goodwill && o.SucceededRefundTotal().Add(amount).GreaterThan(o.GrandTotal) {
		return shared.NewDomainErrorf(shared.CodeOverRefund,
			"Refund of %s would exceed the order total %s", amount, o.GrandTotal)
	}

	itemsTotal := decimal.Zero
	for _, ri := range req.Items {
		item := o.GetItem(ri.OrderItemID)
		if item == nil {
			return shared.NewDomainErrorf(shared.CodeNotFound, "Order item %s not found", ri.OrderItemID)
		}
		if ri.Quantity < 0 || ri.Quantity > item.Quantity {
			return shared.NewDomainErrorf(shared.CodeValidation, "Invalid refund quantity %d for %s", ri.Quantity, item.Title)
		}
		if ri.Amount.IsNegative() {
			return shared.NewDomainError(shared.CodeInvalidAmount, "Refund item amount cannot be negative")
		}
		itemsTotal = itemsTotal.Add(ri.Amount)
	}
	if itemsTotal.GreaterThan(amount) {
		return shared.NewDomainErrorf(shared.CodeInvalidAmount,
			"Refund items total %s exceeds refund amount %s", itemsTotal, amount)
	}
	return nil
}

// RecordRefund records the gateway outcome of a refund: a Refund entry and a
// refund Transaction. A failed outcome is recorded too but moves no money.
func (o *Order) RecordRefund(req RefundRequest, outcome GatewayOutcome) (*Refund, error) {
	if outcome.Succeeded {
		if err := o.ValidateRefund(req); err != nil {
			return nil, err
		}
	} else if !req.Amount.IsPositive() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidAmount, "Refund amount must be positive, got %s", req.Amount)
	}

	txStatus := TransactionStatusSuccess
	status := RefundStatusSucceeded
	if !outcome.Succeeded {
		txStatus = TransactionStatusFailed
		status = RefundStatusFailed
	}
	tx, err := o.AddTransaction(TransactionInput{
		Type:             TransactionTypeRefund,
		Status:           txStatus,
		Amount:           req.Amount,
		GatewayReference: outcome.Reference,
		ErrorMessage:     outcome.Error,
	})
	if err != nil {
		return nil, err
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = RefundSourceOrder
	}
	r := Refund{
		ID:            uuid.New(),
		OrderID:       o.ID,
		Amount:        tx.Amount,
		Reason:        req.Reason,
		Note:          req.Note,
		Status:        status,
		Goodwill:      req.Goodwill,
		SourceType:    sourceType,
		SourceID:      req.SourceID,
		TransactionID: tx.ID,
		Items:         make([]RefundItem, 0, len(req.Items)),
		CreatedAt:     time.Now(),
	}
	for _, ri := range req.Items {
		ri.ID = uuid.New()
		ri.RefundID = r.ID
		r.Items = append(r.Items, ri)
	}
	o.Refunds = append(o.Refunds, r)
	return &o.Refunds[len(o.Refunds)-1], nil
}

// SucceededRefundTotal returns the sum of successful refunds
func (o *Order) SucceededRefundTotal() decimal.Decimal {
	total := decimal.Zero
	for _, r := range o.Refunds {
		if r.Status == RefundStatusSucceeded {
			total = total.Add(r.Amount)
		}
	}
	return total
}
