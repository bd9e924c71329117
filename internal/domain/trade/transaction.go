package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of payment-gateway event
type TransactionType string

const (
	TransactionTypeAuthorization TransactionType = "authorization"
	TransactionTypeCapture       TransactionType = "capture"
	TransactionTypeRefund        TransactionType = "refund"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeAuthorization, TransactionTypeCapture, TransactionTypeRefund:
		return true
	}
	return false
}

// TransactionStatus is the outcome of a gateway call
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// IsValid checks if the transaction status is valid
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusSuccess, TransactionStatusFailed:
		return true
	}
	return false
}

// Transaction is one append-only payment-gateway event on an order
type Transaction struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	Type             TransactionType
	Status           TransactionStatus
	Amount           decimal.Decimal
	Currency         string
	GatewayReference string
	ErrorMessage     string
	CreatedAt        time.Time
}

// IsSuccessful returns true if the gateway reported success
func (t *Transaction) IsSuccessful() bool {
	return t.Status == TransactionStatusSuccess
}

// TransactionInput is what the orchestrator learned from the gateway
type TransactionInput struct {
	Type             TransactionType
	Status           TransactionStatus
	Amount           decimal.Decimal
	GatewayReference string
	ErrorMessage     string
}

// AddTransaction appends a gateway event and re-derives the payment status.
//
// A successful capture raises TotalPaid, a successful refund raises
// TotalRefunded. GrandTotal is never touched: refunds reduce what was paid,
// not what was owed. Validation happens before any mutation, so a rejected
// transaction leaves no trace.
func (o *Order) AddTransaction(in TransactionInput) (*Transaction, error) {
	if !in.Type.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Unknown transaction type %q", in.Type)
	}
	if !in.Status.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Unknown transaction status %q", in.Status)
	}
	if !in.Amount.IsPositive() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidAmount, "Transaction amount must be positive, got %s", in.Amount)
	}
	amount := o.Currency.Round(in.Amount)

	paid := o.TotalPaid
	refunded := o.TotalRefunded
	if in.Status == TransactionStatusSuccess {
		switch in.Type {
		case TransactionTypeCapture:
			paid = paid.Add(amount)
		case TransactionTypeRefund:
			refunded = refunded.Add(amount)
			if refunded.GreaterThan(paid) {
				return nil, shared.NewDomainErrorf(shared.CodeOverRefund,
					"Refund of %s exceeds the refundable amount %s", amount, paid.Sub(o.TotalRefunded))
			}
		}
	}

	tx := Transaction{
		ID:               uuid.New(),
		OrderID:          o.ID,
		Type:             in.Type,
		Status:           in.Status,
		Amount:           amount,
		Currency:         string(o.Currency),
		GatewayReference: in.GatewayReference,
		ErrorMessage:     in.ErrorMessage,
		CreatedAt:        time.Now(),
	}

	history := append(append([]Transaction(nil), o.Transactions...), tx)
	derived := derivePaymentStatus(paid, refunded, history)
	if !o.PaymentStatus.CanTransitionTo(derived) {
		return nil, shared.NewTransitionError(FieldPaymentStatus, o.PaymentStatus.String(), derived.String())
	}

	o.Transactions = append(o.Transactions, tx)
	o.TotalPaid = paid
	o.TotalRefunded = refunded
	if derived != o.PaymentStatus {
		o.recordHistory(FieldPaymentStatus, o.PaymentStatus.String(), derived.String(), string(in.Type))
		o.PaymentStatus = derived
	}
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(newPaymentEvent(o, &tx))
	return &o.Transactions[len(o.Transactions)-1], nil
}

// derivePaymentStatus computes the payment status from money totals and,
// while nothing has been captured, from the last settled authorization or
// capture attempt.
func derivePaymentStatus(paid, refunded decimal.Decimal, txs []Transaction) PaymentStatus {
	switch {
	case paid.IsPositive() && refunded.IsZero():
		return PaymentStatusPaid
	case paid.IsPositive() && refunded.LessThan(paid):
		return PaymentStatusPartiallyRefunded
	case paid.IsPositive():
		return PaymentStatusRefunded
	}

	authorized := false
	status := PaymentStatusPending
	for _, tx := range txs {
		if tx.Type == TransactionTypeRefund || tx.Status == TransactionStatusPending {
			continue
		}
		switch {
		case tx.Status == TransactionStatusSuccess && tx.Type == TransactionTypeAuthorization:
			authorized = true
			status = PaymentStatusAuthorized
		case tx.Status == TransactionStatusFailed && !authorized:
			status = PaymentStatusFailed
		}
	}
	return status
}

// CapturedAmount returns the sum of successful captures
func (o *Order) CapturedAmount() decimal.Decimal {
	return o.TotalPaid
}

// AuthorizedAmount returns the sum of successful authorizations not yet captured
func (o *Order) AuthorizedAmount() decimal.Decimal {
	authorized := decimal.Zero
	for _, tx := range o.Transactions {
		if tx.Type == TransactionTypeAuthorization && tx.IsSuccessful() {
			authorized = authorized.Add(tx.Amount)
		}
	}
	remaining := authorized.Sub(o.TotalPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
