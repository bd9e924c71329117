package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// gatewayPendingStatus is the gateway status of a payment waiting on the customer
const gatewayPendingStatus = "pending"

// PaymentService records payments on orders. The gateway is called outside
// any transaction; its answer is recorded as a Transaction afterwards.
type PaymentService struct {
	engine
	provider trade.PaymentProvider
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope TransactionScope, provider trade.PaymentProvider, settings Settings, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		engine:   newEngine(scope, settings, logger),
		provider: provider,
	}
}

// plan reads the order and builds the gateway request for it
func (s *PaymentService) plan(ctx context.Context, storeID, orderID uuid.UUID, amount *decimal.Decimal, returnURL, kind string) (*trade.PaymentRequest, error) {
	var plan *trade.PaymentRequest
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, storeID, orderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot take payment for a %s order", order.Status)
		}
		due := order.GrandTotal.Sub(order.TotalPaid)
		if amount != nil {
			due = order.Currency.Round(*amount)
		}
		if !due.IsPositive() {
			return shared.NewDomainErrorf(shared.CodeInvalidAmount, "Nothing to %s on order %s", kind, order.OrderNumber)
		}
		plan = &trade.PaymentRequest{
			OrderID:        order.ID,
			OrderNumber:    order.OrderNumber,
			Amount:         due,
			Currency:       string(order.Currency),
			Reference:      gatewayReference(order),
			IdempotencyKey: fmt.Sprintf("%s-%s-%d", kind, order.ID, len(order.Transactions)),
			ReturnURL:      returnURL,
		}
		return nil
	})
	return plan, err
}

// Authorize asks the gateway to authorize what is still owed on the order
func (s *PaymentService) Authorize(ctx context.Context, storeID, orderID uuid.UUID, req AuthorizePaymentRequest) (*PaymentResponse, error) {
	plan, err := s.plan(ctx, storeID, orderID, nil, req.ReturnURL, "authorize")
	if err != nil {
		return nil, err
	}
	outcome, result := s.callGateway(ctx, "payment.authorize", s.provider.CreatePayment, *plan)

	status := trade.TransactionStatusFailed
	redirect := ""
	if outcome.Succeeded {
		status = trade.TransactionStatusSuccess
		if result != nil && result.Status == gatewayPendingStatus {
			status = trade.TransactionStatusPending
			redirect = result.RedirectURL
		}
	}
	return s.record(ctx, storeID, orderID, "payment.authorize", trade.TransactionInput{
		Type:             trade.TransactionTypeAuthorization,
		Status:           status,
		Amount:           plan.Amount,
		GatewayReference: outcome.Reference,
		ErrorMessage:     outcome.Error,
	}, redirect)
}

// Capture captures an authorized payment. Without an amount the rest of the
// grand total is captured.
func (s *PaymentService) Capture(ctx context.Context, storeID, orderID uuid.UUID, req CapturePaymentRequest) (*PaymentResponse, error) {
	plan, err := s.plan(ctx, storeID, orderID, req.Amount, "", "capture")
	if err != nil {
		return nil, err
	}
	outcome, _ := s.callGateway(ctx, "payment.capture", s.provider.Capture, *plan)

	status := trade.TransactionStatusFailed
	if outcome.Succeeded {
		status = trade.TransactionStatusSuccess
	}
	return s.record(ctx, storeID, orderID, "payment.capture", trade.TransactionInput{
		Type:             trade.TransactionTypeCapture,
		Status:           status,
		Amount:           plan.Amount,
		GatewayReference: outcome.Reference,
		ErrorMessage:     outcome.Error,
	}, "")
}

// RecordPayment records a gateway notification that arrived out of band,
// such as a webhook settling a pending authorization
func (s *PaymentService) RecordPayment(ctx context.Context, storeID, orderID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	return s.record(ctx, storeID, orderID, "payment.record", trade.TransactionInput{
		Type:             trade.TransactionType(req.Type),
		Status:           trade.TransactionStatus(req.Status),
		Amount:           req.Amount,
		GatewayReference: req.GatewayReference,
		ErrorMessage:     req.ErrorMessage,
	}, "")
}

func (s *PaymentService) record(ctx context.Context, storeID, orderID uuid.UUID, op string, in trade.TransactionInput, redirect string) (*PaymentResponse, error) {
	if in.Type == trade.TransactionTypeRefund {
		return nil, shared.NewDomainError(shared.CodeValidation, "Refunds go through the refund service")
	}
	order, err := s.inOrder(ctx, op, storeID, orderID, func(tx *orderTx) error {
		if _, err := tx.order.AddTransaction(in); err != nil {
			return err
		}
		if in.Status == trade.TransactionStatusSuccess && s.settings.AutoConfirmOnPayment && tx.order.IsPending() {
			return tx.order.Confirm(fmt.Sprintf("payment %s", in.Type))
		}
		return nil
	})
	if err != nil {
		if in.Status == trade.TransactionStatusSuccess {
			s.logger.Error("payment succeeded at gateway but could not be recorded",
				zap.String("order_id", orderID.String()),
				zap.String("type", string(in.Type)),
				zap.String("gateway_reference", in.GatewayReference),
				zap.Error(err),
			)
		}
		return nil, err
	}

	resp := &PaymentResponse{
		Order:       ToOrderResponse(order),
		Succeeded:   in.Status != trade.TransactionStatusFailed,
		RedirectURL: redirect,
		Error:       in.ErrorMessage,
	}
	return resp, nil
}
