package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"go.uber.org/zap"
)

// RefundService returns money on orders
type RefundService struct {
	engine
	provider trade.PaymentProvider
}

// NewRefundService creates a new RefundService
func NewRefundService(scope TransactionScope, provider trade.PaymentProvider, settings Settings, logger *zap.Logger) *RefundService {
	return &RefundService{
		engine:   newEngine(scope, settings, logger),
		provider: provider,
	}
}

// Refund refunds part or all of what was paid on an order
func (s *RefundService) Refund(ctx context.Context, storeID, orderID uuid.UUID, req RefundOrderRequest) (*RefundResultResponse, error) {
	prepare := func(_ TransactionalRepositories, _ *trade.Order) (trade.RefundRequest, error) {
		return req.toDomain(), nil
	}
	order, refund, err := s.refund(ctx, s.provider, "refund.create", storeID, orderID, prepare, nil)
	if err != nil {
		return nil, err
	}
	return &RefundResultResponse{
		Order:  ToOrderResponse(order),
		Refund: ToRefundResponse(refund),
	}, nil
}

type (
	// refundPreparer builds the refund request from the current order
	refundPreparer func(repos TransactionalRepositories, order *trade.Order) (trade.RefundRequest, error)
	// refundSettler finishes the workflow that asked for a successful refund
	refundSettler func(tx *orderTx, refund *trade.Refund) error
)

// refund runs the refund protocol every money-returning workflow shares:
//
//  1. validate the request against the order in a read transaction
//  2. call the gateway outside any transaction, bounded by the payment timeout
//  3. record the outcome on the order, and let settle finish the workflow,
//     in one write transaction
//
// A declined or timed-out refund is recorded as a failed transaction and
// reported as GATEWAY_FAILURE; settle is not called for it.
func (e *engine) refund(ctx context.Context, provider trade.PaymentProvider, op string, storeID, orderID uuid.UUID, prepare refundPreparer, settle refundSettler) (*trade.Order, *trade.Refund, error) {
	var (
		req     trade.RefundRequest
		payment trade.PaymentRequest
	)
	err := e.read(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, storeID, orderID)
		if err != nil {
			return err
		}
		req, err = prepare(repos, order)
		if err != nil {
			return err
		}
		if err := order.ValidateRefund(req); err != nil {
			return err
		}
		payment = trade.PaymentRequest{
			OrderID:        order.ID,
			OrderNumber:    order.OrderNumber,
			Amount:         order.Currency.Round(req.Amount),
			Currency:       string(order.Currency),
			Reference:      gatewayReference(order),
			IdempotencyKey: refundKey(order, req),
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	outcome, _ := e.callGateway(ctx, op, provider.Refund, payment)

	var refund trade.Refund
	order, err := e.inOrder(ctx, op, storeID, orderID, func(tx *orderTx) error {
		r, err := tx.order.RecordRefund(req, outcome)
		if err != nil {
			return err
		}
		refund = *r
		if !outcome.Succeeded || settle == nil {
			return nil
		}
		return settle(tx, r)
	})
	if err != nil {
		if outcome.Succeeded {
			e.logger.Error("refund settled at gateway but could not be recorded",
				zap.String("operation", op),
				zap.String("order_id", orderID.String()),
				zap.String("amount", payment.Amount.String()),
				zap.String("gateway_reference", outcome.Reference),
				zap.Error(err),
			)
		}
		return nil, nil, err
	}
	if !outcome.Succeeded {
		return order, &refund, shared.NewDomainErrorf(shared.CodeGatewayFailure, "Refund of %s failed: %s", payment.Amount, outcome.Error)
	}

	e.logger.Info("refund recorded",
		zap.String("operation", op),
		zap.String("order_id", order.ID.String()),
		zap.String("refund_id", refund.ID.String()),
		zap.String("amount", refund.Amount.String()),
		zap.String("payment_status", order.PaymentStatus.String()),
	)
	return order, &refund, nil
}

// refundKey is stable across retries of the same refund attempt
func refundKey(order *trade.Order, req trade.RefundRequest) string {
	if req.SourceID != nil {
		return fmt.Sprintf("refund-%s-%s-%d", req.SourceType, *req.SourceID, len(order.Refunds))
	}
	return fmt.Sprintf("refund-%s-%d", order.ID, len(order.Refunds))
}
