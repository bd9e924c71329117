package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"go.uber.org/zap"
)

// ExchangeService swaps returned goods for new ones and settles the price
// difference
type ExchangeService struct {
	engine
	provider trade.PaymentProvider
}

// NewExchangeService creates a new ExchangeService
func NewExchangeService(scope TransactionScope, provider trade.PaymentProvider, settings Settings, logger *zap.Logger) *ExchangeService {
	return &ExchangeService{
		engine:   newEngine(scope, settings, logger),
		provider: provider,
	}
}

// ExchangeResult is an exchange together with its order
type ExchangeResult struct {
	Order    OrderResponse    `json:"order"`
	Exchange ExchangeResponse `json:"exchange"`
}

// Create prices an exchange against the order. The linked return, if any,
// is credited at what its units were sold for.
func (s *ExchangeService) Create(ctx context.Context, storeID, orderID uuid.UUID, req CreateExchangeRequest) (*ExchangeResult, error) {
	var exchange *trade.Exchange
	order, err := s.inOrder(ctx, "exchange.create", storeID, orderID, func(tx *orderTx) error {
		var ret *trade.Return
		if req.ReturnID != nil {
			r, err := tx.repos.ReturnRepo().FindByID(ctx, storeID, *req.ReturnID)
			if err != nil {
				return err
			}
			if r.ExchangeID != nil {
				return shared.NewDomainError(shared.CodeInvalidState, "Return is already part of an exchange")
			}
			ret = r
		}
		e, err := trade.NewExchange(tx.order, toLineInputs(req.AdditionalItems), ret, req.Note)
		if err != nil {
			return err
		}
		if err := tx.repos.ExchangeRepo().Save(ctx, e); err != nil {
			return err
		}
		if ret != nil {
			if err := tx.repos.ReturnRepo().SaveWithLock(ctx, ret); err != nil {
				return err
			}
		}
		tx.track(e)
		exchange = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ExchangeResult{Order: ToOrderResponse(order), Exchange: ToExchangeResponse(exchange)}, nil
}

// Process starts the exchange and reserves stock for the additional items
func (s *ExchangeService) Process(ctx context.Context, storeID, exchangeID uuid.UUID) (*ExchangeResult, error) {
	return s.step(ctx, "exchange.process", storeID, exchangeID, func(tx *orderTx, e *trade.Exchange) error {
		reserves, err := e.Process()
		if err != nil {
			return err
		}
		return tx.reserve(reserves, inventory.NewReference(inventory.ReferenceExchange, e.ID))
	})
}

// Pay captures a positive difference from the customer
func (s *ExchangeService) Pay(ctx context.Context, storeID, exchangeID uuid.UUID) (*ExchangeResult, error) {
	var payment trade.PaymentRequest
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		e, err := repos.ExchangeRepo().FindByID(ctx, storeID, exchangeID)
		if err != nil {
			return err
		}
		if e.Status != trade.ExchangeStatusProcessing {
			return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot take payment for a %s exchange", e.Status)
		}
		if e.PaymentStatus == trade.ExchangePaymentPaid {
			return shared.NewDomainError(shared.CodeInvalidState, "Exchange difference already paid")
		}
		if !e.DifferenceAmount.IsPositive() {
			return shared.NewDomainError(shared.CodeInvalidAmount, "Exchange has no difference to pay")
		}
		order, err := repos.OrderRepo().FindByID(ctx, storeID, e.OrderID)
		if err != nil {
			return err
		}
		payment = trade.PaymentRequest{
			OrderID:        order.ID,
			OrderNumber:    order.OrderNumber,
			Amount:         e.DifferenceAmount,
			Currency:       string(order.Currency),
			Reference:      gatewayReference(order),
			IdempotencyKey: fmt.Sprintf("exchange-%s", e.ID),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome, _ := s.callGateway(ctx, "exchange.pay", s.provider.Capture, payment)
	if !outcome.Succeeded {
		// the failed attempt is kept on the order's payment history
		_, err := s.inOrder(ctx, "exchange.pay", storeID, payment.OrderID, func(tx *orderTx) error {
			_, err := tx.order.AddTransaction(trade.TransactionInput{
				Type:             trade.TransactionTypeCapture,
				Status:           trade.TransactionStatusFailed,
				Amount:           payment.Amount,
				GatewayReference: outcome.Reference,
				ErrorMessage:     outcome.Error,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		return nil, shared.NewDomainErrorf(shared.CodeGatewayFailure, "Exchange payment of %s failed: %s", payment.Amount, outcome.Error)
	}

	result, err := s.step(ctx, "exchange.pay", storeID, exchangeID, func(tx *orderTx, e *trade.Exchange) error {
		_, err := e.MarkPaid(tx.order, outcome.Reference)
		return err
	})
	if err != nil {
		s.logger.Error("exchange payment captured at gateway but could not be recorded",
			zap.String("exchange_id", exchangeID.String()),
			zap.String("gateway_reference", outcome.Reference),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

// Complete adds the additional items to the order and closes the linked
// return. A negative difference is refunded first.
func (s *ExchangeService) Complete(ctx context.Context, storeID, exchangeID uuid.UUID) (*ExchangeResult, error) {
	current, err := s.get(ctx, storeID, exchangeID)
	if err != nil {
		return nil, err
	}

	var exchange *trade.Exchange
	complete := func(tx *orderTx, refund *trade.Refund) error {
		e, err := tx.repos.ExchangeRepo().FindByID(ctx, storeID, exchangeID)
		if err != nil {
			return err
		}
		var ret *trade.Return
		if e.ReturnID != nil {
			if ret, err = tx.repos.ReturnRepo().FindByID(ctx, storeID, *e.ReturnID); err != nil {
				return err
			}
		}
		wasCompleted := ret != nil && ret.Status == trade.ReturnStatusCompleted
		if err := e.Complete(tx.order, ret, refund); err != nil {
			return err
		}
		if ret != nil && !wasCompleted {
			if err := tx.repos.ReturnRepo().SaveWithLock(ctx, ret); err != nil {
				return err
			}
			tx.track(ret)
		}
		if err := tx.repos.ExchangeRepo().SaveWithLock(ctx, e); err != nil {
			return err
		}
		tx.track(e)
		exchange = e
		return nil
	}

	var order *trade.Order
	if current.OwesCustomer() && current.Status == trade.ExchangeStatusProcessing {
		// the gateway is only called when completion is known to go through
		prepare := func(repos TransactionalRepositories, order *trade.Order) (trade.RefundRequest, error) {
			e, err := repos.ExchangeRepo().FindByID(ctx, storeID, exchangeID)
			if err != nil {
				return trade.RefundRequest{}, err
			}
			var ret *trade.Return
			if e.ReturnID != nil {
				if ret, err = repos.ReturnRepo().FindByID(ctx, storeID, *e.ReturnID); err != nil {
					return trade.RefundRequest{}, err
				}
			}
			if err := e.CheckCompletion(order, ret); err != nil {
				return trade.RefundRequest{}, err
			}
			return e.RefundRequest(), nil
		}
		order, _, err = s.refund(ctx, s.provider, "exchange.complete", storeID, current.OrderID, prepare, complete)
	} else {
		order, err = s.inOrder(ctx, "exchange.complete", storeID, current.OrderID, func(tx *orderTx) error {
			return complete(tx, nil)
		})
	}
	if err != nil {
		return nil, err
	}
	return &ExchangeResult{Order: ToOrderResponse(order), Exchange: ToExchangeResponse(exchange)}, nil
}

// Cancel abandons the exchange and releases its reservations. The linked
// return is detached and can be completed or cancelled on its own.
func (s *ExchangeService) Cancel(ctx context.Context, storeID, exchangeID uuid.UUID) (*ExchangeResult, error) {
	return s.step(ctx, "exchange.cancel", storeID, exchangeID, func(tx *orderTx, e *trade.Exchange) error {
		releases, err := e.Cancel()
		if err != nil {
			return err
		}
		if err := tx.release(releases, inventory.NewReference(inventory.ReferenceExchange, e.ID)); err != nil {
			return err
		}
		if e.ReturnID == nil {
			return nil
		}
		ret, err := tx.repos.ReturnRepo().FindByID(ctx, storeID, *e.ReturnID)
		if err != nil {
			return err
		}
		ret.ExchangeID = nil
		return tx.repos.ReturnRepo().SaveWithLock(ctx, ret)
	})
}

// Get retrieves an exchange by ID
func (s *ExchangeService) Get(ctx context.Context, storeID, exchangeID uuid.UUID) (*ExchangeResponse, error) {
	e, err := s.get(ctx, storeID, exchangeID)
	if err != nil {
		return nil, err
	}
	resp := ToExchangeResponse(e)
	return &resp, nil
}

// ListByOrder lists the exchanges of an order
func (s *ExchangeService) ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]ExchangeResponse, error) {
	var exchanges []trade.Exchange
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		var err error
		exchanges, err = repos.ExchangeRepo().FindByOrder(ctx, storeID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]ExchangeResponse, len(exchanges))
	for i := range exchanges {
		out[i] = ToExchangeResponse(&exchanges[i])
	}
	return out, nil
}

// step runs fn on an exchange inside its order's transaction and saves both
func (s *ExchangeService) step(ctx context.Context, op string, storeID, exchangeID uuid.UUID, fn func(tx *orderTx, e *trade.Exchange) error) (*ExchangeResult, error) {
	current, err := s.get(ctx, storeID, exchangeID)
	if err != nil {
		return nil, err
	}
	var exchange *trade.Exchange
	order, err := s.inOrder(ctx, op, storeID, current.OrderID, func(tx *orderTx) error {
		e, err := tx.repos.ExchangeRepo().FindByID(ctx, storeID, exchangeID)
		if err != nil {
			return err
		}
		if err := fn(tx, e); err != nil {
			return err
		}
		if err := tx.repos.ExchangeRepo().SaveWithLock(ctx, e); err != nil {
			return err
		}
		tx.track(e)
		exchange = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ExchangeResult{Order: ToOrderResponse(order), Exchange: ToExchangeResponse(exchange)}, nil
}

func (s *ExchangeService) get(ctx context.Context, storeID, exchangeID uuid.UUID) (*trade.Exchange, error) {
	var e *trade.Exchange
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		var err error
		e, err = repos.ExchangeRepo().FindByID(ctx, storeID, exchangeID)
		return err
	})
	return e, err
}
