package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"go.uber.org/zap"
)

// ReturnService runs the return workflow: request, receive, complete.
// Every step locks the order so returns of one order never overlap.
type ReturnService struct {
	engine
	provider trade.PaymentProvider
}

// NewReturnService creates a new ReturnService
func NewReturnService(scope TransactionScope, provider trade.PaymentProvider, settings Settings, logger *zap.Logger) *ReturnService {
	return &ReturnService{
		engine:   newEngine(scope, settings, logger),
		provider: provider,
	}
}

// ReturnResult is a return together with its order
type ReturnResult struct {
	Order  OrderResponse  `json:"order"`
	Return ReturnResponse `json:"return"`
}

// Request opens a return for fulfilled units of an order
func (s *ReturnService) Request(ctx context.Context, storeID, orderID uuid.UUID, req CreateReturnRequest) (*ReturnResult, error) {
	var ret *trade.Return
	order, err := s.inOrder(ctx, "return.request", storeID, orderID, func(tx *orderTx) error {
		pending, err := tx.repos.ReturnRepo().PendingQuantities(ctx, orderID)
		if err != nil {
			return err
		}
		r, err := trade.NewReturn(tx.order, req.inputs(), req.RefundAmount, req.Note, pending)
		if err != nil {
			return err
		}
		if err := tx.repos.ReturnRepo().Save(ctx, r); err != nil {
			return err
		}
		tx.track(r)
		ret = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ReturnResult{Order: ToOrderResponse(order), Return: ToReturnResponse(ret)}, nil
}

// Receive records the returned goods as back in hand and restocks the lines
// marked for restock
func (s *ReturnService) Receive(ctx context.Context, storeID, returnID uuid.UUID) (*ReturnResult, error) {
	orderID, err := s.orderOf(ctx, storeID, returnID)
	if err != nil {
		return nil, err
	}

	var ret *trade.Return
	order, err := s.inOrder(ctx, "return.receive", storeID, orderID, func(tx *orderTx) error {
		r, err := tx.repos.ReturnRepo().FindByID(ctx, storeID, returnID)
		if err != nil {
			return err
		}
		restocks, err := r.Receive(tx.order)
		if err != nil {
			return err
		}
		if err := tx.restock(restocks, "return received", inventory.NewReference(inventory.ReferenceReturn, r.ID)); err != nil {
			return err
		}
		if err := tx.repos.ReturnRepo().SaveWithLock(ctx, r); err != nil {
			return err
		}
		tx.track(r)
		ret = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ReturnResult{Order: ToOrderResponse(order), Return: ToReturnResponse(ret)}, nil
}

// Complete closes a received return, refunding the agreed amount first
func (s *ReturnService) Complete(ctx context.Context, storeID, returnID uuid.UUID) (*ReturnResult, error) {
	current, err := s.get(ctx, storeID, returnID)
	if err != nil {
		return nil, err
	}
	if current.Status != trade.ReturnStatusReceived {
		return nil, shared.NewTransitionError("return_status", string(current.Status), string(trade.ReturnStatusCompleted))
	}

	var ret *trade.Return
	complete := func(tx *orderTx, refund *trade.Refund) error {
		r, err := tx.repos.ReturnRepo().FindByID(ctx, storeID, returnID)
		if err != nil {
			return err
		}
		if err := r.Complete(refund); err != nil {
			return err
		}
		if err := tx.repos.ReturnRepo().SaveWithLock(ctx, r); err != nil {
			return err
		}
		tx.track(r)
		ret = r
		return nil
	}

	var order *trade.Order
	if current.NeedsRefund() {
		prepare := func(repos TransactionalRepositories, o *trade.Order) (trade.RefundRequest, error) {
			r, err := repos.ReturnRepo().FindByID(ctx, storeID, returnID)
			if err != nil {
				return trade.RefundRequest{}, err
			}
			if r.Status != trade.ReturnStatusReceived {
				return trade.RefundRequest{}, shared.NewTransitionError("return_status", string(r.Status), string(trade.ReturnStatusCompleted))
			}
			return r.RefundRequest(o)
		}
		order, _, err = s.refund(ctx, s.provider, "return.complete", storeID, current.OrderID, prepare, complete)
	} else {
		order, err = s.inOrder(ctx, "return.complete", storeID, current.OrderID, func(tx *orderTx) error {
			return complete(tx, nil)
		})
	}
	if err != nil {
		return nil, err
	}
	return &ReturnResult{Order: ToOrderResponse(order), Return: ToReturnResponse(ret)}, nil
}

// Cancel withdraws a return that is not completed yet
func (s *ReturnService) Cancel(ctx context.Context, storeID, returnID uuid.UUID) (*ReturnResponse, error) {
	orderID, err := s.orderOf(ctx, storeID, returnID)
	if err != nil {
		return nil, err
	}
	var ret *trade.Return
	_, err = s.inOrder(ctx, "return.cancel", storeID, orderID, func(tx *orderTx) error {
		r, err := tx.repos.ReturnRepo().FindByID(ctx, storeID, returnID)
		if err != nil {
			return err
		}
		if r.ExchangeID != nil {
			return shared.NewDomainError(shared.CodeInvalidState, "Return is part of an exchange; cancel the exchange instead")
		}
		if err := r.Cancel(); err != nil {
			return err
		}
		if err := tx.repos.ReturnRepo().SaveWithLock(ctx, r); err != nil {
			return err
		}
		ret = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// Get retrieves a return by ID
func (s *ReturnService) Get(ctx context.Context, storeID, returnID uuid.UUID) (*ReturnResponse, error) {
	ret, err := s.get(ctx, storeID, returnID)
	if err != nil {
		return nil, err
	}
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// ListByOrder lists the returns of an order
func (s *ReturnService) ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]ReturnResponse, error) {
	var returns []trade.Return
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		var err error
		returns, err = repos.ReturnRepo().FindByOrder(ctx, storeID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]ReturnResponse, len(returns))
	for i := range returns {
		out[i] = ToReturnResponse(&returns[i])
	}
	return out, nil
}

func (s *ReturnService) get(ctx context.Context, storeID, returnID uuid.UUID) (*trade.Return, error) {
	var ret *trade.Return
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		var err error
		ret, err = repos.ReturnRepo().FindByID(ctx, storeID, returnID)
		return err
	})
	return ret, err
}

func (s *ReturnService) orderOf(ctx context.Context, storeID, returnID uuid.UUID) (uuid.UUID, error) {
	ret, err := s.get(ctx, storeID, returnID)
	if err != nil {
		return uuid.Nil, err
	}
	return ret.OrderID, nil
}
