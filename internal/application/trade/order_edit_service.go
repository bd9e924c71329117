package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderEditService stages and applies changes to the lines of open orders
type OrderEditService struct {
	engine
}

// NewOrderEditService creates a new OrderEditService
func NewOrderEditService(scope TransactionScope, settings Settings, logger *zap.Logger) *OrderEditService {
	return &OrderEditService{engine: newEngine(scope, settings, logger)}
}

// OrderEditResult is an edit together with its order
type OrderEditResult struct {
	Order OrderResponse     `json:"order"`
	Edit  OrderEditResponse `json:"edit"`
}

// Create stages a set of changes. They are checked against a copy of the
// order; the order itself is untouched until the edit is confirmed.
func (s *OrderEditService) Create(ctx context.Context, storeID, orderID uuid.UUID, req CreateOrderEditRequest) (*OrderEditResponse, error) {
	changes := make([]trade.EditChange, len(req.Changes))
	for i, c := range req.Changes {
		change, err := c.toDomain()
		if err != nil {
			return nil, err
		}
		changes[i] = change
	}

	var edit *trade.OrderEdit
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, storeID, orderID)
		if err != nil {
			return err
		}
		e, err := trade.NewOrderEdit(order, changes, req.Note, actorRef(ctx))
		if err != nil {
			return err
		}
		if err := repos.OrderEditRepo().Save(ctx, e); err != nil {
			return err
		}
		edit = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderEditResponse(edit)
	return &resp, nil
}

// Request fixes the price difference of the edit for the customer to accept
func (s *OrderEditService) Request(ctx context.Context, storeID, editID uuid.UUID) (*OrderEditResult, error) {
	return s.step(ctx, "order_edit.request", storeID, editID, func(tx *orderTx, e *trade.OrderEdit) error {
		return e.Request(tx.order)
	})
}

// Confirm applies a requested edit to the order. Stock of removed or reduced
// lines is released before stock for added or increased lines is reserved.
func (s *OrderEditService) Confirm(ctx context.Context, storeID, editID uuid.UUID) (*OrderEditResult, error) {
	result, err := s.step(ctx, "order_edit.confirm", storeID, editID, func(tx *orderTx, e *trade.OrderEdit) error {
		reserves, releases, err := e.Confirm(tx.order)
		if err != nil {
			return err
		}
		ref := inventory.NewReference(inventory.ReferenceOrderEdit, e.ID)
		if err := tx.release(releases, ref); err != nil {
			return err
		}
		return tx.reserve(reserves, ref)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("order edit confirmed",
		zap.String("order_id", result.Order.ID.String()),
		zap.String("edit_id", editID.String()),
		zap.String("difference", result.Edit.DifferenceAmount.String()),
		zap.String("grand_total", result.Order.GrandTotal.String()),
	)
	return result, nil
}

// Decline rejects a requested edit
func (s *OrderEditService) Decline(ctx context.Context, storeID, editID uuid.UUID, req DeclineOrderEditRequest) (*OrderEditResponse, error) {
	return s.update(ctx, "order_edit.decline", storeID, editID, func(e *trade.OrderEdit) error {
		return e.Decline(req.Reason)
	})
}

// Cancel withdraws an edit that is not confirmed yet
func (s *OrderEditService) Cancel(ctx context.Context, storeID, editID uuid.UUID) (*OrderEditResponse, error) {
	return s.update(ctx, "order_edit.cancel", storeID, editID, func(e *trade.OrderEdit) error {
		return e.Cancel()
	})
}

// Get retrieves an order edit by ID
func (s *OrderEditService) Get(ctx context.Context, storeID, editID uuid.UUID) (*OrderEditResponse, error) {
	e, err := s.get(ctx, storeID, editID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderEditResponse(e)
	return &resp, nil
}

// ListByOrder lists the edits of an order
func (s *OrderEditService) ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]OrderEditResponse, error) {
	var edits []trade.OrderEdit
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		var err error
		edits, err = repos.OrderEditRepo().FindByOrder(ctx, storeID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]OrderEditResponse, len(edits))
	for i := range edits {
		out[i] = ToOrderEditResponse(&edits[i])
	}
	return out, nil
}

// step runs fn on an edit inside its order's transaction
func (s *OrderEditService) step(ctx context.Context, op string, storeID, editID uuid.UUID, fn func(tx *orderTx, e *trade.OrderEdit) error) (*OrderEditResult, error) {
	current, err := s.get(ctx, storeID, editID)
	if err != nil {
		return nil, err
	}
	var edit *trade.OrderEdit
	order, err := s.inOrder(ctx, op, storeID, current.OrderID, func(tx *orderTx) error {
		e, err := tx.repos.OrderEditRepo().FindByID(ctx, storeID, editID)
		if err != nil {
			return err
		}
		if err := fn(tx, e); err != nil {
			return err
		}
		if err := tx.repos.OrderEditRepo().SaveWithLock(ctx, e); err != nil {
			return err
		}
		tx.track(e)
		edit = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &OrderEditResult{Order: ToOrderResponse(order), Edit: ToOrderEditResponse(edit)}, nil
}

// update changes only the edit itself
func (s *OrderEditService) update(ctx context.Context, op string, storeID, editID uuid.UUID, fn func(e *trade.OrderEdit) error) (*OrderEditResponse, error) {
	var edit *trade.OrderEdit
	err := s.retry(ctx, op, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			e, err := repos.OrderEditRepo().FindByID(ctx, storeID, editID)
			if err != nil {
				return err
			}
			if err := fn(e); err != nil {
				return err
			}
			if err := repos.OrderEditRepo().SaveWithLock(ctx, e); err != nil {
				return err
			}
			edit = e
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderEditResponse(edit)
	return &resp, nil
}

func (s *OrderEditService) get(ctx context.Context, storeID, editID uuid.UUID) (*trade.OrderEdit, error) {
	var e *trade.OrderEdit
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		var err error
		e, err = repos.OrderEditRepo().FindByID(ctx, storeID, editID)
		return err
	})
	return e, err
}
