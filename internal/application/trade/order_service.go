package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderService handles order lifecycle operations
type OrderService struct {
	engine
}

// NewOrderService creates a new OrderService
func NewOrderService(scope TransactionScope, settings Settings, logger *zap.Logger) *OrderService {
	return &OrderService{engine: newEngine(scope, settings, logger)}
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, storeID, orderID uuid.UUID) (*OrderResponse, error) {
	var order *trade.Order
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, storeID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetByOrderNumber retrieves an order by its number
func (s *OrderService) GetByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (*OrderResponse, error) {
	var order *trade.Order
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByOrderNumber(ctx, storeID, orderNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List retrieves a paginated list of orders
func (s *OrderService) List(ctx context.Context, storeID uuid.UUID, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	// Set defaults
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := trade.OrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		StoreID:    storeID,
		CustomerID: filter.CustomerID,
		From:       filter.From,
		To:         filter.To,
	}
	if filter.Status != "" {
		status := trade.OrderStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainErrorf(shared.CodeValidation, "Unknown order status %q", filter.Status)
		}
		domainFilter.Status = &status
	}
	if filter.PaymentStatus != "" {
		status := trade.PaymentStatus(filter.PaymentStatus)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainErrorf(shared.CodeValidation, "Unknown payment status %q", filter.PaymentStatus)
		}
		domainFilter.PaymentStatus = &status
	}
	if filter.FulfillmentStatus != "" {
		status := trade.FulfillmentStatus(filter.FulfillmentStatus)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainErrorf(shared.CodeValidation, "Unknown fulfillment status %q", filter.FulfillmentStatus)
		}
		domainFilter.FulfillmentStatus = &status
	}

	var (
		orders []trade.Order
		total  int64
	)
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		var err error
		orders, total, err = repos.OrderRepo().FindAll(ctx, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToOrderListItemResponses(orders), total, nil
}

// Confirm moves a pending order to confirmed
func (s *OrderService) Confirm(ctx context.Context, storeID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.inOrder(ctx, "order.confirm", storeID, orderID, func(tx *orderTx) error {
		return tx.order.Confirm("confirmed")
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Complete closes a fully fulfilled order
func (s *OrderService) Complete(ctx context.Context, storeID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.inOrder(ctx, "order.complete", storeID, orderID, func(tx *orderTx) error {
		return tx.order.Complete("completed")
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Cancel cancels an order and releases its reservations in the same
// transaction. Money already collected stays until explicitly refunded.
func (s *OrderService) Cancel(ctx context.Context, storeID, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	order, err := s.inOrder(ctx, "order.cancel", storeID, orderID, func(tx *orderTx) error {
		c, err := tx.order.Cancel(req.Reason)
		if err != nil {
			return err
		}
		ref := orderRef(tx.order.ID)
		if err := tx.restock(c.Restocks, "order cancelled", ref); err != nil {
			return err
		}
		return tx.release(c.Releases, ref)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_status", order.PaymentStatus.String()),
		zap.String("reason", req.Reason),
	)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// AddNote replaces the internal note of an order
func (s *OrderService) AddNote(ctx context.Context, storeID, orderID uuid.UUID, req AddNoteRequest) (*OrderResponse, error) {
	order, err := s.inOrder(ctx, "order.note", storeID, orderID, func(tx *orderTx) error {
		tx.order.AddNote(req.Note)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}
