package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"go.uber.org/zap"
)

// FulfillmentService ships orders. Shipping consumes reserved stock in the
// same transaction that records the fulfillment.
type FulfillmentService struct {
	engine
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(scope TransactionScope, settings Settings, logger *zap.Logger) *FulfillmentService {
	return &FulfillmentService{engine: newEngine(scope, settings, logger)}
}

// FulfillmentResult is the order after a fulfillment step
type FulfillmentResult struct {
	Order       OrderResponse       `json:"order"`
	Fulfillment FulfillmentResponse `json:"fulfillment"`
}

// Create records a fulfillment for some of the order's units and consumes
// their reservations
func (s *FulfillmentService) Create(ctx context.Context, storeID, orderID uuid.UUID, req CreateFulfillmentRequest) (*FulfillmentResult, error) {
	lines := make([]trade.FulfillmentLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = trade.FulfillmentLine{OrderItemID: item.OrderItemID, Quantity: item.Quantity}
	}

	var fulfillmentID uuid.UUID
	order, err := s.inOrder(ctx, "fulfillment.create", storeID, orderID, func(tx *orderTx) error {
		f, consumes, err := tx.order.CreateFulfillment(lines, req.Tracking.toDomain())
		if err != nil {
			return err
		}
		fulfillmentID = f.ID
		return tx.consume(consumes, inventory.NewReference(inventory.ReferenceFulfillment, f.ID))
	})
	if err != nil {
		return nil, err
	}
	return fulfillmentResult(order, fulfillmentID), nil
}

// Ship marks a fulfillment shipped
func (s *FulfillmentService) Ship(ctx context.Context, storeID, orderID, fulfillmentID uuid.UUID, req ShipFulfillmentRequest) (*FulfillmentResult, error) {
	var tracking *trade.Tracking
	if req.Tracking != nil {
		t := req.Tracking.toDomain()
		tracking = &t
	}
	order, err := s.inOrder(ctx, "fulfillment.ship", storeID, orderID, func(tx *orderTx) error {
		return tx.order.ShipFulfillment(fulfillmentID, tracking)
	})
	if err != nil {
		return nil, err
	}
	return fulfillmentResult(order, fulfillmentID), nil
}

// Deliver marks a shipped fulfillment delivered
func (s *FulfillmentService) Deliver(ctx context.Context, storeID, orderID, fulfillmentID uuid.UUID) (*FulfillmentResult, error) {
	order, err := s.inOrder(ctx, "fulfillment.deliver", storeID, orderID, func(tx *orderTx) error {
		return tx.order.DeliverFulfillment(fulfillmentID)
	})
	if err != nil {
		return nil, err
	}
	return fulfillmentResult(order, fulfillmentID), nil
}

// Cancel cancels a pending fulfillment. Its units go back on hand and are
// reserved for the order again.
func (s *FulfillmentService) Cancel(ctx context.Context, storeID, orderID, fulfillmentID uuid.UUID) (*FulfillmentResult, error) {
	order, err := s.inOrder(ctx, "fulfillment.cancel", storeID, orderID, func(tx *orderTx) error {
		restocks, err := tx.order.CancelFulfillment(fulfillmentID)
		if err != nil {
			return err
		}
		ref := inventory.NewReference(inventory.ReferenceFulfillment, fulfillmentID)
		if err := tx.restock(restocks, "fulfillment cancelled", ref); err != nil {
			return err
		}
		return tx.reserve(restocks, orderRef(tx.order.ID))
	})
	if err != nil {
		return nil, err
	}
	return fulfillmentResult(order, fulfillmentID), nil
}

func fulfillmentResult(order *trade.Order, fulfillmentID uuid.UUID) *FulfillmentResult {
	result := &FulfillmentResult{Order: ToOrderResponse(order)}
	if f := order.GetFulfillment(fulfillmentID); f != nil {
		result.Fulfillment = ToFulfillmentResponse(f)
	}
	return result
}
