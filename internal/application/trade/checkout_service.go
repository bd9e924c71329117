package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutService turns carts into orders
type CheckoutService struct {
	engine
	tax      trade.TaxCalculator
	shipping trade.ShippingRateProvider
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(scope TransactionScope, tax trade.TaxCalculator, settings Settings, logger *zap.Logger) *CheckoutService {
	if tax == nil {
		tax = trade.NewFlatRateTaxCalculator(decimal.Zero)
	}
	return &CheckoutService{
		engine: newEngine(scope, settings, logger),
		tax:    tax,
	}
}

// SetShippingRateProvider makes checkout price the selected shipping method
// from carrier rates instead of trusting the cart
func (s *CheckoutService) SetShippingRateProvider(provider trade.ShippingRateProvider) {
	s.shipping = provider
}

// PlaceOrder creates an order from a cart snapshot and reserves its stock.
//
// Order creation and every reservation commit together: if one line cannot be
// reserved nothing is persisted. Placing the same cart twice returns the
// order created the first time.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req CheckoutRequest) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", telemetry.OperationPlaceOrder,
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, req.StoreID),
		telemetry.WithAttribute(telemetry.SpanAttrCartID, req.CartID),
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, len(req.Items)),
	)
	defer span.End()

	telemetry.WithProfilingLabels(ctx, telemetry.OrderOperationLabels(telemetry.OperationPlaceOrder, ""), func(c context.Context) {
		resp, err = s.placeOrder(c, req)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderNumber, resp.OrderNumber,
		telemetry.SpanAttrAmount, resp.GrandTotal.String(),
	)
	return resp, nil
}

func (s *CheckoutService) placeOrder(ctx context.Context, req CheckoutRequest) (*OrderResponse, error) {
	if req.StoreID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Store ID is required")
	}
	if req.CartID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Cart ID is required")
	}

	if existing, err := s.findByCart(ctx, req.StoreID, req.CartID); err != nil {
		return nil, err
	} else if existing != nil {
		resp := ToOrderResponse(existing)
		return &resp, nil
	}

	cart := req.toSnapshot()
	if err := s.resolveShipping(ctx, &cart); err != nil {
		return nil, err
	}
	taxRate := decimal.Zero
	if cart.TaxTotal == nil {
		rate, err := s.tax.TaxRate(ctx, cart.StoreID, cart.ShippingAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tax rate: %w", err)
		}
		taxRate = rate
	}

	var order *trade.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.OrderRepo().GenerateOrderNumber(ctx, cart.StoreID)
		if err != nil {
			return fmt.Errorf("failed to generate order number: %w", err)
		}
		o, err := trade.NewOrderFromCart(cart, number, taxRate)
		if err != nil {
			return err
		}
		o.ActingAs(ActorFromContext(ctx))

		tx := &orderTx{ctx: ctx, repos: repos, order: o}
		tx.track(o)
		for _, r := range o.ReservationRequests() {
			if err := tx.reserve([]trade.StockRequest{r}, orderRef(o.ID)); err != nil {
				return err
			}
			if err := o.MarkReserved(r.OrderItemID, r.Quantity); err != nil {
				return err
			}
		}
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		if err := tx.flush(); err != nil {
			return err
		}
		order = o
		return nil
	})
	if errors.Is(err, shared.ErrAlreadyExists) {
		// a concurrent checkout of the same cart won
		existing, findErr := s.findByCart(ctx, req.StoreID, req.CartID)
		if findErr == nil && existing != nil {
			resp := ToOrderResponse(existing)
			return &resp, nil
		}
	}
	if err != nil {
		s.logger.Info("checkout failed",
			zap.String("cart_id", req.CartID.String()),
			zap.String("store_id", req.StoreID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("grand_total", order.GrandTotal.String()),
		zap.Int("items", len(order.Items)),
	)
	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *CheckoutService) findByCart(ctx context.Context, storeID, cartID uuid.UUID) (*trade.Order, error) {
	var order *trade.Order
	err := s.read(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByCartID(ctx, storeID, cartID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}
		order = o
		return nil
	})
	return order, err
}

// resolveShipping replaces the cart's shipping total with the carrier's
// price for the chosen service
func (s *CheckoutService) resolveShipping(ctx context.Context, cart *trade.CartSnapshot) error {
	if s.shipping == nil || cart.ShippingMethod == "" || cart.ShippingAddress == nil {
		return nil
	}
	units := 0
	for _, line := range cart.Items {
		units += line.Quantity
	}
	rates, err := s.shipping.GetRates(ctx, *cart.ShippingAddress, []trade.Package{{Items: units}})
	if err != nil {
		return fmt.Errorf("failed to get shipping rates: %w", err)
	}
	for _, rate := range rates {
		if rate.ServiceCode == cart.ShippingMethod {
			cart.ShippingTotal = rate.Price
			return nil
		}
	}
	return shared.NewDomainErrorf(shared.CodeValidation, "Shipping method %q is not available for this address", cart.ShippingMethod)
}
