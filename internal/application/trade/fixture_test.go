package trade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixture is a store with two variants stocked at one location
type fixture struct {
	store      *memStore
	provider   *MockPaymentProvider
	settings   Settings
	logger     *zap.Logger
	storeID    uuid.UUID
	locationID uuid.UUID
	variantA   uuid.UUID // 10.00
	variantB   uuid.UUID // 25.00
	productID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      newMemStore(),
		provider:   new(MockPaymentProvider),
		settings:   DefaultSettings(),
		logger:     zap.NewNop(),
		storeID:    uuid.New(),
		locationID: uuid.New(),
		variantA:   uuid.New(),
		variantB:   uuid.New(),
		productID:  uuid.New(),
	}
	f.settings.MaxRetries = 1
	f.store.setStock(f.variantA, f.locationID, 10)
	f.store.setStock(f.variantB, f.locationID, 10)
	return f
}

func (f *fixture) checkout() *CheckoutService {
	return NewCheckoutService(f.store, nil, f.settings, f.logger)
}

func (f *fixture) orders() *OrderService {
	return NewOrderService(f.store, f.settings, f.logger)
}

func (f *fixture) payments() *PaymentService {
	return NewPaymentService(f.store, f.provider, f.settings, f.logger)
}

func (f *fixture) fulfillments() *FulfillmentService {
	return NewFulfillmentService(f.store, f.settings, f.logger)
}

func (f *fixture) refunds() *RefundService {
	return NewRefundService(f.store, f.provider, f.settings, f.logger)
}

func (f *fixture) returns() *ReturnService {
	return NewReturnService(f.store, f.provider, f.settings, f.logger)
}

func (f *fixture) claims() *ClaimService {
	return NewClaimService(f.store, f.provider, f.settings, f.logger)
}

func (f *fixture) exchanges() *ExchangeService {
	return NewExchangeService(f.store, f.provider, f.settings, f.logger)
}

func (f *fixture) edits() *OrderEditService {
	return NewOrderEditService(f.store, f.settings, f.logger)
}

func (f *fixture) line(variantID uuid.UUID, price string, qty int) LineItemInput {
	return LineItemInput{
		ProductID:  f.productID,
		VariantID:  variantID,
		LocationID: f.locationID,
		Title:      "Item " + variantID.String()[:8],
		SKU:        "SKU-" + variantID.String()[:8],
		UnitPrice:  decimal.RequireFromString(price),
		Quantity:   qty,
	}
}

func (f *fixture) cart(lines ...LineItemInput) CheckoutRequest {
	return CheckoutRequest{
		CartID:   uuid.New(),
		StoreID:  f.storeID,
		Email:    "buyer@example.com",
		Currency: "USD",
		Items:    lines,
	}
}

// placeOrder checks out qtyA units of A and qtyB units of B
func (f *fixture) placeOrder(t *testing.T, qtyA, qtyB int) *OrderResponse {
	t.Helper()
	var lines []LineItemInput
	if qtyA > 0 {
		lines = append(lines, f.line(f.variantA, "10.00", qtyA))
	}
	if qtyB > 0 {
		lines = append(lines, f.line(f.variantB, "25.00", qtyB))
	}
	order, err := f.checkout().PlaceOrder(context.Background(), f.cart(lines...))
	require.NoError(t, err)
	return order
}

// capture makes the gateway accept the next capture
func (f *fixture) expectCapture(reference string) {
	f.provider.On("Capture", mock.Anything, mock.AnythingOfType("trade.PaymentRequest")).
		Return(&trade.PaymentResult{Success: true, Status: "succeeded", TransactionID: reference}, nil).Once()
}

// paidOrder places and fully captures an order, which confirms it
func (f *fixture) paidOrder(t *testing.T, qtyA, qtyB int) *OrderResponse {
	t.Helper()
	order := f.placeOrder(t, qtyA, qtyB)
	f.expectCapture("ch_" + order.OrderNumber)
	resp, err := f.payments().Capture(context.Background(), f.storeID, order.ID, CapturePaymentRequest{})
	require.NoError(t, err)
	require.True(t, resp.Succeeded)
	return &resp.Order
}

// shippedOrder is a paid order with every unit in one fulfillment
func (f *fixture) shippedOrder(t *testing.T, qtyA, qtyB int) *OrderResponse {
	t.Helper()
	order := f.paidOrder(t, qtyA, qtyB)
	lines := make([]FulfillmentLineInput, len(order.Items))
	for i, item := range order.Items {
		lines[i] = FulfillmentLineInput{OrderItemID: item.ID, Quantity: item.Quantity}
	}
	result, err := f.fulfillments().Create(context.Background(), f.storeID, order.ID, CreateFulfillmentRequest{Items: lines})
	require.NoError(t, err)
	return &result.Order
}

func itemFor(order *OrderResponse, variantID uuid.UUID) OrderItemResponse {
	for _, item := range order.Items {
		if item.VariantID == variantID {
			return item
		}
	}
	return OrderItemResponse{}
}
