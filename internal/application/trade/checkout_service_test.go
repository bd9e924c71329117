package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubShippingRates struct {
	rates []trade.ShippingRate
	err   error
}

func (s stubShippingRates) GetRates(context.Context, trade.Address, []trade.Package) ([]trade.ShippingRate, error) {
	return s.rates, s.err
}

type MockTaxCalculator struct {
	mock.Mock
}

func (m *MockTaxCalculator) TaxRate(ctx context.Context, storeID uuid.UUID, address *trade.Address) (decimal.Decimal, error) {
	args := m.Called(ctx, storeID, address)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func TestCheckoutService_PlaceOrder_ReservesStock(t *testing.T) {
	f := newFixture(t)

	order := f.placeOrder(t, 2, 1)

	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "pending", order.PaymentStatus)
	assert.True(t, decimal.RequireFromString("45").Equal(order.GrandTotal))
	assert.Equal(t, 2, itemFor(order, f.variantA).ReservedQuantity)
	assert.Equal(t, 1, itemFor(order, f.variantB).ReservedQuantity)

	assert.Equal(t, 2, f.store.stockOf(f.variantA, f.locationID).ReservedQuantity)
	assert.Equal(t, 1, f.store.stockOf(f.variantB, f.locationID).ReservedQuantity)
	assert.Equal(t, 10, f.store.stockOf(f.variantA, f.locationID).Quantity)

	types := f.store.eventTypes()
	assert.Contains(t, types, trade.EventTypeOrderPlaced)
	assert.Contains(t, types, inventory.EventTypeStockReserved)

	for _, m := range f.store.movements() {
		assert.Equal(t, inventory.ReferenceOrder, m.ReferenceType)
		assert.Equal(t, order.ID, m.ReferenceID)
	}
}

func TestCheckoutService_PlaceOrder_InsufficientStockPersistsNothing(t *testing.T) {
	f := newFixture(t)
	f.store.setStock(f.variantB, f.locationID, 3)

	req := f.cart(
		f.line(f.variantA, "10.00", 2),
		f.line(f.variantB, "25.00", 5),
	)
	_, err := f.checkout().PlaceOrder(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	assert.Equal(t, 0, f.store.orderCount())
	assert.Equal(t, 0, f.store.stockOf(f.variantA, f.locationID).ReservedQuantity)
	assert.Equal(t, 0, f.store.stockOf(f.variantB, f.locationID).ReservedQuantity)
	assert.Empty(t, f.store.movements())
	assert.Empty(t, f.store.eventTypes())
}

func TestCheckoutService_PlaceOrder_SameCartReturnsSameOrder(t *testing.T) {
	f := newFixture(t)
	req := f.cart(f.line(f.variantA, "10.00", 2))

	first, err := f.checkout().PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	second, err := f.checkout().PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.store.orderCount())
	assert.Equal(t, 2, f.store.stockOf(f.variantA, f.locationID).ReservedQuantity)
}

func TestCheckoutService_PlaceOrder_Validation(t *testing.T) {
	f := newFixture(t)

	t.Run("missing cart", func(t *testing.T) {
		req := f.cart(f.line(f.variantA, "10.00", 1))
		req.CartID = uuid.Nil
		_, err := f.checkout().PlaceOrder(context.Background(), req)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("empty cart", func(t *testing.T) {
		_, err := f.checkout().PlaceOrder(context.Background(), f.cart())
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("backorder allows reserving beyond stock", func(t *testing.T) {
		variant := uuid.New()
		f.store.setStock(variant, f.locationID, 0)
		f.store.mu.Lock()
		f.store.state.stock[stockKey{variant, f.locationID}].AllowBackorder = true
		f.store.mu.Unlock()

		order, err := f.checkout().PlaceOrder(context.Background(), f.cart(f.line(variant, "5.00", 3)))
		require.NoError(t, err)
		assert.Equal(t, 3, order.Items[0].ReservedQuantity)
		assert.Equal(t, -3, f.store.stockOf(variant, f.locationID).Available())
	})
}

func TestCheckoutService_PlaceOrder_AppliesTaxRate(t *testing.T) {
	f := newFixture(t)
	tax := new(MockTaxCalculator)
	tax.On("TaxRate", mock.Anything, f.storeID, mock.Anything).Return(decimal.RequireFromString("0.1"), nil).Once()

	svc := NewCheckoutService(f.store, tax, f.settings, f.logger)
	order, err := svc.PlaceOrder(context.Background(), f.cart(f.line(f.variantA, "10.00", 2)))

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2").Equal(order.TaxTotal), "tax total %s", order.TaxTotal)
	assert.True(t, decimal.RequireFromString("22").Equal(order.GrandTotal), "grand total %s", order.GrandTotal)
	tax.AssertExpectations(t)
}

func TestCheckoutService_PlaceOrder_CartTaxSkipsCalculator(t *testing.T) {
	f := newFixture(t)
	tax := new(MockTaxCalculator)

	req := f.cart(f.line(f.variantA, "10.00", 1))
	cartTax := decimal.RequireFromString("1.50")
	req.TaxTotal = &cartTax

	order, err := NewCheckoutService(f.store, tax, f.settings, f.logger).PlaceOrder(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, cartTax.Equal(order.TaxTotal))
	tax.AssertNotCalled(t, "TaxRate", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutService_PlaceOrder_ShippingRates(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout()
	svc.SetShippingRateProvider(stubShippingRates{rates: []trade.ShippingRate{
		{ServiceCode: "ground", Price: decimal.RequireFromString("7.50")},
		{ServiceCode: "express", Price: decimal.RequireFromString("19.00")},
	}})

	req := f.cart(f.line(f.variantA, "10.00", 1))
	req.ShippingMethod = "express"
	req.ShippingAddress = &AddressInput{Line1: "1 Main St", City: "Springfield", CountryCode: "US"}

	order, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("19").Equal(order.ShippingTotal))

	req = f.cart(f.line(f.variantA, "10.00", 1))
	req.ShippingMethod = "overnight"
	req.ShippingAddress = &AddressInput{Line1: "1 Main St", City: "Springfield", CountryCode: "US"}
	_, err = svc.PlaceOrder(context.Background(), req)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
