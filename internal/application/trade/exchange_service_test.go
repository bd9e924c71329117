package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// exchangeSetup returns a shipped order of two A units with one A returned
// and an exchange of it for one B
func exchangeSetup(t *testing.T, f *fixture) (*OrderResponse, *ExchangeResult) {
	t.Helper()
	order := f.shippedOrder(t, 2, 0)
	ret, err := f.returns().Request(context.Background(), f.storeID, order.ID, CreateReturnRequest{
		Items: []ReturnItemInput{{OrderItemID: order.Items[0].ID, Quantity: 1, Restock: true}},
	})
	require.NoError(t, err)
	returnID := ret.Return.ID

	exchange, err := f.exchanges().Create(context.Background(), f.storeID, order.ID, CreateExchangeRequest{
		ReturnID:        &returnID,
		AdditionalItems: []LineItemInput{f.line(f.variantB, "25.00", 1)},
	})
	require.NoError(t, err)
	return order, exchange
}

func TestExchangeService_Create_PricesDifference(t *testing.T) {
	f := newFixture(t)
	_, created := exchangeSetup(t, f)

	e := created.Exchange
	assert.Equal(t, "pending", e.Status)
	assert.Equal(t, "not_paid", e.PaymentStatus)
	assert.True(t, decimal.RequireFromString("10").Equal(e.ReturnCredit))
	assert.True(t, decimal.RequireFromString("25").Equal(e.AdditionalTotal))
	assert.True(t, decimal.RequireFromString("15").Equal(e.DifferenceAmount))

	ret, err := f.returns().Get(context.Background(), f.storeID, *e.ReturnID)
	require.NoError(t, err)
	require.NotNil(t, ret.ExchangeID)
	assert.Equal(t, e.ID, *ret.ExchangeID)
}

func TestExchangeService_Create_ReturnAlreadyLinked(t *testing.T) {
	f := newFixture(t)
	order, created := exchangeSetup(t, f)

	_, err := f.exchanges().Create(context.Background(), f.storeID, order.ID, CreateExchangeRequest{
		ReturnID:        created.Exchange.ReturnID,
		AdditionalItems: []LineItemInput{f.line(f.variantB, "25.00", 1)},
	})

	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestExchangeService_FullWorkflow(t *testing.T) {
	f := newFixture(t)
	order, created := exchangeSetup(t, f)
	exchangeID := created.Exchange.ID

	processed, err := f.exchanges().Process(context.Background(), f.storeID, exchangeID)
	require.NoError(t, err)
	assert.Equal(t, "processing", processed.Exchange.Status)
	assert.True(t, processed.Exchange.AdditionalItems[0].Reserved)
	assert.Equal(t, 1, f.store.stockOf(f.variantB, f.locationID).ReservedQuantity)

	// completing before the difference is paid is refused
	_, err = f.exchanges().Complete(context.Background(), f.storeID, exchangeID)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	f.provider.On("Capture", mock.Anything, mock.MatchedBy(func(req trade.PaymentRequest) bool {
		return req.Amount.Equal(decimal.RequireFromString("15")) && req.IdempotencyKey == "exchange-"+exchangeID.String()
	})).Return(&trade.PaymentResult{Success: true, TransactionID: "ch_diff"}, nil).Once()

	paid, err := f.exchanges().Pay(context.Background(), f.storeID, exchangeID)
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.Exchange.PaymentStatus)
	require.NotNil(t, paid.Exchange.TransactionID)
	assert.True(t, decimal.RequireFromString("35").Equal(paid.Order.TotalPaid))

	_, err = f.returns().Receive(context.Background(), f.storeID, *created.Exchange.ReturnID)
	require.NoError(t, err)

	completed, err := f.exchanges().Complete(context.Background(), f.storeID, exchangeID)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Exchange.Status)
	require.NotNil(t, completed.Exchange.AdditionalItems[0].OrderItemID)

	require.Len(t, completed.Order.Items, 2)
	added := itemFor(&completed.Order, f.variantB)
	assert.Equal(t, 1, added.Quantity)
	assert.Equal(t, 1, added.ReservedQuantity)
	assert.True(t, decimal.RequireFromString("45").Equal(completed.Order.GrandTotal))
	assert.Equal(t, order.ID, completed.Order.ID)

	ret, err := f.returns().Get(context.Background(), f.storeID, *created.Exchange.ReturnID)
	require.NoError(t, err)
	assert.Equal(t, "completed", ret.Status)
	assert.Contains(t, f.store.eventTypes(), trade.EventTypeExchangeCompleted)
	f.provider.AssertExpectations(t)
}

func TestExchangeService_Pay_DeclinedIsRecorded(t *testing.T) {
	f := newFixture(t)
	order, created := exchangeSetup(t, f)
	_, err := f.exchanges().Process(context.Background(), f.storeID, created.Exchange.ID)
	require.NoError(t, err)
	f.provider.On("Capture", mock.Anything, mock.Anything).
		Return(&trade.PaymentResult{Success: false, Error: "card declined"}, nil).Once()

	_, err = f.exchanges().Pay(context.Background(), f.storeID, created.Exchange.ID)

	assert.True(t, errors.Is(err, shared.ErrGatewayFailure))
	stored := f.store.order(order.ID)
	last := stored.Transactions[len(stored.Transactions)-1]
	assert.Equal(t, trade.TransactionStatusFailed, last.Status)
	assert.True(t, decimal.RequireFromString("20").Equal(stored.TotalPaid))

	e, err := f.exchanges().Get(context.Background(), f.storeID, created.Exchange.ID)
	require.NoError(t, err)
	assert.Equal(t, "not_paid", e.PaymentStatus)
}

func TestExchangeService_Cancel_ReleasesAndDetaches(t *testing.T) {
	f := newFixture(t)
	_, created := exchangeSetup(t, f)
	_, err := f.exchanges().Process(context.Background(), f.storeID, created.Exchange.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.store.stockOf(f.variantB, f.locationID).ReservedQuantity)

	cancelled, err := f.exchanges().Cancel(context.Background(), f.storeID, created.Exchange.ID)

	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Exchange.Status)
	assert.Equal(t, 0, f.store.stockOf(f.variantB, f.locationID).ReservedQuantity)

	ret, err := f.returns().Get(context.Background(), f.storeID, *created.Exchange.ReturnID)
	require.NoError(t, err)
	assert.Nil(t, ret.ExchangeID)

	// the detached return can be cancelled on its own now
	_, err = f.returns().Cancel(context.Background(), f.storeID, ret.ID)
	assert.NoError(t, err)
}

func TestExchangeService_Complete_RefundsNegativeDifference(t *testing.T) {
	f := newFixture(t)
	order := f.shippedOrder(t, 2, 0)
	ret, err := f.returns().Request(context.Background(), f.storeID, order.ID, CreateReturnRequest{
		Items: []ReturnItemInput{{OrderItemID: order.Items[0].ID, Quantity: 2, Restock: true}},
	})
	require.NoError(t, err)
	returnID := ret.Return.ID

	created, err := f.exchanges().Create(context.Background(), f.storeID, order.ID, CreateExchangeRequest{
		ReturnID:        &returnID,
		AdditionalItems: []LineItemInput{f.line(f.variantA, "10.00", 1)},
	})
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("-10").Equal(created.Exchange.DifferenceAmount))

	_, err = f.exchanges().Process(context.Background(), f.storeID, created.Exchange.ID)
	require.NoError(t, err)
	_, err = f.returns().Receive(context.Background(), f.storeID, returnID)
	require.NoError(t, err)

	f.provider.On("Refund", mock.Anything, mock.MatchedBy(func(req trade.PaymentRequest) bool {
		return req.Amount.Equal(decimal.RequireFromString("10"))
	})).Return(&trade.PaymentResult{Success: true, TransactionID: "re_exch"}, nil).Once()

	completed, err := f.exchanges().Complete(context.Background(), f.storeID, created.Exchange.ID)

	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Exchange.Status)
	require.NotNil(t, completed.Exchange.RefundID)
	assert.True(t, decimal.RequireFromString("10").Equal(completed.Order.TotalRefunded))
	f.provider.AssertExpectations(t)
}

func TestExchangeService_Complete_RejectedBeforeRefund(t *testing.T) {
	f := newFixture(t)
	order := f.shippedOrder(t, 2, 0)
	ret, err := f.returns().Request(context.Background(), f.storeID, order.ID, CreateReturnRequest{
		Items: []ReturnItemInput{{OrderItemID: order.Items[0].ID, Quantity: 2, Restock: true}},
	})
	require.NoError(t, err)
	returnID := ret.Return.ID

	created, err := f.exchanges().Create(context.Background(), f.storeID, order.ID, CreateExchangeRequest{
		ReturnID:        &returnID,
		AdditionalItems: []LineItemInput{f.line(f.variantA, "10.00", 1)},
	})
	require.NoError(t, err)
	require.True(t, created.Exchange.DifferenceAmount.IsNegative())
	_, err = f.exchanges().Process(context.Background(), f.storeID, created.Exchange.ID)
	require.NoError(t, err)

	// the linked return is still requested, so completion cannot succeed
	for i := 0; i < 2; i++ {
		_, err = f.exchanges().Complete(context.Background(), f.storeID, created.Exchange.ID)
		assert.True(t, errors.Is(err, shared.ErrInvalidState), err)
	}

	f.provider.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
	stored := f.store.order(order.ID)
	assert.True(t, stored.TotalRefunded.IsZero())
	assert.Empty(t, stored.Refunds)

	e, err := f.exchanges().Get(context.Background(), f.storeID, created.Exchange.ID)
	require.NoError(t, err)
	assert.Equal(t, "processing", e.Status)
}
