package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPaymentService_Capture_ConfirmsOrder(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 2, 1)
	f.provider.On("Capture", mock.Anything, mock.MatchedBy(func(req trade.PaymentRequest) bool {
		return req.OrderID == order.ID && req.Amount.Equal(decimal.RequireFromString("45")) && req.Currency == "USD"
	})).Return(&trade.PaymentResult{Success: true, Status: "succeeded", TransactionID: "ch_1"}, nil).Once()

	resp, err := f.payments().Capture(context.Background(), f.storeID, order.ID, CapturePaymentRequest{})

	require.NoError(t, err)
	assert.True(t, resp.Succeeded)
	assert.Equal(t, "paid", resp.Order.PaymentStatus)
	assert.Equal(t, "confirmed", resp.Order.Status)
	assert.True(t, decimal.RequireFromString("45").Equal(resp.Order.TotalPaid))
	require.Len(t, resp.Order.Transactions, 1)
	assert.Equal(t, "ch_1", resp.Order.Transactions[0].GatewayReference)
	assert.Contains(t, f.store.eventTypes(), trade.EventTypePaymentCaptured)
	f.provider.AssertExpectations(t)
}

func TestPaymentService_Capture_GatewayErrorRecordsFailure(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1, 0)
	f.provider.On("Capture", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()

	resp, err := f.payments().Capture(context.Background(), f.storeID, order.ID, CapturePaymentRequest{})

	require.NoError(t, err)
	assert.False(t, resp.Succeeded)
	assert.Equal(t, "connection reset", resp.Error)
	assert.Equal(t, "failed", resp.Order.PaymentStatus)
	assert.Equal(t, "pending", resp.Order.Status)
	assert.True(t, resp.Order.TotalPaid.IsZero())
	assert.Contains(t, f.store.eventTypes(), trade.EventTypePaymentFailed)
}

func TestPaymentService_Capture_Timeout(t *testing.T) {
	f := newFixture(t)
	f.settings.PaymentTimeout = 10 * time.Millisecond
	order := f.placeOrder(t, 1, 0)
	f.provider.On("Capture", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded).Once()

	resp, err := f.payments().Capture(context.Background(), f.storeID, order.ID, CapturePaymentRequest{})

	require.NoError(t, err)
	assert.False(t, resp.Succeeded)
	assert.Equal(t, "payment gateway timed out", resp.Error)
}

func TestPaymentService_Authorize_PendingRedirect(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1, 0)
	f.provider.On("CreatePayment", mock.Anything, mock.MatchedBy(func(req trade.PaymentRequest) bool {
		return req.ReturnURL == "https://shop.example.com/return"
	})).Return(&trade.PaymentResult{
		Success:       true,
		Status:        "pending",
		TransactionID: "pi_1",
		RedirectURL:   "https://pay.example.com/3ds",
	}, nil).Once()

	resp, err := f.payments().Authorize(context.Background(), f.storeID, order.ID, AuthorizePaymentRequest{ReturnURL: "https://shop.example.com/return"})

	require.NoError(t, err)
	assert.True(t, resp.Succeeded)
	assert.Equal(t, "https://pay.example.com/3ds", resp.RedirectURL)
	assert.Equal(t, "pending", resp.Order.PaymentStatus)
	assert.Equal(t, "pending", resp.Order.Status)
	assert.Equal(t, "pending", resp.Order.Transactions[0].Status)
}

func TestPaymentService_Authorize_ThenCapture(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1, 0)
	f.provider.On("CreatePayment", mock.Anything, mock.Anything).
		Return(&trade.PaymentResult{Success: true, Status: "authorized", TransactionID: "pi_2"}, nil).Once()
	f.provider.On("Capture", mock.Anything, mock.MatchedBy(func(req trade.PaymentRequest) bool {
		return req.Reference == "pi_2"
	})).Return(&trade.PaymentResult{Success: true, Status: "succeeded", TransactionID: "ch_2"}, nil).Once()

	auth, err := f.payments().Authorize(context.Background(), f.storeID, order.ID, AuthorizePaymentRequest{})
	require.NoError(t, err)
	assert.Equal(t, "authorized", auth.Order.PaymentStatus)
	assert.Equal(t, "confirmed", auth.Order.Status)

	capture, err := f.payments().Capture(context.Background(), f.storeID, order.ID, CapturePaymentRequest{})
	require.NoError(t, err)
	assert.Equal(t, "paid", capture.Order.PaymentStatus)
	f.provider.AssertExpectations(t)
}

func TestPaymentService_Capture_NothingDue(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t, 1, 0)

	_, err := f.payments().Capture(context.Background(), f.storeID, order.ID, CapturePaymentRequest{})

	assert.True(t, errors.Is(err, shared.ErrInvalidAmount))
	f.provider.AssertNumberOfCalls(t, "Capture", 1)
}

func TestPaymentService_RecordPayment_RejectsRefunds(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t, 1, 0)

	_, err := f.payments().RecordPayment(context.Background(), f.storeID, order.ID, RecordPaymentRequest{
		Type:   "refund",
		Status: "success",
		Amount: decimal.RequireFromString("5"),
	})

	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestPaymentService_RecordPayment_Webhook(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1, 0)

	resp, err := f.payments().RecordPayment(context.Background(), f.storeID, order.ID, RecordPaymentRequest{
		Type:             "capture",
		Status:           "success",
		Amount:           decimal.RequireFromString("10"),
		GatewayReference: "wh_1",
	})

	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Order.PaymentStatus)
	assert.Equal(t, "confirmed", resp.Order.Status)
}
