package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentHandler_Capture(t *testing.T) {
	app := newTestApp(t)
	app.stock(t, 5)

	order := app.paidOrder(t, 2)
	assert.Equal(t, "confirmed", order.Status)
	assert.Equal(t, "paid", order.PaymentStatus)
	assert.True(t, decimal.NewFromInt(20).Equal(order.TotalPaid))
	assert.True(t, order.BalanceDue.IsZero())

	rec := app.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/payments/capture", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, shared.CodeInvalidAmount, decode[any](t, rec).Error.Code)
}

func TestPaymentHandler_Authorize(t *testing.T) {
	app := newTestApp(t)
	app.stock(t, 5)
	order := app.placeOrder(t, 1)

	rec := app.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/payments/authorize", gin.H{"return_url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/payments/authorize", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[apptrade.PaymentResponse](t, rec).Data
	assert.True(t, result.Succeeded)
	assert.Equal(t, "authorized", result.Order.PaymentStatus)
	assert.Len(t, result.Order.Transactions, 1)
}

func TestPaymentHandler_RecordPayment(t *testing.T) {
	app := newTestApp(t)
	app.stock(t, 5)
	order := app.placeOrder(t, 1)
	path := "/orders/" + order.ID.String() + "/payments"

	rec := app.do(t, http.MethodPost, path, gin.H{"type": "refund", "status": "success", "amount": "10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, path, gin.H{"type": "capture", "status": "success", "amount": "0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, path, gin.H{
		"type":              "capture",
		"status":            "success",
		"amount":            "10.00",
		"gateway_reference": "wh_123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[apptrade.PaymentResponse](t, rec).Data
	assert.Equal(t, "paid", result.Order.PaymentStatus)
	assert.Equal(t, "confirmed", result.Order.Status)
}

func TestPaymentHandler_Refund(t *testing.T) {
	app := newTestApp(t)
	app.stock(t, 5)
	order := app.paidOrder(t, 2)
	path := "/orders/" + order.ID.String() + "/refunds"

	t.Run("partial refund", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, path, gin.H{"amount": "5.00", "reason": "late delivery"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		result := decode[apptrade.RefundResultResponse](t, rec).Data
		assert.True(t, decimal.NewFromInt(5).Equal(result.Order.TotalRefunded))
		assert.Equal(t, "partially_refunded", result.Order.PaymentStatus)
	})

	t.Run("more than paid is refused", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, path, gin.H{"amount": "50.00"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, shared.CodeOverRefund, decode[any](t, rec).Error.Code)
	})

	t.Run("amount must be positive", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, path, gin.H{"amount": "0"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
