package handler

import (
	"github.com/gin-gonic/gin"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
)

// PaymentHandler takes payments against orders and refunds them
type PaymentHandler struct {
	BaseHandler
	paymentService *apptrade.PaymentService
	refundService  *apptrade.RefundService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *apptrade.PaymentService, refundService *apptrade.RefundService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, refundService: refundService}
}

// Authorize godoc
// @ID           authorizePayment
// @Summary      Authorize the balance due
// @Description  Asks the payment gateway to authorize what is still owed. A declined authorization is
// @Description  recorded as a failed transaction and reported with succeeded=false, not as an error.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body apptrade.AuthorizePaymentRequest false "Return URL for redirect based methods"
// @Success      200 {object} APIResponse[apptrade.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Nothing left to pay or order closed"
// @Security     BearerAuth
// @Router       /orders/{id}/payments/authorize [post]
func (h *PaymentHandler) Authorize(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req apptrade.AuthorizePaymentRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.paymentService.Authorize(c.Request.Context(), storeID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Capture godoc
// @ID           capturePayment
// @Summary      Capture a payment
// @Description  Captures the given amount, or the whole balance due when no amount is sent
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body apptrade.CapturePaymentRequest false "Amount to capture"
// @Success      200 {object} APIResponse[apptrade.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/payments/capture [post]
func (h *PaymentHandler) Capture(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req apptrade.CapturePaymentRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.paymentService.Capture(c.Request.Context(), storeID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RecordPayment godoc
// @ID           recordPayment
// @Summary      Record a payment reported out of band
// @Description  Records an authorization or capture the gateway reported asynchronously
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body apptrade.RecordPaymentRequest true "Transaction"
// @Success      201 {object} APIResponse[apptrade.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req apptrade.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), storeID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Refund godoc
// @ID           refundOrder
// @Summary      Refund an order
// @Description  Refunds money through the gateway. The total refunded can never exceed what was paid;
// @Description  goodwill refunds may exceed the grand total but not the amount paid.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body apptrade.RefundOrderRequest true "Refund"
// @Success      201 {object} APIResponse[apptrade.RefundResultResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "OVER_REFUND or INVALID_AMOUNT"
// @Failure      502 {object} ErrorResponse "Gateway declined or unreachable"
// @Security     BearerAuth
// @Router       /orders/{id}/refunds [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req apptrade.RefundOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.refundService.Refund(c.Request.Context(), storeID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}
