package handler

import (
	"github.com/gin-gonic/gin"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
)

// CheckoutHandler turns carts into orders
type CheckoutHandler struct {
	BaseHandler
	checkoutService *apptrade.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *apptrade.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// PlaceOrder godoc
// @ID           placeOrder
// @Summary      Place an order from a cart
// @Description  Snapshots the cart lines, computes totals and reserves stock for every line in one transaction.
// @Description  Placing the same cart twice returns the order created the first time.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body apptrade.CheckoutRequest true "Cart snapshot"
// @Success      201 {object} APIResponse[apptrade.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Insufficient stock or invalid totals"
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /checkout [post]
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	var req apptrade.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.StoreID = storeID

	order, err := h.checkoutService.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}
