package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
)

// OrderHandler handles order lookups and status changes
type OrderHandler struct {
	BaseHandler
	orderService *apptrade.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *apptrade.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List godoc
// @ID           listOrders
// @Summary      List orders
// @Description  Paginated orders of the caller's store, filterable by status fields, customer and date
// @Tags         orders
// @Produce      json
// @Param        status query string false "Order status" Enums(pending, confirmed, processing, completed, cancelled)
// @Param        payment_status query string false "Payment status"
// @Param        fulfillment_status query string false "Fulfillment status"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        search query string false "Order number or email"
// @Param        from query string false "Placed on or after (YYYY-MM-DD)"
// @Param        to query string false "Placed on or before (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} PagedResponse[apptrade.OrderListItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	var filter apptrade.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}
	if filter.CustomerID, ok = h.queryID(c, "customer_id"); !ok {
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := paging(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, orders, total, page, pageSize)
}

// GetByID godoc
// @ID           getOrder
// @Summary      Get an order
// @Description  Returns the order with its items, transactions, fulfillments, refunds and status history
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), storeID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByOrderNumber godoc
// @ID           getOrderByNumber
// @Summary      Get an order by its number
// @Tags         orders
// @Produce      json
// @Param        number path string true "Order number" example(ORD-20240101-00001)
// @Success      200 {object} APIResponse[apptrade.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /order-numbers/{number} [get]
func (h *OrderHandler) GetByOrderNumber(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetByOrderNumber(c.Request.Context(), storeID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Confirm godoc
// @ID           confirmOrder
// @Summary      Confirm an order
// @Description  Moves a pending order to confirmed
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Transition not allowed"
// @Security     BearerAuth
// @Router       /orders/{id}/confirm [post]
func (h *OrderHandler) Confirm(c *gin.Context) {
	h.transition(c, h.orderService.Confirm)
}

// Complete godoc
// @ID           completeOrder
// @Summary      Complete an order
// @Description  Moves a processing, fully fulfilled order to completed
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Transition not allowed"
// @Security     BearerAuth
// @Router       /orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *gin.Context) {
	h.transition(c, h.orderService.Complete)
}

func (h *OrderHandler) transition(c *gin.Context, fn func(ctx context.Context, storeID, orderID uuid.UUID) (*apptrade.OrderResponse, error)) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := fn(c.Request.Context(), storeID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Cancel godoc
// @ID           cancelOrder
// @Summary      Cancel an order
// @Description  Cancels a pending, confirmed or processing order and releases its reserved stock.
// @Description  Money already captured is not refunded automatically.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body apptrade.CancelOrderRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[apptrade.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Order already shipped or in a terminal status"
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req apptrade.CancelOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), storeID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// AddNote godoc
// @ID           addOrderNote
// @Summary      Set the internal note of an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body apptrade.AddNoteRequest true "Note"
// @Success      200 {object} APIResponse[apptrade.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/notes [put]
func (h *OrderHandler) AddNote(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req apptrade.AddNoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.AddNote(c.Request.Context(), storeID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}
