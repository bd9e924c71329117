package handler

import (
	"github.com/gin-gonic/gin"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
)

// OrderEditHandler handles staged changes to placed orders
type OrderEditHandler struct {
	BaseHandler
	editService *apptrade.OrderEditService
}

// NewOrderEditHandler creates a new OrderEditHandler
func NewOrderEditHandler(editService *apptrade.OrderEditService) *OrderEditHandler {
	return &OrderEditHandler{editService: editService}
}

// Create godoc
// @ID           createOrderEdit
// @Summary      Stage an order edit
// @Description  Records item additions, removals and quantity updates without touching the order yet
// @Tags         order-edits
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body apptrade.CreateOrderEditRequest true "Changes"
// @Success      201 {object} APIResponse[apptrade.OrderEditResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/edits [post]
func (h *OrderEditHandler) Create(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req apptrade.CreateOrderEditRequest
	if !h.bindJSON(c, &req) {
		return
	}

	edit, err := h.editService.Create(c.Request.Context(), storeID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, edit)
}

// ListByOrder godoc
// @ID           listOrderEdits
// @Summary      List the edits of an order
// @Tags         order-edits
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[[]apptrade.OrderEditResponse]
// @Security     BearerAuth
// @Router       /orders/{id}/edits [get]
func (h *OrderEditHandler) ListByOrder(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	edits, err := h.editService.ListByOrder(c.Request.Context(), storeID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, edits)
}

// Get godoc
// @ID           getOrderEdit
// @Summary      Get an order edit
// @Tags         order-edits
// @Produce      json
// @Param        id path string true "Order edit ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.OrderEditResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /order-edits/{id} [get]
func (h *OrderEditHandler) Get(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	editID, ok := h.pathID(c, "id", "order edit")
	if !ok {
		return
	}

	edit, err := h.editService.Get(c.Request.Context(), storeID, editID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, edit)
}

// Request godoc
// @ID           requestOrderEdit
// @Summary      Request confirmation of an edit
// @Description  Prices the edit and computes the difference the customer owes or is owed
// @Tags         order-edits
// @Produce      json
// @Param        id path string true "Order edit ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.OrderEditResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /order-edits/{id}/request [post]
func (h *OrderEditHandler) Request(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	editID, ok := h.pathID(c, "id", "order edit")
	if !ok {
		return
	}

	result, err := h.editService.Request(c.Request.Context(), storeID, editID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Confirm godoc
// @ID           confirmOrderEdit
// @Summary      Confirm an edit
// @Description  Applies the staged changes to the order and moves stock reservations accordingly
// @Tags         order-edits
// @Produce      json
// @Param        id path string true "Order edit ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.OrderEditResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "INSUFFICIENT_STOCK or order no longer editable"
// @Security     BearerAuth
// @Router       /order-edits/{id}/confirm [post]
func (h *OrderEditHandler) Confirm(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	editID, ok := h.pathID(c, "id", "order edit")
	if !ok {
		return
	}

	result, err := h.editService.Confirm(c.Request.Context(), storeID, editID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Decline godoc
// @ID           declineOrderEdit
// @Summary      Decline an edit
// @Tags         order-edits
// @Accept       json
// @Produce      json
// @Param        id path string true "Order edit ID" format(uuid)
// @Param        request body apptrade.DeclineOrderEditRequest false "Reason"
// @Success      200 {object} APIResponse[apptrade.OrderEditResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /order-edits/{id}/decline [post]
func (h *OrderEditHandler) Decline(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	editID, ok := h.pathID(c, "id", "order edit")
	if !ok {
		return
	}
	var req apptrade.DeclineOrderEditRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	edit, err := h.editService.Decline(c.Request.Context(), storeID, editID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, edit)
}

// Cancel godoc
// @ID           cancelOrderEdit
// @Summary      Cancel an edit
// @Tags         order-edits
// @Produce      json
// @Param        id path string true "Order edit ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.OrderEditResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /order-edits/{id}/cancel [post]
func (h *OrderEditHandler) Cancel(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	editID, ok := h.pathID(c, "id", "order edit")
	if !ok {
		return
	}

	edit, err := h.editService.Cancel(c.Request.Context(), storeID, editID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, edit)
}
