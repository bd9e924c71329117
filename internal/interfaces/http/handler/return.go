package handler

import (
	"github.com/gin-gonic/gin"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
)

// ReturnHandler handles customer returns
type ReturnHandler struct {
	BaseHandler
	returnService *apptrade.ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returnService *apptrade.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

// Request godoc
// @ID           requestReturn
// @Summary      Request a return
// @Description  Opens a return for fulfilled units. Units already under an open return cannot be requested again.
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body apptrade.CreateReturnRequest true "Items to return"
// @Success      201 {object} APIResponse[apptrade.ReturnResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "OVER_RETURN"
// @Security     BearerAuth
// @Router       /orders/{id}/returns [post]
func (h *ReturnHandler) Request(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req apptrade.CreateReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.returnService.Request(c.Request.Context(), storeID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListByOrder godoc
// @ID           listOrderReturns
// @Summary      List the returns of an order
// @Tags         returns
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[[]apptrade.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/returns [get]
func (h *ReturnHandler) ListByOrder(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	returns, err := h.returnService.ListByOrder(c.Request.Context(), storeID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, returns)
}

// Get godoc
// @ID           getReturn
// @Summary      Get a return
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id} [get]
func (h *ReturnHandler) Get(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	returnID, ok := h.pathID(c, "id", "return")
	if !ok {
		return
	}

	ret, err := h.returnService.Get(c.Request.Context(), storeID, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ret)
}

// Receive godoc
// @ID           receiveReturn
// @Summary      Receive returned goods
// @Description  Restocks the items flagged for restock at their location
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.ReturnResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/receive [post]
func (h *ReturnHandler) Receive(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	returnID, ok := h.pathID(c, "id", "return")
	if !ok {
		return
	}

	result, err := h.returnService.Receive(c.Request.Context(), storeID, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Complete godoc
// @ID           completeReturn
// @Summary      Complete a return
// @Description  Refunds the return amount, if any, and closes the return
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.ReturnResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/complete [post]
func (h *ReturnHandler) Complete(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	returnID, ok := h.pathID(c, "id", "return")
	if !ok {
		return
	}

	result, err := h.returnService.Complete(c.Request.Context(), storeID, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Cancel godoc
// @ID           cancelReturn
// @Summary      Cancel a return
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/cancel [post]
func (h *ReturnHandler) Cancel(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	returnID, ok := h.pathID(c, "id", "return")
	if !ok {
		return
	}

	ret, err := h.returnService.Cancel(c.Request.Context(), storeID, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ret)
}
