package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
)

// FulfillmentHandler ships order items
type FulfillmentHandler struct {
	BaseHandler
	fulfillmentService *apptrade.FulfillmentService
}

// NewFulfillmentHandler creates a new FulfillmentHandler
func NewFulfillmentHandler(fulfillmentService *apptrade.FulfillmentService) *FulfillmentHandler {
	return &FulfillmentHandler{fulfillmentService: fulfillmentService}
}

// Create godoc
// @ID           createFulfillment
// @Summary      Create a fulfillment
// @Description  Fulfills units of the order and consumes their stock reservations
// @Tags         fulfillments
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body apptrade.CreateFulfillmentRequest true "Items to fulfill"
// @Success      201 {object} APIResponse[apptrade.FulfillmentResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Quantity exceeds what is left to fulfill"
// @Security     BearerAuth
// @Router       /orders/{id}/fulfillments [post]
func (h *FulfillmentHandler) Create(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req apptrade.CreateFulfillmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.fulfillmentService.Create(c.Request.Context(), storeID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Ship godoc
// @ID           shipFulfillment
// @Summary      Mark a fulfillment shipped
// @Tags         fulfillments
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        fulfillment_id path string true "Fulfillment ID" format(uuid)
// @Param        request body apptrade.ShipFulfillmentRequest false "Tracking details"
// @Success      200 {object} APIResponse[apptrade.FulfillmentResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/fulfillments/{fulfillment_id}/ship [post]
func (h *FulfillmentHandler) Ship(c *gin.Context) {
	storeID, orderID, fulfillmentID, ok := h.ids(c)
	if !ok {
		return
	}
	var req apptrade.ShipFulfillmentRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.fulfillmentService.Ship(c.Request.Context(), storeID, orderID, fulfillmentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Deliver godoc
// @ID           deliverFulfillment
// @Summary      Mark a fulfillment delivered
// @Tags         fulfillments
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        fulfillment_id path string true "Fulfillment ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.FulfillmentResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/fulfillments/{fulfillment_id}/deliver [post]
func (h *FulfillmentHandler) Deliver(c *gin.Context) {
	storeID, orderID, fulfillmentID, ok := h.ids(c)
	if !ok {
		return
	}

	result, err := h.fulfillmentService.Deliver(c.Request.Context(), storeID, orderID, fulfillmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Cancel godoc
// @ID           cancelFulfillment
// @Summary      Cancel a pending fulfillment
// @Description  Returns the units to the order and reserves their stock again. Shipped fulfillments cannot be cancelled.
// @Tags         fulfillments
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        fulfillment_id path string true "Fulfillment ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.FulfillmentResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/fulfillments/{fulfillment_id}/cancel [post]
func (h *FulfillmentHandler) Cancel(c *gin.Context) {
	storeID, orderID, fulfillmentID, ok := h.ids(c)
	if !ok {
		return
	}

	result, err := h.fulfillmentService.Cancel(c.Request.Context(), storeID, orderID, fulfillmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

func (h *FulfillmentHandler) ids(c *gin.Context) (storeID, orderID, fulfillmentID uuid.UUID, ok bool) {
	if storeID, ok = h.storeID(c); !ok {
		return
	}
	if orderID, ok = h.pathID(c, "id", "order"); !ok {
		return
	}
	fulfillmentID, ok = h.pathID(c, "fulfillment_id", "fulfillment")
	return
}
