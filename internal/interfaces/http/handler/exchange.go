package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
)

// ExchangeHandler handles exchanges of returned goods for new ones
type ExchangeHandler struct {
	BaseHandler
	exchangeService *apptrade.ExchangeService
}

// NewExchangeHandler creates a new ExchangeHandler
func NewExchangeHandler(exchangeService *apptrade.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{exchangeService: exchangeService}
}

// Create godoc
// @ID           createExchange
// @Summary      Create an exchange
// @Description  Prices the additional items against the credit of the linked return
// @Tags         exchanges
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body apptrade.CreateExchangeRequest true "Exchange"
// @Success      201 {object} APIResponse[apptrade.ExchangeResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/exchanges [post]
func (h *ExchangeHandler) Create(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req apptrade.CreateExchangeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.exchangeService.Create(c.Request.Context(), storeID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListByOrder godoc
// @ID           listOrderExchanges
// @Summary      List the exchanges of an order
// @Tags         exchanges
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[[]apptrade.ExchangeResponse]
// @Security     BearerAuth
// @Router       /orders/{id}/exchanges [get]
func (h *ExchangeHandler) ListByOrder(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	exchanges, err := h.exchangeService.ListByOrder(c.Request.Context(), storeID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, exchanges)
}

// Get godoc
// @ID           getExchange
// @Summary      Get an exchange
// @Tags         exchanges
// @Produce      json
// @Param        id path string true "Exchange ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.ExchangeResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exchanges/{id} [get]
func (h *ExchangeHandler) Get(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	exchangeID, ok := h.pathID(c, "id", "exchange")
	if !ok {
		return
	}

	exchange, err := h.exchangeService.Get(c.Request.Context(), storeID, exchangeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, exchange)
}

// Process godoc
// @ID           processExchange
// @Summary      Start processing an exchange
// @Description  Reserves stock for the additional items
// @Tags         exchanges
// @Produce      json
// @Param        id path string true "Exchange ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.ExchangeResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exchanges/{id}/process [post]
func (h *ExchangeHandler) Process(c *gin.Context) {
	h.step(c, h.exchangeService.Process)
}

// Pay godoc
// @ID           payExchange
// @Summary      Settle the exchange difference
// @Description  Charges the customer when the new items cost more than the credit, refunds them when less
// @Tags         exchanges
// @Produce      json
// @Param        id path string true "Exchange ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.ExchangeResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exchanges/{id}/pay [post]
func (h *ExchangeHandler) Pay(c *gin.Context) {
	h.step(c, h.exchangeService.Pay)
}

// Complete godoc
// @ID           completeExchange
// @Summary      Complete an exchange
// @Tags         exchanges
// @Produce      json
// @Param        id path string true "Exchange ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.ExchangeResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Difference not settled"
// @Security     BearerAuth
// @Router       /exchanges/{id}/complete [post]
func (h *ExchangeHandler) Complete(c *gin.Context) {
	h.step(c, h.exchangeService.Complete)
}

// Cancel godoc
// @ID           cancelExchange
// @Summary      Cancel an exchange
// @Description  Releases the stock reserved for the additional items
// @Tags         exchanges
// @Produce      json
// @Param        id path string true "Exchange ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.ExchangeResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exchanges/{id}/cancel [post]
func (h *ExchangeHandler) Cancel(c *gin.Context) {
	h.step(c, h.exchangeService.Cancel)
}

func (h *ExchangeHandler) step(c *gin.Context, fn func(ctx context.Context, storeID, exchangeID uuid.UUID) (*apptrade.ExchangeResult, error)) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	exchangeID, ok := h.pathID(c, "id", "exchange")
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), storeID, exchangeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
