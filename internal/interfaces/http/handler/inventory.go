package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/inventory"
)

// InventoryHandler handles stock levels and the movement log
type InventoryHandler struct {
	BaseHandler
	inventoryService *appinv.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *appinv.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// GetLevel godoc
// @ID           getInventoryLevel
// @Summary      Get a stock level
// @Description  Stock of one variant at one location
// @Tags         inventory
// @Produce      json
// @Param        variant_id query string true "Variant ID" format(uuid)
// @Param        location_id query string true "Location ID" format(uuid)
// @Success      200 {object} APIResponse[appinv.InventoryItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/levels [get]
func (h *InventoryHandler) GetLevel(c *gin.Context) {
	variantID, ok := h.queryID(c, "variant_id")
	if !ok {
		return
	}
	locationID, ok := h.queryID(c, "location_id")
	if !ok {
		return
	}
	if variantID == nil || locationID == nil {
		h.BadRequest(c, "variant_id and location_id are required")
		return
	}

	level, err := h.inventoryService.GetLevel(c.Request.Context(), *variantID, *locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// ListLevels godoc
// @ID           listVariantInventoryLevels
// @Summary      List a variant's stock across locations
// @Tags         inventory
// @Produce      json
// @Param        variant_id path string true "Variant ID" format(uuid)
// @Success      200 {object} APIResponse[[]appinv.InventoryItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/variants/{variant_id}/levels [get]
func (h *InventoryHandler) ListLevels(c *gin.Context) {
	variantID, ok := h.pathID(c, "variant_id", "variant")
	if !ok {
		return
	}

	levels, err := h.inventoryService.ListLevels(c.Request.Context(), variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, levels)
}

// Adjust godoc
// @ID           adjustInventory
// @Summary      Adjust stock on hand
// @Description  Applies a signed delta. On hand stock may not drop below what is reserved.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body appinv.AdjustStockRequest true "Adjustment"
// @Success      200 {object} APIResponse[appinv.MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "INVALID_ADJUSTMENT"
// @Security     BearerAuth
// @Router       /inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req appinv.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	movement, err := h.inventoryService.Adjust(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// Receive godoc
// @ID           receiveInventory
// @Summary      Receive stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body appinv.ReceiveStockRequest true "Received quantity"
// @Success      200 {object} APIResponse[appinv.MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/receive [post]
func (h *InventoryHandler) Receive(c *gin.Context) {
	var req appinv.ReceiveStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	movement, err := h.inventoryService.Receive(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// Count godoc
// @ID           countInventory
// @Summary      Record a stock count
// @Description  Sets on hand stock to the counted quantity and logs the difference as an adjustment
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body appinv.CountStockRequest true "Count"
// @Success      200 {object} APIResponse[appinv.InventoryItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/count [post]
func (h *InventoryHandler) Count(c *gin.Context) {
	var req appinv.CountStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	level, err := h.inventoryService.Count(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// Transfer godoc
// @ID           transferInventory
// @Summary      Move stock between locations
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body appinv.TransferStockRequest true "Transfer"
// @Success      200 {object} APIResponse[[]appinv.MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "INSUFFICIENT_STOCK"
// @Security     BearerAuth
// @Router       /inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req appinv.TransferStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	movements, err := h.inventoryService.Transfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movements)
}

// SetBackorder godoc
// @ID           setInventoryBackorder
// @Summary      Allow or forbid backorders
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body appinv.SetBackorderRequest true "Backorder flag"
// @Success      200 {object} APIResponse[appinv.InventoryItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/backorder [post]
func (h *InventoryHandler) SetBackorder(c *gin.Context) {
	var req appinv.SetBackorderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	level, err := h.inventoryService.SetBackorder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// ListMovements godoc
// @ID           listInventoryMovements
// @Summary      List stock movements
// @Description  The append-only movement log, newest first
// @Tags         inventory
// @Produce      json
// @Param        variant_id query string false "Variant ID" format(uuid)
// @Param        location_id query string false "Location ID" format(uuid)
// @Param        type query string false "Movement type" Enums(reservation, release, consumption, adjustment, transfer_in, transfer_out)
// @Param        reference_type query string false "Reference type"
// @Param        reference_id query string false "Reference ID" format(uuid)
// @Param        from query string false "Created at or after (RFC3339)"
// @Param        to query string false "Created at or before (RFC3339)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} PagedResponse[appinv.MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var filter appinv.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}
	var ok bool
	if filter.VariantID, ok = h.queryID(c, "variant_id"); !ok {
		return
	}
	if filter.LocationID, ok = h.queryID(c, "location_id"); !ok {
		return
	}
	if filter.ReferenceID, ok = h.queryID(c, "reference_id"); !ok {
		return
	}

	movements, total, err := h.inventoryService.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := paging(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, movements, total, page, pageSize)
}

// MovementsByReference godoc
// @ID           listInventoryMovementsByReference
// @Summary      Movements caused by one document
// @Description  E.g. every reservation, release and consumption of an order
// @Tags         inventory
// @Produce      json
// @Param        type path string true "Reference type" example(order)
// @Param        id path string true "Reference ID" format(uuid)
// @Success      200 {object} APIResponse[[]appinv.MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/movements/by-reference/{type}/{id} [get]
func (h *InventoryHandler) MovementsByReference(c *gin.Context) {
	refID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reference ID")
		return
	}

	movements, err := h.inventoryService.MovementsByReference(c.Request.Context(), c.Param("type"), refID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movements)
}
