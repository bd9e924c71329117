package handler

import (
	"github.com/gin-gonic/gin"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
)

// ClaimHandler handles claims for damaged or wrong items
type ClaimHandler struct {
	BaseHandler
	claimService *apptrade.ClaimService
}

// NewClaimHandler creates a new ClaimHandler
func NewClaimHandler(claimService *apptrade.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// Create godoc
// @ID           createClaim
// @Summary      Open a claim
// @Tags         claims
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body apptrade.CreateClaimRequest true "Claim"
// @Success      201 {object} APIResponse[apptrade.ClaimResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/claims [post]
func (h *ClaimHandler) Create(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req apptrade.CreateClaimRequest
	if !h.bindJSON(c, &req) {
		return
	}

	claim, err := h.claimService.Create(c.Request.Context(), storeID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, claim)
}

// ListByOrder godoc
// @ID           listOrderClaims
// @Summary      List the claims of an order
// @Tags         claims
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[[]apptrade.ClaimResponse]
// @Security     BearerAuth
// @Router       /orders/{id}/claims [get]
func (h *ClaimHandler) ListByOrder(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	claims, err := h.claimService.ListByOrder(c.Request.Context(), storeID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, claims)
}

// Get godoc
// @ID           getClaim
// @Summary      Get a claim
// @Tags         claims
// @Produce      json
// @Param        id path string true "Claim ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.ClaimResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /claims/{id} [get]
func (h *ClaimHandler) Get(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	claimID, ok := h.pathID(c, "id", "claim")
	if !ok {
		return
	}

	claim, err := h.claimService.Get(c.Request.Context(), storeID, claimID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, claim)
}

// Approve godoc
// @ID           approveClaim
// @Summary      Approve a claim
// @Description  Refund claims pay out the claim amount. Replace claims create a replacement order.
// @Tags         claims
// @Produce      json
// @Param        id path string true "Claim ID" format(uuid)
// @Success      200 {object} APIResponse[apptrade.ClaimResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /claims/{id}/approve [post]
func (h *ClaimHandler) Approve(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	claimID, ok := h.pathID(c, "id", "claim")
	if !ok {
		return
	}

	claim, err := h.claimService.Approve(c.Request.Context(), storeID, claimID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, claim)
}

// Reject godoc
// @ID           rejectClaim
// @Summary      Reject a claim
// @Tags         claims
// @Accept       json
// @Produce      json
// @Param        id path string true "Claim ID" format(uuid)
// @Param        request body apptrade.RejectClaimRequest true "Reason"
// @Success      200 {object} APIResponse[apptrade.ClaimResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /claims/{id}/reject [post]
func (h *ClaimHandler) Reject(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	claimID, ok := h.pathID(c, "id", "claim")
	if !ok {
		return
	}
	var req apptrade.RejectClaimRequest
	if !h.bindJSON(c, &req) {
		return
	}

	claim, err := h.claimService.Reject(c.Request.Context(), storeID, claimID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, claim)
}
