package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/event"
)

// OutboxHandler exposes the event outbox to operators
type OutboxHandler struct {
	BaseHandler
	outboxService *event.OutboxService
}

// NewOutboxHandler creates a new outbox handler
func NewOutboxHandler(outboxService *event.OutboxService) *OutboxHandler {
	return &OutboxHandler{
		outboxService: outboxService,
	}
}

// PurgeResponse reports how many delivered entries were deleted
type PurgeResponse struct {
	Purged int64 `json:"purged" example:"120"`
}

// RetryAllResponse reports how many dead entries were requeued
type RetryAllResponse struct {
	Retried int64 `json:"retried" example:"3"`
}

// GetDeadLetterEntries godoc
// @ID           getOutboxDeadLetterEntries
// @Summary      List dead letter entries
// @Description  Events that exhausted their delivery retries
// @Tags         outbox
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[event.OutboxListResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/outbox/dead [get]
func (h *OutboxHandler) GetDeadLetterEntries(c *gin.Context) {
	var filter event.OutboxFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.outboxService.GetDeadLetterEntries(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetEntry godoc
// @ID           getOutboxEntry
// @Summary      Get an outbox entry
// @Tags         outbox
// @Produce      json
// @Param        id path string true "Outbox entry ID" format(uuid)
// @Success      200 {object} APIResponse[event.OutboxEntryDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/outbox/{id} [get]
func (h *OutboxHandler) GetEntry(c *gin.Context) {
	id, ok := h.pathID(c, "id", "entry")
	if !ok {
		return
	}

	entry, err := h.outboxService.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// RetryDeadEntry godoc
// @ID           retryOutboxDeadEntry
// @Summary      Requeue a dead entry
// @Description  Resets the retry counter and hands the entry back to the outbox processor
// @Tags         outbox
// @Produce      json
// @Param        id path string true "Outbox entry ID" format(uuid)
// @Success      200 {object} APIResponse[event.OutboxEntryDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Entry is not dead"
// @Security     BearerAuth
// @Router       /admin/outbox/{id}/retry [post]
func (h *OutboxHandler) RetryDeadEntry(c *gin.Context) {
	id, ok := h.pathID(c, "id", "entry")
	if !ok {
		return
	}

	entry, err := h.outboxService.RetryDeadEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// RetryAllDeadEntries godoc
// @ID           retryAllOutboxDeadEntries
// @Summary      Requeue every dead entry
// @Tags         outbox
// @Produce      json
// @Success      200 {object} APIResponse[RetryAllResponse]
// @Security     BearerAuth
// @Router       /admin/outbox/dead/retry-all [post]
func (h *OutboxHandler) RetryAllDeadEntries(c *gin.Context) {
	count, err := h.outboxService.RetryAllDeadEntries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RetryAllResponse{Retried: count})
}

// GetStats godoc
// @ID           getOutboxStats
// @Summary      Outbox counts by status
// @Tags         outbox
// @Produce      json
// @Success      200 {object} APIResponse[event.OutboxStatsDTO]
// @Security     BearerAuth
// @Router       /admin/outbox/stats [get]
func (h *OutboxHandler) GetStats(c *gin.Context) {
	stats, err := h.outboxService.GetStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// PurgeSent godoc
// @ID           purgeSentOutboxEntries
// @Summary      Purge delivered entries
// @Description  Deletes sent entries processed before now minus older_than (Go duration, at least 1h)
// @Tags         outbox
// @Produce      json
// @Param        older_than query string false "Minimum age" default(168h)
// @Success      200 {object} APIResponse[PurgeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/outbox/sent/purge [post]
func (h *OutboxHandler) PurgeSent(c *gin.Context) {
	olderThan := 7 * 24 * time.Hour
	if raw := c.Query("older_than"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			h.BadRequest(c, "Invalid older_than duration")
			return
		}
		olderThan = d
	}

	n, err := h.outboxService.PurgeSent(c.Request.Context(), olderThan)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PurgeResponse{Purged: n})
}
