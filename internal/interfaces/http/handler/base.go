package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/logger"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/dto"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID returns the id bound by the RequestID middleware
func getRequestID(c *gin.Context) string {
	return c.GetString(logger.GinRequestIDKey)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, shared.CodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError writes a 400 response for a request that failed to bind
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError converts service errors to HTTP responses. Domain errors keep
// their code; anything else is logged and reported as a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if code := shared.ErrorCode(err); code != "" {
		message := err.Error()
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			message = domainErr.Message
		}
		h.Error(c, dto.GetHTTPStatus(code), code, message)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.Error(c, http.StatusGatewayTimeout, dto.ErrCodeTimeout, "The request took too long to complete")
		return
	}

	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err), zap.String("path", c.FullPath()))
	h.InternalError(c, "An unexpected error occurred")
}

// storeID returns the store the caller's token is scoped to. It writes a 401
// and returns false when the request carries none.
func (h *BaseHandler) storeID(c *gin.Context) (uuid.UUID, bool) {
	id := middleware.GetStoreID(c)
	if id == uuid.Nil {
		h.Unauthorized(c, "Store scope missing from token")
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses the named path parameter as a UUID, writing a 400 on failure
func (h *BaseHandler) pathID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds and validates the request body, writing a 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.ValidationError(c, err)
		return false
	}
	return true
}

// bindOptionalJSON binds a body that may be absent entirely
func (h *BaseHandler) bindOptionalJSON(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return h.bindJSON(c, obj)
}
