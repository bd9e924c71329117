package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/logger"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, getRequestID(c))

	c.Set(logger.GinRequestIDKey, "req-1")
	assert.Equal(t, "req-1", getRequestID(c))
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "not found",
			err:     shared.NewDomainError(shared.CodeNotFound, "Order not found"),
			status:  http.StatusNotFound,
			code:    shared.CodeNotFound,
			message: "Order not found",
		},
		{
			name:    "wrapped over refund",
			err:     fmt.Errorf("refund: %w", shared.NewDomainError(shared.CodeOverRefund, "Refund exceeds paid")),
			status:  http.StatusUnprocessableEntity,
			code:    shared.CodeOverRefund,
			message: "Refund exceeds paid",
		},
		{
			name:   "transition",
			err:    shared.NewTransitionError("status", "completed", "pending"),
			status: http.StatusUnprocessableEntity,
			code:   shared.CodeInvalidTransition,
		},
		{
			name:   "concurrency conflict",
			err:    shared.NewDomainError(shared.CodeConcurrencyConflict, "Order was modified"),
			status: http.StatusConflict,
			code:   shared.CodeConcurrencyConflict,
		},
		{
			name:   "gateway failure",
			err:    shared.NewDomainError(shared.CodeGatewayFailure, "Gateway unreachable"),
			status: http.StatusBadGateway,
			code:   shared.CodeGatewayFailure,
		},
		{
			name:   "deadline",
			err:    fmt.Errorf("load order: %w", context.DeadlineExceeded),
			status: http.StatusGatewayTimeout,
			code:   dto.ErrCodeTimeout,
		},
		{
			name:    "unexpected",
			err:     errors.New("disk on fire"),
			status:  http.StatusInternalServerError,
			code:    dto.ErrCodeInternal,
			message: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			var h BaseHandler
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			env := decode[any](t, rec)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, env.Error.Message)
			}
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	var h BaseHandler
	h.HandleError(c, nil)
	assert.Zero(t, rec.Body.Len())
}

func TestBaseHandler_StoreIDMissing(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("X-Anonymous", "1")
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, shared.CodeUnauthorized, decode[any](t, rec).Error.Code)
}

func TestBaseHandler_InvalidPathID(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/orders/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid order ID", decode[any](t, rec).Error.Message)
}

func TestPaging(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, defaultPageSize},
		{3, 10, 3, 10},
		{2, 500, 2, maxPageSize},
	}
	for _, tt := range tests {
		page, size := paging(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantSize, size)
	}
}

func TestBaseHandler_QueryID(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/orders?customer_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/orders?customer_id="+uuid.NewString(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
