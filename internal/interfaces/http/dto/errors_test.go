package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeAlreadyExists, http.StatusConflict},
		{shared.CodeConcurrencyConflict, http.StatusConflict},
		{shared.CodeValidation, http.StatusBadRequest},
		{shared.CodeUnauthorized, http.StatusUnauthorized},
		{shared.CodeInvalidState, http.StatusUnprocessableEntity},
		{shared.CodeInvalidTransition, http.StatusUnprocessableEntity},
		{shared.CodeInsufficientStock, http.StatusUnprocessableEntity},
		{shared.CodeInsufficientReservation, http.StatusUnprocessableEntity},
		{shared.CodeInvalidAdjustment, http.StatusUnprocessableEntity},
		{shared.CodeInvalidAmount, http.StatusUnprocessableEntity},
		{shared.CodeOverRefund, http.StatusUnprocessableEntity},
		{shared.CodeOverReturn, http.StatusUnprocessableEntity},
		{shared.CodeGatewayFailure, http.StatusBadGateway},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeInternal, http.StatusInternalServerError},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(shared.CodeNotFound, "Order not found", "req-123-456")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, shared.CodeNotFound, resp.Error.Code)
	assert.Equal(t, "Order not found", resp.Error.Message)
	assert.Equal(t, "req-123-456", resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "quantity", Message: "Must be greater than 0"},
		{Field: "location_id", Message: "Must be a valid UUID"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, shared.CodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "quantity", resp.Error.Details[0].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(shared.CodeOverRefund, "Refund exceeds the amount paid", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["success"])
	assert.NotContains(t, raw, "data")

	errObj, ok := raw["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "OVER_REFUND", errObj["code"])
	assert.Equal(t, "req-test-123", errObj["request_id"])
	assert.NotContains(t, errObj, "details")
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now()

	assert.False(t, resp.Error.Timestamp.Before(before))
	assert.False(t, resp.Error.Timestamp.After(after))
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"order_number": "ORD-20240101-00001"})

	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
	assert.NotNil(t, resp.Data)
}

func TestNewSuccessResponseWithMetaPagination(t *testing.T) {
	tests := []struct {
		name          string
		total         int64
		pageSize      int
		expectedPages int
	}{
		{"exact multiple", 100, 10, 10},
		{"with remainder", 101, 10, 11},
		{"fewer than a page", 5, 10, 1},
		{"empty", 0, 10, 0},
		{"zero page size", 7, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta([]string{}, tt.total, 1, tt.pageSize)
			require.NotNil(t, resp.Meta)
			assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		})
	}
}

func TestListRequest_Normalize(t *testing.T) {
	req := ListRequest{}
	req.Normalize()
	assert.Equal(t, DefaultListRequest(), req)

	req = ListRequest{Page: 3, PageSize: 25}
	req.Normalize()
	assert.Equal(t, 50, req.Offset())
}
