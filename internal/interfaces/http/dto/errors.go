package dto

import (
	"net/http"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
)

// Transport error codes. Domain failures keep the code of the
// shared.DomainError that caused them.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	ErrCodeTimeout      = "REQUEST_TIMEOUT"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "INVALID_TOKEN"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	// Input errors -> 400 Bad Request
	shared.CodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,

	// Auth errors
	shared.CodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeForbidden:        http.StatusForbidden,

	// Resource errors
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	shared.CodeInvalidState:            http.StatusUnprocessableEntity,
	shared.CodeInvalidTransition:       http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock:       http.StatusUnprocessableEntity,
	shared.CodeInsufficientReservation: http.StatusUnprocessableEntity,
	shared.CodeInvalidAdjustment:       http.StatusUnprocessableEntity,
	shared.CodeInvalidAmount:           http.StatusUnprocessableEntity,
	shared.CodeOverRefund:              http.StatusUnprocessableEntity,
	shared.CodeOverReturn:              http.StatusUnprocessableEntity,

	// The gateway answered badly or not at all
	shared.CodeGatewayFailure: http.StatusBadGateway,

	ErrCodeTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited: http.StatusTooManyRequests,
	ErrCodeTimeout:     http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
