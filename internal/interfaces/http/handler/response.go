package handler

import "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/dto"

// Envelope types below only describe payloads for the generated API docs;
// handlers write dto.Response directly.

// APIResponse is the success envelope around a single resource or action result
type APIResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data"`
}

// PagedResponse is the success envelope of a paginated list
type PagedResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    []T       `json:"data"`
	Meta    *dto.Meta `json:"meta"`
}

// ErrorResponse is the failure envelope. error.code carries the domain code,
// e.g. INSUFFICIENT_STOCK or OVER_REFUND.
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
