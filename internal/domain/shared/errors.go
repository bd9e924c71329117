package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, shared.ErrOverRefund) matches any over-refund error
// regardless of its message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// Error codes
const (
	CodeNotFound                = "NOT_FOUND"
	CodeAlreadyExists           = "ALREADY_EXISTS"
	CodeValidation              = "VALIDATION_ERROR"
	CodeConcurrencyConflict     = "CONCURRENCY_CONFLICT"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeInvalidState            = "INVALID_STATE"
	CodeInvalidTransition       = "INVALID_TRANSITION"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeInsufficientReservation = "INSUFFICIENT_RESERVATION"
	CodeInvalidAdjustment       = "INVALID_ADJUSTMENT"
	CodeInvalidAmount           = "INVALID_AMOUNT"
	CodeOverRefund              = "OVER_REFUND"
	CodeOverReturn              = "OVER_RETURN"
	CodeGatewayFailure          = "GATEWAY_FAILURE"
)

// Common domain errors
var (
	ErrNotFound                = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists           = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrValidation              = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict     = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized            = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrInvalidState            = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidTransition       = NewDomainError(CodeInvalidTransition, "Status transition not allowed")
	ErrInsufficientStock       = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInsufficientReservation = NewDomainError(CodeInsufficientReservation, "Insufficient reserved stock")
	ErrInvalidAdjustment       = NewDomainError(CodeInvalidAdjustment, "Invalid stock adjustment")
	ErrInvalidAmount           = NewDomainError(CodeInvalidAmount, "Amount must be positive")
	ErrOverRefund              = NewDomainError(CodeOverRefund, "Refund exceeds the amount paid")
	ErrOverReturn              = NewDomainError(CodeOverReturn, "Return exceeds the fulfilled quantity")
	ErrGatewayFailure          = NewDomainError(CodeGatewayFailure, "Payment gateway declined or did not answer")
)

// TransitionError is returned when a status field is asked to move along an
// edge its transition table does not contain.
type TransitionError struct {
	Field string
	From  string
	To    string
}

// NewTransitionError creates a new transition error
func NewTransitionError(field, from, to string) *TransitionError {
	return &TransitionError{Field: field, From: from, To: to}
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change %s from %s to %s", e.Field, e.From, e.To)
}

// Is matches ErrInvalidTransition
func (e *TransitionError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == CodeInvalidTransition
}

// ErrorCode extracts the domain error code carried by err, or "" if err is not
// a domain error.
func ErrorCode(err error) string {
	switch e := err.(type) {
	case nil:
		return ""
	case *DomainError:
		return e.Code
	case *TransitionError:
		return CodeInvalidTransition
	}
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return ErrorCode(u.Unwrap())
	}
	return ""
}
