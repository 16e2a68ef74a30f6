package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code.
// This lets callers write errors.Is(err, shared.ErrInsufficientStock) even when
// the returned error has a more specific message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeIllegalTransition   = "ILLEGAL_TRANSITION"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeUnknownLocation     = "UNKNOWN_LOCATION"
	CodeUnknownItem         = "UNKNOWN_ITEM"
	CodeSyncFailure         = "SYNC_FAILURE"
	CodeAlreadyExists       = "ALREADY_EXISTS"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrIllegalTransition   = NewDomainError(CodeIllegalTransition, "Status change is not allowed from the current status")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrUnknownLocation     = NewDomainError(CodeUnknownLocation, "Unknown location")
	ErrUnknownItem         = NewDomainError(CodeUnknownItem, "Unknown item")
	ErrSyncFailure         = NewDomainError(CodeSyncFailure, "Sync with the external source failed")
)

// CodeOf returns the code of the first DomainError in err's chain, or "" if there is none.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
