package dto

import (
	"net/http"

	"github.com/opsboard/backend/internal/domain/shared"
)

// Transport-only error codes. Domain codes come from the shared package.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeInvalidInput    = shared.CodeInvalidInput
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
	ErrCodeTokenMaxRefresh = "TOKEN_MAX_REFRESH"
	ErrCodeCredentials     = "INVALID_CREDENTIALS"
	ErrCodeAccountInactive = "ACCOUNT_INACTIVE"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Authentication errors -> 401 Unauthorized
	ErrCodeUnauthenticated: http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeTokenInvalid:    http.StatusUnauthorized,
	ErrCodeTokenRevoked:    http.StatusUnauthorized,
	ErrCodeTokenMaxRefresh: http.StatusUnauthorized,
	ErrCodeCredentials:     http.StatusUnauthorized,

	// Permission errors -> 403 Forbidden
	shared.CodeUnauthorized: http.StatusForbidden,
	ErrCodeAccountInactive:  http.StatusForbidden,

	// Resource errors
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	shared.CodeIllegalTransition: http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock: http.StatusUnprocessableEntity,
	shared.CodeUnknownLocation:   http.StatusUnprocessableEntity,
	shared.CodeUnknownItem:       http.StatusUnprocessableEntity,

	// Upstream errors -> 502 Bad Gateway
	shared.CodeSyncFailure: http.StatusBadGateway,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
