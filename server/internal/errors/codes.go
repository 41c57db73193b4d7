package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies the kind of failure reported to API clients.
type ErrorCode string

const (
	// ErrCodeUnauthorized indicates authentication failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeInvalidArgument indicates a malformed request body or parameter.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodePermissionDenied indicates an authenticated caller without access to the resource.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	// ErrCodeRateLimitExceeded indicates the caller sent too many requests.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodePayloadTooLarge indicates the request body exceeded the configured limit.
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	// ErrCodeNotFound indicates an unknown route.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeMethodNotAllowed indicates a known route called with an unsupported method.
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	// ErrCodeInternal indicates a storage or other server-side failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

var statusByCode = map[ErrorCode]int{
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeInvalidArgument:   http.StatusBadRequest,
	ErrCodePermissionDenied:  http.StatusForbidden,
	ErrCodeRateLimitExceeded: http.StatusTooManyRequests,
	ErrCodePayloadTooLarge:   http.StatusRequestEntityTooLarge,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeMethodNotAllowed:  http.StatusMethodNotAllowed,
	ErrCodeInternal:          http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code for c, 500 for unknown codes.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// CodeFromHTTPStatus maps a status produced outside the API handlers
// (router, body limit) back to an error code.
func CodeFromHTTPStatus(status int) ErrorCode {
	for code, s := range statusByCode {
		if s == status {
			return code
		}
	}
	if status >= 400 && status < 500 {
		return ErrCodeInvalidArgument
	}
	return ErrCodeInternal
}

// APIError is a structured error returned by the HTTP API.
type APIError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Convenience constructors for common error types.

// Unauthorized creates an unauthorized error. The cause is logged but never sent to clients.
func Unauthorized(msg string, cause error) *APIError {
	return &APIError{Code: ErrCodeUnauthorized, Message: msg, Cause: cause}
}

// PermissionDenied creates a permission denied error.
func PermissionDenied(msg string) *APIError {
	return &APIError{Code: ErrCodePermissionDenied, Message: msg}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string, cause error) *APIError {
	return &APIError{Code: ErrCodeInvalidArgument, Message: msg, Cause: cause}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *APIError {
	return &APIError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// Internal creates an internal error. The cause is logged but never sent to clients.
func Internal(msg string, cause error) *APIError {
	return &APIError{Code: ErrCodeInternal, Message: msg, Cause: cause}
}

// IsCode reports whether any error in err's chain is an APIError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an APIError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code
	}
	return defaultCode
}
