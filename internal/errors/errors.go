package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/cardfeed/backend/internal/repository"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: code.StatusCode()}
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return newError(ErrNotFound, fmt.Sprintf("%s not found", resource))
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *APIError {
	return newError(ErrUnauthorized, message)
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	return newError(ErrForbidden, message)
}

// Conflict creates a CONFLICT error with a client-facing message
func Conflict(message string) *APIError {
	return newError(ErrConflict, message)
}

// ValidationError creates a VALIDATION_ERROR
func ValidationError(field, message string) *APIError {
	e := newError(ErrValidation, message)
	e.Field = field
	return e
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return newError(ErrBadRequest, message)
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return newError(ErrInternalError, message)
}

// RateLimited creates a RATE_LIMITED error
func RateLimited(message string) *APIError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return newError(ErrRateLimited, message)
}

// ServiceUnavailable creates a SERVICE_UNAVAILABLE error
func ServiceUnavailable(service string) *APIError {
	return newError(ErrServiceUnavail, fmt.Sprintf("%s is temporarily unavailable", service))
}

// WithDetails returns a copy of the error carrying details
func (e *APIError) WithDetails(details string) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

// Is matches API errors by code so wrapped sentinels compare with errors.Is
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Message == e.Message
}

// FromError maps domain and storage errors onto an APIError. resource names
// the thing being looked up in not-found messages. Unknown errors become a
// generic 500 so internals never leak to clients.
func FromError(err error, resource string) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case stderrors.Is(err, repository.ErrInvalidID):
		return BadRequest(fmt.Sprintf("invalid %s id", resource))
	case stderrors.Is(err, repository.ErrNotFound):
		return NotFound(resource)
	case stderrors.Is(err, repository.ErrConflict):
		return Conflict(fmt.Sprintf("%s already exists", resource))
	case stderrors.Is(err, repository.ErrInvalidInput):
		return BadRequest(fmt.Sprintf("invalid %s", resource))
	}
	return InternalError("internal server error")
}
