package apperror

import (
	"fmt"
	"net/http"
)

// Error represents an application error with HTTP status and error code
type Error struct {
	HTTPStatus int
	Code       string
	Message    string
	Internal   error
	Details    map[string]any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the internal error
func (e *Error) Unwrap() error {
	return e.Internal
}

// Is reports whether target is an *Error with the same code, so copies made
// with WithMessage or WithInternal still match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithInternal returns a copy of the error with an internal error attached
func (e *Error) WithInternal(err error) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    e.Message,
		Internal:   err,
		Details:    e.Details,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *Error) WithMessage(message string) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    message,
		Internal:   e.Internal,
		Details:    e.Details,
	}
}

// WithDetails returns a copy of the error with details attached
func (e *Error) WithDetails(details map[string]any) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    e.Message,
		Internal:   e.Internal,
		Details:    details,
	}
}

// New creates a new application error
func New(status int, code, message string) *Error {
	return &Error{
		HTTPStatus: status,
		Code:       code,
		Message:    message,
	}
}

var (
	// Authentication errors never say which check failed.
	ErrUnauthorized       = New(http.StatusUnauthorized, "unauthorized", "Authentication required")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "invalid_credentials", "User credentials are not valid")
	ErrTooManyRequests    = New(http.StatusTooManyRequests, "too_many_requests", "Too many requests")

	// Resource errors
	ErrJobNotFound = New(http.StatusNotFound, "job_not_found", "Job not found")
	ErrConflict    = New(http.StatusConflict, "conflict", "Resource already exists")

	// Validation errors
	ErrBadRequest = New(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrValidation = New(http.StatusUnprocessableEntity, "validation_error", "Validation failed")

	// Server errors
	ErrDatabase      = New(http.StatusInternalServerError, "database_error", "Database operation failed")
	ErrPublishFailed = New(http.StatusBadGateway, "publish_failed", "Failed to publish job event")
	ErrNotReady      = New(http.StatusServiceUnavailable, "not_ready", "Service is not ready")
)

// NewJobNotFound reports an unknown job name back to the caller.
func NewJobNotFound(name string) *Error {
	return ErrJobNotFound.WithMessage(fmt.Sprintf("Job '%s' not found", name))
}

// NewInternal creates an internal error with a message and optional wrapped error
func NewInternal(message string, err error) *Error {
	return &Error{
		HTTPStatus: http.StatusInternalServerError,
		Code:       "internal_error",
		Message:    message,
		Internal:   err,
	}
}
