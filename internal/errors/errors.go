// Package errors defines the service error taxonomy shared by all Orange
// services. Handlers map these to HTTP statuses at the boundary; raw storage
// failures become Internal errors whose detail is logged server-side only.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError carries a machine-readable code and the HTTP status a handler
// should answer with.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Validation reports missing or malformed request input.
func Validation(message string) *ServiceError {
	return &ServiceError{Code: "validation_error", Message: message, HTTPStatus: http.StatusBadRequest}
}

// NotFound reports a missing owner, item or user.
func NotFound(message string) *ServiceError {
	return &ServiceError{Code: "not_found", Message: message, HTTPStatus: http.StatusNotFound}
}

// Unauthorized reports missing identity.
func Unauthorized(message string) *ServiceError {
	return &ServiceError{Code: "unauthorized", Message: message, HTTPStatus: http.StatusUnauthorized}
}

// Forbidden reports mismatched identity.
func Forbidden(message string) *ServiceError {
	return &ServiceError{Code: "forbidden", Message: message, HTTPStatus: http.StatusForbidden}
}

// Internal wraps a storage or unexpected failure with a descriptive prefix.
func Internal(message string, err error) *ServiceError {
	return &ServiceError{Code: "internal_error", Message: message, HTTPStatus: http.StatusInternalServerError, Err: err}
}

// Unavailable reports an unreachable collaborator (queue, relay).
func Unavailable(message string, err error) *ServiceError {
	return &ServiceError{Code: "unavailable", Message: message, HTTPStatus: http.StatusServiceUnavailable, Err: err}
}

// RateLimitExceeded reports that a client exceeded its request budget.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return &ServiceError{
		Code:       "rate_limit_exceeded",
		Message:    fmt.Sprintf("rate limit of %d requests per %s exceeded", limit, window),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Status extracts the HTTP status for an error, defaulting to 500.
func Status(err error) int {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is (or wraps) a not-found condition.
func IsNotFound(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Code == "not_found"
}
