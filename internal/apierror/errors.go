// Package apierror is the terminal error funnel of the HTTP pipeline: every
// request-scoped failure is turned into one uniform JSON error shape here.
package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of an API error.
type ErrorType string

const (
	// ErrorTypeInvalidRequest indicates a malformed or invalid request.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"

	// ErrorTypeNotFound indicates a resource was not found.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeMethodNotAllowed indicates the route exists for other methods.
	ErrorTypeMethodNotAllowed ErrorType = "method_not_allowed"

	// ErrorTypePayloadTooLarge indicates the body exceeded the decoding limit.
	ErrorTypePayloadTooLarge ErrorType = "payload_too_large"

	// ErrorTypeUnsupportedMedia indicates a body the decoder refuses.
	ErrorTypeUnsupportedMedia ErrorType = "unsupported_media_type"

	// ErrorTypeTimeout indicates the request deadline expired.
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeNotImplemented indicates a resource group without handlers.
	ErrorTypeNotImplemented ErrorType = "not_implemented"

	// ErrorTypeServer indicates an internal server error.
	ErrorTypeServer ErrorType = "server"
)

// Error is a request-scoped failure with a client-facing message. Cause
// carries the underlying error and is only exposed in development.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatusCode returns the appropriate HTTP status code for this error.
func (e *Error) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrorTypePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorTypeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new API error.
func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// WithCause attaches the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithStatusCode sets a specific HTTP status code.
func (e *Error) WithStatusCode(code int) *Error {
	e.StatusCode = code
	return e
}

func ErrInvalidRequest(message string) *Error {
	return New(ErrorTypeInvalidRequest, message)
}

func ErrNotFound(message string) *Error {
	return New(ErrorTypeNotFound, message)
}

func ErrMethodNotAllowed(message string) *Error {
	return New(ErrorTypeMethodNotAllowed, message)
}

func ErrPayloadTooLarge(message string) *Error {
	return New(ErrorTypePayloadTooLarge, message)
}

func ErrNotImplemented(message string) *Error {
	return New(ErrorTypeNotImplemented, message)
}

func ErrServer(message string) *Error {
	return New(ErrorTypeServer, message)
}

// As converts any error into an *Error. Oversized bodies map to 413, expired
// request deadlines to 504, everything unknown to a server error wrapping it.
func As(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return ErrPayloadTooLarge("request entity too large").WithCause(err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrorTypeTimeout, "request timed out").WithCause(err)
	}

	return ErrServer("internal server error").WithCause(err)
}
