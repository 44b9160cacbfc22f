package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error that occurred during a fetch operation
type ErrorType string

const (
	// ErrorTypeNetwork indicates a network-level error (connection refused, DNS, etc.)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit indicates the request was rejected due to rate limiting (HTTP 429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer indicates a server error (HTTP 5xx)
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient indicates a client error (HTTP 4xx except 429)
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeValidation indicates the response was received but could not be used
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeTimeout indicates the request timed out
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeCanceled indicates the caller gave up before the request finished
	ErrorTypeCanceled ErrorType = "canceled"
)

// FetchError represents a structured error from a fetch operation
type FetchError struct {
	Type       ErrorType
	Retryable  bool
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Type, msg)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error
func NewValidationError(message string) *FetchError {
	return &FetchError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// ClassifyRequestError wraps a transport-level failure. Context errors are
// kept distinguishable so callers can tell a timeout from a dead network.
func ClassifyRequestError(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &FetchError{Type: ErrorTypeTimeout, Retryable: true, Message: "request timed out", Cause: err}
	case errors.Is(err, context.Canceled):
		return &FetchError{Type: ErrorTypeCanceled, Message: "request canceled", Cause: err}
	default:
		return &FetchError{Type: ErrorTypeNetwork, Retryable: true, Message: "network request failed", Cause: err}
	}
}

// ClassifyHTTPError classifies an HTTP status code into an appropriate FetchError
func ClassifyHTTPError(statusCode int) *FetchError {
	e := &FetchError{StatusCode: statusCode}

	switch {
	case statusCode == http.StatusTooManyRequests:
		e.Type, e.Retryable, e.Message = ErrorTypeRateLimit, true, "rate limit exceeded"
	case statusCode == http.StatusRequestTimeout:
		e.Type, e.Retryable, e.Message = ErrorTypeTimeout, true, "request timed out"
	case statusCode >= 500:
		e.Type, e.Retryable, e.Message = ErrorTypeServer, true, "server returned an error"
	case statusCode >= 400:
		e.Type, e.Message = ErrorTypeClient, fmt.Sprintf("client error: HTTP %d", statusCode)
	default:
		e.Type, e.Message = ErrorTypeValidation, fmt.Sprintf("unexpected status code: %d", statusCode)
	}

	return e
}

// IsRetryable reports whether err is a FetchError worth another attempt.
func IsRetryable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Retryable
}
