package eutils

import (
	"errors"
	"fmt"
)

// Common errors returned by the E-utilities client.
var (
	// ErrNotFound indicates the identifier is unknown to PubMed.
	ErrNotFound = errors.New("not found in PubMed")

	// ErrTransport indicates a network, timeout or HTTP failure after all attempts.
	ErrTransport = errors.New("E-utilities transport failure")

	// ErrRateLimited indicates the server answered 429. It is retried like any
	// other failed attempt.
	ErrRateLimited = errors.New("E-utilities rate limit exceeded")

	// ErrInvalidResponse indicates a body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from E-utilities")
)

// APIError represents a non-200 response from E-utilities.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("E-utilities %s error (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates an unknown identifier.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsTransport returns true if the error is a terminal transport failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
