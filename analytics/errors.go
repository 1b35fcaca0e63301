package analytics

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid analytics configuration")
	// ErrInvalidRequest indicates a request that cannot be sent as-is
	ErrInvalidRequest = errors.New("invalid analytics request")
)

// TransportError indicates the request never produced an HTTP response:
// connection refused, DNS failure, timeout, or a broken body read.
type TransportError struct {
	URL string
	Err error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

// Unwrap returns the underlying transport failure
func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx response from the Tribe API. Body carries
// the raw response text; it is never parsed as a success payload.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("analytics API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("analytics API error: status %d: %s", e.StatusCode, e.Body)
}

// IsAuthFailure checks if the error indicates a rejected or missing API key
func (e *APIError) IsAuthFailure() bool {
	return e.StatusCode == 401
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsClientError checks if the error indicates a request-side problem
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsServerError checks if the error indicates a server-side failure
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// MalformedResponseError indicates a 2xx response whose body could not be
// decoded as the expected JSON shape.
type MalformedResponseError struct {
	URL string
	Err error
}

// Error implements the error interface
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying decode failure
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
