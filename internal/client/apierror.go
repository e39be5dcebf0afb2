package client

import (
	"errors"
	"fmt"
)

// Error categories carried in APIError.Category.
const (
	CategoryNetwork         = "Network Error"
	CategoryInvalidResponse = "Invalid Response"
	CategoryUnexpected      = "Unexpected Error"
)

// NetworkErrorMessage is the fixed guidance shown for transport failures.
const NetworkErrorMessage = "Unable to connect to the server. Please ensure the backend is running."

const invalidResponseMessage = "The server returned a response that could not be parsed."

// APIError is the single normalized failure shape of the client.
type APIError struct {
	// Category is a short label: "HTTP 503", "Network Error", ...
	Category string `json:"error"`
	// Message is human-readable.
	Message string `json:"message"`
	// Status is the HTTP status code, 0 when no response was received.
	Status int `json:"status,omitempty"`

	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Category, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap returns the transport or decode error, if any.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// HasStatus reports whether the backend produced an HTTP response.
func (e *APIError) HasStatus() bool {
	return e.Status != 0
}

// IsNetwork reports whether the backend could not be reached at all.
func (e *APIError) IsNetwork() bool {
	return e.Category == CategoryNetwork
}

// AsAPIError returns err as an *APIError, wrapping foreign errors in the
// "Unexpected Error" category. It returns nil for a nil err.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return &APIError{
		Category: CategoryUnexpected,
		Message:  err.Error(),
		Cause:    err,
	}
}

func networkError(cause error) *APIError {
	return &APIError{
		Category: CategoryNetwork,
		Message:  NetworkErrorMessage,
		Cause:    cause,
	}
}

func invalidResponse(status int, cause error) *APIError {
	return &APIError{
		Category: CategoryInvalidResponse,
		Message:  invalidResponseMessage,
		Status:   status,
		Cause:    fmt.Errorf("decode response: %w", cause),
	}
}
