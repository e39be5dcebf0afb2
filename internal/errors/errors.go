// Package errors defines the user-facing error type of the twsdash CLI.
//
// A CLIError carries a message, an optional hint telling the operator what to
// do next, the underlying cause, and the process exit code.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes.
const (
	ExitSuccess = 0
	ExitGeneral = 1
	ExitNetwork = 3  // backend unreachable or non-2xx
	ExitConfig  = 4  // bad configuration
	ExitGateway = 5  // backend reachable, gateway could not answer
	ExitUsage   = 64 // command line usage error (BSD convention)
)

// CLIError is an error that main knows how to present.
type CLIError struct {
	Message string
	Hint    string
	Cause   error
	Code    int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap exposes Cause to errors.Is and errors.As.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a CLIError without a cause.
func New(code int, message string) *CLIError {
	return &CLIError{Message: message, Code: code}
}

// Wrap creates a CLIError around cause.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{Message: message, Cause: cause, Code: code}
}

// WithHint sets the hint and returns e for chaining.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is errors.As specialised for CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// BackendUnreachable is returned when no HTTP exchange with the backend happened.
func BackendUnreachable(baseURL string, cause error) *CLIError {
	return &CLIError{
		Message: "Unable to connect to the server. Please ensure the backend is running.",
		Hint:    fmt.Sprintf("Start the backend or point --api-url somewhere else (currently %s)", baseURL),
		Cause:   cause,
		Code:    ExitNetwork,
	}
}

// BackendStatus is returned when the backend answered with a non-2xx status.
func BackendStatus(status int, message string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Backend returned HTTP %d: %s", status, message),
		Hint:    "Check the backend logs; run 'twsdash doctor' for a full diagnosis",
		Cause:   cause,
		Code:    ExitNetwork,
	}
}

// GatewayRequestFailed is returned when the backend reported an application-level failure.
func GatewayRequestFailed(message string) *CLIError {
	if message == "" {
		message = "no detail provided"
	}

	return &CLIError{
		Message: fmt.Sprintf("TWS request failed: %s", message),
		Hint:    "Ensure TWS is running and accepting API connections, or run 'twsdash connect'",
		Code:    ExitGateway,
	}
}

// GatewayDisconnected is returned by status when the backend has no gateway session.
func GatewayDisconnected(address, detail string) *CLIError {
	message := fmt.Sprintf("TWS is not connected (%s)", address)
	if detail != "" {
		message += ": " + detail
	}

	return &CLIError{
		Message: message,
		Hint:    "Start TWS with the API enabled, then run 'twsdash connect'",
		Code:    ExitGateway,
	}
}

// InvalidAPIURL is returned for a malformed --api-url or api.url value.
func InvalidAPIURL(raw string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Invalid API URL %q", raw),
		Hint:    "Use an absolute http:// or https:// URL, e.g. http://localhost:8000",
		Cause:   cause,
		Code:    ExitUsage,
	}
}

// InvalidTimezone is returned when display.timezone is not a known zone.
func InvalidTimezone(name string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Unknown display timezone %q", name),
		Hint:    "Use an IANA zone name such as America/New_York, or unset display.timezone",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// ConfigFailed is returned when configuration cannot be read or persisted.
func ConfigFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Check permissions on your twsdash config directory",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// NotInteractive is returned when the panel is started without a terminal.
func NotInteractive() *CLIError {
	return &CLIError{
		Message: "The status panel needs an interactive terminal",
		Hint:    "Use 'twsdash status' and 'twsdash time' from scripts",
		Code:    ExitUsage,
	}
}
