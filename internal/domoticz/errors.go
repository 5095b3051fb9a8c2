package domoticz

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (connection refused, timeout, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the server refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeHTTP indicates an HTTP-level error (non-200 status code)
	ErrTypeHTTP
	// ErrTypeAPI indicates the server answered 200 with a JSON status other than "OK"
	ErrTypeAPI
	// ErrTypeParse indicates a parsing error (malformed JSON, non-numeric data)
	ErrTypeParse
	// ErrTypeNotFound indicates the device index is unknown to the server
	ErrTypeNotFound
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeAPI:
		return "API Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeNotFound:
		return "Device Not Found"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// StoreError represents an error that occurred talking to the Domoticz server
type StoreError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	APIStatus  string    // JSON status field from the server (if applicable)
	Err        error     // Underlying error (if any)
	Host       string    // Server host (for context)
	Retryable  bool      // Whether the error is retryable
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *StoreError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes an error and returns a more specific error type
func ClassifyNetworkError(err error, host string) *StoreError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &StoreError{
			Type:      ErrTypeTimeout,
			Message:   "Request timed out",
			Err:       err,
			Host:      host,
			Retryable: true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &StoreError{
			Type:      ErrTypeDNS,
			Message:   fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:       err,
			Host:      host,
			Retryable: false,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &StoreError{
			Type:      ErrTypeConnectionRefused,
			Message:   "Server refused connection",
			Err:       err,
			Host:      host,
			Retryable: true,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Recursively classify the underlying error
		return ClassifyNetworkError(urlErr.Err, host)
	}

	return &StoreError{
		Type:      ErrTypeNetwork,
		Message:   "Network error occurred",
		Err:       err,
		Host:      host,
		Retryable: true,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *StoreError {
	classified := ClassifyNetworkError(err, "")
	if classified != nil {
		classified.Message = message
		return classified
	}
	return &StoreError{
		Type:      ErrTypeNetwork,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(statusCode int, message string) *StoreError {
	retryable := statusCode >= 500 // Server errors are retryable
	return &StoreError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
	}
}

// NewAPIError creates an error for a 200 response whose JSON status is not "OK"
func NewAPIError(apiStatus, message string) *StoreError {
	return &StoreError{
		Type:      ErrTypeAPI,
		Message:   message,
		APIStatus: apiStatus,
		Retryable: false,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *StoreError {
	return &StoreError{
		Type:      ErrTypeParse,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// NewNotFoundError creates an error for a device index the server does not know
func NewNotFoundError(idx int) *StoreError {
	return &StoreError{
		Type:      ErrTypeNotFound,
		Message:   fmt.Sprintf("no device with idx %d", idx),
		Retryable: false,
	}
}

// IsAPIError checks if an error is an API-status error
func IsAPIError(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Type == ErrTypeAPI
	}
	return false
}

// IsNotFound checks if an error means the device index is unknown
func IsNotFound(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Type == ErrTypeNotFound
	}
	return false
}

// IsNetworkError checks if an error is a network error (including timeout,
// connection refused and DNS failures)
func IsNetworkError(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Type == ErrTypeNetwork ||
			storeErr.Type == ErrTypeTimeout ||
			storeErr.Type == ErrTypeConnectionRefused ||
			storeErr.Type == ErrTypeDNS
	}
	return false
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Retryable
	}
	// Unknown errors are not retryable by default
	return false
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		return err.Error()
	}

	switch storeErr.Type {
	case ErrTypeTimeout:
		return "Server not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Connection refused - is Domoticz running on that host and port?"
	case ErrTypeDNS:
		return "Cannot resolve server hostname"
	case ErrTypeHTTP:
		return fmt.Sprintf("Server error (HTTP %d)", storeErr.StatusCode)
	case ErrTypeAPI:
		return fmt.Sprintf("Domoticz rejected the request (status %q)", storeErr.APIStatus)
	case ErrTypeNotFound:
		return storeErr.Message + " - check the device idx in Domoticz"
	case ErrTypeParse:
		return "Failed to parse server response"
	default:
		return storeErr.Message
	}
}

// GetTroubleshootingHint returns troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		return "An unexpected error occurred. Please try again."
	}

	switch storeErr.Type {
	case ErrTypeConnectionRefused, ErrTypeTimeout, ErrTypeNetwork:
		return strings.Join([]string{
			"The Domoticz server could not be reached.",
			"Troubleshooting:",
			"  • Check that Domoticz is running",
			"  • Verify the host and port (default is 8080)",
			"  • Check firewall rules between this machine and the server",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the server hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of the hostname",
			"  • Check your DNS settings",
		}, "\n")

	case ErrTypeNotFound:
		return strings.Join([]string{
			"The device idx does not exist on the server.",
			"Troubleshooting:",
			"  • Create a virtual sensor in Domoticz and note its idx",
			"  • List devices under Setup > Devices to find the idx",
		}, "\n")

	case ErrTypeAPI:
		return "Domoticz accepted the connection but rejected the request. Check the server log."

	default:
		return "An error occurred. Please check the error message for details."
	}
}
