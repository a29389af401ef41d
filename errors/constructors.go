package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *StoreError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *StoreError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// Transport creates an error for a request that never produced a response
func Transport(endpoint string, err error) *StoreError {
	return Wrap(err, ErrCodeTransport, fmt.Sprintf("request to %s failed", endpoint)).
		WithDetail("endpoint", endpoint)
}

// HTTPStatus creates an error for a non-success response
func HTTPStatus(endpoint string, status int) *StoreError {
	return New(ErrCodeHTTPStatus, fmt.Sprintf("%s returned status %d", endpoint, status)).
		WithDetail("endpoint", endpoint).
		WithDetail("status", status)
}

// MalformedBody creates an error for a response body that is not valid JSON
func MalformedBody(endpoint string, err error) *StoreError {
	return Wrap(err, ErrCodeMalformedBody, fmt.Sprintf("%s returned a malformed body", endpoint)).
		WithDetail("endpoint", endpoint)
}

// MissingData creates an error for a response without a top-level data field
func MissingData(endpoint string) *StoreError {
	return New(ErrCodeMissingData, fmt.Sprintf("%s response has no data field", endpoint)).
		WithDetail("endpoint", endpoint)
}

// SchemaMismatch creates an error for records that fail validation
func SchemaMismatch(endpoint string, err error) *StoreError {
	return Wrap(err, ErrCodeSchemaMismatch, fmt.Sprintf("%s returned records that do not match the expected schema", endpoint)).
		WithDetail("endpoint", endpoint)
}

// InvalidInput creates an error for a rejected caller argument
func InvalidInput(reason string) *StoreError {
	return New(ErrCodeInvalidInput, reason)
}

// DaemonUnavailable creates an error for operations that need a running daemon
func DaemonUnavailable(socket string, err error) *StoreError {
	return Wrap(err, ErrCodeDaemonUnavailable, "casemgmt daemon is not reachable").
		WithDetail("socket", socket)
}

// NotReady creates an error for a daemon endpoint whose backing state is not
// set up yet
func NotReady(what string) *StoreError {
	return New(ErrCodeNotReady, fmt.Sprintf("%s not initialized", what))
}

// MethodNotAllowed creates an error for a request with an unsupported method
func MethodNotAllowed(method string, allowed ...string) *StoreError {
	return New(ErrCodeMethodNotAllowed, fmt.Sprintf("method %s not allowed", method)).
		WithDetail("allowed", allowed)
}
