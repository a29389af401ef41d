package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// Fetch errors, one per failure class of a reference-list request
	ErrCodeTransport      ErrorCode = "TRANSPORT"
	ErrCodeHTTPStatus     ErrorCode = "HTTP_STATUS"
	ErrCodeMalformedBody  ErrorCode = "MALFORMED_BODY"
	ErrCodeMissingData    ErrorCode = "MISSING_DATA"
	ErrCodeSchemaMismatch ErrorCode = "SCHEMA_MISMATCH"

	// Daemon errors
	ErrCodeDaemonUnavailable ErrorCode = "DAEMON_UNAVAILABLE"
	ErrCodeNotReady          ErrorCode = "NOT_READY"
	ErrCodeMethodNotAllowed  ErrorCode = "METHOD_NOT_ALLOWED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// StoreError represents a structured error with context
type StoreError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *StoreError) WithDetail(key string, value interface{}) *StoreError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *StoreError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new StoreError
func New(code ErrorCode, message string) *StoreError {
	return &StoreError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a StoreError
func Wrap(err error, code ErrorCode, message string) *StoreError {
	return &StoreError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific StoreError code
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	storeErr, ok := err.(*StoreError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return storeErr.Code
}

// IsFetchError reports whether err came from a failed backend request.
func IsFetchError(err error) bool {
	switch GetCode(err) {
	case ErrCodeTransport, ErrCodeHTTPStatus, ErrCodeMalformedBody, ErrCodeMissingData, ErrCodeSchemaMismatch:
		return true
	}
	return false
}

// StatusCode returns the HTTP status the daemon answers with for err.
// Errors without a code are internal.
func StatusCode(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeConfigInvalid:
		return http.StatusBadRequest
	case ErrCodeConfigNotFound:
		return http.StatusNotFound
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeNotReady, ErrCodeDaemonUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTransport, ErrCodeHTTPStatus, ErrCodeMalformedBody, ErrCodeMissingData, ErrCodeSchemaMismatch:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
