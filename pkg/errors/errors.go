package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Manifest errors
	ErrManifestRead    ErrorCode = "MANIFEST_READ"
	ErrManifestParse   ErrorCode = "MANIFEST_PARSE"
	ErrManifestInvalid ErrorCode = "MANIFEST_INVALID"
	ErrFeatureInvalid  ErrorCode = "FEATURE_INVALID"

	// Facts store errors
	ErrFactsOpen  ErrorCode = "FACTS_OPEN"
	ErrFactsRead  ErrorCode = "FACTS_READ"
	ErrFactsWrite ErrorCode = "FACTS_WRITE"

	// Layer errors
	ErrLayerNotFound ErrorCode = "LAYER_NOT_FOUND"
	ErrLayerCompile  ErrorCode = "LAYER_COMPILE"

	// Report errors
	ErrReportRender ErrorCode = "REPORT_RENDER"
)

// StratumError represents a structured error with code and details
type StratumError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *StratumError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *StratumError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *StratumError) Is(target error) bool {
	var targetErr *StratumError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new StratumError with the given code and message
func New(code ErrorCode, message string) *StratumError {
	return &StratumError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new StratumError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *StratumError {
	return &StratumError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a StratumError
func Wrap(err error, code ErrorCode, message string) *StratumError {
	if err == nil {
		return nil
	}
	return &StratumError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *StratumError {
	if err == nil {
		return nil
	}
	return &StratumError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *StratumError) WithDetail(key string, value interface{}) *StratumError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var stratumErr *StratumError
	if errors.As(err, &stratumErr) {
		return stratumErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a StratumError
func GetErrorCode(err error) ErrorCode {
	var stratumErr *StratumError
	if errors.As(err, &stratumErr) {
		return stratumErr.Code
	}
	return ErrUnknown
}
