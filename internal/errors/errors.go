// Package errors defines the stable error taxonomy for the analysis engine.
// Every failure mode that crosses a package boundary carries one of these
// codes so the HTTP layer and the dashboard can react without string matching.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes.
type ErrorCode string

const (
	// ScanTargetNotFound indicates the scan root does not exist. Fatal for
	// the scan; the previous snapshot is retained.
	ScanTargetNotFound ErrorCode = "SCAN_TARGET_NOT_FOUND"
	// ScanInProgress indicates a scan was requested while one is running.
	// Retryable.
	ScanInProgress ErrorCode = "SCAN_IN_PROGRESS"
	// ScanTimeout indicates an in-flight scan exceeded its deadline and was
	// aborted. The previous snapshot is retained.
	ScanTimeout ErrorCode = "SCAN_TIMEOUT"
	// FileUnreadable indicates a single file could not be read. Non-fatal;
	// the file is recorded with partial metadata and a warning count.
	FileUnreadable ErrorCode = "FILE_UNREADABLE"
	// UnresolvedImport indicates an import specifier did not resolve inside
	// the scanned tree. Non-fatal; the import is recorded as external.
	UnresolvedImport ErrorCode = "UNRESOLVED_IMPORT"
	// InvalidArgument indicates a malformed request parameter.
	InvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// NotFound indicates a requested record does not exist in the snapshot.
	NotFound ErrorCode = "NOT_FOUND"
	// InternalError indicates an unexpected error.
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// AtlasError is the engine's error type: a stable code, a human message,
// optional structured details, and an optional wrapped cause.
type AtlasError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates an AtlasError with no cause.
func New(code ErrorCode, message string) *AtlasError {
	return &AtlasError{Code: code, Message: message}
}

// Wrap creates an AtlasError wrapping an underlying cause.
func Wrap(code ErrorCode, message string, cause error) *AtlasError {
	return &AtlasError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface.
func (e *AtlasError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AtlasError) Unwrap() error {
	return e.cause
}

// WithDetails attaches structured details and returns the error.
func (e *AtlasError) WithDetails(details interface{}) *AtlasError {
	e.Details = details
	return e
}

// CodeOf extracts the ErrorCode from err, walking the wrap chain.
// Returns InternalError for non-Atlas errors.
func CodeOf(err error) ErrorCode {
	var ae *AtlasError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return InternalError
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// Retryable reports whether the failure is expected to clear on its own.
func Retryable(code ErrorCode) bool {
	return code == ScanInProgress
}
