// Package errors provides structured error types for featprune.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library packages
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes name the failure kind, not the package that raised it:
//   - MANIFEST_*: Cargo.toml could not be found, parsed or edited
//   - DEPENDENCY_* / MALFORMED_*: a single dependency entry could not be edited
//   - METADATA_*: the feature metadata source failed
//   - REPORT_*: the persisted report could not be read or written
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDependencyNotFound, "dependency %q not declared", name)
//	if errors.Is(err, errors.ErrCodeDependencyNotFound) {
//	    // skip this dependency
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeReportIO, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// Manifest errors
	ErrCodeManifestNotFound    Code = "MANIFEST_NOT_FOUND"
	ErrCodeManifestParse       Code = "MANIFEST_PARSE"
	ErrCodeManifestWrite       Code = "MANIFEST_WRITE"
	ErrCodeDependencyNotFound  Code = "DEPENDENCY_NOT_FOUND"
	ErrCodeMalformedDependency Code = "MALFORMED_DEPENDENCY"

	// External collaborators
	ErrCodeMetadataFetch Code = "METADATA_FETCH"
	ErrCodeBuildFailed   Code = "BUILD_FAILED"
	ErrCodeNetwork       Code = "NETWORK_ERROR"

	// Report errors
	ErrCodeReportVersionMismatch Code = "REPORT_VERSION_MISMATCH"
	ErrCodeReportIO              Code = "REPORT_IO"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It walks the whole chain, so an outer code does not hide an inner one.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}
