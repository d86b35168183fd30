// Package errors provides structured error types for the Pegboard engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, API, and library surface
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation and placement failures
//   - *_NOT_FOUND: Resource not found
//   - NO_AVAILABLE_POSITION: Spatial search exhaustion
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPlacement, "item %s out of bounds", id)
//	if errors.Is(err, errors.ErrCodeInvalidPlacement) {
//	    // Handle placement error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStore, origErr, "failed to load snapshot %s", key)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidGrid     Code = "INVALID_GRID"
	ErrCodeInvalidItem     Code = "INVALID_ITEM"
	ErrCodeInvalidStrategy Code = "INVALID_STRATEGY"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"

	// Placement errors
	ErrCodeInvalidPlacement    Code = "INVALID_PLACEMENT"
	ErrCodeNoAvailablePosition Code = "NO_AVAILABLE_POSITION"

	// Resource not found errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeItemNotFound      Code = "ITEM_NOT_FOUND"
	ErrCodeExtensionNotFound Code = "EXTENSION_NOT_FOUND"

	// Programmer misuse errors
	ErrCodeNestedTransaction Code = "NESTED_TRANSACTION"
	ErrCodeLocked            Code = "ITEM_LOCKED"

	// Persistence errors
	ErrCodeStore Code = "STORE_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
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
		return e.Message
	}
	return err.Error()
}
