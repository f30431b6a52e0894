// Package errors provides structured error types for the aerogram engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI, and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes fall into three families, mirroring the failure modes of the
// diagram engine:
//   - DOMAIN_*: invalid physical input rejected before any computation
//     (non-positive pressure, dewpoint above temperature, non-monotonic profile)
//   - COMPUTATION_*: a bounded numerical solver exhausted its iteration or
//     step budget without converging
//   - DATA_*: missing or malformed samples in an otherwise valid sounding
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPressure, "pressure must be positive, got %.1f", p)
//	if errors.Is(err, errors.ErrCodeInvalidPressure) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMissingData, origErr, "level %d", i)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Domain errors: invalid physical input
	ErrCodeInvalidPressure Code = "DOMAIN_INVALID_PRESSURE"
	ErrCodeInvalidDewpoint Code = "DOMAIN_DEWPOINT_ABOVE_TEMPERATURE"
	ErrCodeNonMonotonic    Code = "DOMAIN_PRESSURE_NOT_MONOTONIC"
	ErrCodeEmptyProfile    Code = "DOMAIN_EMPTY_PROFILE"
	ErrCodeInvalidConfig   Code = "DOMAIN_INVALID_CONFIG"

	// Computation errors: bounded solvers that failed to converge
	ErrCodeNoConvergence Code = "COMPUTATION_NO_CONVERGENCE"
	ErrCodeStepBudget    Code = "COMPUTATION_STEP_BUDGET_EXCEEDED"

	// Data errors: bad samples within a structurally valid sounding
	ErrCodeMissingData   Code = "DATA_MISSING_SAMPLE"
	ErrCodeInvalidFormat Code = "DATA_INVALID_FORMAT"

	// Resource errors (archive lookups)
	ErrCodeNotFound Code = "NOT_FOUND"

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

// IsDomain reports whether err belongs to the domain-validation family.
func IsDomain(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidPressure, ErrCodeInvalidDewpoint, ErrCodeNonMonotonic,
		ErrCodeEmptyProfile, ErrCodeInvalidConfig:
		return true
	}
	return false
}

// IsComputation reports whether err belongs to the solver-convergence family.
func IsComputation(err error) bool {
	switch GetCode(err) {
	case ErrCodeNoConvergence, ErrCodeStepBudget:
		return true
	}
	return false
}

// IsData reports whether err belongs to the bad-sample family.
func IsData(err error) bool {
	switch GetCode(err) {
	case ErrCodeMissingData, ErrCodeInvalidFormat:
		return true
	}
	return false
}
