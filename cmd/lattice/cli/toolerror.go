// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so automation can decide
// between fixing input, retrying, and reporting, without parsing the
// message text.
type ErrorCategory string

const (
	// CategoryValidation means the caller supplied bad input and
	// should fix it before retrying.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound means a referenced key, tracker, or path does
	// not exist; retrying unchanged will not help.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryConflict means the operation contradicts existing
	// verified state, such as a merge with disagreeing cells.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryUnavailable means an external collaborator (the
	// embedder) could not be reached; the operation may succeed
	// later or in degraded form.
	CategoryUnavailable ErrorCategory = "unavailable"

	// CategoryInternal means a bug, I/O failure, or corrupt state
	// the caller should report rather than retry.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized command error. The category and code
// travel in the JSON envelope; the text is the wrapped error's
// message. Use the category constructors rather than building
// ToolError directly.
type ToolError struct {
	Category ErrorCategory

	// Code is the stable machine-readable identifier placed in the
	// error envelope, such as "TRACKER_CORRUPT". Empty for errors
	// with no contract-level code.
	Code string

	// Err carries the human-readable message.
	Err error
}

func (e *ToolError) Error() string { return e.Err.Error() }

// Unwrap exposes the wrapped chain to errors.Is and errors.As.
func (e *ToolError) Unwrap() error { return e.Err }

// WithCode sets the envelope error code and returns the error.
func (e *ToolError) WithCode(code string) *ToolError {
	e.Code = code
	return e
}

// Validation builds a validation-category error.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound builds a not-found-category error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Conflict builds a conflict-category error.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Unavailable builds an unavailable-category error.
func Unavailable(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryUnavailable, Err: fmt.Errorf(format, args...)}
}

// Internal builds an internal-category error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
