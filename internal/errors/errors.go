// Package errors defines the structured error type shared by pingwatch
// components. Probe failures never surface here: they are folded into
// ProbeResults. This type covers configuration, lifecycle and persistence
// problems that a caller has to act on.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig   = "CONFIG"
	ErrExec     = "EXEC"
	ErrCapacity = "CAPACITY"
	ErrState    = "STATE"
	ErrCatalog  = "CATALOG"
	ErrStore    = "STORE"
	ErrTarget   = "TARGET"
)

// Error is a structured error with a code, a message, an optional
// suggestion for the operator and an optional cause.
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps err with a code, message and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error renders the message, then the cause and suggestion on their own lines.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %s", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf(" (%s)", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pwErr *Error
	if errors.As(err, &pwErr) {
		return pwErr.Code == code
	}
	return false
}
