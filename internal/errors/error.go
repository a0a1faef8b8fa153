package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the failure class of an error.
type Category string

const (
	CategoryDiscovery Category = "discovery"
	CategoryLoad      Category = "load"
	CategoryDrop      Category = "drop"
	CategoryMount     Category = "mount"
	CategoryProtocol  Category = "protocol"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// StudioError is a structured error with a code, context and a fix hint.
type StudioError struct {
	// Code is a unique error identifier (e.g., "E211").
	Code string

	// Category is the failure class.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Source names the file, URL or object the error is about, if any.
	Source string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *StudioError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *StudioError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *StudioError) WithDetail(d string) *StudioError {
	e.Detail = d
	return e
}

// WithSource records the file, URL or object the error refers to.
func (e *StudioError) WithSource(s string) *StudioError {
	e.Source = s
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *StudioError) WithSuggestion(s string) *StudioError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *StudioError) Wrap(err error) *StudioError {
	e.Wrapped = err
	return e
}

// New creates a StudioError from a registered error code.
func New(code string) *StudioError {
	template, ok := registry[code]
	if !ok {
		return &StudioError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &StudioError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new StudioError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *StudioError {
	return &StudioError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a StudioError.
// Errors that already carry a StudioError are returned as-is.
func FromError(err error, code string) *StudioError {
	if err == nil {
		return nil
	}
	var se *StudioError
	if stderrors.As(err, &se) {
		return se
	}
	return New(code).Wrap(err)
}

// Code returns the code of the outermost StudioError in err's chain.
func Code(err error) string {
	var se *StudioError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether any StudioError in err's chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		if se, ok := err.(*StudioError); ok && se.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Is and As mirror the standard library so callers need a single import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
