// Package errors provides structured errors for the loom engine.
//
// Structural errors (invalid tags, malformed component definitions) carry
// a stable code and category so callers and tooling can match on them
// without parsing messages.
package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryStructure    Category = "structure"
	CategoryRegistration Category = "registration"
	CategoryRuntime      Category = "runtime"
	CategoryConfig       Category = "config"
)

// Error is a structured engine error.
type Error struct {
	// Code is a unique error identifier (e.g., "L001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail carries the offending input (a tag, a prop spec) when there
	// is one.
	Detail string

	// Cause is the wrapped underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[LOOM %s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[LOOM %s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a structured error.
func New(code string, category Category, message string) *Error {
	return &Error{Code: code, Category: category, Message: message}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain matching target.
func As(err error, target any) bool { return errors.As(err, target) }

// WithDetail returns a copy of the error carrying the given detail.
// The original is left untouched so sentinel errors stay comparable
// with errors.Is.
func (e *Error) WithDetail(detail string) *Error {
	dup := *e
	dup.Detail = detail
	return &dup
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(cause error) *Error {
	dup := *e
	dup.Cause = cause
	return &dup
}

// Is matches by code, so detail-carrying copies still satisfy
// errors.Is against their sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Engine error sentinels.
var (
	// ErrInvalidTag is returned when a tag fails the id/class pattern.
	ErrInvalidTag = New("L001", CategoryStructure, "invalid tag")

	// ErrEmptyTagPath is returned for a compound tag path with no segments.
	ErrEmptyTagPath = New("L002", CategoryStructure, "empty tag path")

	// ErrBadPropSpec is returned when a component definition's props are
	// neither a spec list nor a spec map.
	ErrBadPropSpec = New("L010", CategoryRegistration, "malformed props specification")

	// ErrNoView is returned when a component definition has no view function.
	ErrNoView = New("L011", CategoryRegistration, "component has no view function")

	// ErrBindingsLeaked indicates the teardown-completeness invariant was
	// violated: an instance was detached with live bindings remaining.
	ErrBindingsLeaked = New("L020", CategoryRuntime, "bindings leaked on detach")
)
