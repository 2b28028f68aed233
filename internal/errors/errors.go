// Package errors provides error handling utilities.
package errors

import (
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeCatalogConflict indicates overlapping effective-date catalog
	// records. Configuration error, surfaced to the admin, never retried.
	TypeCatalogConflict Type = "CATALOG_CONFLICT"

	// TypeUnsupportedModel indicates an unknown pricing model kind
	TypeUnsupportedModel Type = "UNSUPPORTED_PRICING_MODEL"

	// TypeMissingInput indicates the profile lacks a field the chosen
	// model needs. Surfaced to the caller for manual entry.
	TypeMissingInput Type = "MISSING_REQUIRED_INPUT"

	// TypeStaleSupersession indicates an optimistic-concurrency conflict
	// on snapshot supersession. The caller re-reads and retries.
	TypeStaleSupersession Type = "STALE_SUPERSESSION"

	// TypeRoundingViolation indicates a trace total drifted from its
	// components. Internal defect, must never be silently swallowed.
	TypeRoundingViolation Type = "ROUNDING_POLICY_VIOLATION"

	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeStorage indicates a persistence error
	TypeStorage Type = "STORAGE_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeNotFound indicates a resource not found error
	TypeNotFound Type = "NOT_FOUND"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type           `json:"type"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...any) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...any) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, t Type) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == t
	}
	return false
}

// CatalogConflict creates a catalog conflict error
func CatalogConflict(recordKind, tenantID string) *Error {
	return Newf(TypeCatalogConflict,
		"overlapping effective windows for %s records of tenant %s", recordKind, tenantID)
}

// UnsupportedModel creates an unsupported pricing model error
func UnsupportedModel(kind string) *Error {
	return Newf(TypeUnsupportedModel, "unknown pricing model kind: %s", kind)
}

// MissingInput creates a missing required input error
func MissingInput(fields ...string) *Error {
	e := Newf(TypeMissingInput, "profile is missing required fields")
	return e.WithContext("missing_fields", fields)
}

// StaleSupersession creates an optimistic-concurrency conflict error
func StaleSupersession(snapshotID string) *Error {
	return Newf(TypeStaleSupersession,
		"snapshot %s was already superseded by a concurrent writer", snapshotID)
}

// RoundingViolation creates a rounding invariant error
func RoundingViolation(label string, cause error) *Error {
	return Wrapf(TypeRoundingViolation, cause, "trace sum does not equal total for %s", label)
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Storage creates a storage error
func Storage(message string, cause error) *Error {
	return Wrap(TypeStorage, message, cause)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
