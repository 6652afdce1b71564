package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrBuildLocked        = errors.New("build already ordered")
)

// FieldError points at a single offending field. Index is -1 when the field
// does not belong to a list entry.
type FieldError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

// Add appends a field failure that is not tied to a list entry.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Index: -1, Field: field, Message: message})
}

// AddAt appends a failure for the entry at index.
func (e *ValidationError) AddAt(index int, field, message string) {
	e.Fields = append(e.Fields, FieldError{Index: index, Field: field, Message: message})
}

// Merge appends all fields of other, prefixing their names.
func (e *ValidationError) Merge(prefix string, other *ValidationError) {
	if other == nil {
		return
	}
	for _, f := range other.Fields {
		if prefix != "" {
			f.Field = prefix + "." + f.Field
		}
		e.Fields = append(e.Fields, f)
	}
}

// Empty reports whether no failures were collected.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Err returns e as an error, or nil when nothing failed.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Index >= 0 {
			parts = append(parts, fmt.Sprintf("[%d].%s: %s", f.Index, f.Field, f.Message))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError with a single field.
func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, message)
	return e
}

// PaymentDeclinedError reports a payment refused by the gateway.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	if e.Reason == "" {
		return "payment declined"
	}
	return "payment declined: " + e.Reason
}

// UpstreamError wraps a failure of an external dependency.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// TransitionError describes a rejected lifecycle move.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %q to %q", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}
