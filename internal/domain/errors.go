package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Field-level detail is carried by *ValidationError, which wraps it.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// Validation messages shared by entities.
const (
	MsgBlank       = "can't be blank"
	MsgInvalid     = "is invalid"
	MsgTaken       = "has already been taken"
	MsgMustExist   = "must exist"
	MsgNoMatch     = "doesn't match Password"
	msgTooShortFmt = "is too short (minimum is %d characters)"
	msgTooLongFmt  = "is too long (maximum is %d characters)"
)

// TooShort returns the message for a value shorter than min characters.
func TooShort(min int) string { return fmt.Sprintf(msgTooShortFmt, min) }

// TooLong returns the message for a value longer than max characters.
func TooLong(max int) string { return fmt.Sprintf(msgTooLongFmt, max) }

// ValidationError collects per-field validation messages.
// Fields are keyed by their wire name, e.g. "title" or "password_confirmation".
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates a ValidationError holding a single message.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add appends a message for field.
func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], message)
}

// Empty reports whether no messages were recorded.
func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Fields) == 0
}

// Err returns v as an error, or nil when it holds no messages.
func (v *ValidationError) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

// Error renders messages sorted by field name, e.g. "title can't be blank".
func (v *ValidationError) Error() string {
	if v.Empty() {
		return ErrValidation.Error()
	}

	fields := make([]string, 0, len(v.Fields))
	for field := range v.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, msg := range v.Fields[field] {
			parts = append(parts, field+" "+msg)
		}
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

// Unwrap allows errors.Is(err, ErrValidation).
func (v *ValidationError) Unwrap() error {
	return ErrValidation
}
