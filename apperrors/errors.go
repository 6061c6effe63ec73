package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldError is a single field-level violation.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every violation found on a candidate record.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether the given field is among the violations.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// NewValidationError builds a ValidationError from field/reason pairs, sorted by field.
func NewValidationError(fields map[string]string) *ValidationError {
	out := make([]FieldError, 0, len(fields))
	for field, reason := range fields {
		out = append(out, FieldError{Field: field, Reason: reason})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return &ValidationError{Fields: out}
}

// ReferentialIntegrityError is returned when a write or delete would orphan or
// violate a foreign key. Table names the blocking (or missing) table.
type ReferentialIntegrityError struct {
	Table  string
	Column string
	Reason string
}

func (e *ReferentialIntegrityError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("referential integrity violation on [%s]: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("referential integrity violation on [%s].[%s]: %s", e.Table, e.Column, e.Reason)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// UniquenessError reports a duplicate value on a unique field such as email.
type UniquenessError struct {
	Field string
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("%s must be unique", e.Field)
}

// ConnectionError wraps failures to reach the backing store.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "backing store unreachable: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ForbiddenError is returned when the acting user may not touch a record.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

// UnauthorizedError is returned when credentials or tokens are missing or wrong.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return "unauthorized: " + e.Reason
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsReferential(err error) bool {
	var target *ReferentialIntegrityError
	return errors.As(err, &target)
}

func IsUniqueness(err error) bool {
	var target *UniquenessError
	return errors.As(err, &target)
}
