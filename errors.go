// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package envorm

import (
	"errors"
	"fmt"
)

// Record is the structured form of a single field failure. Every record
// carries a "field" key holding the environment variable name; the
// remaining keys depend on the kind of failure.
type Record map[string]any

// Recorder is implemented by every error a build pass knows how to record.
type Recorder interface {
	error
	Record() Record
}

// ConvertError occurs when the raw value of an environment variable
// cannot be converted to the type of its field.
type ConvertError struct {
	Field        string
	Value        string
	ExpectedType string
	Cause        error
}

// Error implements the [builtin.error] interface.
func (e ConvertError) Error() string {
	return fmt.Sprintf("environ %s=%s is not of type %s", e.Field, e.Value, e.ExpectedType)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConvertError) Unwrap() error {
	return e.Cause
}

// Record implements the [Recorder] interface.
func (e ConvertError) Record() Record {
	return Record{
		"field":         e.Field,
		"value":         e.Value,
		"expected_type": e.ExpectedType,
	}
}

// ValueRequiredError occurs when a required environment variable is not set.
type ValueRequiredError struct {
	Field string
}

// Error implements the [builtin.error] interface.
func (e ValueRequiredError) Error() string {
	return fmt.Sprintf("value of environ %s is required", e.Field)
}

// Record implements the [Recorder] interface.
func (e ValueRequiredError) Record() Record {
	return Record{
		"field":    e.Field,
		"required": true,
	}
}

// Detail describes why a value failed validation.
type Detail struct {
	Message string `json:"message"`
}

// ValidationError occurs when a value was resolved but does not
// satisfy a constraint of its field, e.g. choice membership.
type ValidationError struct {
	Field  string
	Detail Detail
	Cause  error
}

// Error implements the [builtin.error] interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("environ %s is invalid: %s", e.Field, e.Detail.Message)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ValidationError) Unwrap() error {
	return e.Cause
}

// Record implements the [Recorder] interface.
func (e ValidationError) Record() Record {
	return Record{
		"field":  e.Field,
		"detail": e.Detail,
	}
}

// recordOf serializes err via its own Record method. Errors outside of
// the taxonomy still produce a record so they are never silently dropped.
func recordOf(field string, err error) Record {
	var rec Recorder
	if errors.As(err, &rec) {
		return rec.Record()
	}
	return Record{
		"field": field,
		"error": err.Error(),
	}
}

var (
	// ErrEmptyAttr is the cause of an InvalidBindingError for a binding without an attribute name.
	ErrEmptyAttr = errors.New("attribute name is empty")

	// ErrDuplicateAttr is the cause of an InvalidBindingError for a repeated attribute name.
	ErrDuplicateAttr = errors.New("attribute name is already bound")

	// ErrNilField is the cause of an InvalidBindingError for a binding without a field.
	ErrNilField = errors.New("field is nil")
)

// InvalidBindingError occurs when a Schema enumerates a binding
// which can not be part of a Model.
type InvalidBindingError struct {
	Index int
	Attr  string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e InvalidBindingError) Error() string {
	return fmt.Sprintf("invalid binding %q at index %d: %s", e.Attr, e.Index, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidBindingError) Unwrap() error {
	return e.Cause
}
