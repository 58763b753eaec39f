// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package try converts panics raised by caller supplied funcs into errors.
package try

import (
	"errors"
	"fmt"
)

// PanicError wraps the value recovered from a panic.
type PanicError struct {
	Value any
}

// Error implements the [builtin.error] interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("recovered from panic: %v", e.Value)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Recover must be deferred. It turns a panic into a PanicError and
// joins it with whatever err already points at.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}

	perr := PanicError{
		Value: r,
	}
	if *err == nil {
		*err = perr
		return
	}
	*err = errors.Join(*err, perr)
}

// Call invokes f and reports a panic as an error instead of unwinding.
func Call[T any](f func() (T, error)) (v T, err error) {
	defer Recover(&err)
	return f()
}

// Do is Call for funcs which only return an error.
func Do(f func() error) (err error) {
	defer Recover(&err)
	return f()
}
