// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import "context"

// Value represents a configuration value which may or may not be set.
// The zero Value is unset.
type Value[T any] struct {
	v   T
	set bool
}

// ValueOf returns a set Value holding v.
func ValueOf[T any](v T) Value[T] {
	return Value[T]{v: v, set: true}
}

// Value returns the underlying value and whether or not it was set.
func (v Value[T]) Value() (T, bool) {
	return v.v, v.set
}

// IsSet reports whether the value was set.
func (v Value[T]) IsSet() bool {
	return v.set
}

// Reader represents a source of a single configuration value.
type Reader[T any] interface {
	Read(context.Context) (Value[T], error)
}

// ReaderFunc is a functional implementation of the Reader interface.
type ReaderFunc[T any] func(context.Context) (Value[T], error)

// Read implements the Reader interface.
func (f ReaderFunc[T]) Read(ctx context.Context) (Value[T], error) {
	return f(ctx)
}

// Default returns a Reader which falls back to def when r produces no value.
// Errors from r are never replaced by the default.
func Default[T any](def T, r Reader[T]) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		val, err := r.Read(ctx)
		if err != nil {
			return Value[T]{}, err
		}
		if val.IsSet() {
			return val, nil
		}
		return ValueOf(def), nil
	})
}

// Or returns the first set Value produced by rs, in order. The first
// error encountered stops the search.
func Or[T any](rs ...Reader[T]) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		for _, r := range rs {
			val, err := r.Read(ctx)
			if err != nil {
				return Value[T]{}, err
			}
			if val.IsSet() {
				return val, nil
			}
		}
		return Value[T]{}, nil
	})
}

// Map transforms the value produced by r with f. f is only called
// when r produces a set value.
func Map[T, U any](r Reader[T], f func(context.Context, T) (U, error)) Reader[U] {
	return ReaderFunc[U](func(ctx context.Context) (Value[U], error) {
		val, err := r.Read(ctx)
		if err != nil {
			return Value[U]{}, err
		}
		t, ok := val.Value()
		if !ok {
			return Value[U]{}, nil
		}
		u, err := f(ctx, t)
		if err != nil {
			return Value[U]{}, err
		}
		return ValueOf(u), nil
	})
}
