// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package envorm

import (
	"context"

	"github.com/z5labs/envorm/config"
	"github.com/z5labs/envorm/internal/try"
)

// Entry is a field which can be bound into a Model. The set of
// implementations is closed: only the fields returned by String, Int,
// Float, Bool, Duration and List satisfy it.
type Entry interface {
	// Name returns the environment variable the field is bound to.
	Name() string

	// TypeName returns the name of the type the raw value is converted to.
	TypeName() string

	IsRequired() bool
	IsSecret() bool

	// Validate checks the resolved value against the constraints of the field.
	Validate(context.Context) error

	refresh(context.Context, config.Lookuper) error
	current() any
	render(useDefault bool) string
	isNil() bool
}

// Field is a typed accessor over a single environment variable.
//
// The value is resolved lazily on first access and cached until Update
// is called. Field is not safe for concurrent use; bind it into a Model
// when it must be read and refreshed from multiple goroutines.
type Field[T any] struct {
	name       string
	typeName   string
	convert    func(string) (T, error)
	format     func(T) string
	validators []func(T) error

	def      config.Value[T]
	required bool
	secret   bool
	source   config.Lookuper

	// The outer Value is unset until the field has been resolved. The
	// inner Value is unset when the resolved value is null, i.e. the
	// variable is missing and the field has no default.
	cached config.Value[config.Value[T]]
}

func newField[T any](name, typeName string, convert func(string) (T, error), format func(T) string) *Field[T] {
	return &Field[T]{
		name:     name,
		typeName: typeName,
		convert:  convert,
		format:   format,
		source:   config.OSEnv,
	}
}

// Default sets the value used when the variable is not set. Defaults
// are returned as is and never go through conversion.
func (f *Field[T]) Default(v T) *Field[T] {
	f.def = config.ValueOf(v)
	return f
}

// Required makes resolution fail with a ValueRequiredError, instead of
// falling back to the default, when the variable is not set.
func (f *Field[T]) Required() *Field[T] {
	f.required = true
	return f
}

// Secret masks the value of the field in log output.
func (f *Field[T]) Secret() *Field[T] {
	f.secret = true
	return f
}

// From sets where the field looks its variable up. The process
// environment is used by default.
func (f *Field[T]) From(l config.Lookuper) *Field[T] {
	f.source = l
	return f
}

// Validator registers an additional check which is run by Validate
// against any non-null resolved value, in registration order.
func (f *Field[T]) Validator(validate func(T) error) *Field[T] {
	f.validators = append(f.validators, validate)
	return f
}

// Name implements the [Entry] interface.
func (f *Field[T]) Name() string {
	return f.name
}

// TypeName implements the [Entry] interface.
func (f *Field[T]) TypeName() string {
	return f.typeName
}

// IsRequired implements the [Entry] interface.
func (f *Field[T]) IsRequired() bool {
	return f.required
}

// IsSecret implements the [Entry] interface.
func (f *Field[T]) IsSecret() bool {
	return f.secret
}

// DefaultValue returns the configured default, unset if there is none.
func (f *Field[T]) DefaultValue() config.Value[T] {
	return f.def
}

// Value returns the value of the field, resolving it if needed.
// A null value is reported as the zero value of T; use Lookup to
// tell the two apart.
func (f *Field[T]) Value(ctx context.Context) (T, error) {
	v, err := f.Lookup(ctx)
	t, _ := v.Value()
	return t, err
}

// Lookup is like Value but the returned Value is unset when the
// variable is missing and there is no default.
func (f *Field[T]) Lookup(ctx context.Context) (config.Value[T], error) {
	if v, ok := f.cached.Value(); ok {
		return v, nil
	}
	return f.update(ctx, f.source)
}

// Update resolves the field again, bypassing the cache. On failure the
// cache is cleared so the next read resolves again.
func (f *Field[T]) Update(ctx context.Context) (T, error) {
	v, err := f.update(ctx, f.source)
	t, _ := v.Value()
	return t, err
}

// Validate implements the [Entry] interface. Null values are never validated.
func (f *Field[T]) Validate(ctx context.Context) error {
	v, err := f.Lookup(ctx)
	if err != nil {
		return err
	}
	t, ok := v.Value()
	if !ok {
		return nil
	}

	for _, validate := range f.validators {
		err := try.Do(func() error {
			return validate(t)
		})
		if err == nil {
			continue
		}
		return ValidationError{
			Field:  f.name,
			Detail: Detail{Message: err.Error()},
			Cause:  err,
		}
	}
	return nil
}

func (f *Field[T]) update(ctx context.Context, l config.Lookuper) (config.Value[T], error) {
	v, err := f.resolve(ctx, l)
	if err != nil {
		f.cached = config.Value[config.Value[T]]{}
		return config.Value[T]{}, err
	}
	f.cached = config.ValueOf(v)
	return v, nil
}

func (f *Field[T]) resolve(ctx context.Context, l config.Lookuper) (config.Value[T], error) {
	r := config.Map(config.Lookup(l, f.name), f.parse)
	if def, ok := f.def.Value(); ok && !f.required {
		r = config.Default(def, r)
	}

	v, err := r.Read(ctx)
	if err != nil {
		return config.Value[T]{}, err
	}
	if !v.IsSet() && f.required {
		return config.Value[T]{}, ValueRequiredError{Field: f.name}
	}
	return v, nil
}

func (f *Field[T]) parse(ctx context.Context, s string) (T, error) {
	t, err := try.Call(func() (T, error) {
		return f.convert(s)
	})
	if err != nil {
		return t, ConvertError{
			Field:        f.name,
			Value:        s,
			ExpectedType: f.typeName,
			Cause:        err,
		}
	}
	return t, nil
}

// refresh resolves the field from l, which overrides its own source
// for this resolution only. A nil l uses the field's source.
func (f *Field[T]) refresh(ctx context.Context, l config.Lookuper) error {
	if l == nil {
		l = f.source
	}
	_, err := f.update(ctx, l)
	return err
}

func (f *Field[T]) current() any {
	v, _ := f.cached.Value()
	t, ok := v.Value()
	if !ok {
		return nil
	}
	return t
}

func (f *Field[T]) render(useDefault bool) string {
	v := f.def
	if !useDefault {
		v, _ = f.cached.Value()
	}
	t, ok := v.Value()
	if !ok {
		return ""
	}
	return f.format(t)
}

func (f *Field[T]) isNil() bool {
	return f == nil
}
