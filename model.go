// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package envorm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/z5labs/envorm/config"
	"github.com/z5labs/envorm/internal/logging"

	"github.com/mitchellh/mapstructure"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Binding associates an attribute name with a field.
type Binding struct {
	attr  string
	entry Entry
}

// Bind returns a Binding of e under attr. Attribute names identify
// fields within a Model and are the keys of [Model.AsMap].
func Bind(attr string, e Entry) Binding {
	return Binding{attr: attr, entry: e}
}

// Attr returns the attribute name of the binding.
func (b Binding) Attr() string {
	return b.attr
}

// Entry returns the bound field.
func (b Binding) Entry() Entry {
	return b.entry
}

// Schema enumerates the fields of a Model in declaration order.
type Schema interface {
	Fields() []Binding
}

// Bindings is the simplest Schema, a list of bindings.
type Bindings []Binding

// Fields implements the [Schema] interface.
func (bs Bindings) Fields() []Binding {
	return bs
}

// FieldInfo describes a bound field.
type FieldInfo struct {
	Attr     string
	Env      string
	Type     string
	Required bool
	Secret   bool

	// Default and Current are rendered the same way as Doc and Describe.
	Default string
	Current string
}

type options struct {
	logHandler slog.Handler
	tp         trace.TracerProvider
	source     config.Lookuper
}

// Option configures a Model.
type Option func(*options)

// LogHandler sets where the build pass is logged to. By default nothing is logged.
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

// TracerProvider sets the provider of the tracer which traces each build pass.
// By default, the global provider is used.
func TracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tp = tp
	}
}

// Source makes the Model resolve every bound field from l instead of
// the field's own Lookuper. The fields themselves are left untouched, so
// reading a field directly after it failed to resolve uses its own source.
func Source(l config.Lookuper) Option {
	return func(o *options) {
		o.source = l
	}
}

// Model is an ordered collection of fields which are resolved, converted
// and validated together. Failures are collected per field rather than
// stopping at the first one.
//
// The methods of Model are safe for concurrent use.
type Model struct {
	bindings []Binding
	source   config.Lookuper
	log      *slog.Logger
	tracer   trace.Tracer

	mu      sync.RWMutex
	errs    []error
	records []Record
}

// New binds the fields enumerated by s into a Model and runs the first
// build pass. An error is only returned if s is malformed; failures of
// individual fields are reported by [Model.IsValid] and [Model.Errors].
func New(ctx context.Context, s Schema, opts ...Option) (*Model, error) {
	o := &options{
		tp: otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		opt(o)
	}

	bindings := slices.Clone(s.Fields())
	seen := make(map[string]struct{}, len(bindings))
	var secrets []string
	for i, b := range bindings {
		err := checkBinding(b, seen)
		if err != nil {
			return nil, InvalidBindingError{
				Index: i,
				Attr:  b.attr,
				Cause: err,
			}
		}
		seen[b.attr] = struct{}{}

		if b.entry.IsSecret() {
			secrets = append(secrets, b.entry.Name())
		}
	}

	m := &Model{
		bindings: bindings,
		source:   o.source,
		log:      logging.New(o.logHandler, secrets...),
		tracer:   o.tp.Tracer("envorm"),
	}
	m.Update(ctx)
	return m, nil
}

func checkBinding(b Binding, seen map[string]struct{}) error {
	if b.attr == "" {
		return ErrEmptyAttr
	}
	if b.entry == nil || b.entry.isNil() {
		return ErrNilField
	}
	if _, exists := seen[b.attr]; exists {
		return ErrDuplicateAttr
	}
	return nil
}

// Update runs a build pass: every field is resolved again from the
// environment and validated. The errors of the previous pass are discarded.
func (m *Model) Update(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	spanCtx, span := m.tracer.Start(ctx, "Model.Update")
	defer span.End()

	var errs []error
	var records []Record
	for _, b := range m.bindings {
		err := build(spanCtx, b.entry, m.source)
		if err != nil {
			span.RecordError(spanError(b.entry, err), trace.WithAttributes(
				attribute.String("envorm.field", b.attr),
			))
			m.log.WarnContext(
				spanCtx,
				"failed to resolve field",
				slog.String("field", b.attr),
				slog.Any(b.entry.Name(), err),
			)

			errs = append(errs, err)
			records = append(records, recordOf(b.entry.Name(), err))
			continue
		}

		m.log.DebugContext(
			spanCtx,
			"resolved field",
			slog.String("field", b.attr),
			slog.String(b.entry.Name(), b.entry.render(false)),
		)
	}

	span.SetAttributes(
		attribute.Int("envorm.fields", len(m.bindings)),
		attribute.Int("envorm.errors", len(errs)),
	)
	if len(errs) > 0 {
		span.SetStatus(codes.Error, "invalid environment")
	}

	m.errs = errs
	m.records = records

	m.log.InfoContext(
		spanCtx,
		"built model",
		slog.Int("fields", len(m.bindings)),
		slog.Int("errors", len(errs)),
	)
}

func build(ctx context.Context, e Entry, l config.Lookuper) error {
	err := e.refresh(ctx, l)
	if err != nil {
		return err
	}
	return e.Validate(ctx)
}

// spanError keeps the values of secret fields out of recorded span events.
func spanError(e Entry, err error) error {
	if !e.IsSecret() {
		return err
	}
	return fmt.Errorf("environ %s failed to resolve", e.Name())
}

// IsValid reports whether the most recent build pass had no failures.
func (m *Model) IsValid() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.errs) == 0
}

// Errors returns the records of every failure from the most recent
// build pass, in declaration order.
func (m *Model) Errors() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.records)
}

// Err returns the failures of the most recent build pass joined into a
// single error, or nil if there were none.
func (m *Model) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return errors.Join(m.errs...)
}

// AsMap returns the cached value of every field keyed by its attribute
// name. Null values, and fields which failed to resolve, map to nil.
func (m *Model) AsMap() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make(map[string]any, len(m.bindings))
	for _, b := range m.bindings {
		values[b.attr] = b.entry.current()
	}
	return values
}

// Doc renders one "NAME=default" line per field, in declaration order.
// Fields without a default render an empty value.
func (m *Model) Doc() string {
	return m.lines(true)
}

// Describe is like Doc but renders the cached value of each field.
func (m *Model) Describe() string {
	return m.lines(false)
}

func (m *Model) lines(useDefault bool) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lines := make([]string, len(m.bindings))
	for i, b := range m.bindings {
		lines[i] = b.entry.Name() + "=" + b.entry.render(useDefault)
	}
	return strings.Join(lines, "\n")
}

// Fields describes every bound field, in declaration order.
func (m *Model) Fields() []FieldInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]FieldInfo, len(m.bindings))
	for i, b := range m.bindings {
		infos[i] = FieldInfo{
			Attr:     b.attr,
			Env:      b.entry.Name(),
			Type:     b.entry.TypeName(),
			Required: b.entry.IsRequired(),
			Secret:   b.entry.IsSecret(),
			Default:  b.entry.render(true),
			Current:  b.entry.render(false),
		}
	}
	return infos
}

// DecodeError occurs when the values of a Model can not be decoded
// into the given type.
type DecodeError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e DecodeError) Error() string {
	return fmt.Sprintf("failed to decode model values: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e DecodeError) Unwrap() error {
	return e.Cause
}

// Decode copies the values of AsMap into v, which must be a pointer to a
// struct. Struct fields are matched to attribute names case insensitively
// or through a `config:"name"` tag. Null values leave the struct field as is.
func (m *Model) Decode(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "config",
		Result:  v,
	})
	if err != nil {
		return DecodeError{Cause: err}
	}

	err = dec.Decode(m.AsMap())
	if err != nil {
		return DecodeError{Cause: err}
	}
	return nil
}
