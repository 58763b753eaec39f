// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package logging builds the *slog.Logger a Model writes its build pass to.
package logging

import (
	"context"
	"log/slog"

	"github.com/z5labs/envorm/pkg/maskslog"

	"go.opentelemetry.io/otel/trace"
)

// New returns a logger writing to h. Attrs keyed by any of the secret
// names are masked and records logged within a span carry its ids.
// A nil h discards everything.
func New(h slog.Handler, secrets ...string) *slog.Logger {
	if h == nil {
		h = Discard{}
	}
	return slog.New(&traceHandler{
		slog: maskslog.NewHandler(h, maskslog.Keys(secrets...)),
	})
}

// Discard is a slog.Handler which drops every record.
type Discard struct{}

// Enabled implements the slog.Handler interface.
func (Discard) Enabled(context.Context, slog.Level) bool { return false }

// Handle implements the slog.Handler interface.
func (Discard) Handle(context.Context, slog.Record) error { return nil }

// WithAttrs implements the slog.Handler interface.
func (h Discard) WithAttrs([]slog.Attr) slog.Handler { return h }

// WithGroup implements the slog.Handler interface.
func (h Discard) WithGroup(string) slog.Handler { return h }

// traceHandler correlates records with the build pass span.
type traceHandler struct {
	slog slog.Handler
}

func (h *traceHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

func (h *traceHandler) Handle(ctx context.Context, record slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return h.slog.Handle(ctx, record)
	}

	r := record.Clone()
	r.AddAttrs(
		slog.Group(
			"otel",
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		),
	)
	return h.slog.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{slog: h.slog.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{slog: h.slog.WithGroup(name)}
}
