// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelconfig initializes an OpenTelemetry trace.TracerProvider
// from environment variables.
package otelconfig

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/z5labs/envorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Exporters supported by Config.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
	ExporterGCP    = "gcp"
)

// Config selects and configures a trace exporter.
type Config struct {
	Exporter    *envorm.Field[string]
	ServiceName *envorm.Field[string]

	// OTLP
	Endpoint    *envorm.Field[string]
	DialTimeout *envorm.Field[time.Duration]

	// Google Cloud
	ProjectID *envorm.Field[string]

	out io.Writer
}

// Option configures a Config.
type Option func(*Config)

// Writer sets where the stdout exporter writes spans to. Defaults to os.Stdout.
func Writer(w io.Writer) Option {
	return func(c *Config) {
		c.out = w
	}
}

// Env returns a Config bound to the standard OTEL_* variables.
func Env(opts ...Option) Config {
	c := Config{
		Exporter: envorm.String(
			"OTEL_TRACES_EXPORTER",
			ExporterNone,
			ExporterStdout,
			ExporterOTLP,
			ExporterGCP,
		).Default(ExporterNone),
		ServiceName: envorm.String("OTEL_SERVICE_NAME"),
		Endpoint:    envorm.String("OTEL_EXPORTER_OTLP_ENDPOINT").Default("localhost:4317"),
		DialTimeout: envorm.Duration("OTEL_EXPORTER_OTLP_TIMEOUT").Default(time.Second),
		ProjectID:   envorm.String("GOOGLE_CLOUD_PROJECT"),
		out:         os.Stdout,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Fields implements the envorm.Schema interface.
func (c Config) Fields() []envorm.Binding {
	return []envorm.Binding{
		envorm.Bind("exporter", c.Exporter),
		envorm.Bind("service_name", c.ServiceName),
		envorm.Bind("endpoint", c.Endpoint),
		envorm.Bind("dial_timeout", c.DialTimeout),
		envorm.Bind("project_id", c.ProjectID),
	}
}

// ShutdownFunc flushes and stops a TracerProvider.
type ShutdownFunc func(context.Context) error

// UnknownExporterError occurs when no exporter is registered under Name.
type UnknownExporterError struct {
	Name string
}

// Error implements the [builtin.error] interface.
func (e UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown trace exporter: %s", e.Name)
}

// Init builds the TracerProvider selected by the exporter variable. The
// "none" exporter returns the global provider and a no-op shutdown.
func (c Config) Init(ctx context.Context) (trace.TracerProvider, ShutdownFunc, error) {
	exporter, err := c.Exporter.Value(ctx)
	if err != nil {
		return nil, nil, err
	}

	var tp *sdktrace.TracerProvider
	switch exporter {
	case ExporterNone:
		return otel.GetTracerProvider(), func(context.Context) error { return nil }, nil
	case ExporterStdout:
		tp, err = c.stdout(ctx)
	case ExporterOTLP:
		tp, err = c.otlp(ctx)
	case ExporterGCP:
		tp, err = c.gcp(ctx)
	default:
		err = UnknownExporterError{Name: exporter}
	}
	if err != nil {
		return nil, nil, err
	}
	return tp, tp.Shutdown, nil
}

func (c Config) resource(ctx context.Context, opts ...resource.Option) (*resource.Resource, error) {
	name, err := c.ServiceName.Value(ctx)
	if err != nil {
		return nil, err
	}

	opts = append(opts, resource.WithTelemetrySDK())
	if name != "" {
		opts = append(opts, resource.WithAttributes(semconv.ServiceName(name)))
	}
	return resource.New(ctx, opts...)
}

func (c Config) stdout(ctx context.Context) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(c.out),
	)
	if err != nil {
		return nil, err
	}

	res, err := c.resource(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	return tp, nil
}
