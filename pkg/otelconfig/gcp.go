// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelconfig

import (
	"context"

	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/api/option"
)

func (c Config) gcp(ctx context.Context) (*sdktrace.TracerProvider, error) {
	opts := []texporter.Option{
		texporter.WithTraceClientOptions([]option.ClientOption{option.WithTelemetryDisabled()}),
	}

	projectID, err := c.ProjectID.Value(ctx)
	if err != nil {
		return nil, err
	}
	if projectID != "" {
		opts = append(opts, texporter.WithProjectID(projectID))
	}

	exporter, err := texporter.New(opts...)
	if err != nil {
		return nil, err
	}

	res, err := c.resource(ctx, resource.WithDetectors(gcp.NewDetector()))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return tp, nil
}
