// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelconfig

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func (c Config) otlp(ctx context.Context) (*sdktrace.TracerProvider, error) {
	endpoint, err := c.Endpoint.Value(ctx)
	if err != nil {
		return nil, err
	}
	timeout, err := c.DialTimeout.Value(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.resource(ctx)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := exportOver(ctx, conn, grpcExporter)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	return tp, nil
}

type exporterFunc func(context.Context, *grpc.ClientConn) (sdktrace.SpanExporter, error)

func grpcExporter(ctx context.Context, conn *grpc.ClientConn) (sdktrace.SpanExporter, error) {
	return otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
}

// exportOver takes ownership of conn and closes it if no exporter
// could be created on top of it.
func exportOver(ctx context.Context, conn *grpc.ClientConn, newExporter exporterFunc) (sdktrace.SpanExporter, error) {
	exporter, err := newExporter(ctx, conn)
	if err != nil {
		return nil, errors.Join(err, conn.Close())
	}
	return exporter, nil
}
