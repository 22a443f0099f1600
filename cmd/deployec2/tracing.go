// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"

	"github.com/juju/errors"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName = "deployec2"
	tracerName  = "github.com/pwsia/deployec2/internal/rollout"
)

// TracerProvider hands out tracers and exports their spans.
type TracerProvider interface {
	Tracer(name string, opts ...trace.TracerOption) trace.Tracer
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type noopProvider struct {
	noop.TracerProvider
}

func (noopProvider) ForceFlush(context.Context) error {
	return nil
}

func (noopProvider) Shutdown(context.Context) error {
	return nil
}

// newTracerProvider exports spans to the OTLP collector at endpoint. Without
// an endpoint spans are dropped.
func newTracerProvider(ctx context.Context, endpoint string, insecure bool, instanceID string) (TracerProvider, error) {
	if endpoint == "" {
		return noopProvider{TracerProvider: noop.NewTracerProvider()}, nil
	}

	options := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(endpoint),
	}
	if insecure {
		options = append(options, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(options...))
	if err != nil {
		return nil, errors.Annotatef(err, "creating trace exporter for %q", endpoint)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceInstanceID(instanceID),
		)),
	), nil
}
