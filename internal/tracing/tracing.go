// Package tracing wires the global OpenTelemetry provider with a stdout
// exporter. Without Init every span in the codebase is a no-op.
package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init installs a stdout span exporter as the global tracer provider.
// Safe to call multiple times; the first successful initialisation wins.
func Init(serviceName, serviceVersion string) error {
	initOnce.Do(func() {
		exporter, err := stdouttrace.New()
		if err != nil {
			initErr = err
			return
		}

		res, err := resource.New(context.Background(),
			resource.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("service.version", serviceVersion),
			),
		)
		if err != nil {
			initErr = err
			return
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
	})
	return initErr
}
