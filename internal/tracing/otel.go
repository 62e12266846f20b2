package tracing

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
)

// Config controls the process-wide tracer provider.
type Config struct {
	ServiceName string  // reported as service.name (default: "zaprouter")
	SampleRatio float64 // fraction of root traces sampled, 0..1 (default: 1)
}

var active struct {
	mu sync.Mutex
	tp *sdktrace.TracerProvider
}

// Init installs the global tracer provider. Calling it again while a
// provider is active is an error; call Shutdown first.
func Init(cfg Config) error {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "zaprouter"
	}

	active.mu.Lock()
	defer active.mu.Unlock()

	if active.tp != nil {
		return fmt.Errorf("tracing already initialized")
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to build tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(samplerFor(cfg.SampleRatio)),
		sdktrace.WithResource(res),
	)
	active.tp = tp
	otel.SetTracerProvider(tp)

	return nil
}

// Shutdown flushes and tears down the tracer provider installed by Init.
func Shutdown(ctx context.Context) error {
	active.mu.Lock()
	tp := active.tp
	active.tp = nil
	active.mu.Unlock()

	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

// samplerFor maps a configured ratio to a sampler. Out-of-range values
// clamp to the nearest always/never decision.
func samplerFor(ratio float64) sdktrace.Sampler {
	switch {
	case ratio <= 0:
		return sdktrace.NeverSample()
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// StartSpan starts a span and mirrors its trace ID into the context keys
// used for log correlation.
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))

	if GetTraceID(ctx) == "" {
		sc := span.SpanContext()
		if sc.IsValid() {
			ctx = WithTraceID(ctx, sc.TraceID().String())
		}
	}

	return ctx, span
}
