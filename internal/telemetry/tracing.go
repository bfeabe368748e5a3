package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TraceConfig selects how compiler-phase spans are exported.
type TraceConfig struct {
	// Exporter is "stdout" or "otlp".
	Exporter string
	// OTLPEndpoint is used when Exporter == "otlp".
	OTLPEndpoint string
	// SessionID is attached to the trace resource so spans from one
	// invocation of vexc can be correlated with its logs.
	SessionID string
}

// TracerProvider wraps an sdktrace.TracerProvider scoped to one compiler
// invocation.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// NewTracerProvider builds an exporter per cfg.Exporter and registers it
// as the global tracer provider, mirroring the teacher's
// tracing.InitTracing switch between stdout and OTLP-gRPC exporters.
func NewTracerProvider(cfg TraceConfig) (*TracerProvider, error) {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.Exporter {
	case "", "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		endpoint := cfg.OTLPEndpoint
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		client := otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		exporter, err = otlptrace.New(context.Background(), client)
	default:
		return nil, fmt.Errorf("telemetry: unsupported exporter %q", cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", "vexc"),
			attribute.String("build.session_id", cfg.SessionID),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: building resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return &TracerProvider{provider: tp}, nil
}

// Shutdown flushes and stops the tracer provider.
func (t *TracerProvider) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

// StartPhase opens a span named after a compiler phase.
func StartPhase(ctx context.Context, phase Phase) (context.Context, trace.Span) {
	tracer := otel.Tracer("vexc")
	return tracer.Start(ctx, string(phase))
}
