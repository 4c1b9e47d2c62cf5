package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/routekit/logger"
)

const defaultTracerName = "github.com/kbukum/routekit"

// Span attribute keys set on node steps.
const (
	AttrNode     = "routekit.node"
	AttrKind     = "routekit.kind"
	AttrShutdown = "routekit.shutdown"
	AttrRunID    = "routekit.run_id"
)

// TracerConfig configures the OTLP trace exporter.
type TracerConfig struct {
	Target
	// SampleRate is the fraction of steps traced, in [0, 1].
	SampleRate float64
}

// InitTracer installs a batching OTLP tracer provider as the global one.
// The caller shuts it down on exit.
func InitTracer(ctx context.Context, cfg TracerConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRate))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logger.Info("tracer initialized", logger.Fields(
		"service", cfg.Service,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))
	return tp, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartStep opens the span of one node step. The run ID carried by ctx,
// if any, is attached to the span.
func StartStep(ctx context.Context, name, node, kind string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrNode, node),
		attribute.String(AttrKind, kind),
	}
	if runID, ok := logger.RunIDFromContext(ctx); ok {
		attrs = append(attrs, attribute.String(AttrRunID, runID))
	}
	return Tracer(defaultTracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndStep records the step outcome on span and ends it.
func EndStep(span trace.Span, shutdown bool, err error) {
	span.SetAttributes(attribute.Bool(AttrShutdown, shutdown))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
