package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/routekit/logger"
)

// Step outcomes recorded by RecordStep.
const (
	StatusOK       = "ok"
	StatusShutdown = "shutdown"
	StatusError    = "error"
)

// MeterConfig configures the OTLP metric exporter.
type MeterConfig struct {
	Target
	// Interval is how often metrics are pushed; the SDK default when zero.
	Interval time.Duration
}

// InitMeter installs a periodic OTLP meter provider as the global one.
// The caller shuts it down on exit.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.Service,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded for stepped nodes.
type Metrics struct {
	stepTotal     metric.Int64Counter
	stepDuration  metric.Float64Histogram
	shutdownTotal metric.Int64Counter
	errorTotal    metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	stepTotal, err := meter.Int64Counter("routekit.step.total",
		metric.WithDescription("Total number of node steps by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating routekit.step.total counter: %w", err)
	}

	stepDuration, err := meter.Float64Histogram("routekit.step.duration",
		metric.WithDescription("Duration of node steps in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating routekit.step.duration histogram: %w", err)
	}

	shutdownTotal, err := meter.Int64Counter("routekit.node.shutdown.total",
		metric.WithDescription("Nodes that reached shutdown"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating routekit.node.shutdown.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("routekit.error.total",
		metric.WithDescription("Step errors by node and error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating routekit.error.total counter: %w", err)
	}

	return &Metrics{
		stepTotal:     stepTotal,
		stepDuration:  stepDuration,
		shutdownTotal: shutdownTotal,
		errorTotal:    errorTotal,
	}, nil
}

// RecordStep records one Step call.
func (m *Metrics) RecordStep(ctx context.Context, node, kind, status string, duration time.Duration) {
	m.stepTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("node", node),
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
	m.stepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("node", node),
		attribute.String("kind", kind),
	))
}

// RecordShutdown records a node entering its terminal state.
func (m *Metrics) RecordShutdown(ctx context.Context, node, kind string) {
	m.shutdownTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("node", node),
		attribute.String("kind", kind),
	))
}

// RecordError records a step error by error code.
func (m *Metrics) RecordError(ctx context.Context, node, code string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("node", node),
		attribute.String("code", code),
	))
}
