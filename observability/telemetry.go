package observability

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/routekit/component"
)

var (
	_ component.Component   = (*Telemetry)(nil)
	_ component.Describable = (*Telemetry)(nil)
)

// Telemetry is a component owning the tracer and meter providers enabled
// in Config. Disabled signals fall back to the global no-op providers.
type Telemetry struct {
	cfg         Config
	service     string
	version     string
	environment string

	mu sync.Mutex
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// NewTelemetry creates a Telemetry component for a service.
func NewTelemetry(cfg Config, service, version, environment string) *Telemetry {
	cfg.ApplyDefaults()
	return &Telemetry{cfg: cfg, service: service, version: version, environment: environment}
}

func (t *Telemetry) Name() string { return "telemetry" }

// Start initializes the enabled providers and installs them globally.
func (t *Telemetry) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cfg.Tracing && t.tp == nil {
		tp, err := InitTracer(ctx, t.cfg.TracerConfig(t.service, t.version, t.environment))
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		t.tp = tp
	}
	if t.cfg.Metrics && t.mp == nil {
		mp, err := InitMeter(ctx, t.cfg.MeterConfig(t.service, t.version, t.environment))
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		t.mp = mp
	}
	return nil
}

// Stop flushes and shuts down the providers.
func (t *Telemetry) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	if t.tp != nil {
		if err := t.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
		t.tp = nil
	}
	if t.mp != nil {
		if err := t.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
		t.mp = nil
	}
	return errors.Join(errs...)
}

func (t *Telemetry) Health(_ context.Context) component.Health {
	return component.Health{Name: t.Name(), Status: component.StatusHealthy, Message: t.signals()}
}

func (t *Telemetry) Describe() component.Description {
	return component.Description{
		Name:    "OpenTelemetry",
		Type:    "telemetry",
		Details: fmt.Sprintf("%s endpoint=%s", t.signals(), t.cfg.Endpoint),
	}
}

// Metrics creates step instruments on the global meter provider.
func (t *Telemetry) Metrics() (*Metrics, error) {
	return NewMetrics(Meter(defaultTracerName))
}

func (t *Telemetry) signals() string {
	switch {
	case t.cfg.Tracing && t.cfg.Metrics:
		return "tracing+metrics"
	case t.cfg.Tracing:
		return "tracing"
	case t.cfg.Metrics:
		return "metrics"
	default:
		return "disabled"
	}
}
