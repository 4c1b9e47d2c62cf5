package observability

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Config selects which telemetry exporters a binary starts.
type Config struct {
	Tracing    bool          `yaml:"tracing" mapstructure:"tracing"`
	Metrics    bool          `yaml:"metrics" mapstructure:"metrics"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults fills unset exporter settings.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

// Target identifies the exporting service and where its signals go.
type Target struct {
	Service     string
	Version     string
	Environment string
	// Endpoint is the OTLP HTTP collector as host:port.
	Endpoint string
	Insecure bool
}

func (t Target) resource() (*resource.Resource, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(t.Service),
		semconv.ServiceVersion(t.Version),
		attribute.String("environment", t.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	return res, nil
}

func (c Config) target(service, version, environment string) Target {
	return Target{
		Service:     service,
		Version:     version,
		Environment: environment,
		Endpoint:    c.Endpoint,
		Insecure:    c.Insecure,
	}
}

// TracerConfig derives the tracer settings for service.
func (c Config) TracerConfig(service, version, environment string) TracerConfig {
	return TracerConfig{Target: c.target(service, version, environment), SampleRate: c.SampleRate}
}

// MeterConfig derives the meter settings for service.
func (c Config) MeterConfig(service, version, environment string) MeterConfig {
	return MeterConfig{Target: c.target(service, version, environment), Interval: c.Interval}
}
