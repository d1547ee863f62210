package config

import (
	"context"
	"errors"
	"time"

	"github.com/kbukum/openbatch/observability"
	"github.com/kbukum/openbatch/version"
)

// TelemetryConfig configures OpenTelemetry export. Disabled by default, in
// which case spans and metrics go to the no-op providers.
type TelemetryConfig struct {
	Enabled        bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	ServiceVersion string        `json:"service_version" yaml:"service_version" mapstructure:"service_version"`
	Endpoint       string        `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `json:"insecure" yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval       time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`
}

func (t *TelemetryConfig) applyDefaults() {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4318"
	}
	if t.ServiceVersion == "" {
		t.ServiceVersion = version.Short()
	}
	if t.Interval == 0 {
		t.Interval = 15 * time.Second
	}
}

// TracerConfig returns the tracer settings for service in environment env.
func (t TelemetryConfig) TracerConfig(service, env string) observability.TracerConfig {
	cfg := observability.DefaultTracerConfig(service)
	cfg.ServiceVersion = t.ServiceVersion
	cfg.Environment = env
	cfg.Endpoint = t.Endpoint
	cfg.Insecure = t.Insecure
	cfg.SampleRate = t.SampleRate
	return cfg
}

// MeterConfig returns the meter settings for service in environment env.
func (t TelemetryConfig) MeterConfig(service, env string) observability.MeterConfig {
	cfg := observability.DefaultMeterConfig(service)
	cfg.ServiceVersion = t.ServiceVersion
	cfg.Environment = env
	cfg.Endpoint = t.Endpoint
	cfg.Insecure = t.Insecure
	cfg.Interval = t.Interval
	return cfg
}

// InitTelemetry installs the OTLP tracer and meter providers when telemetry is
// enabled. The returned function flushes and stops both; it is never nil.
func (c *Config) InitTelemetry(ctx context.Context) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !c.Telemetry.Enabled {
		return noop, nil
	}

	tcfg := c.Telemetry.TracerConfig(c.Name, c.Environment)
	tp, err := observability.InitTracer(ctx, &tcfg)
	if err != nil {
		return noop, err
	}
	mcfg := c.Telemetry.MeterConfig(c.Name, c.Environment)
	mp, err := observability.InitMeter(ctx, &mcfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return noop, err
	}
	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
