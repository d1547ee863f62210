package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/openbatch/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name reported in the resource.
	ServiceName string
	// ServiceVersion is the version reported in the resource.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by batch writers and validators.
type Metrics struct {
	entriesWritten  metric.Int64Counter
	bytesWritten    metric.Int64Counter
	entriesRejected metric.Int64Counter
	verifyRuns      metric.Int64Counter
	verifyFindings  metric.Int64Counter
	verifyDuration  metric.Float64Histogram
	sessionsOpen    metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	entriesWritten, err := meter.Int64Counter("batch.entries.written",
		metric.WithDescription("Batch entries committed to a file"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.entries.written counter: %w", err)
	}

	bytesWritten, err := meter.Int64Counter("batch.bytes.written",
		metric.WithDescription("Bytes committed to batch files"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.bytes.written counter: %w", err)
	}

	entriesRejected, err := meter.Int64Counter("batch.entries.rejected",
		metric.WithDescription("Batch entries refused before being written, by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.entries.rejected counter: %w", err)
	}

	verifyRuns, err := meter.Int64Counter("verify.runs",
		metric.WithDescription("Batch file validation runs, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating verify.runs counter: %w", err)
	}

	verifyFindings, err := meter.Int64Counter("verify.findings",
		metric.WithDescription("Validation findings, by severity"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating verify.findings counter: %w", err)
	}

	verifyDuration, err := meter.Float64Histogram("verify.duration",
		metric.WithDescription("Duration of validation runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating verify.duration histogram: %w", err)
	}

	sessionsOpen, err := meter.Int64UpDownCounter("batch.sessions.open",
		metric.WithDescription("Writer sessions currently holding a file"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.sessions.open gauge: %w", err)
	}

	return &Metrics{
		entriesWritten:  entriesWritten,
		bytesWritten:    bytesWritten,
		entriesRejected: entriesRejected,
		verifyRuns:      verifyRuns,
		verifyFindings:  verifyFindings,
		verifyDuration:  verifyDuration,
		sessionsOpen:    sessionsOpen,
	}, nil
}

// NopMetrics returns instruments backed by the no-op provider.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("openbatch"))
	return m
}

// DefaultMetrics returns instruments on the global meter provider. They stay
// no-op until InitMeter installs an exporter.
func DefaultMetrics() *Metrics {
	m, err := NewMetrics(Meter(defaultTracerName))
	if err != nil {
		return NopMetrics()
	}
	return m
}

// RecordSessionOpen marks a writer session as started.
func (m *Metrics) RecordSessionOpen(ctx context.Context) {
	m.sessionsOpen.Add(ctx, 1)
}

// RecordSessionClose marks a writer session as finished.
func (m *Metrics) RecordSessionClose(ctx context.Context) {
	m.sessionsOpen.Add(ctx, -1)
}

// RecordEntryWritten records one committed line of n bytes.
func (m *Metrics) RecordEntryWritten(ctx context.Context, endpoint string, n int) {
	attrs := metric.WithAttributes(attribute.String(AttrEndpoint, endpoint))
	m.entriesWritten.Add(ctx, 1, attrs)
	m.bytesWritten.Add(ctx, int64(n), attrs)
}

// RecordEntryRejected records an entry refused with the given error code.
func (m *Metrics) RecordEntryRejected(ctx context.Context, code string) {
	m.entriesRejected.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrErrorCode, code)))
}

// RecordValidation records the outcome of one validation run.
func (m *Metrics) RecordValidation(ctx context.Context, valid bool, errs, warnings int, duration time.Duration) {
	status := "valid"
	if !valid {
		status = "invalid"
	}
	m.verifyRuns.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStatus, status)))
	if errs > 0 {
		m.verifyFindings.Add(ctx, int64(errs), metric.WithAttributes(attribute.String(AttrSeverity, "error")))
	}
	if warnings > 0 {
		m.verifyFindings.Add(ctx, int64(warnings), metric.WithAttributes(attribute.String(AttrSeverity, "warning")))
	}
	m.verifyDuration.Record(ctx, duration.Seconds())
}
