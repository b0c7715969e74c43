package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records stress-run metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRun records a stress run completion with its duration and
	// verification outcome.
	RecordRun(ctx context.Context, verified bool, workers int, duration time.Duration)

	// RecordAnomaly records a detected anomaly by kind
	// ("duplicate_value", "multiple_instances", "no_instance",
	// "rendezvous").
	RecordAnomaly(ctx context.Context, kind string)

	// RecordAccess records a singleton access with its latency.
	RecordAccess(ctx context.Context, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	runs          metric.Int64Counter
	runLatency    metric.Float64Histogram
	anomalies     metric.Int64Counter
	accessLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("lazyseq")

	runs, err := meter.Int64Counter("lazyseq.stress.runs",
		metric.WithDescription("Number of stress runs"),
	)
	if err != nil {
		return nil, err
	}

	runLatency, err := meter.Float64Histogram("lazyseq.stress.run_latency_ms",
		metric.WithDescription("Stress run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	anomalies, err := meter.Int64Counter("lazyseq.stress.anomalies",
		metric.WithDescription("Number of anomalies detected by stress runs"),
	)
	if err != nil {
		return nil, err
	}

	accessLatency, err := meter.Float64Histogram("lazyseq.access_latency_ms",
		metric.WithDescription("Singleton access latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		runs:          runs,
		runLatency:    runLatency,
		anomalies:     anomalies,
		accessLatency: accessLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordRun records a stress run.
func (m *otelMetrics) RecordRun(ctx context.Context, verified bool, workers int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Bool("verified", verified),
		attribute.Int("workers", workers),
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordAnomaly records a detected anomaly.
func (m *otelMetrics) RecordAnomaly(ctx context.Context, kind string) {
	m.anomalies.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

// RecordAccess records a singleton access.
func (m *otelMetrics) RecordAccess(ctx context.Context, duration time.Duration) {
	m.accessLatency.Record(ctx, float64(duration.Microseconds())/1000.0)
}
