// Package observability provides observability features for lazyseq
// stress runs: structured logging, metrics, and tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds stress-run context to a logger.
// Returns a new logger with run_id and worker fields.
func EnrichLogger(logger *slog.Logger, runID string, worker int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.Int("worker", worker),
	)
}

// LogRunStart logs the start of a stress run.
func LogRunStart(logger *slog.Logger, runID string, workers int) {
	if logger == nil {
		return
	}
	logger.Info("stress run starting",
		slog.String("run_id", runID),
		slog.Int("workers", workers),
	)
}

// LogRunVerified logs a stress run that passed verification.
func LogRunVerified(logger *slog.Logger, runID string, durationMs float64, values int) {
	if logger == nil {
		return
	}
	logger.Info("stress run verified",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("distinct_values", values),
	)
}

// LogRunFailed logs a stress run that failed.
func LogRunFailed(logger *slog.Logger, runID string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("stress run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogAnomaly logs a detected anomaly (duplicate value, extra instance).
func LogAnomaly(logger *slog.Logger, runID, kind string, detail string) {
	if logger == nil {
		return
	}
	logger.Warn("anomaly detected",
		slog.String("run_id", runID),
		slog.String("kind", kind),
		slog.String("detail", detail),
	)
}

// LogWorkerError logs a worker that aborted before completing.
func LogWorkerError(logger *slog.Logger, runID string, worker int, err error) {
	if logger == nil {
		return
	}
	logger.Error("worker aborted",
		slog.String("run_id", runID),
		slog.Int("worker", worker),
		slog.String("error", err.Error()),
	)
}

// LogPersistFailure logs a run report that could not be saved to the
// results store. A persist failure is an infrastructure error, not a
// subject anomaly; the run's verdict stands.
func LogPersistFailure(logger *slog.Logger, runID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("report persist failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
