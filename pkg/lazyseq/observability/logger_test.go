package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newTestLogger returns a logger writing JSON to buf.
func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestEnrichLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := EnrichLogger(newTestLogger(&buf), "run-123", 4)

	logger.Info("hello")

	out := buf.String()
	assert.Contains(t, out, `"run_id":"run-123"`)
	assert.Contains(t, out, `"worker":4`)
}

func TestEnrichLogger_Nil(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "run-1", 0))
}

func TestLogHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	LogRunStart(logger, "run-1", 12)
	assert.Contains(t, buf.String(), "stress run starting")
	buf.Reset()

	LogRunVerified(logger, "run-1", 12.5, 12)
	assert.Contains(t, buf.String(), "stress run verified")
	buf.Reset()

	LogRunFailed(logger, "run-1", errors.New("duplicate value 3"), 8.0)
	assert.Contains(t, buf.String(), "duplicate value 3")
	buf.Reset()

	LogAnomaly(logger, "run-1", "multiple_instances", "2 identities")
	assert.Contains(t, buf.String(), "multiple_instances")
	buf.Reset()

	LogWorkerError(logger, "run-1", 7, errors.New("barrier broken"))
	assert.Contains(t, buf.String(), `"worker":7`)
	buf.Reset()

	LogPersistFailure(logger, "run-1", errors.New("disk full"))
	assert.Contains(t, buf.String(), "report persist failed")
	assert.Contains(t, buf.String(), "disk full")
	assert.NotContains(t, buf.String(), "anomaly detected")
}

func TestLogHelpers_NilLogger(t *testing.T) {
	// Nil loggers must be tolerated everywhere.
	LogRunStart(nil, "run-1", 12)
	LogRunVerified(nil, "run-1", 1, 1)
	LogRunFailed(nil, "run-1", errors.New("x"), 1)
	LogAnomaly(nil, "run-1", "k", "d")
	LogWorkerError(nil, "run-1", 0, errors.New("x"))
	LogPersistFailure(nil, "run-1", errors.New("x"))
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, done(), float64(0))
}
