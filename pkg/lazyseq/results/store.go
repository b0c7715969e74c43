// Package results provides persistent storage for stress-run records,
// so hazard reproductions survive the process that found them.
package results

import (
	"errors"
	"time"
)

// Record is one stored stress run.
type Record struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Subject names the holder variant the run exercised.
	Subject string `json:"subject"`

	// Phase is the terminal phase of the run ("verified" or "failed").
	Phase string `json:"phase"`

	// Workers is the number of parties the run released.
	Workers int `json:"workers"`

	// Verified reports whether the run passed verification.
	Verified bool `json:"verified"`

	// DurationMs is the wall-clock duration of the run.
	DurationMs float64 `json:"duration_ms"`

	// Error holds the first failure, empty for verified runs.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the record was saved.
	CreatedAt time.Time `json:"created_at"`

	// Report is the full run report, JSON-encoded.
	Report []byte `json:"report,omitempty"`
}

// Store persists stress-run records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a record. Overwrites if the run ID already exists.
	Save(rec *Record) error

	// Load retrieves a record by run ID.
	// Returns ErrNotFound if the record doesn't exist.
	Load(runID string) (*Record, error)

	// List returns metadata for all records, newest first.
	// Returns empty slice (not error) if the store is empty.
	List() ([]Info, error)

	// Delete removes a record.
	// Returns nil if the record doesn't exist.
	Delete(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides record metadata without loading the full report.
type Info struct {
	RunID     string
	Subject   string
	Phase     string
	Verified  bool
	CreatedAt time.Time
	Size      int64
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("results store closed")
)
