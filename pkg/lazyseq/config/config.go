// Package config loads stress-run profiles from YAML or JSON files.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/lazyseq/pkg/lazyseq/sequence"
)

// Config wraps a map[string]any for type-safe value extraction.
// Accessor methods return default values if the key is missing or the
// value cannot be converted to the requested type.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// String returns the string value for key, or defaultVal if missing or not a string.
func (c Config) String(key, defaultVal string) string {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	if s, ok := v.(string); ok {
		return s
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal if missing or not convertible.
func (c Config) Int(key string, defaultVal int) int {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not a bool.
func (c Config) Bool(key string, defaultVal bool) bool {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return defaultVal
}

// Duration returns the duration value for key, or defaultVal if missing or invalid.
//
// Accepts:
//   - string: parsed with time.ParseDuration
//   - int, int64, float64: interpreted as seconds
//   - time.Duration: used directly
func (c Config) Duration(key string, defaultVal time.Duration) time.Duration {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case float64:
		return time.Duration(val * float64(time.Second))
	case int:
		return time.Duration(val) * time.Second
	case int64:
		return time.Duration(val) * time.Second
	case time.Duration:
		return val
	}
	return defaultVal
}

// Profile is a validated stress-run configuration.
type Profile struct {
	// Subject names the holder variant to exercise:
	// "lazy", "synchronized", or "broken".
	Subject string

	// Workers is the number of parties released per run.
	Workers int

	// Iterations is how many runs to execute back to back.
	Iterations int

	// Timeout bounds each run's rendezvous and collection.
	Timeout time.Duration

	// Overflow is the counter overflow policy.
	Overflow sequence.OverflowPolicy

	// StorePath is the SQLite results database; empty disables
	// persistence.
	StorePath string

	// Metrics enables OTel metrics recording.
	Metrics bool
}

// Profile defaults.
const (
	DefaultSubject    = "lazy"
	DefaultWorkers    = 12
	DefaultIterations = 1
	DefaultTimeout    = 10 * time.Second
)

// ErrTooFewWorkers indicates a profile with fewer than two workers.
var ErrTooFewWorkers = errors.New("profile needs at least 2 workers")

// validSubjects are the holder variants a profile may name.
var validSubjects = map[string]bool{
	"lazy":         true,
	"synchronized": true,
	"broken":       true,
}

// Stress extracts a validated Profile.
//
// Recognized keys: subject, workers, iterations, timeout, overflow,
// store_path, metrics. Missing keys take the package defaults.
func (c Config) Stress() (Profile, error) {
	p := Profile{
		Subject:    c.String("subject", DefaultSubject),
		Workers:    c.Int("workers", DefaultWorkers),
		Iterations: c.Int("iterations", DefaultIterations),
		Timeout:    c.Duration("timeout", DefaultTimeout),
		StorePath:  c.String("store_path", ""),
		Metrics:    c.Bool("metrics", false),
	}

	if !validSubjects[p.Subject] {
		return Profile{}, fmt.Errorf("unknown subject %q", p.Subject)
	}
	if p.Workers < 2 {
		return Profile{}, fmt.Errorf("%w, got %d", ErrTooFewWorkers, p.Workers)
	}
	if p.Iterations < 1 {
		return Profile{}, fmt.Errorf("iterations must be >= 1, got %d", p.Iterations)
	}
	if p.Timeout <= 0 {
		return Profile{}, fmt.Errorf("timeout must be positive, got %s", p.Timeout)
	}

	policy, err := sequence.ParsePolicy(c.String("overflow", "wrap"))
	if err != nil {
		return Profile{}, err
	}
	p.Overflow = policy

	return p, nil
}
