package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/lazyseq/pkg/lazyseq/config"
	"github.com/randalmurphal/lazyseq/pkg/lazyseq/sequence"
)

func TestConfig_Accessors(t *testing.T) {
	cfg := config.New(map[string]any{
		"subject": "broken",
		"workers": 24,
		"metrics": true,
		"timeout": "250ms",
	})

	assert.Equal(t, "broken", cfg.String("subject", "lazy"))
	assert.Equal(t, 24, cfg.Int("workers", 12))
	assert.True(t, cfg.Bool("metrics", false))
	assert.Equal(t, 250*time.Millisecond, cfg.Duration("timeout", time.Second))

	// Missing keys fall back to defaults.
	assert.Equal(t, "x", cfg.String("missing", "x"))
	assert.Equal(t, 7, cfg.Int("missing", 7))
	assert.False(t, cfg.Bool("missing", false))
	assert.Equal(t, time.Minute, cfg.Duration("missing", time.Minute))
}

func TestConfig_DurationFromSeconds(t *testing.T) {
	cfg := config.New(map[string]any{"timeout": 2})
	assert.Equal(t, 2*time.Second, cfg.Duration("timeout", 0))
}

func TestConfig_NilMap(t *testing.T) {
	cfg := config.New(nil)
	assert.Equal(t, "d", cfg.String("anything", "d"))
}

func TestStress_Defaults(t *testing.T) {
	profile, err := config.New(nil).Stress()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultSubject, profile.Subject)
	assert.Equal(t, config.DefaultWorkers, profile.Workers)
	assert.Equal(t, config.DefaultIterations, profile.Iterations)
	assert.Equal(t, config.DefaultTimeout, profile.Timeout)
	assert.Equal(t, sequence.OverflowWrap, profile.Overflow)
	assert.Empty(t, profile.StorePath)
	assert.False(t, profile.Metrics)
}

func TestStress_Validation(t *testing.T) {
	t.Run("too few workers", func(t *testing.T) {
		_, err := config.New(map[string]any{"workers": 1}).Stress()
		assert.ErrorIs(t, err, config.ErrTooFewWorkers)
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := config.New(map[string]any{"subject": "bogus"}).Stress()
		assert.Error(t, err)
	})

	t.Run("bad iterations", func(t *testing.T) {
		_, err := config.New(map[string]any{"iterations": 0}).Stress()
		assert.Error(t, err)
	})

	t.Run("bad overflow policy", func(t *testing.T) {
		_, err := config.New(map[string]any{"overflow": "explode"}).Stress()
		assert.Error(t, err)
	})
}

func TestFromYAML(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
subject: synchronized
workers: 16
iterations: 3
timeout: 5s
overflow: saturate
store_path: runs.db
metrics: true
`))
	require.NoError(t, err)

	profile, err := cfg.Stress()
	require.NoError(t, err)
	assert.Equal(t, "synchronized", profile.Subject)
	assert.Equal(t, 16, profile.Workers)
	assert.Equal(t, 3, profile.Iterations)
	assert.Equal(t, 5*time.Second, profile.Timeout)
	assert.Equal(t, sequence.OverflowSaturate, profile.Overflow)
	assert.Equal(t, "runs.db", profile.StorePath)
	assert.True(t, profile.Metrics)
}

func TestFromJSON(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"workers": 8, "subject": "lazy"}`))
	require.NoError(t, err)

	profile, err := cfg.Stress()
	require.NoError(t, err)
	assert.Equal(t, 8, profile.Workers)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "stress.yaml")
		require.NoError(t, os.WriteFile(path, []byte("workers: 6\n"), 0o644))

		cfg, err := config.FromFile(path)
		require.NoError(t, err)
		assert.Equal(t, 6, cfg.Int("workers", 0))
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "stress.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"workers": 4}`), 0o644))

		cfg, err := config.FromFile(path)
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Int("workers", 0))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "stress.toml")
		require.NoError(t, os.WriteFile(path, []byte("workers = 4"), 0o644))

		_, err := config.FromFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.FromFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := config.FromYAML([]byte("workers: [unclosed"))
	assert.Error(t, err)
}
