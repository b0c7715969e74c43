// Package stress provides a race-amplifying harness for singleton
// holders.
//
// A run releases N workers through a rendezvous barrier in the same
// narrow time window; each worker fetches the shared counter once,
// draws one value, and records what it saw. The run then verifies the
// two properties a lazy singleton must hold under contention: every
// drawn value is distinct, and every worker saw the same instance.
//
// The harness keeps its own bookkeeping behind a lock that is separate
// from the subject's internal synchronization, so the bookkeeping can
// never mask a race in the subject. Failures use first-failure-wins
// capture: the first error any worker records is the run's error, and
// the rest abort promptly.
package stress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/lazyseq/pkg/lazyseq/barrier"
	"github.com/randalmurphal/lazyseq/pkg/lazyseq/observability"
	"github.com/randalmurphal/lazyseq/pkg/lazyseq/results"
	"github.com/randalmurphal/lazyseq/pkg/lazyseq/sequence"
)

// Phase is a stress run's lifecycle state.
type Phase string

// Run phases, in order. A run ends in PhaseVerified or PhaseFailed.
const (
	PhaseSetup      Phase = "setup"
	PhaseReleased   Phase = "released"
	PhaseCollecting Phase = "collecting"
	PhaseVerified   Phase = "verified"
	PhaseFailed     Phase = "failed"
)

// Source is the subject under test: anything that hands out the shared
// counter. The identity of the returned counter is the observed
// singleton identity.
type Source interface {
	Instance() (sequence.Counter, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() (sequence.Counter, error)

// Instance implements Source.
func (f SourceFunc) Instance() (sequence.Counter, error) {
	return f()
}

// Report is the outcome of one stress run.
type Report struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Subject names the holder variant the run exercised.
	Subject string `json:"subject"`

	// Phase is the terminal phase: PhaseVerified or PhaseFailed.
	Phase Phase `json:"phase"`

	// Workers is the number of parties released.
	Workers int `json:"workers"`

	// Values holds the counter values observed, ascending.
	Values []int64 `json:"values"`

	// Instances is the number of distinct identities observed.
	Instances int `json:"instances"`

	// Duration is the run's wall-clock time.
	Duration time.Duration `json:"duration_ns"`

	// Error holds the first failure, empty for verified runs.
	Error string `json:"error,omitempty"`
}

// Verified reports whether the run passed verification.
func (r *Report) Verified() bool {
	return r.Phase == PhaseVerified
}

// record converts the report into a storable results record.
func (r *Report) record() (*results.Record, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return &results.Record{
		RunID:      r.RunID,
		Subject:    r.Subject,
		Phase:      string(r.Phase),
		Workers:    r.Workers,
		Verified:   r.Verified(),
		DurationMs: float64(r.Duration.Microseconds()) / 1000.0,
		Error:      r.Error,
		CreatedAt:  time.Now().UTC(),
		Report:     data,
	}, nil
}

// runnerConfig holds configuration for a stress run.
type runnerConfig struct {
	workers int
	timeout time.Duration
	runID   string
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	store   results.Store
}

// defaultRunnerConfig returns the default run configuration.
func defaultRunnerConfig() runnerConfig {
	return runnerConfig{
		workers: 12,
		timeout: 10 * time.Second,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Runner.
type Option func(*runnerConfig)

// WithWorkers sets the number of parties released per run.
// Values below 2 are ignored; a race needs at least two contenders.
// Default: 12
func WithWorkers(n int) Option {
	return func(c *runnerConfig) {
		if n >= 2 {
			c.workers = n
		}
	}
}

// WithTimeout bounds the whole run. A barrier that never releases is a
// defect; the timeout turns it into a failed run instead of a hang.
// The timeout applies at the harness level only, never inside the
// subject. Default: 10s
func WithTimeout(d time.Duration) Option {
	return func(c *runnerConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRunID sets the run identifier. Default: generated.
func WithRunID(id string) Option {
	return func(c *runnerConfig) {
		c.runID = id
	}
}

// WithLogger sets the logger. Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runnerConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *runnerConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpans sets the span manager. Default: no-op.
func WithSpans(s observability.SpanManager) Option {
	return func(c *runnerConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithStore persists each run's report. Default: no persistence.
func WithStore(store results.Store) Option {
	return func(c *runnerConfig) {
		c.store = store
	}
}

// Runner drives stress runs against one subject.
// A Runner is reusable across runs but must not execute two runs
// concurrently; the phase it reports would be meaningless.
type Runner struct {
	subject Source
	name    string
	cfg     runnerConfig
	phase   atomic.Value // Phase
}

// NewRunner creates a runner for the named subject.
func NewRunner(name string, subject Source, opts ...Option) *Runner {
	cfg := defaultRunnerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Runner{subject: subject, name: name, cfg: cfg}
	r.phase.Store(PhaseSetup)
	return r
}

// Phase returns the current lifecycle phase of the latest run.
func (r *Runner) Phase() Phase {
	return r.phase.Load().(Phase)
}

func (r *Runner) setPhase(p Phase) {
	r.phase.Store(p)
}

// observations is the harness-side bookkeeping, guarded by its own
// mutex so it cannot mask races in the subject.
type observations struct {
	mu        sync.Mutex
	values    map[int64]struct{}
	instances map[sequence.Counter]struct{}
}

// Run executes one stress run.
//
// The returned report is always non-nil. The error is non-nil exactly
// when the run failed, and matches the failure the report carries.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	cfg := r.cfg
	if cfg.runID == "" {
		cfg.runID = fmt.Sprintf("run-%s", uuid.New().String()[:8])
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	ctx, span := cfg.spans.StartRunSpan(ctx, r.name, cfg.runID)
	observability.LogRunStart(cfg.logger, cfg.runID, cfg.workers)
	r.setPhase(PhaseSetup)
	started := time.Now()

	obs := &observations{
		values:    make(map[int64]struct{}, cfg.workers),
		instances: make(map[sequence.Counter]struct{}),
	}

	// First-failure-wins: the first stored error is the run's error;
	// later failures are dropped and the context is cancelled so the
	// remaining workers abort instead of completing.
	var firstErr atomic.Pointer[RendezvousError]
	fail := func(worker int, err error) {
		we := &RendezvousError{Worker: worker, Err: err}
		if firstErr.CompareAndSwap(nil, we) {
			observability.LogWorkerError(cfg.logger, cfg.runID, worker, err)
		}
		cancel()
	}

	bar := barrier.New(cfg.workers)
	var releaseEvent sync.Once

	var wg sync.WaitGroup
	for i := 0; i < cfg.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r.runWorker(ctx, cfg, worker, bar, obs, fail, &releaseEvent)
		}(i)
	}
	wg.Wait()

	report := r.snapshot(obs, cfg)
	report.Duration = time.Since(started)

	runErr := r.assess(report, firstErr.Load())
	if runErr == nil {
		report.Phase = PhaseVerified
		r.setPhase(PhaseVerified)
		observability.LogRunVerified(cfg.logger, cfg.runID,
			float64(report.Duration.Milliseconds()), len(report.Values))
	} else {
		report.Phase = PhaseFailed
		r.setPhase(PhaseFailed)
		report.Error = runErr.Error()
		kind := anomalyKind(runErr)
		cfg.metrics.RecordAnomaly(ctx, kind)
		observability.LogAnomaly(cfg.logger, cfg.runID, kind, runErr.Error())
		observability.LogRunFailed(cfg.logger, cfg.runID, runErr,
			float64(report.Duration.Milliseconds()))
	}
	cfg.metrics.RecordRun(ctx, report.Verified(), cfg.workers, report.Duration)
	cfg.spans.EndSpanWithError(span, runErr)

	if cfg.store != nil {
		if err := r.persist(report); err != nil {
			observability.LogPersistFailure(cfg.logger, cfg.runID, err)
		}
	}

	return report, runErr
}

// runWorker is one party's rendezvous, access, and recording.
func (r *Runner) runWorker(ctx context.Context, cfg runnerConfig, worker int, bar *barrier.Barrier, obs *observations, fail func(int, error), releaseEvent *sync.Once) {
	ctx, span := cfg.spans.StartWorkerSpan(ctx, worker)
	defer span.End()

	if err := bar.Await(ctx); err != nil {
		fail(worker, fmt.Errorf("rendezvous: %w", err))
		return
	}
	releaseEvent.Do(func() {
		r.setPhase(PhaseReleased)
		cfg.spans.AddSpanEvent(ctx, "barrier released")
	})

	accessStart := time.Now()
	counter, err := r.subject.Instance()
	cfg.metrics.RecordAccess(ctx, time.Since(accessStart))
	if err != nil {
		fail(worker, fmt.Errorf("instance: %w", err))
		return
	}

	value, err := counter.Next()
	if err != nil {
		fail(worker, fmt.Errorf("next value: %w", err))
		return
	}

	obs.mu.Lock()
	r.setPhase(PhaseCollecting)
	if _, dup := obs.values[value]; dup {
		obs.mu.Unlock()
		fail(worker, &DuplicateValueError{Value: value})
		return
	}
	obs.values[value] = struct{}{}
	obs.instances[counter] = struct{}{}
	obs.mu.Unlock()
}

// snapshot assembles the report skeleton from the observation sets.
func (r *Runner) snapshot(obs *observations, cfg runnerConfig) *Report {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	values := make([]int64, 0, len(obs.values))
	for v := range obs.values {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return &Report{
		RunID:     cfg.runID,
		Subject:   r.name,
		Workers:   cfg.workers,
		Values:    values,
		Instances: len(obs.instances),
	}
}

// assess derives the run's error: the first worker failure wins, then
// the post-hoc identity assertions. Subject-level anomalies surface as
// themselves rather than wrapped in worker context, so callers can
// match on the anomaly type directly.
func (r *Runner) assess(report *Report, workerErr *RendezvousError) error {
	if workerErr != nil {
		var dup *DuplicateValueError
		if errors.As(workerErr, &dup) {
			return dup
		}
		return workerErr
	}

	switch {
	case report.Instances == 0:
		return ErrNoInstance
	case report.Instances > 1:
		return &MultipleInstancesError{Count: report.Instances}
	default:
		return nil
	}
}

// persist stores the run report.
func (r *Runner) persist(report *Report) error {
	rec, err := report.record()
	if err != nil {
		return err
	}
	return r.cfg.store.Save(rec)
}
