// Package lazy provides exactly-once lazy initialization holders.
//
// A holder owns the creation and publication of a single shared value:
// the constructor runs at most once per successful initialization, no
// caller ever observes a partially constructed value, and after the
// first success repeated access is cheap.
//
// Two holders are provided, differing in steady-state cost:
//
//   - Lazy uses a double-checked pattern whose outer check is an atomic
//     load, so accesses after the first success take no lock. The
//     publishing store is sequenced after the constructor completes,
//     which is what makes the unlocked outer check safe. A plain
//     pointer read in its place is a data race; see the broken
//     subpackage for that variant kept as a negative example.
//   - Synchronized routes every access through one mutex. Simpler to
//     reason about, with a small per-call lock cost.
//
// For values whose constructor cannot fail, sync.OnceValue from the
// standard library gives the same guarantees; these holders exist for
// constructors that can fail, where a failed attempt must leave the
// slot empty so a later call can retry.
package lazy

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrNilConstructor is returned by Get when the holder was created
// without a constructor.
var ErrNilConstructor = errors.New("lazy: nil constructor")

// Lazy initializes a value of type T on first access.
//
// The done flag is an atomic.Bool: its store in Get is sequenced after
// the value write inside the critical section, and the unlocked load in
// the fast path synchronizes with that store. A caller that observes
// done==true therefore observes the fully constructed value.
type Lazy[T any] struct {
	done  atomic.Bool
	mu    sync.Mutex
	value T
	fn    func() (T, error)
}

// New creates a holder that builds its value with fn on first access.
func New[T any](fn func() (T, error)) *Lazy[T] {
	return &Lazy[T]{fn: fn}
}

// Get returns the held value, constructing it on the first call.
//
// If the constructor returns an error the slot stays empty and the
// error is returned; a later call runs the constructor again. Once a
// call succeeds, every subsequent call returns the same value without
// taking the lock and without re-entering the construction path.
func (l *Lazy[T]) Get() (T, error) {
	if l.done.Load() {
		return l.value, nil
	}
	return l.getSlow()
}

func (l *Lazy[T]) getSlow() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-check under the lock: another caller may have finished
	// construction between the fast-path load and Lock.
	if l.done.Load() {
		return l.value, nil
	}
	if l.fn == nil {
		var zero T
		return zero, ErrNilConstructor
	}

	v, err := l.fn()
	if err != nil {
		var zero T
		return zero, err
	}

	// The value write must be complete before done flips; the atomic
	// store provides the release ordering the fast path relies on.
	l.value = v
	l.done.Store(true)
	return v, nil
}

// Initialized reports whether the value has been constructed.
func (l *Lazy[T]) Initialized() bool {
	return l.done.Load()
}

// Synchronized initializes a value of type T on first access, with
// every caller passing through the same mutex.
//
// The check-and-create sequence and the read of the slot share one
// critical section, so the mutex alone carries the visibility
// guarantee. Prefer Lazy when steady-state access cost matters.
type Synchronized[T any] struct {
	mu    sync.Mutex
	done  bool
	value T
	fn    func() (T, error)
}

// NewSynchronized creates a mutex-guarded holder that builds its value
// with fn on first access.
func NewSynchronized[T any](fn func() (T, error)) *Synchronized[T] {
	return &Synchronized[T]{fn: fn}
}

// Get returns the held value, constructing it on the first call.
// A constructor error leaves the slot empty so a later call retries.
func (s *Synchronized[T]) Get() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return s.value, nil
	}
	if s.fn == nil {
		var zero T
		return zero, ErrNilConstructor
	}

	v, err := s.fn()
	if err != nil {
		var zero T
		return zero, err
	}

	s.value = v
	s.done = true
	return v, nil
}

// Initialized reports whether the value has been constructed.
func (s *Synchronized[T]) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}
