// Package broken contains a deliberately incorrect lazy holder, kept
// only as a negative example for the stress suite.
//
// The holder uses double-checked locking with a plain pointer read for
// the outer check. Nothing orders the constructor's writes before the
// unlocked read that observes the pointer, so a caller on another
// goroutine may see a non-nil holder whose fields are not yet written.
// Under the Go memory model this is a data race, full stop: the race
// detector flags it, and whether it misbehaves in a given run depends
// on the compiler and the hardware. Do not use this package for
// anything except demonstrating the hazard.
package broken

import (
	"sync"

	"github.com/randalmurphal/lazyseq/pkg/lazyseq/sequence"
)

// Holder is the incorrect double-checked holder. Each Holder owns its
// own slot, so tests can create a fresh race per iteration.
type Holder struct {
	mu       sync.Mutex
	instance *sequence.Generator // read outside mu: the bug
	start    int64
	policy   sequence.OverflowPolicy
}

// NewHolder creates a holder whose generator starts at start.
func NewHolder(start int64) *Holder {
	return &Holder{start: start}
}

// NewHolderWithPolicy creates a holder whose generator starts at start
// and handles overflow per policy.
func NewHolderWithPolicy(start int64, policy sequence.OverflowPolicy) *Holder {
	return &Holder{start: start, policy: policy}
}

// Instance returns the shared generator, constructing it on first use.
//
// Step by step: (1) unsynchronized read of the slot, (2) lock,
// (3) re-check, (4) construct and assign, (5) unlock. The missing piece
// is any ordering between "generator fully constructed" and "slot
// visibly non-nil to other goroutines"; step 1 can observe the
// assignment from step 4 without observing the construction it was
// supposed to follow.
func (h *Holder) Instance() (sequence.Counter, error) {
	if h.instance == nil {
		h.mu.Lock()
		if h.instance == nil {
			h.instance = sequence.NewGeneratorWithPolicy(h.start, h.policy)
		}
		h.mu.Unlock()
	}
	return h.instance, nil
}
