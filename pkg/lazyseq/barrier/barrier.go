// Package barrier provides a reusable rendezvous barrier.
//
// A barrier blocks a fixed number of parties until all have arrived,
// then releases them simultaneously. Release is a channel close, so a
// waiter that unblocks observes everything the tripping party did first
// (a close happens-before any receive that returns because of it). The
// barrier is cyclic: once a generation trips, the next arrival starts a
// fresh one.
//
// Cancellation breaks the current generation: the cancelled waiter gets
// its context error and every other waiter of that generation gets
// ErrBroken. A broken generation never releases normally.
package barrier

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrBroken is returned to waiters whose generation was broken by
// another party's cancellation.
var ErrBroken = errors.New("barrier broken")

// generation is the per-cycle rendezvous state. broken is written under
// the barrier lock before release is closed, so waiters unblocked by
// the close may read it without the lock.
type generation struct {
	release chan struct{}
	broken  bool
}

// Barrier releases a fixed number of parties at once.
// The zero value is not usable; call New.
type Barrier struct {
	parties int

	mu    sync.Mutex
	count int
	gen   *generation
}

// New creates a barrier for the given number of parties.
// Panics if parties < 2; a one-party rendezvous is almost certainly a
// caller bug.
func New(parties int) *Barrier {
	if parties < 2 {
		panic(fmt.Sprintf("barrier: parties must be >= 2, got %d", parties))
	}
	return &Barrier{
		parties: parties,
		gen:     &generation{release: make(chan struct{})},
	}
}

// Parties returns the number of parties the barrier waits for.
func (b *Barrier) Parties() int {
	return b.parties
}

// Await blocks until all parties have arrived or ctx is done.
//
// Returns nil when the barrier trips. If ctx is done first, the waiter
// breaks its generation and returns the context's error; every other
// waiter of that generation receives ErrBroken. Await may be called
// again after a trip or a break; it joins the next generation.
func (b *Barrier) Await(ctx context.Context) error {
	b.mu.Lock()
	gen := b.gen
	b.count++
	if b.count == b.parties {
		// Last party: trip this generation and start the next.
		close(gen.release)
		b.gen = &generation{release: make(chan struct{})}
		b.count = 0
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	select {
	case <-gen.release:
		if gen.broken {
			return ErrBroken
		}
		return nil
	case <-ctx.Done():
		b.mu.Lock()
		if b.gen == gen {
			// Generation still pending: break it.
			gen.broken = true
			close(gen.release)
			b.gen = &generation{release: make(chan struct{})}
			b.count = 0
			b.mu.Unlock()
			return ctx.Err()
		}
		b.mu.Unlock()
		// The generation completed while ctx was firing. If it
		// tripped, the rendezvous happened and the cancellation
		// lost the race; report success.
		if gen.broken {
			return ctx.Err()
		}
		return nil
	}
}
