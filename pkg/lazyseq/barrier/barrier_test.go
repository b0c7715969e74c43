package barrier_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/lazyseq/pkg/lazyseq/barrier"
)

func TestNew_RejectsTooFewParties(t *testing.T) {
	assert.Panics(t, func() { barrier.New(1) })
	assert.Panics(t, func() { barrier.New(0) })
}

func TestBarrier_ReleasesAllParties(t *testing.T) {
	const parties = 8

	b := barrier.New(parties)
	assert.Equal(t, parties, b.Parties())

	var released atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < parties; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Await(context.Background()); err != nil {
				t.Error(err)
				return
			}
			released.Add(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(parties), released.Load())
}

func TestBarrier_HoldsUntilLastParty(t *testing.T) {
	b := barrier.New(2)

	done := make(chan error, 1)
	go func() {
		done <- b.Await(context.Background())
	}()

	// The lone waiter must stay blocked.
	select {
	case err := <-done:
		t.Fatalf("waiter released before last party arrived: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, b.Await(context.Background()))
	require.NoError(t, <-done)
}

func TestBarrier_Cyclic(t *testing.T) {
	const parties = 4
	const cycles = 3

	b := barrier.New(parties)

	for cycle := 0; cycle < cycles; cycle++ {
		var wg sync.WaitGroup
		for i := 0; i < parties; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, b.Await(context.Background()))
			}()
		}
		wg.Wait()
	}
}

func TestBarrier_CancellationBreaksGeneration(t *testing.T) {
	const parties = 4

	b := barrier.New(parties)

	ctx, cancel := context.WithCancel(context.Background())

	// Two bystanders wait with a background context, leaving the
	// generation one arrival short of tripping.
	errs := make(chan error, parties-2)
	var wg sync.WaitGroup
	for i := 0; i < parties-2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- b.Await(context.Background())
		}()
	}

	// Give the bystanders time to park, then cancel the third
	// arrival while the generation is still short one party.
	time.Sleep(50 * time.Millisecond)
	cancelled := make(chan error, 1)
	go func() {
		cancelled <- b.Await(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	require.ErrorIs(t, <-cancelled, context.Canceled)

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.ErrorIs(t, err, barrier.ErrBroken)
	}
}

func TestBarrier_UsableAfterBreak(t *testing.T) {
	const parties = 2

	b := barrier.New(parties)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, b.Await(ctx), context.Canceled)

	// A broken generation must not poison the next one.
	var wg sync.WaitGroup
	for i := 0; i < parties; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, b.Await(context.Background()))
		}()
	}
	wg.Wait()
}

func TestBarrier_DeadlineExpiry(t *testing.T) {
	b := barrier.New(2)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := b.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
