package lazyseq

import (
	"sync"

	"github.com/randalmurphal/lazyseq/pkg/lazyseq/lazy"
	"github.com/randalmurphal/lazyseq/pkg/lazyseq/sequence"
)

// DefaultStart is the first value the process-wide generator returns.
const DefaultStart int64 = 1

// defaultInstance is the process-wide generator, built on first access.
// sync.OnceValue guarantees the constructor runs exactly once and
// completes before any call returns, so the published generator is
// always fully initialized. The instance lives for the rest of the
// process; there is no teardown.
var defaultInstance = sync.OnceValue(func() *sequence.Generator {
	return sequence.NewGenerator(DefaultStart)
})

// Instance returns the process-wide shared generator, constructing it
// on first use. Every call returns the same instance.
func Instance() *sequence.Generator {
	return defaultInstance()
}

// NewHolder returns a lazily initialized holder for a generator
// starting at start. Access after the first success takes no lock.
func NewHolder(start int64) *lazy.Lazy[*sequence.Generator] {
	return lazy.New(func() (*sequence.Generator, error) {
		return sequence.NewGenerator(start), nil
	})
}

// NewSynchronizedHolder returns a mutex-guarded holder for a generator
// starting at start.
func NewSynchronizedHolder(start int64) *lazy.Synchronized[*sequence.Generator] {
	return lazy.NewSynchronized(func() (*sequence.Generator, error) {
		return sequence.NewGenerator(start), nil
	})
}
