package broken_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/lazyseq/pkg/lazyseq/lazy/broken"
	"github.com/randalmurphal/lazyseq/pkg/lazyseq/sequence"
)

// Single-threaded behavior only. The concurrent hazard is exercised by
// the stress suite, where failures are expected to be non-deterministic.
func TestHolder_Sequential(t *testing.T) {
	holder := broken.NewHolder(1)

	first, err := holder.Instance()
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := holder.Instance()
	require.NoError(t, err)
	assert.Same(t, first, second)

	v, err := first.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestHolder_OverflowPolicyThreadsThrough(t *testing.T) {
	holder := broken.NewHolderWithPolicy(math.MaxInt64, sequence.OverflowFail)

	counter, err := holder.Instance()
	require.NoError(t, err)

	_, err = counter.Next()
	require.ErrorIs(t, err, sequence.ErrOverflow)
}
