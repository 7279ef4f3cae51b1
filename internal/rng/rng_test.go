// v0
// internal/rng/rng_test.go
package rng

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42).For(SubsystemBins)
	b := New(42).For(SubsystemBins)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64(), "draw %d", i)
	}
}

func TestSubsystemsAreIsolated(t *testing.T) {
	src := New(7)
	bins := src.For(SubsystemBins)
	city := src.For(SubsystemCity)
	assert.NotEqual(t, bins.Float64(), city.Float64())

	// Draining one stream leaves the other's sequence intact.
	ref := New(7)
	refCity := ref.For(SubsystemCity)
	_ = refCity.Float64()
	for i := 0; i < 50; i++ {
		_ = bins.Float64()
	}
	assert.Equal(t, refCity.Float64(), city.Float64())
}

func TestForReturnsCachedStream(t *testing.T) {
	src := New(1)
	assert.Same(t, src.For("x"), src.For("x"))
}

func TestZeroSeedPicksTimeSeed(t *testing.T) {
	assert.NotZero(t, New(0).Seed())
}

func TestRanges(t *testing.T) {
	st := New(99).For("ranges")
	for i := 0; i < 1000; i++ {
		u := st.Uniform(0.1, 2.0)
		require.GreaterOrEqual(t, u, 0.1)
		require.Less(t, u, 2.0)

		n := st.IntRange(15, 25)
		require.GreaterOrEqual(t, n, 15)
		require.LessOrEqual(t, n, 25)
	}
	assert.Equal(t, 3, st.IntRange(3, 3))
	assert.False(t, st.Chance(0))
	assert.True(t, st.Chance(1))
	assert.Contains(t, []string{"a", "b"}, Pick(st, []string{"a", "b"}))
}

func TestStreamConcurrentUse(t *testing.T) {
	st := New(5).For("shared")
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				_ = st.Uniform(0, 1)
				_ = st.IntRange(0, 10)
			}
		}()
	}
	wg.Wait()
}
