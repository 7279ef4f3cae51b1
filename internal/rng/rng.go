// v0
// internal/rng/rng.go
package rng

import (
	"hash/fnv"
	"math/rand"
	"sync"
	"time"
)

// Subsystem names. Each one draws from its own stream so that adding draws
// in one place does not shift the sequence seen by another.
const (
	SubsystemBins      = "bins"
	SubsystemAlerts    = "alerts"
	SubsystemAnalytics = "analytics"
	SubsystemCity      = "city"
)

// Source hands out deterministic, isolated random streams per subsystem.
// A stream for subsystem s is seeded with seed XOR fnv1a64(s).
//
// Source and its streams are safe for concurrent use.
type Source struct {
	seed int64

	mu      sync.Mutex
	streams map[string]*Stream
}

// New builds a Source. A zero seed selects a time-based seed.
func New(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{seed: seed, streams: make(map[string]*Stream)}
}

// Seed returns the master seed in use.
func (s *Source) Seed() int64 {
	return s.seed
}

// For returns the cached stream for the named subsystem. Never returns nil.
func (s *Source) For(name string) *Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.streams[name]; ok {
		return st
	}
	st := &Stream{r: rand.New(rand.NewSource(s.seed ^ fnv1a64(name)))}
	s.streams[name] = st
	return st
}

// Stream is a mutex-guarded *rand.Rand with range helpers.
type Stream struct {
	mu sync.Mutex
	r  *rand.Rand
}

// Float64 returns a value in [0, 1).
func (s *Stream) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Uniform returns a value in [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.Float64()
}

// IntRange returns an integer in [lo, hi], both ends included.
func (s *Stream) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.r.Intn(hi-lo+1)
}

// Intn returns an integer in [0, n). n must be positive.
func (s *Stream) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// Chance reports true with probability p.
func (s *Stream) Chance(p float64) bool {
	return s.Float64() < p
}

// Pick returns a uniformly chosen element of items. items must not be empty.
func Pick[T any](s *Stream, items []T) T {
	return items[s.Intn(len(items))]
}

func fnv1a64(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}
