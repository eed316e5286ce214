package testutil

import (
	"math/rand"
	"sync"
)

// PiPrefix is a well-known prefix of pi, handy for readable assertions.
const PiPrefix = "3.14159265358979323846264338327950288419716939937510"

// Sequence returns a deterministic digit sequence of exactly n bytes in the
// stored format: one leading digit, a decimal point, then digits. The same
// seed always yields the same sequence.
func Sequence(seed int64, n int) []byte {
	if n <= 0 {
		return []byte{}
	}

	rng := rand.New(rand.NewSource(seed))
	out := make([]byte, n)
	out[0] = byte('1' + rng.Intn(9))
	if n > 1 {
		out[1] = '.'
	}
	for i := 2; i < n; i++ {
		out[i] = byte('0' + rng.Intn(10))
	}
	return out
}

// RNG encapsulates a seeded random number generator.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63n returns a non-negative pseudo-random int64 in [0,n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}
