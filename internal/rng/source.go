package rng

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
)

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in [0, n) for
// any n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
// Panics with "rng: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a random float64 in [0, 1) with 53 bits of precision.
func (c *cryptoSource) Float64() float64 {
	const mantissa = 1 << 53
	return float64(c.Intn(mantissa)) / mantissa
}

// seededSource implements Source with a seeded math/rand generator,
// making an entire match replayable from the seed.
// It is not safe for concurrent use; the simulation loop is single-threaded.
type seededSource struct {
	r *mrand.Rand
}

// NewSeededSource returns a deterministic Source for the given seed.
//
// Postcondition: Two sources created with the same seed produce identical
// value sequences.
func NewSeededSource(seed int64) Source {
	return &seededSource{r: mrand.New(mrand.NewSource(seed))}
}

// Intn returns a deterministic pseudo-random int in [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	return s.r.Intn(n)
}

// Float64 returns a deterministic pseudo-random float64 in [0, 1).
func (s *seededSource) Float64() float64 {
	return s.r.Float64()
}
