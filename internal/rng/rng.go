// Package rng provides the injectable randomness used by every
// probabilistic branch in the simulation. Production code draws from a
// crypto-backed Source; replays and tests substitute a seeded or fixed one.
package rng

// Source produces uniformly distributed random values.
//
// Invariant: Intn(n) is in [0, n); Float64() is in [0, 1).
type Source interface {
	// Intn returns a random int in [0, n).
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float64 in [0, 1).
	Float64() float64
}
