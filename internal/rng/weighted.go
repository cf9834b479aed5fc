package rng

// WeightedIndex samples an index from weights proportionally to their
// values. Non-positive weights are treated as zero.
//
// Precondition: src must be non-nil; weights must have at least one entry.
// Postcondition: Returns an index in [0, len(weights)). When every weight
// is zero the first index is returned.
func WeightedIndex(src Source, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	pick := src.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		pick -= w
		if pick < 0 {
			return i
		}
	}
	// Float rounding can leave pick at exactly 0 after the last weight.
	return len(weights) - 1
}

// Chance reports whether an event with probability p occurred.
//
// Precondition: src must be non-nil.
// Postcondition: Always false for p <= 0, always true for p >= 1.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}
