// Package model: knot validation and the shared 1-D interpolation kernels.
//
// All kernels assume knots validated by validateKnots (finite, strictly
// increasing, non-empty) and values of the same length.

package model

import (
	"fmt"
	"math"
	"sort"
)

// validateKnots checks xs is non-empty, finite and strictly increasing.
// With positive set, xs[0] must also be > 0.
func validateKnots(xs []float64, positive bool) error {
	if len(xs) == 0 {
		return fmt.Errorf("no knots: %w", ErrInvalidKnots)
	}
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("knot %d not finite: %w", i, ErrInvalidKnots)
		}
		if i > 0 && x <= xs[i-1] {
			return fmt.Errorf("knot %d not increasing: %w", i, ErrInvalidKnots)
		}
	}
	if positive && xs[0] <= 0 {
		return fmt.Errorf("first knot %g not positive: %w", xs[0], ErrInvalidKnots)
	}

	return nil
}

// cloneFloats returns a copy of xs (nil stays nil).
func cloneFloats(xs []float64) []float64 {
	if xs == nil {
		return nil
	}
	out := make([]float64, len(xs))
	copy(out, xs)

	return out
}

// floor returns the largest i with xs[i] <= x, or -1 when x < xs[0].
// Complexity: O(log n).
func floor(xs []float64, x float64) int {
	return sort.Search(len(xs), func(k int) bool { return xs[k] > x }) - 1
}

// linearFlat interpolates ys linearly in x with flat extrapolation.
func linearFlat(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if n == 1 || x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	i := floor(xs, x)
	w := (x - xs[i]) / (xs[i+1] - xs[i])

	return ys[i] + w*(ys[i+1]-ys[i])
}

// linearWeights returns (i, j, w) so that the interpolant at x equals
// (1-w)·ys[i] + w·ys[j], with flat extrapolation (i == j outside).
func linearWeights(xs []float64, x float64) (int, int, float64) {
	n := len(xs)
	if n == 1 || x <= xs[0] {
		return 0, 0, 0
	}
	if x >= xs[n-1] {
		return n - 1, n - 1, 0
	}
	i := floor(xs, x)

	return i, i + 1, (x - xs[i]) / (xs[i+1] - xs[i])
}
