package transform

import (
	"fmt"
	"math"
)

// Transformation converts between solver space and model space.
// Both directions return fresh slices and never modify their input.
type Transformation interface {
	ToModelSpace(solver []float64) ([]float64, error)
	ToSolverSpace(model []float64) ([]float64, error)
}

// Identity leaves parameters unchanged.
type Identity struct{}

// ToModelSpace returns a copy of solver.
func (Identity) ToModelSpace(solver []float64) ([]float64, error) { return clone(solver), nil }

// ToSolverSpace returns a copy of model.
func (Identity) ToSolverSpace(model []float64) ([]float64, error) { return clone(model), nil }

// Positive keeps every component strictly positive: x = exp(y).
type Positive struct{}

// ToModelSpace applies exp component-wise.
func (Positive) ToModelSpace(solver []float64) ([]float64, error) {
	out := make([]float64, len(solver))
	for i, y := range solver {
		out[i] = math.Exp(y)
	}

	return out, nil
}

// ToSolverSpace applies log component-wise; x <= 0 is out of domain.
func (Positive) ToSolverSpace(model []float64) ([]float64, error) {
	out := make([]float64, len(model))
	for i, x := range model {
		if !(x > 0) {
			return nil, fmt.Errorf("positive[%d]=%g: %w", i, x, ErrOutOfDomain)
		}
		out[i] = math.Log(x)
	}

	return out, nil
}

func clone(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)

	return out
}

// logistic maps y into (lo, hi).
func logistic(y, lo, hi float64) float64 {
	return lo + (hi-lo)/(1+math.Exp(-y))
}

// logit is the inverse of logistic; x must lie strictly inside (lo, hi).
func logit(x, lo, hi float64) (float64, bool) {
	if !(x > lo && x < hi) {
		return 0, false
	}

	return math.Log((x - lo) / (hi - x)), true
}
