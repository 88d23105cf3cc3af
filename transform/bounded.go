package transform

import (
	"fmt"
	"math"
)

// Bounded constrains component i to (Lower[i], Upper[i]).
//
// Per component:
//   - both bounds finite: logistic map onto (lo, hi);
//   - only lower finite:  x = lo + exp(y);
//   - only upper finite:  x = hi − exp(y);
//   - neither:            identity.
//
// Use math.Inf(-1) / math.Inf(1) for a missing bound.
type Bounded struct {
	Lower []float64
	Upper []float64
}

func (b Bounded) check(n int) error {
	if len(b.Lower) != n || len(b.Upper) != n {
		return fmt.Errorf("bounded: %d/%d bounds for %d values: %w", len(b.Lower), len(b.Upper), n, ErrLengthMismatch)
	}
	for i := range b.Lower {
		if math.IsNaN(b.Lower[i]) || math.IsNaN(b.Upper[i]) || !(b.Lower[i] < b.Upper[i]) {
			return fmt.Errorf("bounded[%d]: [%g, %g]: %w", i, b.Lower[i], b.Upper[i], ErrInvalidBounds)
		}
	}

	return nil
}

// ToModelSpace maps unconstrained values into the bounds.
func (b Bounded) ToModelSpace(solver []float64) ([]float64, error) {
	if err := b.check(len(solver)); err != nil {
		return nil, err
	}
	out := make([]float64, len(solver))
	for i, y := range solver {
		lo, hi := b.Lower[i], b.Upper[i]
		switch {
		case !math.IsInf(lo, 0) && !math.IsInf(hi, 0):
			out[i] = logistic(y, lo, hi)
		case !math.IsInf(lo, 0):
			out[i] = lo + math.Exp(y)
		case !math.IsInf(hi, 0):
			out[i] = hi - math.Exp(y)
		default:
			out[i] = y
		}
	}

	return out, nil
}

// ToSolverSpace inverts ToModelSpace; values on or outside a bound are
// out of domain.
func (b Bounded) ToSolverSpace(model []float64) ([]float64, error) {
	if err := b.check(len(model)); err != nil {
		return nil, err
	}
	out := make([]float64, len(model))
	for i, x := range model {
		lo, hi := b.Lower[i], b.Upper[i]
		if !(x > lo && x < hi) {
			return nil, fmt.Errorf("bounded[%d]=%g outside (%g, %g): %w", i, x, lo, hi, ErrOutOfDomain)
		}
		switch {
		case !math.IsInf(lo, 0) && !math.IsInf(hi, 0):
			out[i], _ = logit(x, lo, hi)
		case !math.IsInf(lo, 0):
			out[i] = math.Log(x - lo)
		case !math.IsInf(hi, 0):
			out[i] = math.Log(hi - x)
		default:
			out[i] = x
		}
	}

	return out, nil
}
