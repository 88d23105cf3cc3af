package transform

import (
	"fmt"
	"math"
)

// MonotoneSlope constrains a curve's knot values so that every segment
// slope lies in (MinSlope, MaxSlope):
//
//	x_0 = y_0
//	x_i ∈ (x_{i−1} + MinSlope·Δt_i, x_{i−1} + MaxSlope·Δt_i),  Δt_i = Times[i] − Times[i−1]
//
// The interval for x_i is reached through a logistic map, so its bounds
// depend on the already-transformed x_{i−1}. With MinSlope = 0 this keeps,
// e.g., cumulative hazard or total variance non-decreasing.
type MonotoneSlope struct {
	Times    []float64
	MinSlope float64
	MaxSlope float64
}

func (m MonotoneSlope) check(n int) error {
	if len(m.Times) != n {
		return fmt.Errorf("monotone: %d times for %d values: %w", len(m.Times), n, ErrLengthMismatch)
	}
	if math.IsNaN(m.MinSlope) || math.IsInf(m.MinSlope, 0) ||
		math.IsNaN(m.MaxSlope) || math.IsInf(m.MaxSlope, 0) || !(m.MinSlope < m.MaxSlope) {
		return fmt.Errorf("monotone: slopes (%g, %g): %w", m.MinSlope, m.MaxSlope, ErrInvalidBounds)
	}
	for i := 1; i < n; i++ {
		if !(m.Times[i] > m.Times[i-1]) {
			return fmt.Errorf("monotone: times not increasing at %d: %w", i, ErrInvalidBounds)
		}
	}

	return nil
}

// ToModelSpace builds the knot values left to right.
func (m MonotoneSlope) ToModelSpace(solver []float64) ([]float64, error) {
	if err := m.check(len(solver)); err != nil {
		return nil, err
	}
	out := make([]float64, len(solver))
	for i, y := range solver {
		if i == 0 {
			out[0] = y
			continue
		}
		dt := m.Times[i] - m.Times[i-1]
		out[i] = logistic(y, out[i-1]+m.MinSlope*dt, out[i-1]+m.MaxSlope*dt)
	}

	return out, nil
}

// ToSolverSpace inverts ToModelSpace; a segment whose slope is on or
// outside the bounds is out of domain.
func (m MonotoneSlope) ToSolverSpace(model []float64) ([]float64, error) {
	if err := m.check(len(model)); err != nil {
		return nil, err
	}
	out := make([]float64, len(model))
	for i, x := range model {
		if i == 0 {
			out[0] = x
			continue
		}
		dt := m.Times[i] - m.Times[i-1]
		y, ok := logit(x, model[i-1]+m.MinSlope*dt, model[i-1]+m.MaxSlope*dt)
		if !ok {
			return nil, fmt.Errorf("monotone[%d]: slope %g outside (%g, %g): %w",
				i, (x-model[i-1])/dt, m.MinSlope, m.MaxSlope, ErrOutOfDomain)
		}
		out[i] = y
	}

	return out, nil
}
