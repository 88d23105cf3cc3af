package model

import "fmt"

// PiecewiseForwardCurve holds right-continuous piecewise-constant forward
// rates: Forward(t) = f_i for times[i] <= t < times[i+1], f_0 before the
// first knot and the last rate after the last knot.
type PiecewiseForwardCurve struct {
	name     string
	times    []float64
	forwards []float64
}

var _ ForwardCurve = (*PiecewiseForwardCurve)(nil)

// NewPiecewiseForwardCurve validates the knots (strictly increasing, may
// start at 0) and copies both slices.
func NewPiecewiseForwardCurve(name string, times, forwards []float64) (*PiecewiseForwardCurve, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := validateKnots(times, false); err != nil {
		return nil, fmt.Errorf("forward curve %q: %w", name, err)
	}
	if len(forwards) != len(times) {
		return nil, fmt.Errorf("forward curve %q: %d rates for %d knots: %w", name, len(forwards), len(times), ErrParameterLength)
	}

	return &PiecewiseForwardCurve{name: name, times: cloneFloats(times), forwards: cloneFloats(forwards)}, nil
}

// Name implements ParameterObject.
func (c *PiecewiseForwardCurve) Name() string { return c.name }

// Parameter returns a copy of the forward rates.
func (c *PiecewiseForwardCurve) Parameter() []float64 { return cloneFloats(c.forwards) }

// Times returns a copy of the knot times.
func (c *PiecewiseForwardCurve) Times() []float64 { return cloneFloats(c.times) }

// CloneForParameter returns a curve with the same knots and forwards p.
func (c *PiecewiseForwardCurve) CloneForParameter(p []float64) (ParameterObject, error) {
	if len(p) != len(c.forwards) {
		return nil, fmt.Errorf("forward curve %q: %w", c.name, ErrParameterLength)
	}

	return &PiecewiseForwardCurve{name: c.name, times: c.times, forwards: cloneFloats(p)}, nil
}

// Value is the forward rate at t.
func (c *PiecewiseForwardCurve) Value(t float64) float64 { return c.Forward(t) }

// Forward returns the forward rate in effect at t.
func (c *PiecewiseForwardCurve) Forward(t float64) float64 {
	i := floor(c.times, t)
	if i < 0 {
		i = 0
	}

	return c.forwards[i]
}
