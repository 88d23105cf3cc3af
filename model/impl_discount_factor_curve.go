package model

import (
	"fmt"
	"math"
)

// DiscountFactorCurve is parameterized by discount factors at its knots,
// with an implicit anchor P(0) = 1.
//
// Interpolation is log-linear (piecewise-constant instantaneous forwards).
// Beyond the last knot the forward of the last segment is extended.
// A non-positive discount factor makes the affected segment NaN, which the
// calibration layer reports as an evaluation failure.
type DiscountFactorCurve struct {
	name  string
	times []float64 // knots, without the anchor
	dfs   []float64
}

var _ DiscountCurve = (*DiscountFactorCurve)(nil)

// NewDiscountFactorCurve validates the knots (strictly increasing, positive)
// and copies both slices.
func NewDiscountFactorCurve(name string, times, dfs []float64) (*DiscountFactorCurve, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := validateKnots(times, true); err != nil {
		return nil, fmt.Errorf("discount curve %q: %w", name, err)
	}
	if len(dfs) != len(times) {
		return nil, fmt.Errorf("discount curve %q: %d factors for %d knots: %w", name, len(dfs), len(times), ErrParameterLength)
	}

	return &DiscountFactorCurve{name: name, times: cloneFloats(times), dfs: cloneFloats(dfs)}, nil
}

// Name implements ParameterObject.
func (c *DiscountFactorCurve) Name() string { return c.name }

// Parameter returns a copy of the knot discount factors.
func (c *DiscountFactorCurve) Parameter() []float64 { return cloneFloats(c.dfs) }

// Times returns a copy of the knot times.
func (c *DiscountFactorCurve) Times() []float64 { return cloneFloats(c.times) }

// CloneForParameter returns a curve with the same knots and factors p.
func (c *DiscountFactorCurve) CloneForParameter(p []float64) (ParameterObject, error) {
	if len(p) != len(c.dfs) {
		return nil, fmt.Errorf("discount curve %q: %w", c.name, ErrParameterLength)
	}

	return &DiscountFactorCurve{name: c.name, times: c.times, dfs: cloneFloats(p)}, nil
}

// Value is the discount factor at t.
func (c *DiscountFactorCurve) Value(t float64) float64 { return c.DiscountFactor(t) }

// DiscountFactor interpolates log-linearly between (t1, P1) and (t2, P2):
// P(t) = P1·exp(-f·(t-t1)) with f = ln(P1/P2)/(t2-t1).
func (c *DiscountFactorCurve) DiscountFactor(t float64) float64 {
	if t <= 0 {
		return 1
	}
	t1, p1 := 0.0, 1.0
	t2, p2 := c.times[0], c.dfs[0]
	if n := len(c.times); t > c.times[0] && n > 1 {
		i := floor(c.times, t)
		if i >= n-1 {
			i = n - 2
		}
		t1, p1 = c.times[i], c.dfs[i]
		t2, p2 = c.times[i+1], c.dfs[i+1]
	}
	if p1 <= 0 || p2 <= 0 {
		return math.NaN()
	}
	f := math.Log(p1/p2) / (t2 - t1)

	return p1 * math.Exp(-f*(t-t1))
}
