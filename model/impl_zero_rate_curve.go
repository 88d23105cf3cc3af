package model

import (
	"fmt"
	"math"
)

// ZeroRateCurve is a discount curve parameterized by continuously
// compounded zero rates at its knots. Rates are linear in t between knots
// and flat outside; DiscountFactor(t) = exp(-r(t)·t).
type ZeroRateCurve struct {
	name  string
	times []float64
	rates []float64
}

var _ DiscountCurve = (*ZeroRateCurve)(nil)

// NewZeroRateCurve validates the knots (strictly increasing, positive) and
// copies both slices.
func NewZeroRateCurve(name string, times, rates []float64) (*ZeroRateCurve, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := validateKnots(times, true); err != nil {
		return nil, fmt.Errorf("zero curve %q: %w", name, err)
	}
	if len(rates) != len(times) {
		return nil, fmt.Errorf("zero curve %q: %d rates for %d knots: %w", name, len(rates), len(times), ErrParameterLength)
	}

	return &ZeroRateCurve{name: name, times: cloneFloats(times), rates: cloneFloats(rates)}, nil
}

// Name implements ParameterObject.
func (c *ZeroRateCurve) Name() string { return c.name }

// Parameter returns a copy of the zero rates.
func (c *ZeroRateCurve) Parameter() []float64 { return cloneFloats(c.rates) }

// Times returns a copy of the knot times.
func (c *ZeroRateCurve) Times() []float64 { return cloneFloats(c.times) }

// CloneForParameter returns a curve with the same knots and rates p.
func (c *ZeroRateCurve) CloneForParameter(p []float64) (ParameterObject, error) {
	if len(p) != len(c.rates) {
		return nil, fmt.Errorf("zero curve %q: %w", c.name, ErrParameterLength)
	}

	return &ZeroRateCurve{name: c.name, times: c.times, rates: cloneFloats(p)}, nil
}

// Value returns the zero rate at t.
func (c *ZeroRateCurve) Value(t float64) float64 {
	return linearFlat(c.times, c.rates, t)
}

// DiscountFactor returns exp(-r(t)·t).
func (c *ZeroRateCurve) DiscountFactor(t float64) float64 {
	return math.Exp(-c.Value(t) * t)
}
