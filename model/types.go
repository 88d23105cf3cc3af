// Package model: public interfaces for calibratable market objects.

package model

// ParameterObject is anything with a flat parameter vector that can be
// re-instantiated for a different vector.
//
// Contract:
//   - Name is stable and non-empty.
//   - Parameter returns a fresh copy; its length never changes.
//   - CloneForParameter returns a new object carrying p and leaves the
//     receiver untouched; a wrong length yields ErrParameterLength.
type ParameterObject interface {
	Name() string
	Parameter() []float64
	CloneForParameter(p []float64) (ParameterObject, error)
}

// Curve is a one-dimensional term structure over time (in years).
type Curve interface {
	ParameterObject

	// Value returns the curve's native quantity at t (zero rate, discount
	// factor or forward rate, depending on the implementation).
	Value(t float64) float64

	// Times returns a copy of the knot times.
	Times() []float64
}

// DiscountCurve is a Curve that can discount.
type DiscountCurve interface {
	Curve
	DiscountFactor(t float64) float64
}

// ForwardCurve is a Curve that projects forward rates.
type ForwardCurve interface {
	Curve
	Forward(t float64) float64
}

// VolatilitySurface maps (maturity, strike) to a Black volatility.
type VolatilitySurface interface {
	ParameterObject
	Volatility(maturity, strike float64) float64
}

// Update replaces the parameters of the object identified by Handle.
type Update struct {
	Handle     Handle
	Parameters []float64
}
