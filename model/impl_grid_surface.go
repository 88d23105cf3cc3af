package model

import "fmt"

// GridVolatilitySurface stores Black volatilities on a maturity × strike
// grid, row-major with maturity as the major index. Lookups interpolate
// bilinearly and extrapolate flat in both directions.
type GridVolatilitySurface struct {
	name       string
	maturities []float64
	strikes    []float64
	vols       []float64 // len(maturities)*len(strikes)
}

var _ VolatilitySurface = (*GridVolatilitySurface)(nil)

// NewGridVolatilitySurface validates both axes and len(vols).
func NewGridVolatilitySurface(name string, maturities, strikes, vols []float64) (*GridVolatilitySurface, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := validateKnots(maturities, true); err != nil {
		return nil, fmt.Errorf("surface %q maturities: %w", name, err)
	}
	if err := validateKnots(strikes, false); err != nil {
		return nil, fmt.Errorf("surface %q strikes: %w", name, err)
	}
	if len(vols) != len(maturities)*len(strikes) {
		return nil, fmt.Errorf("surface %q: %d vols for %dx%d grid: %w",
			name, len(vols), len(maturities), len(strikes), ErrParameterLength)
	}

	return &GridVolatilitySurface{
		name:       name,
		maturities: cloneFloats(maturities),
		strikes:    cloneFloats(strikes),
		vols:       cloneFloats(vols),
	}, nil
}

// Name implements ParameterObject.
func (s *GridVolatilitySurface) Name() string { return s.name }

// Parameter returns a copy of the volatilities (row-major).
func (s *GridVolatilitySurface) Parameter() []float64 { return cloneFloats(s.vols) }

// Maturities returns a copy of the maturity axis.
func (s *GridVolatilitySurface) Maturities() []float64 { return cloneFloats(s.maturities) }

// Strikes returns a copy of the strike axis.
func (s *GridVolatilitySurface) Strikes() []float64 { return cloneFloats(s.strikes) }

// CloneForParameter returns a surface on the same grid with vols p.
func (s *GridVolatilitySurface) CloneForParameter(p []float64) (ParameterObject, error) {
	if len(p) != len(s.vols) {
		return nil, fmt.Errorf("surface %q: %w", s.name, ErrParameterLength)
	}

	return &GridVolatilitySurface{
		name:       s.name,
		maturities: s.maturities,
		strikes:    s.strikes,
		vols:       cloneFloats(p),
	}, nil
}

// Volatility interpolates bilinearly at (maturity, strike).
func (s *GridVolatilitySurface) Volatility(maturity, strike float64) float64 {
	i0, i1, wt := linearWeights(s.maturities, maturity)
	j0, j1, wk := linearWeights(s.strikes, strike)
	nk := len(s.strikes)
	at := func(i, j int) float64 { return s.vols[i*nk+j] }

	lo := (1-wk)*at(i0, j0) + wk*at(i0, j1)
	hi := (1-wk)*at(i1, j0) + wk*at(i1, j1)

	return (1-wt)*lo + wt*hi
}
