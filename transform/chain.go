package transform

import "fmt"

// Part applies Transformation to the next Length components.
type Part struct {
	Length         int
	Transformation Transformation
}

// Chain concatenates parts over consecutive ranges of the vector. A nil
// Transformation in a part means Identity. The vector length must equal
// the sum of the part lengths.
func Chain(parts ...Part) Transformation {
	cp := make([]Part, len(parts))
	copy(cp, parts)
	for i := range cp {
		if cp[i].Transformation == nil {
			cp[i].Transformation = Identity{}
		}
	}

	return chain{parts: cp}
}

type chain struct {
	parts []Part
}

func (c chain) total() int {
	n := 0
	for _, p := range c.parts {
		if p.Length < 0 {
			return -1
		}
		n += p.Length
	}

	return n
}

func (c chain) apply(in []float64, toModel bool) ([]float64, error) {
	if n := c.total(); len(in) != n {
		return nil, fmt.Errorf("chain: %d values for %d slots: %w", len(in), n, ErrLengthMismatch)
	}
	out := make([]float64, 0, len(in))
	offset := 0
	for i, p := range c.parts {
		seg := in[offset : offset+p.Length]
		var (
			res []float64
			err error
		)
		if toModel {
			res, err = p.Transformation.ToModelSpace(seg)
		} else {
			res, err = p.Transformation.ToSolverSpace(seg)
		}
		if err != nil {
			return nil, fmt.Errorf("chain part %d: %w", i, err)
		}
		if len(res) != p.Length {
			return nil, fmt.Errorf("chain part %d returned %d values: %w", i, len(res), ErrLengthMismatch)
		}
		out = append(out, res...)
		offset += p.Length
	}

	return out, nil
}

// ToModelSpace implements Transformation.
func (c chain) ToModelSpace(solver []float64) ([]float64, error) { return c.apply(solver, true) }

// ToSolverSpace implements Transformation.
func (c chain) ToSolverSpace(model []float64) ([]float64, error) { return c.apply(model, false) }
