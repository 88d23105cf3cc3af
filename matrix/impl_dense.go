// SPDX-License-Identifier: MIT

// Package matrix - row-major Dense used for Jacobians and normal equations.
//
// Layout:
//   - element (i, j) lives at data[i*c+j]; rows are contiguous, so a Jacobian
//     row (one residual against every parameter) is a single slice window.
//
// Numeric policy:
//   - Set rejects NaN/±Inf, so a non-finite derivative surfaces at the point
//     where it is written instead of inside a factorization.
//
// Complexity quicksheet:
//   - NewDense/NewDenseFrom/Clone: O(r*c); At/Set: O(1); Row: O(c).

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// Method tags used by denseErrorf.
const (
	tagAt   = "At"
	tagSet  = "Set"
	tagRow  = "Row"
	tagFrom = "From"
)

func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a row-major r×c matrix of finite float64 values.
type Dense struct {
	r, c int
	data []float64 // len == r*c
}

var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense returns an r×c zero matrix.
//
// Errors:
//   - ErrInvalidDimensions when rows or cols is not positive.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewDenseFrom copies a row-major slice into a new r×c matrix.
//
// Errors:
//   - ErrInvalidDimensions; ErrDimensionMismatch when len(data) != rows*cols;
//     ErrNaNInf (tagged with the offending cell) for non-finite input.
func NewDenseFrom(rows, cols int, data []float64) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(data) != len(m.data) {
		return nil, denseErrorf(tagFrom, rows, cols, ErrDimensionMismatch)
	}
	for k, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, denseErrorf(tagFrom, k/cols, k%cols, ErrNaNInf)
		}
	}
	copy(m.data, data)

	return m, nil
}

// Rows returns r.
func (m *Dense) Rows() int { return m.r }

// Cols returns c.
func (m *Dense) Cols() int { return m.c }

func (m *Dense) inRange(row, col int) bool {
	return row >= 0 && row < m.r && col >= 0 && col < m.c
}

// At returns element (row, col); ErrOutOfRange outside the matrix.
func (m *Dense) At(row, col int) (float64, error) {
	if !m.inRange(row, col) {
		return 0, denseErrorf(tagAt, row, col, ErrOutOfRange)
	}

	return m.data[row*m.c+col], nil
}

// Set writes v at (row, col).
//
// Errors:
//   - ErrOutOfRange outside the matrix; ErrNaNInf for NaN or ±Inf, in which
//     case the cell keeps its previous value.
func (m *Dense) Set(row, col int, v float64) error {
	if !m.inRange(row, col) {
		return denseErrorf(tagSet, row, col, ErrOutOfRange)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return denseErrorf(tagSet, row, col, ErrNaNInf)
	}
	m.data[row*m.c+col] = v

	return nil
}

// Row returns a copy of row i.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf(tagRow, i, 0, ErrOutOfRange)
	}

	return append([]float64(nil), m.data[i*m.c:(i+1)*m.c]...), nil
}

// Diagonal returns a copy of the main diagonal, min(r, c) entries.
func (m *Dense) Diagonal() []float64 {
	n := min(m.r, m.c)
	out := make([]float64, n)
	for i := range out {
		out[i] = m.data[i*m.c+i]
	}

	return out
}

// Clone returns an independent copy.
func (m *Dense) Clone() Matrix {
	return &Dense{r: m.r, c: m.c, data: append([]float64(nil), m.data...)}
}

// String renders one bracketed line per row; meant for debug logs.
func (m *Dense) String() string {
	var b strings.Builder
	for i := 0; i < m.r; i++ {
		b.WriteByte('[')
		for j, v := range m.data[i*m.c : (i+1)*m.c] {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%g", v)
		}
		b.WriteString("]\n")
	}

	return b.String()
}
