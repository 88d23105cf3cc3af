// SPDX-License-Identifier: MIT
// Package matrix provides the two products that assemble the
// Levenberg–Marquardt normal equations from a Jacobian J: the gradient
// term Jᵀr (MatTVec) and the Gram product JᵀJ. Both validate their inputs
// and return wrapped sentinels on dimension mismatches.
//
// Notes:
//   - Solvers (Cholesky, QR) live in impl_solve.go (same package).
//   - All kernels use central validators and wrap via matrixErrorf at the facade.

package matrix

import (
	"fmt"
)

// ZeroSum is the initial sum value for forward/backward substitution and similar.
const ZeroSum = 0.0

// NormZero is the additive identity for norm and accumulation operations.
const NormZero = 0.0

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opMatTVec   = "MatTVec"
	opGram      = "Gram"
	opCholesky  = "Cholesky"
	opSolveChol = "SolveCholesky"
	opSolveQR   = "SolveQR"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
//
// AI-Hints:
//   - Always gate calls with `if err != nil { return nil, matrixErrorf(tag, err) }`.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// MatTVec computes y = mᵀ * x without materializing the transpose.
//
// Contract: m non-nil; len(x) == m.Rows().
// Determinism: fixed i→j accumulation order (row-major walk of m).
// Complexity: Time O(r*c), Space O(c) for y.
func MatTVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatTVec, err)
	}
	if err := ValidateVecLen(x, m.Rows()); err != nil {
		return nil, matrixErrorf(opMatTVec, err)
	}
	rows, cols := m.Rows(), m.Cols()
	y := make([]float64, cols)

	if d, ok := m.(*Dense); ok {
		var i, j, base int
		var xv float64
		for i = 0; i < rows; i++ {
			xv = x[i]
			if xv == 0 {
				continue
			}
			base = i * cols
			for j = 0; j < cols; j++ {
				y[j] += d.data[base+j] * xv
			}
		}

		return y, nil
	}

	var mv float64
	var err error
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			mv, err = m.At(i, j)
			if err != nil {
				return nil, matrixErrorf(opMatTVec, fmt.Errorf("At(%d,%d): %w", i, j, err))
			}
			y[j] += mv * x[i]
		}
	}

	return y, nil
}

// Gram computes the symmetric product G = AᵀA (c×c) for an r×c matrix A.
//
// Implementation:
//   - Stage 1: validate A non-nil; allocate G(c×c).
//   - Stage 2: accumulate the upper triangle row by row of A (i→p→q), then mirror.
//
// Behavior highlights:
//   - Exactly symmetric output (mirrored, not recomputed), which keeps Cholesky happy.
//
// Complexity:
//   - Time O(r*c²/2), Space O(c²).
func Gram(a Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opGram, err)
	}
	rows, cols := a.Rows(), a.Cols()
	g, err := NewDense(cols, cols)
	if err != nil {
		return nil, matrixErrorf(opGram, err)
	}

	row := make([]float64, cols)
	var i, p, q int
	var v float64
	for i = 0; i < rows; i++ {
		if d, ok := a.(*Dense); ok {
			copy(row, d.data[i*cols:(i+1)*cols])
		} else {
			for p = 0; p < cols; p++ {
				v, err = a.At(i, p)
				if err != nil {
					return nil, matrixErrorf(opGram, fmt.Errorf("At(%d,%d): %w", i, p, err))
				}
				row[p] = v
			}
		}
		for p = 0; p < cols; p++ {
			if row[p] == 0 {
				continue
			}
			for q = p; q < cols; q++ {
				g.data[p*cols+q] += row[p] * row[q]
			}
		}
	}
	// Mirror the upper triangle.
	for p = 0; p < cols; p++ {
		for q = p + 1; q < cols; q++ {
			g.data[q*cols+p] = g.data[p*cols+q]
		}
	}

	return g, nil
}
