// SPDX-License-Identifier: MIT

// Package matrix - dense linear solvers for small, dense systems.
//
// Purpose:
//   - Cholesky factorization A = L·Lᵀ for symmetric positive definite systems
//     (the damped normal equations of Levenberg–Marquardt).
//   - Householder QR least-squares solve as the robust fallback when
//     Cholesky detects a non-positive pivot.
//
// Determinism:
//   - Fixed loop orders, no pivot permutations, no randomness: identical
//     inputs give bit-identical outputs.
//
// AI-Hints:
//   - Call SolveCholesky first; on ErrNotPositiveDefinite retry with SolveQR.
//   - Both solvers copy their inputs; callers keep ownership of A and b.

package matrix

import (
	"fmt"
	"math"
)

// Relative pivot thresholds. A Cholesky pivot below cholPivotTol·max(diag A)
// and an R diagonal below qrRankTol·max|diag R| are treated as breakdowns.
const (
	cholPivotTol = 1e-15
	qrRankTol    = 1e-13
)

// denseCopy materializes any Matrix as a fresh *Dense (row-major).
// Complexity: O(r*c).
func denseCopy(m Matrix) (*Dense, error) {
	if d, ok := m.(*Dense); ok {
		return d.Clone().(*Dense), nil
	}
	out, err := NewDense(m.Rows(), m.Cols())
	if err != nil {
		return nil, err
	}
	var v float64
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v, err = m.At(i, j)
			if err != nil {
				return nil, fmt.Errorf("At(%d,%d): %w", i, j, err)
			}
			out.data[i*out.c+j] = v
		}
	}

	return out, nil
}

// Cholesky computes the lower-triangular factor L with A = L·Lᵀ.
// Only the lower triangle of A is read; symmetry is the caller's contract.
//
// Implementation:
//   - Stage 1: validate A square; copy into a working Dense.
//   - Stage 2: column-by-column Cholesky–Banachiewicz; each pivot
//     d = a_jj − Σ L_jk² must exceed cholPivotTol·max(diag A).
//   - Stage 3: zero the strict upper triangle of the result.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (non-square).
//   - ErrNotPositiveDefinite (pivot ≤ threshold, NaN or Inf pivot).
//
// Complexity:
//   - Time O(n³/3), Space O(n²).
func Cholesky(a Matrix) (*Dense, error) {
	if err := ValidateSquare(a); err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	w, err := denseCopy(a)
	if err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	n := w.r

	scale := NormZero
	for i := 0; i < n; i++ {
		if d := math.Abs(w.data[i*n+i]); d > scale {
			scale = d
		}
	}
	threshold := cholPivotTol * scale

	var i, j, k int
	var sum float64
	for j = 0; j < n; j++ {
		sum = w.data[j*n+j]
		for k = 0; k < j; k++ {
			sum -= w.data[j*n+k] * w.data[j*n+k]
		}
		if !(sum > threshold) || math.IsInf(sum, 0) {
			return nil, matrixErrorf(opCholesky, fmt.Errorf("pivot %d: %w", j, ErrNotPositiveDefinite))
		}
		pivot := math.Sqrt(sum)
		w.data[j*n+j] = pivot
		for i = j + 1; i < n; i++ {
			sum = w.data[i*n+j]
			for k = 0; k < j; k++ {
				sum -= w.data[i*n+k] * w.data[j*n+k]
			}
			w.data[i*n+j] = sum / pivot
		}
	}
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			w.data[i*n+j] = 0
		}
	}

	return w, nil
}

// SolveCholesky solves A·x = b for symmetric positive definite A.
//
// Implementation:
//   - Stage 1: L := Cholesky(A).
//   - Stage 2: forward substitution L·y = b, then backward Lᵀ·x = y.
//
// Errors:
//   - Everything Cholesky returns; ErrDimensionMismatch when len(b) != n;
//     ErrNaNInf when the solution is not finite.
//
// Complexity:
//   - Time O(n³/3 + 2n²), Space O(n²).
func SolveCholesky(a Matrix, b []float64) ([]float64, error) {
	if err := ValidateSquare(a); err != nil {
		return nil, matrixErrorf(opSolveChol, err)
	}
	if err := ValidateVecLen(b, a.Rows()); err != nil {
		return nil, matrixErrorf(opSolveChol, err)
	}
	l, err := Cholesky(a)
	if err != nil {
		return nil, matrixErrorf(opSolveChol, err)
	}
	n := l.r

	y := make([]float64, n)
	var i, k int
	var sum float64
	for i = 0; i < n; i++ {
		sum = b[i]
		for k = 0; k < i; k++ {
			sum -= l.data[i*n+k] * y[k]
		}
		y[i] = sum / l.data[i*n+i]
	}
	x := make([]float64, n)
	for i = n - 1; i >= 0; i-- {
		sum = y[i]
		for k = i + 1; k < n; k++ {
			sum -= l.data[k*n+i] * x[k]
		}
		x[i] = sum / l.data[i*n+i]
	}
	if err = ValidateFiniteVec(x); err != nil {
		return nil, matrixErrorf(opSolveChol, err)
	}

	return x, nil
}

// SolveQR returns the least-squares solution of A·x ≈ b for an m×n matrix
// with m ≥ n, using Householder reflections.
//
// Implementation:
//   - Stage 1: validate shapes; copy A and b.
//   - Stage 2: for k=0..n-1 build the reflector of column k (alpha = −sign(a_kk)·‖a_k‖)
//     and apply it to the trailing columns of A and to b.
//   - Stage 3: rank check on diag(R), then back substitution R·x = (Qᵀb)[:n].
//
// Behavior highlights:
//   - Works on the original system, so it does not square the condition
//     number the way the normal equations do.
//
// Errors:
//   - ErrNilMatrix; ErrDimensionMismatch (m < n or len(b) != m);
//     ErrSingular (|R_kk| ≤ qrRankTol·max|R_ii|); ErrNaNInf.
//
// Complexity:
//   - Time O(2mn² − 2n³/3), Space O(mn).
func SolveQR(a Matrix, b []float64) ([]float64, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opSolveQR, err)
	}
	m, n := a.Rows(), a.Cols()
	if m < n {
		return nil, matrixErrorf(opSolveQR, ErrDimensionMismatch)
	}
	if err := ValidateVecLen(b, m); err != nil {
		return nil, matrixErrorf(opSolveQR, err)
	}
	w, err := denseCopy(a)
	if err != nil {
		return nil, matrixErrorf(opSolveQR, err)
	}
	rhs := make([]float64, m)
	copy(rhs, b)

	v := make([]float64, m)
	var (
		i, j, k    int
		norm, beta float64
		alpha, tau float64
		sum, akk   float64
	)
	for k = 0; k < n; k++ {
		norm = NormZero
		for i = k; i < m; i++ {
			norm += w.data[i*n+k] * w.data[i*n+k]
		}
		norm = math.Sqrt(norm)
		if norm == NormZero {
			continue // zero column; caught by the rank check
		}
		akk = w.data[k*n+k]
		alpha = -math.Copysign(norm, akk)

		for i = k; i < m; i++ {
			v[i] = w.data[i*n+k]
		}
		v[k] -= alpha

		beta = NormZero
		for i = k; i < m; i++ {
			beta += v[i] * v[i]
		}
		if beta == NormZero {
			continue
		}
		tau = 2.0 / beta

		for j = k; j < n; j++ {
			sum = ZeroSum
			for i = k; i < m; i++ {
				sum += v[i] * w.data[i*n+j]
			}
			for i = k; i < m; i++ {
				w.data[i*n+j] -= tau * v[i] * sum
			}
		}
		sum = ZeroSum
		for i = k; i < m; i++ {
			sum += v[i] * rhs[i]
		}
		for i = k; i < m; i++ {
			rhs[i] -= tau * v[i] * sum
		}
	}

	maxDiag := NormZero
	for k = 0; k < n; k++ {
		if d := math.Abs(w.data[k*n+k]); d > maxDiag {
			maxDiag = d
		}
	}
	for k = 0; k < n; k++ {
		if maxDiag == NormZero || math.Abs(w.data[k*n+k]) <= qrRankTol*maxDiag {
			return nil, matrixErrorf(opSolveQR, fmt.Errorf("R[%d,%d]: %w", k, k, ErrSingular))
		}
	}

	x := make([]float64, n)
	for k = n - 1; k >= 0; k-- {
		sum = rhs[k]
		for j = k + 1; j < n; j++ {
			sum -= w.data[k*n+j] * x[j]
		}
		x[k] = sum / w.data[k*n+k]
	}
	if err = ValidateFiniteVec(x); err != nil {
		return nil, matrixErrorf(opSolveQR, err)
	}

	return x, nil
}
