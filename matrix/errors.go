// SPDX-License-Identifier: MIT

// Sentinel errors of the matrix package. Kernels wrap them with an
// operation tag (matrixErrorf); callers match with errors.Is.

package matrix

import "errors"

var (
	// ErrInvalidDimensions: a requested row or column count is not positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange: At, Set or Row was given an index outside the matrix.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g. a right-hand side or residual vector of the wrong length, or a
	// non-square system.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNaNInf: a non-finite value was written or produced by a solve.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix: a nil Matrix or vector argument.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrNotPositiveDefinite is returned by Cholesky when a pivot is not
	// strictly positive (matrix is not SPD within working precision).
	ErrNotPositiveDefinite = errors.New("matrix: matrix is not positive definite")

	// ErrSingular is returned when a triangular factor has a zero (or
	// numerically negligible) diagonal entry during a solve.
	ErrSingular = errors.New("matrix: singular matrix")
)
