// SPDX-License-Identifier: MIT

package matrix

// Matrix is the read/write surface the kernels accept. *Dense is the only
// implementation in this package; kernels take a fast path on it and fall
// back to At/Set for anything else.
type Matrix interface {
	Rows() int
	Cols() int

	// At returns element (i, j) or ErrOutOfRange.
	At(i, j int) (float64, error)

	// Set writes element (i, j); ErrOutOfRange or ErrNaNInf on rejection.
	Set(i, j int, v float64) error

	// Clone returns a deep copy.
	Clone() Matrix
}
