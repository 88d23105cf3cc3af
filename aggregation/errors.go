package aggregation

import "errors"

var (
	// ErrNilObject indicates a nil object passed to New.
	ErrNilObject = errors.New("aggregation: nil object")

	// ErrLengthMismatch indicates a flat vector whose length differs from Len().
	ErrLengthMismatch = errors.New("aggregation: parameter length mismatch")
)
