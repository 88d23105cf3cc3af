package transform

import "errors"

var (
	// ErrOutOfDomain indicates a model-space value outside the open domain of the map.
	ErrOutOfDomain = errors.New("transform: value out of domain")

	// ErrLengthMismatch indicates a vector length that does not fit the map.
	ErrLengthMismatch = errors.New("transform: length mismatch")

	// ErrInvalidBounds indicates lower >= upper, or a non-finite slope bound.
	ErrInvalidBounds = errors.New("transform: invalid bounds")
)
