package product

import "errors"

// ErrInvalidInstrument indicates inconsistent instrument terms
// (e.g. payment before fixing, non-positive strike for Black pricing).
var ErrInvalidInstrument = errors.New("product: invalid instrument")
