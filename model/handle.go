package model

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Handle identifies a market object inside a Model. It is the xxHash64 of
// the object name, so equal names always map to equal handles.
type Handle uint64

// HandleOf computes the Handle of a name.
func HandleOf(name string) Handle {
	return Handle(xxhash.Sum64String(name))
}

// String renders the handle as fixed-width hex.
func (h Handle) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}
