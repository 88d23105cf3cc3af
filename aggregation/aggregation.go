package aggregation

import (
	"fmt"

	"github.com/katalvlaran/lvcalib/model"
)

// Slot records where one object's parameters live in the flat vector.
type Slot struct {
	Handle model.Handle
	Name   string
	Offset int
	Length int
}

// Aggregation is an ordered set of parameter objects with a fixed layout.
type Aggregation struct {
	objects []model.ParameterObject
	slots   []Slot
	initial []float64
}

// New builds the layout for objects.
//
// Implementation:
//   - Stage 1: reject nil objects.
//   - Stage 2: keep the first occurrence of each handle, in input order.
//   - Stage 3: snapshot every object's Parameter() and assign offsets.
//
// Behavior highlights:
//   - Zero-length objects get a slot with Length 0 and contribute nothing.
//
// Errors:
//   - ErrNilObject.
//
// Complexity:
//   - Time O(k + n) for k objects and n parameters, Space O(k + n).
func New(objects ...model.ParameterObject) (*Aggregation, error) {
	a := &Aggregation{
		objects: make([]model.ParameterObject, 0, len(objects)),
		slots:   make([]Slot, 0, len(objects)),
	}
	seen := make(map[model.Handle]struct{}, len(objects))
	for i, o := range objects {
		if o == nil {
			return nil, fmt.Errorf("object %d: %w", i, ErrNilObject)
		}
		h := model.HandleOf(o.Name())
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}

		p := o.Parameter()
		a.objects = append(a.objects, o)
		a.slots = append(a.slots, Slot{Handle: h, Name: o.Name(), Offset: len(a.initial), Length: len(p)})
		a.initial = append(a.initial, p...)
	}

	return a, nil
}

// Len is the total number of parameters.
func (a *Aggregation) Len() int { return len(a.initial) }

// Parameter returns a copy of the concatenated parameters in layout order.
func (a *Aggregation) Parameter() []float64 {
	out := make([]float64, len(a.initial))
	copy(out, a.initial)

	return out
}

// Slots returns a copy of the layout.
func (a *Aggregation) Slots() []Slot {
	out := make([]Slot, len(a.slots))
	copy(out, a.slots)

	return out
}

// Objects returns the distinct objects in layout order.
func (a *Aggregation) Objects() []model.ParameterObject {
	out := make([]model.ParameterObject, len(a.objects))
	copy(out, a.objects)

	return out
}

// ObjectsToModifyForParameter slices flat back into one update per object.
// Each update owns a fresh copy of its sub-slice, so flat may be reused by
// the caller right after the call returns.
//
// Errors:
//   - ErrLengthMismatch when len(flat) != Len().
func (a *Aggregation) ObjectsToModifyForParameter(flat []float64) ([]model.Update, error) {
	if len(flat) != len(a.initial) {
		return nil, fmt.Errorf("got %d values, want %d: %w", len(flat), len(a.initial), ErrLengthMismatch)
	}
	out := make([]model.Update, len(a.slots))
	for i, s := range a.slots {
		p := make([]float64, s.Length)
		copy(p, flat[s.Offset:s.Offset+s.Length])
		out[i] = model.Update{Handle: s.Handle, Parameters: p}
	}

	return out, nil
}
