// Package model: sentinel error set.
// Callers match with errors.Is; constructors wrap with the offending name.

package model

import "errors"

var (
	// ErrNotFound indicates no object with the requested name or handle.
	ErrNotFound = errors.New("model: object not found")

	// ErrKindMismatch indicates the object exists but has another kind or role
	// (e.g. a surface requested as a curve, a forward curve as a discount curve).
	ErrKindMismatch = errors.New("model: object kind mismatch")

	// ErrDuplicateName indicates two objects with the same name in one NewModel call.
	ErrDuplicateName = errors.New("model: duplicate object name")

	// ErrHandleCollision indicates two distinct names hashing to the same Handle.
	ErrHandleCollision = errors.New("model: handle collision")

	// ErrParameterLength indicates a parameter vector of the wrong length.
	ErrParameterLength = errors.New("model: parameter length mismatch")

	// ErrInvalidKnots indicates empty, non-finite or non-increasing knot times.
	ErrInvalidKnots = errors.New("model: invalid knots")

	// ErrEmptyName indicates an object constructed without a name.
	ErrEmptyName = errors.New("model: empty name")

	// ErrNilObject indicates a nil curve, surface or parameter object.
	ErrNilObject = errors.New("model: nil object")
)
