package config

import "errors"

var (
	// ErrInvalid wraps validator failures and cross-field inconsistencies.
	ErrInvalid = errors.New("config: invalid configuration")

	// ErrUnknownObject indicates a calibrate entry naming no curve or surface.
	ErrUnknownObject = errors.New("config: unknown object")
)
