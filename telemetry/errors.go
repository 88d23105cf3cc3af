package telemetry

import "errors"

var (
	// ErrUnsupportedExporter indicates an unknown trace exporter name.
	ErrUnsupportedExporter = errors.New("telemetry: unsupported exporter")

	// ErrInvalidSampleRatio indicates a sample ratio outside [0, 1].
	ErrInvalidSampleRatio = errors.New("telemetry: sample ratio must be in [0, 1]")
)
