// Package telemetry wires calibration runs into Prometheus metrics and
// OpenTelemetry tracing.
//
// Recorder implements calibration.Recorder: it counts runs by status,
// tracks iterations, accuracy and duration per run, and observes every
// Levenberg–Marquardt proposal (accepted/rejected, λ, χ²).
//
// InitTracing installs a global tracer provider with a stdout exporter,
// which is what the calibrate command uses when tracing is enabled.
package telemetry
