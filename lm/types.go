package lm

import (
	"context"
	"fmt"
)

// Objective computes the residual vector at params into out.
//
// Contract:
//   - len(out) == Problem.NumValues; out is owned by the caller.
//   - params must not be retained or modified.
//   - Implementations must be safe for concurrent calls with distinct
//     params/out buffers.
type Objective interface {
	Evaluate(ctx context.Context, params, out []float64) error
}

// ObjectiveFunc adapts a function to Objective.
type ObjectiveFunc func(ctx context.Context, params, out []float64) error

// Evaluate calls f.
func (f ObjectiveFunc) Evaluate(ctx context.Context, params, out []float64) error {
	return f(ctx, params, out)
}

// Problem describes one least-squares run.
type Problem struct {
	Objective Objective

	// Initial is the starting point θ₀ (length n ≥ 1).
	Initial []float64

	// Lower and Upper are optional box bounds (length n); nil means ±Inf.
	Lower []float64
	Upper []float64

	// Steps optionally overrides the absolute finite-difference floor per
	// parameter (length n, each > 0).
	Steps []float64

	// NumValues is the residual count m ≥ 1.
	NumValues int
}

// Status is the optimizer state.
type Status uint8

const (
	// StatusInitialized: constructed, not yet run.
	StatusInitialized Status = iota
	// StatusIterating: Run in progress.
	StatusIterating
	// StatusConverged: a tolerance was met.
	StatusConverged
	// StatusMaxIterationsReached: the iteration cap was hit first.
	StatusMaxIterationsReached
	// StatusDiverged: λ exceeded its ceiling with no accepted step.
	StatusDiverged
	// StatusFailed: Run returned an error.
	StatusFailed
)

// String returns the status in upper snake case.
func (s Status) String() string {
	switch s {
	case StatusInitialized:
		return "INITIALIZED"
	case StatusIterating:
		return "ITERATING"
	case StatusConverged:
		return "CONVERGED"
	case StatusMaxIterationsReached:
		return "MAX_ITERATIONS_REACHED"
	case StatusDiverged:
		return "DIVERGED"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool { return s >= StatusConverged }

// NonConverged reports whether s ends a run without meeting a tolerance.
func (s Status) NonConverged() bool {
	return s == StatusMaxIterationsReached || s == StatusDiverged
}

// Iteration describes one proposed step.
type Iteration struct {
	Iteration  int       // outer iteration, starting at 1
	Lambda     float64   // damping used for this proposal
	ChiSquared float64   // χ² at the proposal
	Previous   float64   // χ² at the current point
	Accepted   bool      // proposal replaced the current point
	Parameters []float64 // proposal (copy)
	StepNorm   float64   // ‖θ' − θ‖ after clipping
}

// Observer receives every proposal, accepted or not, on the Run goroutine.
type Observer interface {
	ObserveIteration(ctx context.Context, it Iteration)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, it Iteration)

// ObserveIteration calls f.
func (f ObserverFunc) ObserveIteration(ctx context.Context, it Iteration) { f(ctx, it) }
