package calibration

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/lvcalib/lm"
)

// Result summarizes one CalibratedModel call.
type Result struct {
	RunID       uuid.UUID
	Status      lm.Status
	Iterations  int
	Accuracy    float64   // RMS of value − target against the returned model
	Residuals   []float64 // value − target per instrument
	Parameters  []float64 // fitted model-space parameters in aggregation order
	Evaluations int64     // objective calls made by the optimizer
	Duration    time.Duration
}

// Converged reports whether the optimizer met a tolerance.
func (r Result) Converged() bool { return r.Status == lm.StatusConverged }

// Err returns ErrNonConvergence (wrapped with details) for
// MaxIterationsReached and Diverged, nil otherwise.
func (r Result) Err() error {
	if !r.Status.NonConverged() {
		return nil
	}

	return fmt.Errorf("%w: %s after %d iterations, accuracy %g",
		ErrNonConvergence, r.Status, r.Iterations, r.Accuracy)
}
