package calibration

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/lvcalib/aggregation"
	"github.com/katalvlaran/lvcalib/lm"
	"github.com/katalvlaran/lvcalib/model"
	"github.com/katalvlaran/lvcalib/transform"
)

var (
	// ErrConfiguration indicates inconsistent inputs: length mismatches,
	// objects without instruments (or the reverse), invalid bounds, or
	// initial parameters outside a transformation's domain.
	ErrConfiguration = errors.New("calibration: configuration error")

	// ErrEvaluation indicates a pricing or model-cloning failure inside an
	// objective evaluation.
	ErrEvaluation = errors.New("calibration: evaluation error")

	// ErrNumerical indicates normal equations that could not be solved or a
	// non-finite χ².
	ErrNumerical = errors.New("calibration: numerical error")

	// ErrNonConvergence is returned by Result.Err when the optimizer stopped
	// at its iteration cap or diverged. CalibratedModel never returns it.
	ErrNonConvergence = errors.New("calibration: did not converge")

	// ErrBusy indicates a second concurrent CalibratedModel call on one Solver.
	ErrBusy = errors.New("calibration: solver busy")
)

// wrapErr tags cause with a taxonomy sentinel; both stay matchable.
func wrapErr(kind error, cause error) error {
	return fmt.Errorf("%w: %w", kind, cause)
}

// classify maps errors from collaborators onto the taxonomy. Errors already
// tagged (and context errors) pass through unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrEvaluation), errors.Is(err, ErrNumerical):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, lm.ErrDimensionMismatch), errors.Is(err, lm.ErrInvalidBounds),
		errors.Is(err, lm.ErrInvalidStep), errors.Is(err, lm.ErrNilObjective),
		errors.Is(err, aggregation.ErrLengthMismatch), errors.Is(err, aggregation.ErrNilObject),
		errors.Is(err, transform.ErrOutOfDomain), errors.Is(err, transform.ErrLengthMismatch),
		errors.Is(err, transform.ErrInvalidBounds),
		errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrKindMismatch):
		return wrapErr(ErrConfiguration, err)
	case errors.Is(err, lm.ErrEvaluation):
		return wrapErr(ErrEvaluation, err)
	default:
		return wrapErr(ErrNumerical, err)
	}
}
