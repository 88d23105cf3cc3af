// Package calibration finds the parameters of model objects (curves,
// surfaces) such that a set of instruments reprices to given targets.
//
// A Solver ties together:
//
//   - an aggregation.Aggregation that flattens the objects' parameters;
//   - an optional transform.Transformation between solver and model space;
//   - an Objective that, for a trial vector, clones the model and writes
//     weight·(value − target) per instrument;
//   - an optimizer (lm.Optimizer by default) that minimizes the residuals.
//
// CalibratedModel returns a new *model.Model with the fitted objects; the
// input model and objects are never modified.
//
// Errors fall into a small taxonomy matched with errors.Is:
// ErrConfiguration (inconsistent inputs), ErrEvaluation (pricing or cloning
// failed inside the objective) and ErrNumerical (normal equations could not
// be solved). Non-convergence is not an error: the best parameters are
// returned and Status / Accuracy tell the caller how good they are.
// Result.Err converts non-convergence into ErrNonConvergence for callers who
// prefer to fail.
package calibration
