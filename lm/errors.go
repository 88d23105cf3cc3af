package lm

import "errors"

var (
	// ErrNilObjective indicates a Problem without an Objective.
	ErrNilObjective = errors.New("lm: nil objective")

	// ErrDimensionMismatch indicates inconsistent lengths among initial
	// parameters, bounds, steps and the residual count.
	ErrDimensionMismatch = errors.New("lm: dimension mismatch")

	// ErrInvalidBounds indicates lower > upper, a NaN bound, or an initial
	// point outside the box.
	ErrInvalidBounds = errors.New("lm: invalid bounds")

	// ErrInvalidStep indicates a non-positive or non-finite finite-difference step.
	ErrInvalidStep = errors.New("lm: invalid step")

	// ErrEvaluation wraps a failure returned by the Objective.
	ErrEvaluation = errors.New("lm: objective evaluation failed")

	// ErrSingularSystem indicates damped normal equations that neither
	// Cholesky nor QR could solve.
	ErrSingularSystem = errors.New("lm: singular normal equations")

	// ErrNonFinite indicates NaN or ±Inf in χ² or in the Jacobian.
	ErrNonFinite = errors.New("lm: non-finite value")

	// ErrAlreadyRun indicates a second Run on the same Optimizer.
	ErrAlreadyRun = errors.New("lm: optimizer already run")
)
