// SPDX-License-Identifier: MIT

// Package lm: functional configuration for the optimizer. This file defines:
//   - documented defaults (constants),
//   - Option / Options (functional options with internal state),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that resolves size-dependent defaults.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - Safe by construction: panic only on invalid parameters (programmer error).
//   - Every tolerance is independently switchable; 0 disables it.
package lm

import (
	"log/slog"
	"math"
	"runtime"
)

// ---------- Defaults (single source of truth) ----------

// Termination.
const (
	// DefaultMaxIterations caps the number of outer iterations.
	DefaultMaxIterations = 1000

	// DefaultErrorTolerance is the RMS residual that counts as converged.
	// Zero disables the test unless the fit is exact.
	DefaultErrorTolerance = 0.0

	// DefaultChiSquaredTolerance: converge when an accepted step improves χ²
	// by a relative amount strictly below this value.
	DefaultChiSquaredTolerance = 1e-14

	// DefaultStepTolerance: converge when ‖δ‖ < tol·(‖θ‖ + tol).
	DefaultStepTolerance = 1e-15
)

// Damping.
const (
	// DefaultInitialLambda is λ at the first iteration.
	DefaultInitialLambda = 1e-3

	// DefaultLambdaUp multiplies λ after a rejected proposal.
	DefaultLambdaUp = 2.0

	// DefaultLambdaDown divides λ after an accepted proposal.
	DefaultLambdaDown = 3.0

	// DefaultMinLambda is the floor for λ after an accepted proposal, so
	// repeated acceptances never underflow the damping to zero.
	DefaultMinLambda = 1e-12

	// DefaultMaxLambda is the ceiling beyond which the run is DIVERGED.
	DefaultMaxLambda = 1e16

	// DefaultMaxRetries bounds rejected proposals per outer iteration. An
	// iteration that exhausts them keeps θ and the raised λ, and the next
	// iteration continues from there.
	DefaultMaxRetries = 64
)

// Finite differences: ε_i = max(|θ_i|·RelativeStep, floor_i) where floor_i is
// Problem.Steps[i] when given, AbsoluteStep otherwise.
const (
	DefaultRelativeStep = 1e-6
	DefaultAbsoluteStep = 1e-8
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicMaxIterationsInvalid = "lm: WithMaxIterations: n must be > 0"
	panicThreadsInvalid       = "lm: WithThreads: n must be > 0"
	panicToleranceInvalid     = "lm: tolerance must be finite and >= 0"
	panicLambdaInvalid        = "lm: WithInitialLambda/WithMinLambda/WithMaxLambda: lambda must be finite and > 0"
	panicFactorsInvalid       = "lm: WithLambdaFactors: factors must be finite and > 1"
	panicRetriesInvalid       = "lm: WithMaxRetries: n must be > 0"
	panicStepInvalid          = "lm: step must be finite and > 0"
	panicNilLogger            = "lm: WithLogger: nil logger"
	panicNilObserver          = "lm: WithObserver: nil observer"
)

// ---------- Public option type (functional) ----------

// Option mutates internal options. Constructors panic only on nonsensical
// values (programmer error).
type Option func(*Options)

// Options is the effective optimizer configuration after applying Option
// setters. Fields are unexported; read them through the Optimizer.
type Options struct {
	maxIterations int
	threads       int // 0 ⇒ min(2·NumCPU, n)

	errorTolerance      float64
	chiSquaredTolerance float64
	stepTolerance       float64

	initialLambda float64
	lambdaUp      float64
	lambdaDown    float64
	minLambda     float64
	maxLambda     float64
	maxRetries    int

	relativeStep float64
	absoluteStep float64

	logger    *slog.Logger
	observers []Observer
}

func isNonFinite(x float64) bool { return math.IsNaN(x) || math.IsInf(x, 0) }

// ---------- Constructors (WithX) ----------

// WithMaxIterations sets the cap on outer iterations.
// Panics when n <= 0.
func WithMaxIterations(n int) Option {
	if n <= 0 {
		panic(panicMaxIterationsInvalid)
	}

	return func(o *Options) { o.maxIterations = n }
}

// WithThreads sets the Jacobian worker-pool size.
//
// Behavior highlights:
//   - The pool never exceeds n parameters even if a larger size is given.
//   - 1 evaluates columns sequentially on pool goroutines (still off the
//     Run goroutine).
//
// Complexity:
//   - Time O(1), Space O(1).
func WithThreads(n int) Option {
	if n <= 0 {
		panic(panicThreadsInvalid)
	}

	return func(o *Options) { o.threads = n }
}

// WithErrorTolerance converges once RMS(r) <= tol.
func WithErrorTolerance(tol float64) Option {
	if isNonFinite(tol) || tol < 0 {
		panic(panicToleranceInvalid)
	}

	return func(o *Options) { o.errorTolerance = tol }
}

// WithChiSquaredTolerance converges when an accepted step improves χ² by a
// relative amount strictly below tol. 0 disables the test.
func WithChiSquaredTolerance(tol float64) Option {
	if isNonFinite(tol) || tol < 0 {
		panic(panicToleranceInvalid)
	}

	return func(o *Options) { o.chiSquaredTolerance = tol }
}

// WithStepTolerance converges when ‖δ‖ < tol·(‖θ‖ + tol). 0 disables the test.
func WithStepTolerance(tol float64) Option {
	if isNonFinite(tol) || tol < 0 {
		panic(panicToleranceInvalid)
	}

	return func(o *Options) { o.stepTolerance = tol }
}

// WithInitialLambda sets the starting damping factor.
func WithInitialLambda(lambda float64) Option {
	if isNonFinite(lambda) || lambda <= 0 {
		panic(panicLambdaInvalid)
	}

	return func(o *Options) { o.initialLambda = lambda }
}

// WithLambdaFactors sets the multiplicative λ adaptation: λ·up after a
// rejection, λ/down after an acceptance.
//
// Errors:
//   - Panics unless both factors are finite and > 1.
//
// AI-Hints:
//   - Keep down >= up for a bias towards Gauss–Newton steps on smooth problems.
func WithLambdaFactors(up, down float64) Option {
	if isNonFinite(up) || isNonFinite(down) || up <= 1 || down <= 1 {
		panic(panicFactorsInvalid)
	}

	return func(o *Options) {
		o.lambdaUp = up
		o.lambdaDown = down
	}
}

// WithMinLambda sets the floor applied when λ is decreased. An initial λ
// below the floor is used as given until the first acceptance.
func WithMinLambda(lambda float64) Option {
	if isNonFinite(lambda) || lambda <= 0 {
		panic(panicLambdaInvalid)
	}

	return func(o *Options) { o.minLambda = lambda }
}

// WithMaxLambda sets the λ ceiling that ends a run as DIVERGED.
func WithMaxLambda(lambda float64) Option {
	if isNonFinite(lambda) || lambda <= 0 {
		panic(panicLambdaInvalid)
	}

	return func(o *Options) { o.maxLambda = lambda }
}

// WithMaxRetries bounds rejected proposals per outer iteration; running out
// ends the iteration without a move, not the run.
func WithMaxRetries(n int) Option {
	if n <= 0 {
		panic(panicRetriesInvalid)
	}

	return func(o *Options) { o.maxRetries = n }
}

// WithRelativeStep sets the relative finite-difference step.
func WithRelativeStep(h float64) Option {
	if isNonFinite(h) || h <= 0 {
		panic(panicStepInvalid)
	}

	return func(o *Options) { o.relativeStep = h }
}

// WithAbsoluteStep sets the default absolute finite-difference floor.
func WithAbsoluteStep(h float64) Option {
	if isNonFinite(h) || h <= 0 {
		panic(panicStepInvalid)
	}

	return func(o *Options) { o.absoluteStep = h }
}

// WithLogger routes optimizer logs to l (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic(panicNilLogger)
	}

	return func(o *Options) { o.logger = l }
}

// WithObserver adds an Observer; observers are called in registration order.
func WithObserver(obs Observer) Option {
	if obs == nil {
		panic(panicNilObserver)
	}

	return func(o *Options) { o.observers = append(o.observers, obs) }
}

// defaultOptions returns the documented defaults.
func defaultOptions() Options {
	return Options{
		maxIterations:       DefaultMaxIterations,
		errorTolerance:      DefaultErrorTolerance,
		chiSquaredTolerance: DefaultChiSquaredTolerance,
		stepTolerance:       DefaultStepTolerance,
		initialLambda:       DefaultInitialLambda,
		lambdaUp:            DefaultLambdaUp,
		lambdaDown:          DefaultLambdaDown,
		minLambda:           DefaultMinLambda,
		maxLambda:           DefaultMaxLambda,
		maxRetries:          DefaultMaxRetries,
		relativeStep:        DefaultRelativeStep,
		absoluteStep:        DefaultAbsoluteStep,
	}
}

// DefaultThreads returns min(2·NumCPU, n), at least 1.
func DefaultThreads(n int) int {
	t := 2 * runtime.NumCPU()
	if n < t {
		t = n
	}
	if t < 1 {
		t = 1
	}

	return t
}

// gatherOptions applies opts over the defaults and resolves the pool size
// for n parameters.
func gatherOptions(n int, opts []Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.threads == 0 {
		o.threads = DefaultThreads(n)
	}
	if o.threads > n {
		o.threads = n
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o
}
