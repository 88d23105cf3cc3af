package lm

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvcalib/matrix"
)

// Optimizer is one Levenberg–Marquardt run. It is not safe for concurrent
// use; Run is single-shot.
type Optimizer struct {
	objective Objective
	lower     []float64
	upper     []float64
	floor     []float64 // absolute finite-difference floor per parameter
	n, m      int
	opts      Options

	// per-column scratch, owned by column index
	trial [][]float64
	cols  [][]float64

	status      Status
	theta       []float64
	residuals   []float64
	chi2        float64
	lambda      float64
	iterations  int
	evaluations atomic.Int64
}

// New validates p and prepares an optimizer.
//
// Implementation:
//   - Stage 1: validate lengths (Initial ≥ 1, NumValues ≥ 1, optional
//     Lower/Upper/Steps of length n).
//   - Stage 2: validate bounds (lower ≤ upper, no NaN, initial inside box)
//     and steps (finite, > 0).
//   - Stage 3: resolve options and allocate per-column scratch buffers.
//
// Errors:
//   - ErrNilObjective, ErrDimensionMismatch, ErrInvalidBounds, ErrInvalidStep.
//
// Complexity:
//   - Time O(n), Space O(n·(n+m)) for column scratch.
func New(p Problem, opts ...Option) (*Optimizer, error) {
	if p.Objective == nil {
		return nil, ErrNilObjective
	}
	n, m := len(p.Initial), p.NumValues
	if n == 0 || m <= 0 {
		return nil, fmt.Errorf("%d parameters, %d values: %w", n, m, ErrDimensionMismatch)
	}
	lower, err := boundOrInf(p.Lower, n, math.Inf(-1))
	if err != nil {
		return nil, fmt.Errorf("lower: %w", err)
	}
	upper, err := boundOrInf(p.Upper, n, math.Inf(1))
	if err != nil {
		return nil, fmt.Errorf("upper: %w", err)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(lower[i]) || math.IsNaN(upper[i]) || lower[i] > upper[i] {
			return nil, fmt.Errorf("parameter %d: [%g, %g]: %w", i, lower[i], upper[i], ErrInvalidBounds)
		}
		if x := p.Initial[i]; math.IsNaN(x) || x < lower[i] || x > upper[i] {
			return nil, fmt.Errorf("initial[%d]=%g outside [%g, %g]: %w", i, x, lower[i], upper[i], ErrInvalidBounds)
		}
	}

	o := gatherOptions(n, opts)

	floor := make([]float64, n)
	if p.Steps != nil {
		if len(p.Steps) != n {
			return nil, fmt.Errorf("%d steps for %d parameters: %w", len(p.Steps), n, ErrDimensionMismatch)
		}
		for i, s := range p.Steps {
			if isNonFinite(s) || s <= 0 {
				return nil, fmt.Errorf("step %d=%g: %w", i, s, ErrInvalidStep)
			}
			floor[i] = s
		}
	} else {
		for i := range floor {
			floor[i] = o.absoluteStep
		}
	}

	opt := &Optimizer{
		objective: p.Objective,
		lower:     lower,
		upper:     upper,
		floor:     floor,
		n:         n,
		m:         m,
		opts:      o,
		trial:     make([][]float64, n),
		cols:      make([][]float64, n),
		theta:     append([]float64(nil), p.Initial...),
		residuals: make([]float64, m),
		chi2:      math.Inf(1),
		lambda:    o.initialLambda,
	}
	for j := 0; j < n; j++ {
		opt.trial[j] = make([]float64, n)
		opt.cols[j] = make([]float64, m)
	}

	return opt, nil
}

func boundOrInf(b []float64, n int, inf float64) ([]float64, error) {
	out := make([]float64, n)
	if b == nil {
		for i := range out {
			out[i] = inf
		}
		return out, nil
	}
	if len(b) != n {
		return nil, fmt.Errorf("%d bounds for %d parameters: %w", len(b), n, ErrDimensionMismatch)
	}
	copy(out, b)

	return out, nil
}

// Run iterates until a terminal status is reached.
//
// Implementation:
//   - Stage 1: evaluate r(θ₀), χ²₀ on the calling goroutine.
//   - Stage 2: per outer iteration: check ctx, RMS and cap; when θ moved,
//     build J in parallel and form JᵀJ and Jᵀr once.
//   - Stage 3: inner loop: solve the damped system, clip, evaluate, accept on
//     χ²' ≤ χ² (λ := max(λ/down, min)) or reject (λ *= up) until accepted,
//     λ exceeds the ceiling (DIVERGED), or retries run out (the iteration
//     ends without a move and the next one resumes from the raised λ).
//   - Stage 4: after an accepted step test the χ² and step tolerances.
//
// Returns:
//   - nil for Converged, MaxIterationsReached and Diverged.
//
// Errors:
//   - ErrAlreadyRun; ErrEvaluation (wrapping the objective error);
//     ErrNonFinite; ErrSingularSystem; ctx.Err() (wrapped) on cancellation.
//     Any error leaves the status at Failed.
func (o *Optimizer) Run(ctx context.Context) error {
	if o.status != StatusInitialized {
		return ErrAlreadyRun
	}
	o.status = StatusIterating
	log := o.opts.logger

	if err := o.evaluate(ctx, o.theta, o.residuals); err != nil {
		return o.fail(err)
	}
	o.chi2 = floats.Dot(o.residuals, o.residuals)
	if isNonFinite(o.chi2) {
		return o.fail(fmt.Errorf("initial chi2=%g: %w", o.chi2, ErrNonFinite))
	}

	jac := newJacobian(o.m, o.n)
	candidate := make([]float64, o.n)
	candRes := make([]float64, o.m)
	delta := make([]float64, o.n)
	var (
		jtj   *matrix.Dense
		jtr   []float64
		stale = true // θ moved since J was built
	)

	for {
		if o.RootMeanSquaredError() <= o.opts.errorTolerance {
			o.status = StatusConverged
			break
		}
		if o.iterations >= o.opts.maxIterations {
			o.status = StatusMaxIterationsReached
			break
		}
		if err := ctx.Err(); err != nil {
			return o.fail(fmt.Errorf("lm: run cancelled: %w", err))
		}
		o.iterations++

		if stale {
			if err := o.jacobian(ctx, jac); err != nil {
				return o.fail(err)
			}
			var err error
			if jtj, jtr, err = jac.normal(o.residuals); err != nil {
				return o.fail(err)
			}
			stale = false
		}

		accepted := false
		var stepNorm float64
		for retry := 0; retry < o.opts.maxRetries; retry++ {
			step, err := solveDamped(jac, jtj, jtr, o.residuals, o.lambda)
			if err != nil {
				return o.fail(err)
			}
			for i := range candidate {
				candidate[i] = clamp(o.theta[i]+step[i], o.lower[i], o.upper[i])
			}
			floats.SubTo(delta, candidate, o.theta)
			stepNorm = floats.Norm(delta, 2)

			if err = o.evaluate(ctx, candidate, candRes); err != nil {
				return o.fail(err)
			}
			chi2 := floats.Dot(candRes, candRes)
			ok := !math.IsNaN(chi2) && chi2 <= o.chi2
			o.observe(ctx, Iteration{
				Iteration:  o.iterations,
				Lambda:     o.lambda,
				ChiSquared: chi2,
				Previous:   o.chi2,
				Accepted:   ok,
				Parameters: append([]float64(nil), candidate...),
				StepNorm:   stepNorm,
			})
			log.DebugContext(ctx, "lm proposal",
				slog.Int("iteration", o.iterations),
				slog.Float64("lambda", o.lambda),
				slog.Float64("chi2", chi2),
				slog.Bool("accepted", ok))

			if ok {
				improvement := o.chi2 - chi2
				prevChi2 := o.chi2
				copy(o.theta, candidate)
				copy(o.residuals, candRes)
				o.chi2 = chi2
				o.lambda = math.Max(o.lambda/o.opts.lambdaDown, o.opts.minLambda)
				accepted = true
				stale = true
				if prevChi2 > 0 && improvement/prevChi2 < o.opts.chiSquaredTolerance {
					o.status = StatusConverged
				}
				break
			}
			o.lambda *= o.opts.lambdaUp
			if o.lambda > o.opts.maxLambda {
				break
			}
		}
		if o.lambda > o.opts.maxLambda {
			o.status = StatusDiverged
			break
		}
		if !accepted {
			// retries exhausted below the ceiling: stay at θ with the raised λ
			continue
		}
		if o.status == StatusConverged {
			break
		}
		if stepNorm < o.opts.stepTolerance*(floats.Norm(o.theta, 2)+o.opts.stepTolerance) {
			o.status = StatusConverged
			break
		}
	}

	log.InfoContext(ctx, "lm finished",
		slog.String("status", o.status.String()),
		slog.Int("iterations", o.iterations),
		slog.Float64("rms", o.RootMeanSquaredError()),
		slog.Float64("lambda", o.lambda),
		slog.Int64("evaluations", o.evaluations.Load()))

	return nil
}

func (o *Optimizer) fail(err error) error {
	o.status = StatusFailed
	o.opts.logger.Error("lm failed",
		slog.Int("iteration", o.iterations),
		slog.String("error", err.Error()))

	return err
}

// evaluate calls the objective and counts the call.
func (o *Optimizer) evaluate(ctx context.Context, params, out []float64) error {
	o.evaluations.Add(1)
	if err := o.objective.Evaluate(ctx, params, out); err != nil {
		return fmt.Errorf("%w: %w", ErrEvaluation, err)
	}

	return nil
}

func (o *Optimizer) observe(ctx context.Context, it Iteration) {
	for _, obs := range o.opts.observers {
		obs.ObserveIteration(ctx, it)
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}

	return x
}

// BestFitParameters returns a copy of the best point found (θ₀ before Run).
func (o *Optimizer) BestFitParameters() []float64 {
	return append([]float64(nil), o.theta...)
}

// Iterations returns the number of outer iterations started.
func (o *Optimizer) Iterations() int { return o.iterations }

// ChiSquared returns χ² at the best point (+Inf before Run).
func (o *Optimizer) ChiSquared() float64 { return o.chi2 }

// RootMeanSquaredError returns sqrt(χ²/m) at the best point.
func (o *Optimizer) RootMeanSquaredError() float64 {
	return math.Sqrt(o.chi2 / float64(o.m))
}

// Residuals returns a copy of r at the best point.
func (o *Optimizer) Residuals() []float64 {
	return append([]float64(nil), o.residuals...)
}

// Lambda returns the current damping factor.
func (o *Optimizer) Lambda() float64 { return o.lambda }

// Status returns the current state.
func (o *Optimizer) Status() Status { return o.status }

// Evaluations returns the number of objective calls made so far.
func (o *Optimizer) Evaluations() int64 { return o.evaluations.Load() }

// Threads returns the Jacobian worker-pool size.
func (o *Optimizer) Threads() int { return o.opts.threads }
