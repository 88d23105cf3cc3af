package lm

import (
	"context"
	"fmt"
	"math"

	"github.com/sourcegraph/conc/pool"

	"github.com/katalvlaran/lvcalib/matrix"
)

// jacobian wraps the m×n Dense written column-by-column by the workers.
// Workers write disjoint cells, so no locking is needed.
type jacobian struct {
	d *matrix.Dense
}

func newJacobian(m, n int) *jacobian {
	d, err := matrix.NewDense(m, n)
	if err != nil {
		// m, n >= 1 is checked in New.
		panic(err)
	}

	return &jacobian{d: d}
}

// jacobian fills jac with finite differences around o.theta.
//
// Implementation:
//   - Stage 1: dispatch one task per column to a conc pool limited to
//     opts.threads goroutines. The limit is fixed at construction; each call
//     starts a fresh pool of that size, cancelled on the first error.
//   - Stage 2: column j copies θ into its own trial vector and picks a step
//     with fdStep; the trial point always lies inside [lower, upper]. It
//     evaluates into its own buffer and writes (r(θ+h)−r(θ))/h into
//     column j, or zeros when the box leaves no room to move.
//   - Stage 3: Wait joins every column before the caller reads jac.
//
// Errors:
//   - ErrEvaluation from any column; ErrNonFinite for a NaN/Inf derivative.
func (o *Optimizer) jacobian(ctx context.Context, jac *jacobian) error {
	p := pool.New().
		WithErrors().
		WithFirstError().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(o.opts.threads)

	base := o.residuals
	for j := 0; j < o.n; j++ {
		j := j
		p.Go(func(ctx context.Context) error {
			trial, out := o.trial[j], o.cols[j]
			copy(trial, o.theta)

			h := o.fdStep(j)
			if h == 0 {
				for i := 0; i < o.m; i++ {
					_ = jac.d.Set(i, j, 0)
				}
				return nil
			}
			trial[j] = o.theta[j] + h

			if err := o.evaluate(ctx, trial, out); err != nil {
				return fmt.Errorf("column %d: %w", j, err)
			}
			for i, r := range out {
				if err := jac.d.Set(i, j, (r-base[i])/h); err != nil {
					return fmt.Errorf("column %d: %w: %w", j, ErrNonFinite, err)
				}
			}

			return nil
		})
	}

	return p.Wait()
}

// fdStep returns the signed, representable step for parameter j.
//
// ε = max(|θ_j|·rel, floor_j). Forward when θ_j+ε stays below the upper
// bound, backward when θ_j−ε stays above the lower bound; otherwise the box
// is narrower than ε and the step goes to the farther bound. 0 means the
// parameter cannot move (pinned, or θ_j already on both bounds).
func (o *Optimizer) fdStep(j int) float64 {
	theta, lo, hi := o.theta[j], o.lower[j], o.upper[j]
	eps := math.Max(math.Abs(theta)*o.opts.relativeStep, o.floor[j])

	var x float64
	switch {
	case theta+eps <= hi:
		x = theta + eps
	case theta-eps >= lo:
		x = theta - eps
	case hi-theta >= theta-lo:
		x = hi
	default:
		x = lo
	}

	return clamp(x, lo, hi) - theta
}

// normal returns JᵀJ and Jᵀr.
func (jac *jacobian) normal(r []float64) (*matrix.Dense, []float64, error) {
	jtj, err := matrix.Gram(jac.d)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNonFinite, err)
	}
	jtr, err := matrix.MatTVec(jac.d, r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNonFinite, err)
	}

	return jtj, jtr, nil
}

// solveDamped solves (JᵀJ + λ·D)·δ = −Jᵀr where D = diag(JᵀJ) with zero
// entries replaced by 1.
//
// Implementation:
//   - Stage 1: copy JᵀJ, add λ·D on the diagonal, matrix.SolveCholesky.
//   - Stage 2: on any Cholesky failure, matrix.SolveQR on the augmented
//     least-squares system [J; √(λD)]·δ ≈ [−r; 0], whose normal equations
//     are the damped system above but whose conditioning is that of J.
//
// Errors:
//   - ErrNonFinite when the damped diagonal overflows.
//   - ErrSingularSystem (wrapping the QR error) when both solves fail.
//
// Complexity:
//   - Time O(n³) for Cholesky, O((m+n)·n²) for the fallback; Space O((m+n)·n).
func solveDamped(jac *jacobian, jtj *matrix.Dense, jtr, r []float64, lambda float64) ([]float64, error) {
	n := len(jtr)
	diag := jtj.Diagonal()
	a := jtj.Clone().(*matrix.Dense)
	for i, d := range diag {
		if d == 0 {
			diag[i] = 1
		}
		if err := a.Set(i, i, d+lambda*diag[i]); err != nil {
			return nil, fmt.Errorf("damping: %w: %w", ErrNonFinite, err)
		}
	}
	rhs := make([]float64, n)
	for i, g := range jtr {
		rhs[i] = -g
	}

	x, err := matrix.SolveCholesky(a, rhs)
	if err == nil {
		return x, nil
	}

	m := len(r)
	aug, err := matrix.NewDense(m+n, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSingularSystem, err)
	}
	augRHS := make([]float64, m+n)
	for i := 0; i < m; i++ {
		row, rerr := jac.d.Row(i)
		if rerr != nil {
			return nil, fmt.Errorf("%w: %w", ErrSingularSystem, rerr)
		}
		for j, v := range row {
			_ = aug.Set(i, j, v) // finite: J passed Set once already
		}
		augRHS[i] = -r[i]
	}
	for j, d := range diag {
		if err = aug.Set(m+j, j, math.Sqrt(lambda*d)); err != nil {
			return nil, fmt.Errorf("damping: %w: %w", ErrNonFinite, err)
		}
	}
	x, qrErr := matrix.SolveQR(aug, augRHS)
	if qrErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrSingularSystem, qrErr)
	}

	return x, nil
}
