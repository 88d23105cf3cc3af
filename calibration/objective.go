package calibration

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/katalvlaran/lvcalib/aggregation"
	"github.com/katalvlaran/lvcalib/lm"
	"github.com/katalvlaran/lvcalib/model"
	"github.com/katalvlaran/lvcalib/product"
	"github.com/katalvlaran/lvcalib/transform"
)

// Objective evaluates weighted pricing residuals for solver-space vectors.
//
// Every call builds its own model clone, so Evaluate is safe for
// concurrent use with distinct buffers. The only shared mutable state is an
// atomic evaluation counter.
type Objective struct {
	base           *model.Model
	agg            *aggregation.Aggregation
	tr             transform.Transformation
	instruments    []product.Instrument
	targets        []float64
	weights        []float64 // nil ⇒ 1
	evaluationTime float64

	evaluations atomic.Int64
}

var _ lm.Objective = (*Objective)(nil)

// NewObjective wires the collaborators; tr nil means identity, weights nil
// means unit weights. Lengths are checked (ErrConfiguration).
func NewObjective(
	base *model.Model,
	agg *aggregation.Aggregation,
	tr transform.Transformation,
	instruments []product.Instrument,
	targets, weights []float64,
	evaluationTime float64,
) (*Objective, error) {
	if base == nil || agg == nil {
		return nil, fmt.Errorf("objective: nil model or aggregation: %w", ErrConfiguration)
	}
	if len(targets) != len(instruments) {
		return nil, fmt.Errorf("objective: %d targets for %d instruments: %w", len(targets), len(instruments), ErrConfiguration)
	}
	if weights != nil && len(weights) != len(instruments) {
		return nil, fmt.Errorf("objective: %d weights for %d instruments: %w", len(weights), len(instruments), ErrConfiguration)
	}
	if tr == nil {
		tr = transform.Identity{}
	}

	return &Objective{
		base:           base,
		agg:            agg,
		tr:             tr,
		instruments:    instruments,
		targets:        targets,
		weights:        weights,
		evaluationTime: evaluationTime,
	}, nil
}

// Model returns the model clone for a solver-space vector.
//
// Implementation:
//   - Stage 1: ToModelSpace (configuration error on failure).
//   - Stage 2: aggregation → per-object updates (configuration error on length).
//   - Stage 3: Model.CloneForParameter (evaluation error on failure).
func (o *Objective) Model(params []float64) (*model.Model, error) {
	x, err := o.tr.ToModelSpace(params)
	if err != nil {
		return nil, wrapErr(ErrConfiguration, err)
	}
	ups, err := o.agg.ObjectsToModifyForParameter(x)
	if err != nil {
		return nil, wrapErr(ErrConfiguration, err)
	}
	clone, err := o.base.CloneForParameter(ups)
	if err != nil {
		return nil, wrapErr(ErrEvaluation, err)
	}

	return clone, nil
}

// Evaluate writes weight_i·(value_i − target_i) into out.
// The first pricing failure or non-finite value aborts the call
// with ErrEvaluation; out is then unspecified.
func (o *Objective) Evaluate(ctx context.Context, params, out []float64) error {
	o.evaluations.Add(1)
	if len(out) != len(o.instruments) {
		return fmt.Errorf("objective: %d outputs for %d instruments: %w", len(out), len(o.instruments), ErrConfiguration)
	}
	m, err := o.Model(params)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	for i, inst := range o.instruments {
		v, err := inst.Value(o.evaluationTime, m)
		if err != nil {
			return fmt.Errorf("instrument %d: %w", i, wrapErr(ErrEvaluation, err))
		}
		r := v - o.targets[i]
		if o.weights != nil {
			r *= o.weights[i]
		}
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("instrument %d: value %g: %w", i, v, ErrEvaluation)
		}
		out[i] = r
	}

	return nil
}

// Residuals reprices every instrument against m and returns the unweighted
// value − target.
func (o *Objective) Residuals(m *model.Model) ([]float64, error) {
	out := make([]float64, len(o.instruments))
	for i, inst := range o.instruments {
		v, err := inst.Value(o.evaluationTime, m)
		if err != nil {
			return nil, fmt.Errorf("instrument %d: %w", i, wrapErr(ErrEvaluation, err))
		}
		out[i] = v - o.targets[i]
	}

	return out, nil
}

// Evaluations returns the number of Evaluate calls so far.
func (o *Objective) Evaluations() int64 { return o.evaluations.Load() }
