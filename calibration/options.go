// SPDX-License-Identifier: MIT

// Package calibration: functional configuration for Solver.
//
// Defaults:
//   - evaluation time 0, identity transformation, unit weights;
//   - lm.New as optimizer with lm defaults (1000 iterations, min(2·NumCPU, n)
//     Jacobian workers);
//   - slog.Default() logger and the global otel tracer.
//
// Constructors panic on programmer error (nil collaborators, NaN time);
// data-dependent checks (lengths against instruments or parameters) are
// reported as ErrConfiguration by NewSolver / CalibratedModel.
package calibration

import (
	"context"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/lvcalib/lm"
	"github.com/katalvlaran/lvcalib/transform"
)

// TracerName is the instrumentation name used for the default tracer.
const TracerName = "github.com/katalvlaran/lvcalib/calibration"

const (
	panicEvaluationTime = "calibration: WithEvaluationTime: time must be finite"
	panicNilTransform   = "calibration: WithTransformation: nil transformation"
	panicNilFactory     = "calibration: WithOptimizerFactory: nil factory"
	panicNilLogger      = "calibration: WithLogger: nil logger"
	panicNilTracer      = "calibration: WithTracer: nil tracer"
	panicNilRecorder    = "calibration: WithRecorder: nil recorder"
)

// Optimizer is what the Solver needs from an optimizer run.
// *lm.Optimizer satisfies it.
type Optimizer interface {
	Run(ctx context.Context) error
	BestFitParameters() []float64
	Iterations() int
	Status() lm.Status
}

// OptimizerFactory builds the optimizer for one CalibratedModel call.
// opts carries the Solver's logger/recorder wiring followed by the options
// given through WithOptimizerOptions.
type OptimizerFactory func(p lm.Problem, opts ...lm.Option) (Optimizer, error)

// DefaultOptimizerFactory builds an *lm.Optimizer.
func DefaultOptimizerFactory(p lm.Problem, opts ...lm.Option) (Optimizer, error) {
	o, err := lm.New(p, opts...)
	if err != nil {
		return nil, err
	}

	return o, nil
}

// Recorder receives run summaries and every optimizer proposal
// (see telemetry.Recorder).
type Recorder interface {
	lm.Observer
	RecordRun(ctx context.Context, r Result)
}

// Option mutates Solver options.
type Option func(*options)

type options struct {
	evaluationTime float64
	transformation transform.Transformation
	weights        []float64
	lower, upper   []float64
	steps          []float64
	factory        OptimizerFactory
	optimizerOpts  []lm.Option
	logger         *slog.Logger
	tracer         trace.Tracer
	recorder       Recorder
}

// WithEvaluationTime sets the time (in years) passed to Instrument.Value.
func WithEvaluationTime(t float64) Option {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		panic(panicEvaluationTime)
	}

	return func(o *options) { o.evaluationTime = t }
}

// WithTransformation maps solver-space vectors to model space before every
// evaluation; its length must match the aggregated parameter count.
func WithTransformation(tr transform.Transformation) Option {
	if tr == nil {
		panic(panicNilTransform)
	}

	return func(o *options) { o.transformation = tr }
}

// WithWeights multiplies residual i by w[i]. len(w) must equal the number of
// instruments, every weight finite and >= 0.
func WithWeights(w []float64) Option {
	cp := append([]float64(nil), w...)

	return func(o *options) { o.weights = cp }
}

// WithBounds sets solver-space box bounds (nil slice = unbounded side).
func WithBounds(lower, upper []float64) Option {
	lo := append([]float64(nil), lower...)
	hi := append([]float64(nil), upper...)

	return func(o *options) {
		o.lower = lo
		o.upper = hi
	}
}

// WithSteps sets the per-parameter absolute finite-difference step.
func WithSteps(steps []float64) Option {
	cp := append([]float64(nil), steps...)

	return func(o *options) { o.steps = cp }
}

// WithOptimizerFactory replaces lm.New.
func WithOptimizerFactory(f OptimizerFactory) Option {
	if f == nil {
		panic(panicNilFactory)
	}

	return func(o *options) { o.factory = f }
}

// WithOptimizerOptions appends lm options (iterations, tolerances, threads).
func WithOptimizerOptions(opts ...lm.Option) Option {
	return func(o *options) { o.optimizerOpts = append(o.optimizerOpts, opts...) }
}

// WithLogger sets the logger for the Solver and its default optimizer.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic(panicNilLogger)
	}

	return func(o *options) { o.logger = l }
}

// WithTracer sets the tracer for run spans.
func WithTracer(t trace.Tracer) Option {
	if t == nil {
		panic(panicNilTracer)
	}

	return func(o *options) { o.tracer = t }
}

// WithRecorder attaches metrics; the recorder also observes every proposal.
func WithRecorder(r Recorder) Option {
	if r == nil {
		panic(panicNilRecorder)
	}

	return func(o *options) { o.recorder = r }
}

func gatherOptions(opts []Option) options {
	o := options{
		transformation: transform.Identity{},
		factory:        DefaultOptimizerFactory,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(TracerName)
	}

	return o
}
