package calibration

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvcalib/aggregation"
	"github.com/katalvlaran/lvcalib/lm"
	"github.com/katalvlaran/lvcalib/model"
	"github.com/katalvlaran/lvcalib/product"
)

// Solver calibrates objects of one model against fixed instruments and
// targets. It supports one CalibratedModel call at a time; the accessors
// report the most recent completed call.
type Solver struct {
	model       *model.Model
	instruments []product.Instrument
	targets     []float64
	opts        options

	busy atomic.Bool

	mu   sync.RWMutex
	last Result
}

// NewSolver validates the instrument/target pairing.
//
// Errors:
//   - ErrConfiguration: nil model, nil instrument, len(targets) !=
//     len(instruments), non-finite target, or weights of the wrong length
//     or with negative/non-finite entries.
func NewSolver(m *model.Model, instruments []product.Instrument, targets []float64, opts ...Option) (*Solver, error) {
	if m == nil {
		return nil, fmt.Errorf("nil model: %w", ErrConfiguration)
	}
	if len(targets) != len(instruments) {
		return nil, fmt.Errorf("%d targets for %d instruments: %w", len(targets), len(instruments), ErrConfiguration)
	}
	for i, inst := range instruments {
		if inst == nil {
			return nil, fmt.Errorf("instrument %d is nil: %w", i, ErrConfiguration)
		}
		if math.IsNaN(targets[i]) || math.IsInf(targets[i], 0) {
			return nil, fmt.Errorf("target %d=%g: %w", i, targets[i], ErrConfiguration)
		}
	}
	o := gatherOptions(opts)
	if o.weights != nil {
		if len(o.weights) != len(instruments) {
			return nil, fmt.Errorf("%d weights for %d instruments: %w", len(o.weights), len(instruments), ErrConfiguration)
		}
		for i, w := range o.weights {
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				return nil, fmt.Errorf("weight %d=%g: %w", i, w, ErrConfiguration)
			}
		}
	}

	return &Solver{
		model:       m,
		instruments: append([]product.Instrument(nil), instruments...),
		targets:     append([]float64(nil), targets...),
		opts:        o,
	}, nil
}

// CalibratedModel fits objects and returns a new model containing the
// fitted clones.
//
// Implementation:
//   - Stage 1: reject concurrent use (ErrBusy); open a span tagged with a
//     fresh run id.
//   - Stage 2: aggregate objects, rebase the model onto them, map initial
//     parameters to solver space, build the Objective and the optimizer
//     (factory or lm.New).
//   - Stage 3: run; map best-fit parameters back to model space and clone.
//   - Stage 4: reprice against the clone for the accuracy diagnostic and
//     record the Result.
//
// Behavior highlights:
//   - No objects and no instruments: the original model, 0 iterations.
//   - Non-convergence returns the best parameters with a nil error; see
//     Status, Accuracy and Result.Err.
//
// Errors:
//   - ErrBusy, ErrConfiguration, ErrEvaluation, ErrNumerical, or the
//     context error when ctx ends mid-run.
func (s *Solver) CalibratedModel(ctx context.Context, objects ...model.ParameterObject) (*model.Model, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	runID := uuid.New()
	ctx, span := s.opts.tracer.Start(ctx, "calibration.CalibratedModel",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("calibration.run_id", runID.String()),
			attribute.Int("calibration.objects", len(objects)),
			attribute.Int("calibration.instruments", len(s.instruments)),
		),
	)
	defer span.End()

	log := s.opts.logger.With(slog.String("run_id", runID.String()))
	log.InfoContext(ctx, "calibration started",
		slog.Int("objects", len(objects)),
		slog.Int("instruments", len(s.instruments)))

	start := time.Now()
	res, calibrated, err := s.calibrate(ctx, log, objects)
	res.RunID = runID
	res.Duration = time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorContext(ctx, "calibration failed", slog.String("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("calibration.status", res.Status.String()),
		attribute.Int("calibration.iterations", res.Iterations),
		attribute.Float64("calibration.accuracy", res.Accuracy),
	)
	span.SetStatus(codes.Ok, "")

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	if s.opts.recorder != nil {
		s.opts.recorder.RecordRun(ctx, res)
	}

	attrs := []any{
		slog.String("status", res.Status.String()),
		slog.Int("iterations", res.Iterations),
		slog.Float64("accuracy", res.Accuracy),
		slog.Duration("duration", res.Duration),
	}
	if res.Status.NonConverged() {
		log.WarnContext(ctx, "calibration did not converge", attrs...)
	} else {
		log.InfoContext(ctx, "calibration finished", attrs...)
	}

	return calibrated, nil
}

func (s *Solver) calibrate(ctx context.Context, log *slog.Logger, objects []model.ParameterObject) (Result, *model.Model, error) {
	switch {
	case len(objects) == 0 && len(s.instruments) == 0:
		return Result{Status: lm.StatusConverged}, s.model, nil
	case len(objects) == 0:
		return Result{}, nil, fmt.Errorf("no objects to calibrate for %d instruments: %w", len(s.instruments), ErrConfiguration)
	case len(s.instruments) == 0:
		return Result{}, nil, fmt.Errorf("%d objects but no instruments: %w", len(objects), ErrConfiguration)
	}

	agg, err := aggregation.New(objects...)
	if err != nil {
		return Result{}, nil, classify(err)
	}
	if agg.Len() == 0 {
		return Result{}, nil, fmt.Errorf("objects carry no parameters: %w", ErrConfiguration)
	}
	// Clones are taken from the objects handed in, not from the model's
	// same-named entries, so knots and parameters always agree.
	base, err := s.model.Rebase(agg.Objects()...)
	if err != nil {
		return Result{}, nil, wrapErr(ErrConfiguration, err)
	}

	initial, err := s.opts.transformation.ToSolverSpace(agg.Parameter())
	if err != nil {
		return Result{}, nil, fmt.Errorf("initial parameters: %w", classify(err))
	}
	objective, err := NewObjective(base, agg, s.opts.transformation,
		s.instruments, s.targets, s.opts.weights, s.opts.evaluationTime)
	if err != nil {
		return Result{}, nil, err
	}

	lmOpts := []lm.Option{lm.WithLogger(log)}
	if s.opts.recorder != nil {
		lmOpts = append(lmOpts, lm.WithObserver(s.opts.recorder))
	}
	lmOpts = append(lmOpts, s.opts.optimizerOpts...)

	opt, err := s.opts.factory(lm.Problem{
		Objective: objective,
		Initial:   initial,
		Lower:     s.opts.lower,
		Upper:     s.opts.upper,
		Steps:     s.opts.steps,
		NumValues: len(s.instruments),
	}, lmOpts...)
	if err != nil {
		return Result{}, nil, classify(err)
	}
	if err = opt.Run(ctx); err != nil {
		return Result{}, nil, classify(err)
	}

	best := opt.BestFitParameters()
	calibrated, err := objective.Model(best)
	if err != nil {
		return Result{}, nil, err
	}
	fitted, err := s.opts.transformation.ToModelSpace(best)
	if err != nil {
		return Result{}, nil, classify(err)
	}
	residuals, err := objective.Residuals(calibrated)
	if err != nil {
		return Result{}, nil, err
	}

	return Result{
		Status:      opt.Status(),
		Iterations:  opt.Iterations(),
		Accuracy:    floats.Norm(residuals, 2) / math.Sqrt(float64(len(residuals))),
		Residuals:   residuals,
		Parameters:  fitted,
		Evaluations: objective.Evaluations(),
	}, calibrated, nil
}

// Iterations returns the optimizer iterations of the last completed call.
func (s *Solver) Iterations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.last.Iterations
}

// Accuracy returns the RMS repricing error of the last completed call.
func (s *Solver) Accuracy() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.last.Accuracy
}

// Status returns the optimizer status of the last completed call
// (StatusInitialized before any call).
func (s *Solver) Status() lm.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.last.Status
}

// Result returns a copy of the last completed call's summary.
func (s *Solver) Result() Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.last
	r.Residuals = append([]float64(nil), s.last.Residuals...)
	r.Parameters = append([]float64(nil), s.last.Parameters...)

	return r
}
