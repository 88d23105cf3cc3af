package calibration_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/katalvlaran/lvcalib/calibration"
	"github.com/katalvlaran/lvcalib/lm"
	"github.com/katalvlaran/lvcalib/model"
	"github.com/katalvlaran/lvcalib/product"
	"github.com/katalvlaran/lvcalib/transform"
)

var quiet = calibration.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

// zcbFixture: a two-knot zero curve at 1% and bonds priced off a flat 3%
// annually compounded rate.
func zcbFixture(t *testing.T) (*model.Model, *model.ZeroRateCurve, []product.Instrument, []float64) {
	t.Helper()
	curve, err := model.NewZeroRateCurve("OIS", []float64{1, 2}, []float64{0.01, 0.01})
	require.NoError(t, err)
	m, err := model.NewModel(model.CurveObject(curve))
	require.NoError(t, err)

	instruments := []product.Instrument{
		product.ZeroCouponBond{Maturity: 1, DiscountCurve: "OIS"},
		product.ZeroCouponBond{Maturity: 2, DiscountCurve: "OIS"},
	}
	targets := []float64{1 / 1.03, 1 / (1.03 * 1.03)}

	return m, curve, instruments, targets
}

func TestCalibratedModel_ZeroCouponBonds(t *testing.T) {
	t.Parallel()
	m, curve, instruments, targets := zcbFixture(t)

	s, err := calibration.NewSolver(m, instruments, targets, quiet)
	require.NoError(t, err)
	calibrated, err := s.CalibratedModel(context.Background(), curve)
	require.NoError(t, err)

	dc, err := calibrated.DiscountCurve("OIS")
	require.NoError(t, err)
	want := math.Log(1.03)
	for i, r := range dc.Parameter() {
		assert.InDelta(t, want, r, 1e-8, "rate %d", i)
	}
	assert.Equal(t, lm.StatusConverged, s.Status())
	assert.Less(t, s.Iterations(), 50)
	assert.Less(t, s.Accuracy(), 1e-12)

	res := s.Result()
	assert.NoError(t, res.Err())
	assert.True(t, res.Converged())
	assert.NotEqual(t, uuid.Nil, res.RunID)
	assert.Len(t, res.Residuals, 2)
	assert.InDeltaSlice(t, []float64{want, want}, res.Parameters, 1e-8)
	assert.Positive(t, res.Evaluations)
}

func TestCalibratedModel_PositiveTransformation(t *testing.T) {
	t.Parallel()
	m, curve, instruments, targets := zcbFixture(t)

	s, err := calibration.NewSolver(m, instruments, targets, quiet,
		calibration.WithTransformation(transform.Positive{}))
	require.NoError(t, err)
	calibrated, err := s.CalibratedModel(context.Background(), curve)
	require.NoError(t, err)

	dc, err := calibrated.DiscountCurve("OIS")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{math.Log(1.03), math.Log(1.03)}, dc.Parameter(), 1e-8)
	// Result parameters are reported in model space.
	assert.InDeltaSlice(t, dc.Parameter(), s.Result().Parameters, 1e-15)
}

func TestCalibratedModel_OverConstrained(t *testing.T) {
	t.Parallel()
	curve, err := model.NewZeroRateCurve("OIS", []float64{1}, []float64{0.5})
	require.NoError(t, err)
	m, err := model.NewModel(model.CurveObject(curve))
	require.NoError(t, err)

	// one flat rate cannot reprice both bonds
	instruments := []product.Instrument{
		product.ZeroCouponBond{Maturity: 1, DiscountCurve: "OIS"},
		product.ZeroCouponBond{Maturity: 2, DiscountCurve: "OIS"},
	}
	targets := []float64{1 / 1.03, 1 / 1.21}

	s, err := calibration.NewSolver(m, instruments, targets, quiet,
		calibration.WithOptimizerOptions(
			lm.WithMaxIterations(3),
			lm.WithChiSquaredTolerance(0),
			lm.WithStepTolerance(0),
		))
	require.NoError(t, err)

	calibrated, err := s.CalibratedModel(context.Background(), curve)
	require.NoError(t, err)
	require.NotNil(t, calibrated)
	assert.Equal(t, lm.StatusMaxIterationsReached, s.Status())
	assert.Equal(t, 3, s.Iterations())
	assert.Greater(t, s.Accuracy(), 0.0)
	assert.ErrorIs(t, s.Result().Err(), calibration.ErrNonConvergence)

	// the best point found is still an improvement on the start
	dc, err := calibrated.DiscountCurve("OIS")
	require.NoError(t, err)
	assert.Less(t, dc.Parameter()[0], 0.5)
}

// A same-named object with other knots than the model's entry is the one
// calibrated and returned.
func TestCalibratedModel_ClonesPassedObjects(t *testing.T) {
	t.Parallel()
	m, _, instruments, targets := zcbFixture(t)

	longer, err := model.NewZeroRateCurve("OIS", []float64{1, 2, 3}, []float64{0.01, 0.01, 0.05})
	require.NoError(t, err)
	s, err := calibration.NewSolver(m, instruments, targets, quiet)
	require.NoError(t, err)
	calibrated, err := s.CalibratedModel(context.Background(), longer)
	require.NoError(t, err)

	c, err := calibrated.Curve("OIS")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, c.Times())
	p := c.Parameter()
	require.Len(t, p, 3)
	assert.InDelta(t, math.Log(1.03), p[0], 1e-8)
	assert.InDelta(t, math.Log(1.03), p[1], 1e-8)
	assert.Equal(t, 0.05, p[2], "knot beyond the last maturity has no sensitivity")
	assert.Len(t, s.Result().Parameters, 3)

	orig, err := m.Curve("OIS")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, orig.Times())
}

func TestCalibratedModel_Purity(t *testing.T) {
	t.Parallel()
	m, curve, instruments, targets := zcbFixture(t)
	before := curve.Parameter()

	s, err := calibration.NewSolver(m, instruments, targets, quiet)
	require.NoError(t, err)

	first, err := s.CalibratedModel(context.Background(), curve)
	require.NoError(t, err)
	firstResult := s.Result()
	second, err := s.CalibratedModel(context.Background(), curve)
	require.NoError(t, err)

	assert.Equal(t, before, curve.Parameter())
	orig, err := m.DiscountCurve("OIS")
	require.NoError(t, err)
	assert.Same(t, curve, orig)
	assert.NotSame(t, m, first)
	assert.NotSame(t, first, second)

	a, err := first.DiscountCurve("OIS")
	require.NoError(t, err)
	b, err := second.DiscountCurve("OIS")
	require.NoError(t, err)
	assert.Equal(t, a.Parameter(), b.Parameter())
	assert.Equal(t, firstResult.Iterations, s.Iterations())
	assert.NotEqual(t, firstResult.RunID, s.Result().RunID)
}

func TestCalibratedModel_Weights(t *testing.T) {
	t.Parallel()
	curve, err := model.NewZeroRateCurve("OIS", []float64{1}, []float64{0.01})
	require.NoError(t, err)
	m, err := model.NewModel(model.CurveObject(curve))
	require.NoError(t, err)

	instruments := []product.Instrument{
		product.ZeroCouponBond{Maturity: 1, DiscountCurve: "OIS"},
		product.ZeroCouponBond{Maturity: 2, DiscountCurve: "OIS"},
	}
	// the second quote is inconsistent and switched off
	s, err := calibration.NewSolver(m, instruments, []float64{math.Exp(-0.03), 0.5}, quiet,
		calibration.WithWeights([]float64{1, 0}))
	require.NoError(t, err)
	calibrated, err := s.CalibratedModel(context.Background(), curve)
	require.NoError(t, err)

	dc, err := calibrated.DiscountCurve("OIS")
	require.NoError(t, err)
	assert.InDelta(t, 0.03, dc.Parameter()[0], 1e-8)
	// accuracy is unweighted, so the ignored quote still shows
	assert.Greater(t, s.Accuracy(), 0.1)
}

func TestNewSolver_Configuration(t *testing.T) {
	t.Parallel()
	m, _, instruments, targets := zcbFixture(t)

	for _, tc := range []struct {
		name string
		run  func() error
	}{
		{"nil model", func() error {
			_, err := calibration.NewSolver(nil, instruments, targets)
			return err
		}},
		{"targets length", func() error {
			_, err := calibration.NewSolver(m, instruments, targets[:1])
			return err
		}},
		{"nil instrument", func() error {
			_, err := calibration.NewSolver(m, []product.Instrument{nil, instruments[1]}, targets)
			return err
		}},
		{"nan target", func() error {
			_, err := calibration.NewSolver(m, instruments, []float64{math.NaN(), 1})
			return err
		}},
		{"weights length", func() error {
			_, err := calibration.NewSolver(m, instruments, targets, calibration.WithWeights([]float64{1}))
			return err
		}},
		{"negative weight", func() error {
			_, err := calibration.NewSolver(m, instruments, targets, calibration.WithWeights([]float64{1, -1}))
			return err
		}},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tc.run(), calibration.ErrConfiguration)
		})
	}
}

func TestCalibratedModel_ErrorTaxonomy(t *testing.T) {
	t.Parallel()
	m, curve, instruments, targets := zcbFixture(t)
	ctx := context.Background()

	t.Run("no objects", func(t *testing.T) {
		t.Parallel()
		s, err := calibration.NewSolver(m, instruments, targets, quiet)
		require.NoError(t, err)
		_, err = s.CalibratedModel(ctx)
		assert.ErrorIs(t, err, calibration.ErrConfiguration)
	})

	t.Run("nothing to do", func(t *testing.T) {
		t.Parallel()
		s, err := calibration.NewSolver(m, nil, nil, quiet)
		require.NoError(t, err)
		got, err := s.CalibratedModel(ctx)
		require.NoError(t, err)
		assert.Same(t, m, got)
		assert.Zero(t, s.Iterations())
	})

	t.Run("objects without instruments", func(t *testing.T) {
		t.Parallel()
		s, err := calibration.NewSolver(m, nil, nil, quiet)
		require.NoError(t, err)
		_, err = s.CalibratedModel(ctx, curve)
		assert.ErrorIs(t, err, calibration.ErrConfiguration)
	})

	t.Run("object outside model", func(t *testing.T) {
		t.Parallel()
		stranger, err := model.NewZeroRateCurve("USD", []float64{1}, []float64{0.01})
		require.NoError(t, err)
		s, err := calibration.NewSolver(m, instruments, targets, quiet)
		require.NoError(t, err)
		_, err = s.CalibratedModel(ctx, stranger)
		assert.ErrorIs(t, err, calibration.ErrConfiguration)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("initial outside transformation domain", func(t *testing.T) {
		t.Parallel()
		neg, err := model.NewZeroRateCurve("OIS", []float64{1, 2}, []float64{-0.01, 0.01})
		require.NoError(t, err)
		nm, err := model.NewModel(model.CurveObject(neg))
		require.NoError(t, err)
		s, err := calibration.NewSolver(nm, instruments, targets, quiet,
			calibration.WithTransformation(transform.Positive{}))
		require.NoError(t, err)
		_, err = s.CalibratedModel(ctx, neg)
		assert.ErrorIs(t, err, calibration.ErrConfiguration)
		assert.ErrorIs(t, err, transform.ErrOutOfDomain)
	})

	t.Run("bounds length", func(t *testing.T) {
		t.Parallel()
		s, err := calibration.NewSolver(m, instruments, targets, quiet,
			calibration.WithBounds([]float64{0}, nil))
		require.NoError(t, err)
		_, err = s.CalibratedModel(ctx, curve)
		assert.ErrorIs(t, err, calibration.ErrConfiguration)
	})

	t.Run("pricing failure", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("no fixing")
		failing := []product.Instrument{
			instruments[0],
			product.InstrumentFunc(func(float64, *model.Model) (float64, error) { return 0, boom }),
		}
		s, err := calibration.NewSolver(m, failing, targets, quiet)
		require.NoError(t, err)
		_, err = s.CalibratedModel(ctx, curve)
		assert.ErrorIs(t, err, calibration.ErrEvaluation)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("missing curve", func(t *testing.T) {
		t.Parallel()
		wrong := []product.Instrument{instruments[0], product.ZeroCouponBond{Maturity: 2, DiscountCurve: "EUR"}}
		s, err := calibration.NewSolver(m, wrong, targets, quiet)
		require.NoError(t, err)
		_, err = s.CalibratedModel(ctx, curve)
		assert.ErrorIs(t, err, calibration.ErrEvaluation)
	})

	t.Run("singular system", func(t *testing.T) {
		t.Parallel()
		s, err := calibration.NewSolver(m, instruments, targets, quiet,
			calibration.WithOptimizerFactory(func(p lm.Problem, _ ...lm.Option) (calibration.Optimizer, error) {
				return &stubOptimizer{best: p.Initial, err: lm.ErrSingularSystem}, nil
			}))
		require.NoError(t, err)
		_, err = s.CalibratedModel(ctx, curve)
		assert.ErrorIs(t, err, calibration.ErrNumerical)
		assert.ErrorIs(t, err, lm.ErrSingularSystem)
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		s, err := calibration.NewSolver(m, instruments, targets, quiet)
		require.NoError(t, err)
		_, err = s.CalibratedModel(cctx, curve)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// stubOptimizer returns best from BestFitParameters and err from Run,
// optionally blocking Run until release is closed.
type stubOptimizer struct {
	best    []float64
	err     error
	started chan struct{}
	release chan struct{}
}

func (s *stubOptimizer) Run(context.Context) error {
	if s.started != nil {
		close(s.started)
		<-s.release
	}
	return s.err
}

func (s *stubOptimizer) BestFitParameters() []float64 { return append([]float64(nil), s.best...) }
func (s *stubOptimizer) Iterations() int              { return 1 }
func (s *stubOptimizer) Status() lm.Status {
	if s.err != nil {
		return lm.StatusFailed
	}
	return lm.StatusConverged
}

func TestCalibratedModel_Busy(t *testing.T) {
	t.Parallel()
	m, curve, instruments, targets := zcbFixture(t)

	stub := &stubOptimizer{started: make(chan struct{}), release: make(chan struct{})}
	s, err := calibration.NewSolver(m, instruments, targets, quiet,
		calibration.WithOptimizerFactory(func(p lm.Problem, _ ...lm.Option) (calibration.Optimizer, error) {
			stub.best = p.Initial
			return stub, nil
		}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.CalibratedModel(context.Background(), curve)
		assert.NoError(t, err)
	}()
	<-stub.started

	_, err = s.CalibratedModel(context.Background(), curve)
	assert.ErrorIs(t, err, calibration.ErrBusy)

	close(stub.release)
	wg.Wait()
	assert.Equal(t, lm.StatusConverged, s.Status())
}

// countingRecorder counts runs and proposals.
type countingRecorder struct {
	mu        sync.Mutex
	runs      []calibration.Result
	proposals int
}

func (r *countingRecorder) ObserveIteration(context.Context, lm.Iteration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proposals++
}

func (r *countingRecorder) RecordRun(_ context.Context, res calibration.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, res)
}

func TestCalibratedModel_RecorderAndSpans(t *testing.T) {
	t.Parallel()
	m, curve, instruments, targets := zcbFixture(t)

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	rec := &countingRecorder{}

	s, err := calibration.NewSolver(m, instruments, targets, quiet,
		calibration.WithTracer(tp.Tracer("test")),
		calibration.WithRecorder(rec))
	require.NoError(t, err)
	_, err = s.CalibratedModel(context.Background(), curve)
	require.NoError(t, err)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, s.Result().RunID, rec.runs[0].RunID)
	assert.GreaterOrEqual(t, rec.proposals, s.Iterations())

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "calibration.CalibratedModel", span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)
	assert.Contains(t, span.Attributes(), attribute.String("calibration.status", "CONVERGED"))
	assert.Contains(t, span.Attributes(), attribute.String("calibration.run_id", rec.runs[0].RunID.String()))

	// failures mark the span
	_, err = s.CalibratedModel(context.Background())
	require.Error(t, err)
	spans = sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Len(t, rec.runs, 1)
}
