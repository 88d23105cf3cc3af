package calibration_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvcalib/aggregation"
	"github.com/katalvlaran/lvcalib/calibration"
	"github.com/katalvlaran/lvcalib/model"
	"github.com/katalvlaran/lvcalib/product"
	"github.com/katalvlaran/lvcalib/transform"
)

func TestObjective_Evaluate(t *testing.T) {
	t.Parallel()
	m, curve, instruments, targets := zcbFixture(t)
	agg, err := aggregation.New(curve)
	require.NoError(t, err)

	obj, err := calibration.NewObjective(m, agg, nil, instruments, targets, []float64{2, 1}, 0)
	require.NoError(t, err)

	out := make([]float64, 2)
	require.NoError(t, obj.Evaluate(context.Background(), []float64{0.02, 0.03}, out))
	assert.InDelta(t, 2*(math.Exp(-0.02)-targets[0]), out[0], 1e-15)
	assert.InDelta(t, math.Exp(-0.06)-targets[1], out[1], 1e-15)
	assert.EqualValues(t, 1, obj.Evaluations())

	// the base model is untouched by evaluation
	assert.Equal(t, []float64{0.01, 0.01}, curve.Parameter())

	_, err = calibration.NewObjective(m, agg, nil, instruments, targets[:1], nil, 0)
	assert.ErrorIs(t, err, calibration.ErrConfiguration)
	assert.ErrorIs(t, obj.Evaluate(context.Background(), []float64{0.02}, out), calibration.ErrConfiguration)
	assert.ErrorIs(t, obj.Evaluate(context.Background(), []float64{0.02, 0.03}, out[:1]), calibration.ErrConfiguration)
}

func TestObjective_NonFinite(t *testing.T) {
	t.Parallel()
	curve, err := model.NewDiscountFactorCurve("OIS", []float64{1}, []float64{0.97})
	require.NoError(t, err)
	m, err := model.NewModel(model.CurveObject(curve))
	require.NoError(t, err)
	agg, err := aggregation.New(curve)
	require.NoError(t, err)

	obj, err := calibration.NewObjective(m, agg, transform.Identity{},
		[]product.Instrument{product.ZeroCouponBond{Maturity: 1, DiscountCurve: "OIS"}}, []float64{0.97}, nil, 0)
	require.NoError(t, err)

	// a negative discount factor cannot be log-interpolated
	err = obj.Evaluate(context.Background(), []float64{-0.5}, make([]float64, 1))
	assert.ErrorIs(t, err, calibration.ErrEvaluation)
}

func TestObjective_Concurrent(t *testing.T) {
	t.Parallel()
	m, curve, instruments, targets := zcbFixture(t)
	agg, err := aggregation.New(curve)
	require.NoError(t, err)
	obj, err := calibration.NewObjective(m, agg, transform.Positive{}, instruments, targets, nil, 0)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	results := make([][]float64, workers)
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := 0.01 + 0.001*float64(w)
			out := make([]float64, 2)
			assert.NoError(t, obj.Evaluate(context.Background(), []float64{math.Log(r), math.Log(r)}, out))
			results[w] = out
		}()
	}
	wg.Wait()

	for w, out := range results {
		r := 0.01 + 0.001*float64(w)
		assert.InDelta(t, math.Exp(-r)-targets[0], out[0], 1e-15, "worker %d", w)
		assert.InDelta(t, math.Exp(-2*r)-targets[1], out[1], 1e-15, "worker %d", w)
	}
	assert.EqualValues(t, workers, obj.Evaluations())
}
