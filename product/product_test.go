package product_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/lvcalib/model"
	"github.com/katalvlaran/lvcalib/product"
)

// fixture: flat 3% zero curve, 2% flat forwards, 20% flat vols.
func fixture(t *testing.T) *model.Model {
	t.Helper()
	disc, err := model.NewZeroRateCurve("OIS", []float64{1, 5}, []float64{0.03, 0.03})
	require.NoError(t, err)
	fwd, err := model.NewPiecewiseForwardCurve("6M", []float64{0}, []float64{0.02})
	require.NoError(t, err)
	vol, err := model.NewGridVolatilitySurface("CAP", []float64{1}, []float64{0.02}, []float64{0.2})
	require.NoError(t, err)
	m, err := model.NewModel(model.CurveObject(disc), model.CurveObject(fwd), model.SurfaceObject(vol))
	require.NoError(t, err)

	return m
}

func TestZeroCouponBond(t *testing.T) {
	t.Parallel()
	m := fixture(t)

	v, err := product.ZeroCouponBond{Maturity: 2, DiscountCurve: "OIS"}.Value(0, m)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.06), v, 1e-15)

	// forward-starting evaluation divides by P(t_eval)
	v, err = product.ZeroCouponBond{Maturity: 2, DiscountCurve: "OIS"}.Value(1, m)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.03), v, 1e-15)

	_, err = product.ZeroCouponBond{Maturity: 2, DiscountCurve: "6M"}.Value(0, m)
	assert.ErrorIs(t, err, model.ErrKindMismatch)
	_, err = product.ZeroCouponBond{Maturity: 2, DiscountCurve: "nope"}.Value(0, m)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestForwardRateAgreement(t *testing.T) {
	t.Parallel()
	m := fixture(t)

	fra := product.ForwardRateAgreement{
		Fixing: 1, Payment: 1.5, Strike: 0.015, Notional: 1e6,
		ForwardCurve: "6M", DiscountCurve: "OIS",
	}
	v, err := fra.Value(0, m)
	require.NoError(t, err)
	assert.InDelta(t, 1e6*0.005*0.5*math.Exp(-0.045), v, 1e-9)

	fra.Payment = 1
	_, err = fra.Value(0, m)
	assert.ErrorIs(t, err, product.ErrInvalidInstrument)

	q, err := product.ForwardRate{Fixing: 3, ForwardCurve: "6M"}.Value(0, m)
	require.NoError(t, err)
	assert.Equal(t, 0.02, q)
}

func TestCaplet_BlackATM(t *testing.T) {
	t.Parallel()
	m := fixture(t)

	c := product.Caplet{
		Fixing: 1, Payment: 1.5, Strike: 0.02, Notional: 1,
		ForwardCurve: "6M", DiscountCurve: "OIS", VolatilitySurface: "CAP",
	}
	v, err := c.Value(0, m)
	require.NoError(t, err)

	// at the money: F·(2Φ(σ√T/2) − 1)
	want := 0.5 * math.Exp(-0.045) * 0.02 * (2*distuv.UnitNormal.CDF(0.1) - 1)
	assert.InDelta(t, want, v, 1e-15)

	// expired: intrinsic only
	c.Strike = 0.01
	v, err = c.Value(1, m)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*math.Exp(-0.015)*0.01, v, 1e-15)

	// negative strike is outside Black
	c.Strike = -0.01
	_, err = c.Value(0, m)
	assert.ErrorIs(t, err, product.ErrInvalidInstrument)
}

func TestImpliedVolatilityAndFunc(t *testing.T) {
	t.Parallel()
	m := fixture(t)

	v, err := product.ImpliedVolatility{Maturity: 3, Strike: 0.05, VolatilitySurface: "CAP"}.Value(0, m)
	require.NoError(t, err)
	assert.Equal(t, 0.2, v)

	var inst product.Instrument = product.InstrumentFunc(func(t float64, _ *model.Model) (float64, error) {
		return 2 * t, nil
	})
	v, err = inst.Value(1.5, m)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}
