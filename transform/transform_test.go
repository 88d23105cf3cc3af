package transform_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvcalib/transform"
)

func assertRoundTrip(t *testing.T, tr transform.Transformation, x []float64) {
	t.Helper()
	y, err := tr.ToSolverSpace(x)
	require.NoError(t, err)
	back, err := tr.ToModelSpace(y)
	require.NoError(t, err)
	require.Len(t, back, len(x))
	for i := range x {
		assert.InDelta(t, x[i], back[i], 1e-12*math.Max(1, math.Abs(x[i])))
	}
}

func TestTransformations_RoundTrip(t *testing.T) {
	t.Parallel()

	inf := math.Inf(1)
	for _, tc := range []struct {
		name string
		tr   transform.Transformation
		x    []float64
	}{
		{"identity", transform.Identity{}, []float64{-3, 0, 2.5}},
		{"positive", transform.Positive{}, []float64{1e-4, 1, 250}},
		{"bounded", transform.Bounded{
			Lower: []float64{0, -inf, 0.1, -inf},
			Upper: []float64{1, 2, inf, inf},
		}, []float64{0.3, -7, 5, 42}},
		{"monotone", transform.MonotoneSlope{
			Times: []float64{0.5, 1, 2, 5}, MinSlope: 0, MaxSlope: 0.2,
		}, []float64{0.01, 0.02, 0.1, 0.4}},
		{"chain", transform.Chain(
			transform.Part{Length: 2, Transformation: transform.Positive{}},
			transform.Part{Length: 1},
		), []float64{0.5, 2, -1}},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assertRoundTrip(t, tc.tr, tc.x)
		})
	}
}

func TestBounded_MapsIntoBounds(t *testing.T) {
	t.Parallel()

	b := transform.Bounded{Lower: []float64{-1, 0}, Upper: []float64{1, math.Inf(1)}}
	for _, y := range []float64{-30, -1, 0, 1, 30} {
		x, err := b.ToModelSpace([]float64{y, y})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, x[0], -1.0)
		assert.LessOrEqual(t, x[0], 1.0)
		assert.Greater(t, x[1], 0.0)
	}

	_, err := b.ToSolverSpace([]float64{1, 1})
	assert.ErrorIs(t, err, transform.ErrOutOfDomain)
	_, err = b.ToSolverSpace([]float64{0, 0})
	assert.ErrorIs(t, err, transform.ErrOutOfDomain)
	_, err = b.ToModelSpace([]float64{0})
	assert.ErrorIs(t, err, transform.ErrLengthMismatch)

	bad := transform.Bounded{Lower: []float64{1}, Upper: []float64{1}}
	_, err = bad.ToModelSpace([]float64{0})
	assert.ErrorIs(t, err, transform.ErrInvalidBounds)
}

func TestPositive_Domain(t *testing.T) {
	t.Parallel()

	_, err := transform.Positive{}.ToSolverSpace([]float64{1, 0})
	assert.ErrorIs(t, err, transform.ErrOutOfDomain)
	_, err = transform.Positive{}.ToSolverSpace([]float64{math.NaN()})
	assert.ErrorIs(t, err, transform.ErrOutOfDomain)
}

func TestMonotoneSlope_Ordering(t *testing.T) {
	t.Parallel()

	m := transform.MonotoneSlope{Times: []float64{1, 2, 3}, MinSlope: 0, MaxSlope: 1}
	x, err := m.ToModelSpace([]float64{0.5, -4, 4})
	require.NoError(t, err)
	assert.Equal(t, 0.5, x[0])
	assert.Greater(t, x[1], x[0])
	assert.Greater(t, x[2], x[1])
	assert.Less(t, x[2]-x[1], 1.0)

	_, err = m.ToSolverSpace([]float64{1, 0.5, 2})
	assert.ErrorIs(t, err, transform.ErrOutOfDomain)

	_, err = transform.MonotoneSlope{Times: []float64{1}, MinSlope: 1, MaxSlope: 0}.ToModelSpace([]float64{0})
	assert.ErrorIs(t, err, transform.ErrInvalidBounds)
}

func TestChain_Errors(t *testing.T) {
	t.Parallel()

	c := transform.Chain(
		transform.Part{Length: 1, Transformation: transform.Positive{}},
		transform.Part{Length: 1, Transformation: transform.Identity{}},
	)
	_, err := c.ToModelSpace([]float64{1})
	assert.ErrorIs(t, err, transform.ErrLengthMismatch)

	_, err = c.ToSolverSpace([]float64{-1, 3})
	assert.ErrorIs(t, err, transform.ErrOutOfDomain)

	in := []float64{0, 3}
	out, err := c.ToModelSpace(in)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, out)
	assert.Equal(t, []float64{0, 3}, in)
}
