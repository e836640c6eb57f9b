package opinf

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMeanShift(t *testing.T) {
	x := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 4, 10,
	})
	xbar, shifted, err := MeanShift(x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 6}, xbar.RawVector().Data, 1e-14)
	assertMatrixClose(t, mat.NewDense(2, 3, []float64{
		-1, 0, 1,
		-2, -2, 4,
	}), shifted, 1e-14)

	// shifted + xbar restores X, and the input is untouched.
	restored := mat.DenseCopyOf(shifted)
	for j := range 3 {
		col := restored.ColView(j).(*mat.VecDense)
		col.AddVec(col, xbar)
	}
	assertMatrixClose(t, x, restored, 1e-14)
	assert.Equal(t, 10.0, x.At(1, 2))
}

func TestMeanShift_Invalid(t *testing.T) {
	_, _, err := MeanShift(nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.ErrorContains(t, err, "data X must be two-dimensional")

	_, _, err = MeanShift(&mat.Dense{})
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestPODBasis(t *testing.T) {
	rnd := newRand(1)
	x := lowRank(rnd, 40, 25, []float64{9, 7, 5, 3, 2, 1, 0.5, 0.25})

	var full mat.SVD
	require.True(t, full.Factorize(x, mat.SVDThin))
	var u mat.Dense
	full.UTo(&u)
	expS := full.Values(nil)

	test := []struct {
		name string
		opts []Option
		tol  float64
	}{
		{name: "simple", opts: nil, tol: 1e-10},
		{name: "simple_explicit", opts: []Option{WithMode(Simple)}, tol: 1e-10},
		{name: "arpack", opts: []Option{WithMode(Arpack), WithSeed(3)}, tol: 1e-8},
		{name: "randomized", opts: []Option{WithMode(Randomized), WithSeed(3)}, tol: 1e-8},
		{name: "randomized_tuned", opts: []Option{WithMode(Randomized), WithOversamples(4), WithPowerIterations(6)}, tol: 1e-8},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			const r = 4
			vr, s, err := PODBasisValues(x, r, tt.opts...)
			require.NoError(t, err)
			rows, cols := vr.Dims()
			assert.Equal(t, 40, rows)
			assert.Equal(t, r, cols)
			assertOrthonormal(t, vr)
			assert.InDeltaSlice(t, expS[:r], s, tt.tol)
			for j := range r {
				d := mat.Dot(u.ColView(j), vr.ColView(j))
				assert.InDelta(t, 1, math.Abs(d), tt.tol, "column %d differs beyond sign", j)
			}

			only, err := PODBasis(x, r, tt.opts...)
			require.NoError(t, err)
			assert.True(t, mat.Equal(vr, only))
		})
	}
}

func TestPODBasis_Invalid(t *testing.T) {
	x := mat.NewDense(5, 4, nil)
	test := []struct {
		name string
		x    mat.Matrix
		r    int
		opts []Option
		kind error
		msg  string
	}{
		{name: "nil", x: nil, r: 1, kind: ErrInvalidArgument, msg: "data X must be two-dimensional"},
		{name: "mode", x: x, r: 2, opts: []Option{WithMode(Mode(7))}, kind: ErrInvalidArgument, msg: "invalid mode 'Mode(7)'"},
		{name: "rank_zero", x: x, r: 0, kind: ErrInvalidArgument, msg: "rank r=0"},
		{name: "rank_too_big", x: x, r: 5, kind: ErrInvalidArgument, msg: "rank r=5"},
		{name: "oversamples", x: x, r: 2, opts: []Option{WithOversamples(-2)}, kind: ErrInvalidArgument, msg: "oversamples"},
		{name: "power", x: x, r: 2, opts: []Option{WithPowerIterations(-1)}, kind: ErrInvalidArgument, msg: "power iterations"},
		{name: "maxiter", x: x, r: 2, opts: []Option{WithMaxIterations(0)}, kind: ErrInvalidArgument, msg: "max iterations"},
		{name: "tol", x: x, r: 2, opts: []Option{WithTolerance(0)}, kind: ErrInvalidArgument, msg: "tolerance"},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PODBasis(tt.x, tt.r, tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestPODBasis_ArpackNoConvergence(t *testing.T) {
	x := randomDense(newRand(5), 60, 50)
	_, err := PODBasis(x, 3, WithMode(Arpack), WithMaxIterations(3))
	assert.True(t, errors.Is(err, ErrNumericalFailure), "got %v", err)
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Simple, Arpack, Randomized} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("lanczos")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.ErrorContains(t, err, "invalid mode 'lanczos'")
}
