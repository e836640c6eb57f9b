package opinf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// e12 is the basis spanned by the first two unit vectors of R^n.
func e12(n int) *mat.Dense {
	vr := mat.NewDense(n, 2, nil)
	vr.Set(0, 0, 1)
	vr.Set(1, 1, 1)
	return vr
}

func TestReprojectDiscrete(t *testing.T) {
	x0 := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	vr := e12(4)

	test := []struct {
		name string
		f    Dynamics
		u    Inputs
		exp  *mat.Dense
	}{
		{
			name: "identity",
			f:    func(x, _ mat.Vector) mat.Vector { return x },
			exp: mat.NewDense(4, 3, []float64{
				1, 1, 1,
				2, 2, 2,
				0, 0, 0,
				0, 0, 0,
			}),
		},
		{
			name: "doubling",
			f: func(x, _ mat.Vector) mat.Vector {
				var y mat.VecDense
				y.ScaleVec(2, x)
				return &y
			},
			exp: mat.NewDense(4, 3, []float64{
				1, 2, 4,
				2, 4, 8,
				0, 0, 0,
				0, 0, 0,
			}),
		},
		{
			name: "leaves the basis",
			// components outside span(Vr) are discarded every step
			f: func(x, _ mat.Vector) mat.Vector {
				return mat.NewVecDense(4, []float64{x.AtVec(1), x.AtVec(0), 7, 7})
			},
			exp: mat.NewDense(4, 3, []float64{
				1, 2, 1,
				2, 1, 2,
				0, 0, 0,
				0, 0, 0,
			}),
		},
		{
			name: "scalar inputs",
			f: func(x, u mat.Vector) mat.Vector {
				y := mat.VecDenseCopyOf(x)
				y.SetVec(0, x.AtVec(0)+u.AtVec(0))
				return y
			},
			u: ScalarInputs([]float64{10, 20}),
			exp: mat.NewDense(4, 3, []float64{
				1, 11, 31,
				2, 2, 2,
				0, 0, 0,
				0, 0, 0,
			}),
		},
		{
			name: "vector inputs",
			f: func(x, u mat.Vector) mat.Vector {
				var y mat.VecDense
				y.AddVec(x, mat.NewVecDense(4, []float64{u.AtVec(0), u.AtVec(1), 0, 0}))
				return &y
			},
			u: VectorInputs(mat.NewDense(2, 3, []float64{
				1, 2, 3,
				-1, -2, -3,
			})),
			exp: mat.NewDense(4, 3, []float64{
				1, 2, 4,
				2, 1, -1,
				0, 0, 0,
				0, 0, 0,
			}),
		},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReprojectDiscrete(tt.f, vr, x0, 3, tt.u)
			require.NoError(t, err)
			assertMatrixClose(t, tt.exp, got, 1e-14)
		})
	}
}

func TestReprojectDiscrete_StatesNotOverwritten(t *testing.T) {
	var seen []mat.Vector
	f := func(x, _ mat.Vector) mat.Vector {
		seen = append(seen, x)
		var y mat.VecDense
		y.ScaleVec(3, x)
		return &y
	}
	_, err := ReprojectDiscrete(f, e12(3), mat.NewVecDense(3, []float64{1, 0, 0}), 4, Inputs{})
	require.NoError(t, err)
	require.Len(t, seen, 3)
	for j, x := range seen {
		exp := 1.0
		for range j {
			exp *= 3
		}
		assert.Equal(t, exp, x.AtVec(0))
	}
}

func TestReprojectDiscrete_SingleIteration(t *testing.T) {
	called := false
	f := func(x, _ mat.Vector) mat.Vector { called = true; return x }
	got, err := ReprojectDiscrete(f, e12(3), mat.NewVecDense(3, []float64{1, 2, 3}), 1, Inputs{})
	require.NoError(t, err)
	assert.False(t, called)
	assertMatrixClose(t, mat.NewDense(3, 1, []float64{1, 2, 0}), got, 0)
}

func TestReprojectDiscrete_Invalid(t *testing.T) {
	id := func(x, _ mat.Vector) mat.Vector { return x }
	vr := e12(4)
	x0 := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	test := []struct {
		name   string
		f      Dynamics
		vr     mat.Matrix
		x0     mat.Vector
		niters int
		u      Inputs
		is     error
		msg    string
	}{
		{name: "nil f", vr: vr, x0: x0, niters: 2, is: ErrInvalidArgument},
		{name: "nil basis", f: id, x0: x0, niters: 2, is: ErrInvalidArgument},
		{name: "x0 length", f: id, vr: vr, x0: mat.NewVecDense(3, nil), niters: 2, is: ErrShapeMismatch, msg: "basis Vr and initial condition x0 not aligned"},
		{name: "niters", f: id, vr: vr, x0: x0, niters: 0, is: ErrInvalidArgument},
		{name: "few scalar inputs", f: id, vr: vr, x0: x0, niters: 4, u: ScalarInputs([]float64{1, 2}), is: ErrShapeMismatch},
		{name: "few vector inputs", f: id, vr: vr, x0: x0, niters: 4, u: VectorInputs(mat.NewDense(2, 2, nil)), is: ErrShapeMismatch},
		{
			name: "f output length", vr: vr, x0: x0, niters: 2,
			f:  func(_, _ mat.Vector) mat.Vector { return mat.NewVecDense(3, nil) },
			is: ErrShapeMismatch,
		},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReprojectDiscrete(tt.f, tt.vr, tt.x0, tt.niters, tt.u)
			assert.True(t, errors.Is(err, tt.is), "got %v", err)
			if tt.msg != "" {
				assert.ErrorContains(t, err, tt.msg)
			}
		})
	}
}

func TestReprojectContinuous(t *testing.T) {
	vr := e12(3)
	x := mat.NewDense(3, 2, []float64{
		1, 4,
		2, 5,
		3, 6,
	})
	neg := func(x, _ mat.Vector) mat.Vector {
		var y mat.VecDense
		y.ScaleVec(-1, x)
		return &y
	}

	xrp, xdot, err := ReprojectContinuous(neg, vr, x, Inputs{})
	require.NoError(t, err)
	assertMatrixClose(t, mat.NewDense(3, 2, []float64{1, 4, 2, 5, 0, 0}), xrp, 1e-14)
	assertMatrixClose(t, mat.NewDense(3, 2, []float64{-1, -4, -2, -5, 0, 0}), xdot, 1e-14)

	// scalar input added to every component
	shift := func(x, u mat.Vector) mat.Vector {
		y := mat.VecDenseCopyOf(x)
		for i := range y.Len() {
			y.SetVec(i, y.AtVec(i)+u.AtVec(0))
		}
		return y
	}
	_, xdot, err = ReprojectContinuous(shift, vr, x, ScalarInputs([]float64{10, 100}))
	require.NoError(t, err)
	assertMatrixClose(t, mat.NewDense(3, 2, []float64{11, 104, 12, 105, 10, 100}), xdot, 1e-14)
}

func TestReprojectContinuous_FullBasisIsIdentity(t *testing.T) {
	rnd := newRand(8)
	x := randomDense(rnd, 6, 9)
	vr, err := PODBasis(x, 6)
	require.NoError(t, err)
	xrp, _, err := ReprojectContinuous(func(x, _ mat.Vector) mat.Vector { return x }, vr, x, Inputs{})
	require.NoError(t, err)
	assertMatrixClose(t, x, xrp, 1e-12)
}

func TestReprojectContinuous_Invalid(t *testing.T) {
	id := func(x, _ mat.Vector) mat.Vector { return x }
	vr := e12(3)
	x := mat.NewDense(3, 2, nil)

	_, _, err := ReprojectContinuous(nil, vr, x, Inputs{})
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, _, err = ReprojectContinuous(id, vr, mat.NewDense(4, 2, nil), Inputs{})
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, _, err = ReprojectContinuous(id, vr, x, ScalarInputs([]float64{1}))
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, _, err = ReprojectContinuous(id, vr, x, VectorInputs(mat.NewDense(2, 1, nil)))
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	short := func(_, _ mat.Vector) mat.Vector { return mat.NewVecDense(2, nil) }
	_, _, err = ReprojectContinuous(short, vr, x, Inputs{})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}
