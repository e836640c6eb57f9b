package opinf

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// randomDense fills an m x n matrix with uniform values in [0, 1).
func randomDense(rnd *rand.Rand, m, n int) *mat.Dense {
	d := mat.NewDense(m, n, nil)
	for i := range m {
		for j := range n {
			d.Set(i, j, rnd.Float64())
		}
	}
	return d
}

func randomVec(rnd *rand.Rand, n int) *mat.VecDense {
	v := mat.NewVecDense(n, nil)
	for i := range n {
		v.SetVec(i, rnd.Float64())
	}
	return v
}

// lowRank builds U diag(s) V^T with orthonormal U, V.
func lowRank(rnd *rand.Rand, m, n int, s []float64) *mat.Dense {
	orth := func(rows int) *mat.Dense {
		var qr mat.QR
		qr.Factorize(randomDense(rnd, rows, len(s)))
		var q mat.Dense
		qr.QTo(&q)
		return mat.DenseCopyOf(q.Slice(0, rows, 0, len(s)))
	}
	u, v := orth(m), orth(n)
	var us, a mat.Dense
	us.Mul(u, mat.NewDiagDense(len(s), s))
	a.Mul(&us, v.T())
	return &a
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := range n {
		d.Set(i, i, 1)
	}
	return d
}

func assertOrthonormal(t *testing.T, vr mat.Matrix) {
	t.Helper()
	_, r := vr.Dims()
	var g mat.Dense
	g.Mul(vr.T(), vr)
	assert.True(t, mat.EqualApprox(&g, identity(r), 1e-10), "Vr^T Vr != I:\n%v", mat.Formatted(&g))
}

func assertMatrixClose(t *testing.T, exp, got mat.Matrix, tol float64) bool {
	t.Helper()
	return assert.True(t, mat.EqualApprox(exp, got, tol), "expected\n%v\ngot\n%v", mat.Formatted(exp), mat.Formatted(got))
}

func norm(m mat.Matrix) float64 {
	return mat.Norm(m, 2)
}

func maxAbs(m mat.Matrix) float64 {
	r, c := m.Dims()
	var v float64
	for i := range r {
		for j := range c {
			v = math.Max(v, math.Abs(m.At(i, j)))
		}
	}
	return v
}
