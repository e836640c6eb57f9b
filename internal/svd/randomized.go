package svd

import (
	"math/rand/v2"

	"github.com/yyyoichi/opinf/internal/check"
	"gonum.org/v1/gonum/mat"
)

var _ Solver = Randomized{}

// Randomized computes an approximate truncated SVD by random projection
// (Halko, Martinsson and Tropp, 2011).
type Randomized struct {
	// Oversamples is the number of extra random directions. Negative means 10.
	Oversamples int
	// PowerIters is the number of power iterations. Negative means
	// 7 when r < 0.1*min(m, n) and 4 otherwise.
	PowerIters int
	Seed       uint64
}

func (rs Randomized) Compute(a mat.Matrix, r int) (*mat.Dense, []float64, error) {
	if err := validRank(a, r); err != nil {
		return nil, nil, err
	}
	m, n := a.Dims()
	over := rs.Oversamples
	if over < 0 {
		over = 10
	}
	iters := rs.PowerIters
	if iters < 0 {
		iters = 4
		if float64(r) < 0.1*float64(min(m, n)) {
			iters = 7
		}
	}
	l := min(r+over, min(m, n))

	rnd := rand.New(rand.NewPCG(rs.Seed, rs.Seed^0x9e3779b97f4a7c15))
	omega := mat.NewDense(n, l, nil)
	for i := range n {
		for j := range l {
			omega.Set(i, j, rnd.NormFloat64())
		}
	}

	// Range finder: Q spans the dominant column space of a.
	var y mat.Dense
	y.Mul(a, omega)
	q := orthonormalize(&y)
	for range iters {
		var z mat.Dense
		z.Mul(a.T(), q)
		qz := orthonormalize(&z)
		y.Reset()
		y.Mul(a, qz)
		q = orthonormalize(&y)
	}

	// Project onto the subspace and factorize the small matrix.
	var b mat.Dense
	b.Mul(q.T(), a)
	var result mat.SVD
	if ok := result.Factorize(&b, mat.SVDThinU); !ok {
		return nil, nil, check.Numerical("cannot factorize projected matrix")
	}
	s := result.Values(nil)
	var ub mat.Dense
	result.UTo(&ub)

	u := mat.NewDense(m, r, nil)
	u.Mul(q, ub.Slice(0, l, 0, r))
	s = s[:r:r]
	sortDescending(u, s)
	flipSigns(u)
	return u, s, nil
}

// orthonormalize returns the thin Q factor of y (rows >= cols).
func orthonormalize(y *mat.Dense) *mat.Dense {
	rows, cols := y.Dims()
	var qr mat.QR
	qr.Factorize(y)
	var q mat.Dense
	qr.QTo(&q)
	return mat.DenseCopyOf(q.Slice(0, rows, 0, cols))
}
