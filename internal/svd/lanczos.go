package svd

import (
	"math"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"github.com/yyyoichi/opinf/internal/check"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var _ Solver = Lanczos{}

// Lanczos computes the leading singular triplets with Golub-Kahan-Lanczos
// bidiagonalization and full reorthogonalization. The Krylov basis grows until
// the r largest Ritz values converge or MaxIter steps are taken.
type Lanczos struct {
	Seed uint64
	// MaxIter caps the Krylov dimension. Zero means min(m, n).
	MaxIter int
	// Tol is the residual tolerance relative to the largest Ritz value.
	// Zero means 1e-12.
	Tol    float64
	Logger zerolog.Logger
}

func (l Lanczos) Compute(a mat.Matrix, r int) (*mat.Dense, []float64, error) {
	if err := validRank(a, r); err != nil {
		return nil, nil, err
	}
	m, n := a.Dims()
	kmax := min(m, n)
	if l.MaxIter > 0 && l.MaxIter < kmax {
		kmax = max(l.MaxIter, r)
	}
	tol := l.Tol
	if tol <= 0 {
		tol = 1e-12
	}
	// ARPACK-like initial subspace size before convergence checks start.
	ncv := min(kmax, max(2*r+1, 20))

	rnd := rand.New(rand.NewPCG(l.Seed, l.Seed^0x9e3779b97f4a7c15))
	gk := newBidiag(a, kmax, rnd)

	for gk.k < kmax {
		gk.step()
		if gk.k < ncv && gk.k < kmax {
			continue
		}
		if gk.k < r {
			continue
		}
		u, s, converged, err := gk.ritz(r, tol)
		if err != nil {
			return nil, nil, err
		}
		l.Logger.Debug().Int("k", gk.k).Int("r", r).Bool("converged", converged).Msg("lanczos step")
		if converged || gk.k == min(m, n) {
			sortDescending(u, s)
			return u, s, nil
		}
	}
	u, s, converged, err := gk.ritz(r, tol)
	if err != nil {
		return nil, nil, err
	}
	if !converged && gk.k < min(m, n) {
		return nil, nil, check.Numerical("lanczos did not converge in %d iterations", gk.k)
	}
	sortDescending(u, s)
	return u, s, nil
}

// bidiag holds the partial factorization A V = U B with B upper bidiagonal.
type bidiag struct {
	a     mat.Matrix
	m, n  int
	rnd   *rand.Rand
	us    []*mat.VecDense
	vs    []*mat.VecDense
	alpha []float64
	beta  []float64
	next  *mat.VecDense // unnormalized v_{k+1}
	k     int
	scale float64
}

func newBidiag(a mat.Matrix, kmax int, rnd *rand.Rand) *bidiag {
	m, n := a.Dims()
	b := &bidiag{
		a:     a,
		m:     m,
		n:     n,
		rnd:   rnd,
		us:    make([]*mat.VecDense, 0, kmax),
		vs:    make([]*mat.VecDense, 0, kmax),
		alpha: make([]float64, 0, kmax),
		beta:  make([]float64, 0, kmax),
		scale: mat.Norm(a, 1),
	}
	if b.scale == 0 {
		b.scale = 1
	}
	b.next = b.randomVec(n)
	return b
}

// step appends one column to U and V.
func (b *bidiag) step() {
	v := b.next
	orthogonalize(v, b.vs)
	beta := mat.Norm(v, 2)
	if len(b.vs) > 0 {
		if beta <= 1e-14*b.scale {
			// Invariant subspace reached. Continue with a fresh direction.
			beta = 0
			v = b.randomVec(b.n)
			orthogonalize(v, b.vs)
			v.ScaleVec(1/mat.Norm(v, 2), v)
		} else {
			v.ScaleVec(1/beta, v)
		}
		b.beta = append(b.beta, beta)
	} else {
		v.ScaleVec(1/beta, v)
	}
	b.vs = append(b.vs, v)

	u := mat.NewVecDense(b.m, nil)
	u.MulVec(b.a, v)
	if len(b.us) > 0 {
		u.AddScaledVec(u, -beta, b.us[len(b.us)-1])
	}
	orthogonalize(u, b.us)
	alpha := mat.Norm(u, 2)
	if alpha <= 1e-14*b.scale {
		alpha = 0
		u = b.randomVec(b.m)
		orthogonalize(u, b.us)
	}
	u.ScaleVec(1/mat.Norm(u, 2), u)
	b.us = append(b.us, u)
	b.alpha = append(b.alpha, alpha)

	next := mat.NewVecDense(b.n, nil)
	next.MulVec(b.a.T(), u)
	next.AddScaledVec(next, -alpha, v)
	b.next = next
	b.k++
}

// factorizeSmall computes the SVD of the projected bidiagonal matrix.
var factorizeSmall = func(f *mat.SVD, b *mat.Dense) bool {
	return f.Factorize(b, mat.SVDThinU)
}

// ritz returns the r leading Ritz triplets of the current factorization and
// reports whether their residuals are below tol.
func (b *bidiag) ritz(r int, tol float64) (*mat.Dense, []float64, bool, error) {
	k := b.k
	bk := mat.NewDense(k, k, nil)
	for i := range k {
		bk.Set(i, i, b.alpha[i])
		if i+1 < k {
			bk.Set(i, i+1, b.beta[i])
		}
	}
	var f mat.SVD
	if ok := factorizeSmall(&f, bk); !ok {
		return nil, nil, false, check.Numerical("cannot factorize %dx%d bidiagonal matrix", k, k)
	}
	s := f.Values(nil)
	var p mat.Dense
	f.UTo(&p)

	// The residual of triplet i is |beta_{k}| * |last entry of p_i|.
	res := mat.Norm(b.nextResidual(), 2)
	converged := true
	for i := range r {
		if res*math.Abs(p.At(k-1, i)) > tol*max(s[0], 1e-300) {
			converged = false
			break
		}
	}

	basis := mat.NewDense(b.m, k, nil)
	for j, u := range b.us {
		basis.SetCol(j, u.RawVector().Data)
	}
	u := mat.NewDense(b.m, r, nil)
	u.Mul(basis, p.Slice(0, k, 0, r))
	return u, append([]float64(nil), s[:r]...), converged, nil
}

func (b *bidiag) nextResidual() *mat.VecDense {
	v := mat.VecDenseCopyOf(b.next)
	orthogonalize(v, b.vs)
	return v
}

func (b *bidiag) randomVec(n int) *mat.VecDense {
	data := make([]float64, n)
	for i := range data {
		data[i] = b.rnd.NormFloat64()
	}
	return mat.NewVecDense(n, data)
}

// orthogonalize removes the components of v along the orthonormal basis,
// twice, to keep the Krylov vectors orthogonal in floating point.
func orthogonalize(v *mat.VecDense, basis []*mat.VecDense) {
	for range 2 {
		for _, q := range basis {
			d := floats.Dot(v.RawVector().Data, q.RawVector().Data)
			v.AddScaledVec(v, -d, q)
		}
	}
}
