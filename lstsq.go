package opinf

import (
	"math"

	"github.com/yyyoichi/opinf/internal/check"
	"gonum.org/v1/gonum/mat"
)

type regKind int

const (
	regNone regKind = iota
	regScalar
	regMatrix
	regPerColumn
)

// Regularizer is the Tikhonov term G of ||Ax - b||^2 + ||Gx||^2.
// The zero value applies no regularization.
type Regularizer struct {
	kind   regKind
	lambda float64
	g      mat.Matrix
	gs     []mat.Matrix
}

// NoReg applies no regularization.
var NoReg Regularizer

// ScalarReg uses G = lambda*I. lambda must be finite and nonnegative.
func ScalarReg(lambda float64) Regularizer {
	return Regularizer{kind: regScalar, lambda: lambda}
}

// MatrixReg uses the d x d matrix G for every right-hand side.
func MatrixReg(g mat.Matrix) Regularizer {
	return Regularizer{kind: regMatrix, g: g}
}

// PerColumnReg uses gs[j] for column j of b. It requires a matrix b.
func PerColumnReg(gs ...mat.Matrix) Regularizer {
	return Regularizer{kind: regPerColumn, gs: append([]mat.Matrix(nil), gs...)}
}

// LstsqResult is the solution of a regularized least-squares problem
// together with diagnostics of the stacked system [A; G].
type LstsqResult struct {
	// X holds one solution per column of b.
	X *mat.Dense
	// Residuals holds ||[A; G]x - [b; 0]||^2 per column.
	Residuals []float64
	// Rank is the effective rank of [A; G]. With PerColumnReg it is the
	// smallest rank over the columns.
	Rank int
	// SingularValues of [A; G], descending. Nil with PerColumnReg.
	SingularValues []float64
}

// LstsqReg solves min_x ||Ax - b||^2 + ||Gx||^2 for every column of b by
// solving the ordinary least-squares problem [A; G]x = [b; 0].
func LstsqReg(a, b mat.Matrix, g Regularizer) (*LstsqResult, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	if !check.Matrix(a) {
		return nil, check.Invalid("`A` must be two-dimensional")
	}
	if !check.Matrix(b) {
		return nil, check.Invalid("`b` must be one- or two-dimensional")
	}
	k, d := a.Dims()
	bk, r := b.Dims()
	if bk != k {
		return nil, check.Mismatch("A and b not aligned, first dimension %d != %d", k, bk)
	}

	if g.kind != regPerColumn {
		gm, err := g.matrix(d)
		if err != nil {
			return nil, err
		}
		return solveStacked(a, gm, b)
	}

	if len(g.gs) != r {
		return nil, check.Invalid("list G must have r entries with r = number of columns of b")
	}
	res := &LstsqResult{
		X:         mat.NewDense(d, r, nil),
		Residuals: make([]float64, r),
		Rank:      d,
	}
	for j, gj := range g.gs {
		if err := squareOf(gj, d); err != nil {
			return nil, err
		}
		col := mat.NewVecDense(k, mat.Col(nil, j, b))
		sol, err := solveStacked(a, gj, col)
		if err != nil {
			return nil, err
		}
		res.X.SetCol(j, mat.Col(nil, 0, sol.X))
		res.Residuals[j] = sol.Residuals[0]
		res.Rank = min(res.Rank, sol.Rank)
	}
	return res, nil
}

// LstsqRegVec is LstsqReg for a single right-hand side b.
func LstsqRegVec(a mat.Matrix, b mat.Vector, g Regularizer) (*mat.VecDense, *LstsqResult, error) {
	if err := g.validate(); err != nil {
		return nil, nil, err
	}
	if !check.Vector(b) {
		return nil, nil, check.Invalid("`b` must be one- or two-dimensional")
	}
	if g.kind == regPerColumn {
		return nil, nil, check.Invalid("`b` must be two-dimensional with multiple G")
	}
	res, err := LstsqReg(a, b, g)
	if err != nil {
		return nil, nil, err
	}
	d, _ := res.X.Dims()
	return mat.NewVecDense(d, mat.Col(nil, 0, res.X)), res, nil
}

func (g Regularizer) validate() error {
	switch g.kind {
	case regScalar:
		if g.lambda < 0 || math.IsNaN(g.lambda) {
			return check.Invalid("regularization parameter must be nonnegative")
		}
		if math.IsInf(g.lambda, 1) {
			return check.Invalid("regularization parameter must be finite")
		}
	case regMatrix:
		if !check.Matrix(g.g) {
			return check.Invalid("G must be (d,d) with d = number of columns of A")
		}
	}
	return nil
}

// matrix returns the d x d regularization matrix, or nil when there is none.
func (g Regularizer) matrix(d int) (mat.Matrix, error) {
	if g.kind == regMatrix {
		if err := squareOf(g.g, d); err != nil {
			return nil, err
		}
		return g.g, nil
	}
	if g.kind == regNone || g.lambda == 0 {
		return nil, nil
	}
	diag := make([]float64, d)
	for i := range diag {
		diag[i] = g.lambda
	}
	return mat.NewDiagDense(d, diag), nil
}

func squareOf(g mat.Matrix, d int) error {
	if !check.Matrix(g) {
		return check.Invalid("G must be (d,d) with d = number of columns of A")
	}
	if r, c := g.Dims(); r != d || c != d {
		return check.Invalid("G must be (d,d) with d = number of columns of A")
	}
	return nil
}

// solveStacked computes the minimum-norm least-squares solution of
// [a; g]x = [b; 0] from the SVD of the stacked matrix. g may be nil.
func solveStacked(a, g, b mat.Matrix) (*LstsqResult, error) {
	k, d := a.Dims()
	_, r := b.Dims()
	lhs, rhs := a, b
	if g != nil {
		stacked := mat.NewDense(k+d, d, nil)
		stacked.Slice(0, k, 0, d).(*mat.Dense).Copy(a)
		stacked.Slice(k, k+d, 0, d).(*mat.Dense).Copy(g)
		padded := mat.NewDense(k+d, r, nil)
		padded.Slice(0, k, 0, r).(*mat.Dense).Copy(b)
		lhs, rhs = stacked, padded
	}
	rows, _ := lhs.Dims()

	var f mat.SVD
	if ok := f.Factorize(lhs, mat.SVDThin); !ok {
		return nil, check.Numerical("least-squares factorization did not converge")
	}
	s := f.Values(nil)
	var u, v mat.Dense
	f.UTo(&u)
	f.VTo(&v)

	// Singular values at or below eps*s[0] are treated as zero.
	rcond := math.Nextafter(1, 2) - 1
	rank := 0
	for _, sv := range s {
		if sv > rcond*s[0] {
			rank++
		}
	}

	x := mat.NewDense(d, r, nil)
	if rank > 0 {
		// x = V_k diag(1/s_k) U_k^T b
		var c mat.Dense
		c.Mul(u.Slice(0, rows, 0, rank).T(), rhs)
		for i := range rank {
			row := c.RawRowView(i)
			for j := range row {
				row[j] /= s[i]
			}
		}
		x.Mul(v.Slice(0, d, 0, rank), &c)
	}

	var fit mat.Dense
	fit.Mul(lhs, x)
	fit.Sub(&fit, rhs)
	residuals := make([]float64, r)
	for j := range r {
		col := mat.Col(nil, j, &fit)
		for _, e := range col {
			residuals[j] += e * e
		}
	}
	return &LstsqResult{X: x, Residuals: residuals, Rank: rank, SingularValues: s}, nil
}
