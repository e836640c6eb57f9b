package opinf

import (
	"github.com/yyyoichi/opinf/internal/check"
	"gonum.org/v1/gonum/mat"
)

// KronCompactVec returns the unique entries of x⊗x: a vector of length
// n(n+1)/2 whose block i is x_i*[x_0, ..., x_i].
func KronCompactVec(x mat.Vector) (*mat.VecDense, error) {
	if !check.Vector(x) {
		return nil, check.Invalid("x must be one- or two-dimensional")
	}
	n := x.Len()
	out := make([]float64, n*(n+1)/2)
	at := 0
	for i := range n {
		xi := x.AtVec(i)
		for j := 0; j <= i; j++ {
			out[at] = xi * x.AtVec(j)
			at++
		}
	}
	return mat.NewVecDense(len(out), out), nil
}

// KronCompact applies KronCompactVec to every column of X, returning an
// n(n+1)/2 x k matrix.
func KronCompact(x mat.Matrix) (*mat.Dense, error) {
	if !check.Matrix(x) {
		return nil, check.Invalid("x must be one- or two-dimensional")
	}
	n, k := x.Dims()
	src := mat.DenseCopyOf(x)
	out := mat.NewDense(n*(n+1)/2, k, nil)
	at := 0
	for i := range n {
		xi := src.RawRowView(i)
		for j := 0; j <= i; j++ {
			xj := src.RawRowView(j)
			row := out.RawRowView(at)
			for c := range row {
				row[c] = xi[c] * xj[c]
			}
			at++
		}
	}
	return out, nil
}

// KronColumnwiseVec returns the Kronecker product x⊗y, whose block i is x_i*y.
func KronColumnwiseVec(x, y mat.Vector) (*mat.VecDense, error) {
	if !check.Vector(x) || !check.Vector(y) {
		return nil, check.Invalid("x and y must be one- or two-dimensional")
	}
	n, m := x.Len(), y.Len()
	out := mat.NewVecDense(n*m, nil)
	for i := range n {
		block := out.SliceVec(i*m, (i+1)*m).(*mat.VecDense)
		block.ScaleVec(x.AtVec(i), y)
	}
	return out, nil
}

// KronColumnwise returns the column-wise Kronecker product of X (n x k) and
// Y (m x k): column j of the result is X[:,j]⊗Y[:,j], so row block i is
// X[i,:]*Y elementwise.
func KronColumnwise(x, y mat.Matrix) (*mat.Dense, error) {
	if !check.Matrix(x) || !check.Matrix(y) {
		return nil, check.Invalid("x and y must be one- or two-dimensional")
	}
	n, k := x.Dims()
	m, ky := y.Dims()
	if k != ky {
		return nil, check.Invalid("x and y must have the same number of columns")
	}
	xs, ys := mat.DenseCopyOf(x), mat.DenseCopyOf(y)
	out := mat.NewDense(n*m, k, nil)
	for i := range n {
		xi := xs.RawRowView(i)
		for l := range m {
			yl := ys.RawRowView(l)
			row := out.RawRowView(i*m + l)
			for c := range row {
				row[c] = xi[c] * yl[c]
			}
		}
	}
	return out, nil
}

// F2H converts the compact quadratic operator F (r x r(r+1)/2) into the full
// Kronecker operator H (r x r^2) with F·KronCompact(x) = H·(x⊗x) for every x.
// Each row of H, reshaped to r x r, is symmetric.
func F2H(f mat.Matrix) (*mat.Dense, error) {
	if !check.Matrix(f) {
		return nil, check.Invalid("F must be two-dimensional")
	}
	r, s := f.Dims()
	if s != r*(r+1)/2 {
		return nil, check.Invalid("invalid shape (r,s) = (%d, %d) with s != r(r+1)/2", r, s)
	}
	h := mat.NewDense(r, r*r, nil)
	for i := range r {
		at := 0
		for a := range r {
			for b := 0; b <= a; b++ {
				v := f.At(i, at)
				if a == b {
					h.Set(i, a*r+a, v)
				} else {
					h.Set(i, a*r+b, v/2)
					h.Set(i, b*r+a, v/2)
				}
				at++
			}
		}
	}
	return h, nil
}

// H2F is the inverse of F2H: it folds the full Kronecker operator H (r x r^2)
// into the compact operator F (r x r(r+1)/2). H need not be symmetric.
func H2F(h mat.Matrix) (*mat.Dense, error) {
	if !check.Matrix(h) {
		return nil, check.Invalid("H must be two-dimensional")
	}
	r, c := h.Dims()
	if c != r*r {
		return nil, check.Invalid("invalid shape (r,s) = (%d, %d) with s != r^2", r, c)
	}
	f := mat.NewDense(r, r*(r+1)/2, nil)
	for i := range r {
		at := 0
		for a := range r {
			for b := 0; b <= a; b++ {
				v := h.At(i, a*r+b)
				if a != b {
					v += h.At(i, b*r+a)
				}
				f.Set(i, at, v)
				at++
			}
		}
	}
	return f, nil
}
