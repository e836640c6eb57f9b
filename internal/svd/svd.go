package svd

import (
	"sort"

	"github.com/yyyoichi/opinf/internal/check"
	"gonum.org/v1/gonum/mat"
)

// Solver computes the r leading left singular vectors of a matrix and the
// matching singular values. Implementations return columns ordered by
// descending singular value.
type Solver interface {
	Compute(a mat.Matrix, r int) (u *mat.Dense, s []float64, err error)
}

// Values returns every singular value of a in descending order.
func Values(a mat.Matrix) ([]float64, error) {
	var result mat.SVD
	if ok := result.Factorize(a, mat.SVDNone); !ok {
		return nil, check.Numerical("cannot factorize")
	}
	return result.Values(nil), nil
}

func validRank(a mat.Matrix, r int) error {
	m, n := a.Dims()
	if r < 1 || r > min(m, n) {
		return check.Invalid("rank r=%d outside [1, %d]", r, min(m, n))
	}
	return nil
}

// sortDescending reorders the columns of u so that s is descending.
// Backends that produce ascending or unordered triplets are normalized here.
func sortDescending(u *mat.Dense, s []float64) {
	idx := make([]int, len(s))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return s[idx[i]] > s[idx[j]] })

	sorted := true
	for i, j := range idx {
		if i != j {
			sorted = false
			break
		}
	}
	if sorted {
		return
	}

	m, _ := u.Dims()
	tmp := mat.NewDense(m, len(s), nil)
	vals := make([]float64, len(s))
	for to, from := range idx {
		tmp.SetCol(to, mat.Col(nil, from, u))
		vals[to] = s[from]
	}
	u.Copy(tmp)
	copy(s, vals)
}

// flipSigns makes the entry of largest magnitude in each column positive.
func flipSigns(u *mat.Dense) {
	m, n := u.Dims()
	for j := range n {
		var best float64
		for i := range m {
			if v := u.At(i, j); abs(v) > abs(best) {
				best = v
			}
		}
		if best < 0 {
			col := u.ColView(j).(*mat.VecDense)
			col.ScaleVec(-1, col)
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
