package svd

import (
	"github.com/yyyoichi/opinf/internal/check"
	"gonum.org/v1/gonum/mat"
)

var _ Solver = Simple{}

// Simple computes the thin dense SVD and truncates it.
type Simple struct{}

func (Simple) Compute(a mat.Matrix, r int) (*mat.Dense, []float64, error) {
	if err := validRank(a, r); err != nil {
		return nil, nil, err
	}
	var result mat.SVD
	if ok := result.Factorize(a, mat.SVDThinU); !ok {
		return nil, nil, check.Numerical("cannot factorize")
	}
	s := result.Values(nil)

	var u mat.Dense
	result.UTo(&u)
	m, _ := u.Dims()

	vr := mat.DenseCopyOf(u.Slice(0, m, 0, r))
	return vr, s[:r:r], nil
}
