// Package opinf provides the preprocessing core of operator inference for
// reduced-order models: POD bases, rank selection, re-projection, time
// derivative estimation, and the algebraic helpers used to fit reduced
// polynomial operators.
//
// Snapshot matrices are n x k with one snapshot per column.
package opinf

import (
	"github.com/yyyoichi/opinf/internal/check"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MeanShift computes the mean snapshot xbar and the shifted snapshots X - xbar,
// whose columns have zero mean.
func MeanShift(x mat.Matrix) (xbar *mat.VecDense, shifted *mat.Dense, err error) {
	if !check.Matrix(x) {
		return nil, nil, check.Invalid("data X must be two-dimensional")
	}
	n, k := x.Dims()
	xbar = mat.NewVecDense(n, nil)
	shifted = mat.DenseCopyOf(x)
	for i := range n {
		row := shifted.RawRowView(i)
		mean := stat.Mean(row, nil)
		xbar.SetVec(i, mean)
		for j := range k {
			row[j] -= mean
		}
	}
	return xbar, shifted, nil
}

// PODBasis computes the first r POD basis vectors of X, the r leading left
// singular vectors. Columns are ordered by descending singular value.
// X is used as given; center it with MeanShift first if needed.
func PODBasis(x mat.Matrix, r int, opts ...Option) (*mat.Dense, error) {
	vr, _, err := PODBasisValues(x, r, opts...)
	return vr, err
}

// PODBasisValues is PODBasis that also returns the r leading singular values.
func PODBasisValues(x mat.Matrix, r int, opts ...Option) (*mat.Dense, []float64, error) {
	if !check.Matrix(x) {
		return nil, nil, check.Invalid("data X must be two-dimensional")
	}
	c, err := newConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	return podBasis(x, r, c)
}

func podBasis(x mat.Matrix, r int, c *config) (*mat.Dense, []float64, error) {
	solver, err := c.solver()
	if err != nil {
		return nil, nil, err
	}
	n, k := x.Dims()
	vr, s, err := solver.Compute(x, r)
	if err != nil {
		return nil, nil, err
	}
	c.logger.Debug().
		Str("mode", c.mode.String()).
		Int("n", n).
		Int("k", k).
		Int("r", r).
		Float64("sigma_r", s[len(s)-1]).
		Msg("pod basis computed")
	return vr, s, nil
}
