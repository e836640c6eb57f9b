package fd

import (
	"github.com/yyyoichi/opinf/internal/check"
	"gonum.org/v1/gonum/mat"
)

// Nonuniform approximates dX/dt with a second-order scheme that accounts for
// irregular spacing of the times t. Interior points use the three-point
// weighted central rule and both edges use second-order one-sided rules.
func Nonuniform(x mat.Matrix, t []float64) (*mat.Dense, error) {
	if !check.Matrix(x) {
		return nil, check.Invalid("data X must be two-dimensional")
	}
	if len(t) == 0 {
		return nil, check.Invalid("time t must be one-dimensional")
	}
	n, k := x.Dims()
	if k != len(t) {
		return nil, check.Mismatch("data X not aligned with time t")
	}
	if k < 3 {
		return nil, check.Invalid("at least 3 snapshots are required, got %d", k)
	}
	// t may run in either direction.
	sign := t[1] - t[0]
	for j := 1; j < k; j++ {
		if d := t[j] - t[j-1]; !(d*sign > 0) {
			return nil, check.Invalid("time t must be strictly monotone (t[%d]=%g, t[%d]=%g)", j-1, t[j-1], j, t[j])
		}
	}

	// weights[j] holds the coefficients of y[j-1], y[j], y[j+1] (shifted at
	// the edges to y[0..2] and y[k-3..k-1]).
	weights := make([][3]float64, k)
	for j := 1; j < k-1; j++ {
		hs, hd := t[j]-t[j-1], t[j+1]-t[j]
		weights[j] = [3]float64{
			-hd / (hs * (hd + hs)),
			(hd - hs) / (hd * hs),
			hs / (hd * (hd + hs)),
		}
	}
	dx1, dx2 := t[1]-t[0], t[2]-t[1]
	weights[0] = [3]float64{
		-(2*dx1 + dx2) / (dx1 * (dx1 + dx2)),
		(dx1 + dx2) / (dx1 * dx2),
		-dx1 / (dx2 * (dx1 + dx2)),
	}
	dx1, dx2 = t[k-2]-t[k-3], t[k-1]-t[k-2]
	weights[k-1] = [3]float64{
		dx2 / (dx1 * (dx1 + dx2)),
		-(dx2 + dx1) / (dx1 * dx2),
		(2*dx2 + dx1) / (dx2 * (dx1 + dx2)),
	}

	src := mat.DenseCopyOf(x)
	dst := mat.NewDense(n, k, nil)
	for i := range n {
		y := src.RawRowView(i)
		out := dst.RawRowView(i)
		for j := range k {
			lo := min(max(j-1, 0), k-3)
			w := weights[j]
			out[j] = w[0]*y[lo] + w[1]*y[lo+1] + w[2]*y[lo+2]
		}
	}
	return dst, nil
}
