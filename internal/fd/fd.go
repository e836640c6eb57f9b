// Package fd estimates time derivatives of snapshot matrices with finite
// differences taken along the columns.
package fd

import (
	"math"

	"github.com/yyyoichi/opinf/internal/check"
	"gonum.org/v1/gonum/mat"
)

// stencil holds a uniform-grid scheme: a central rule for the interior and a
// one-sided forward rule for the boundary. The backward rule is the negated
// forward rule applied to the reversed trailing window.
type stencil struct {
	offsets  []int
	central  []float64
	forward  []float64
	denom    float64
	boundary int
}

// See https://en.wikipedia.org/wiki/Finite_difference_coefficient.
var stencils = map[int]stencil{
	2: {
		offsets:  []int{-1, 1},
		central:  []float64{-1, 1},
		forward:  []float64{-3, 4, -1},
		denom:    2,
		boundary: 1,
	},
	4: {
		offsets:  []int{-2, -1, 1, 2},
		central:  []float64{1, -8, 8, -1},
		forward:  []float64{-25, 48, -36, 16, -3},
		denom:    12,
		boundary: 2,
	},
	6: {
		offsets:  []int{-3, -2, -1, 1, 2, 3},
		central:  []float64{-1, 9, -45, 45, -9, 1},
		forward:  []float64{-147, 360, -450, 400, -225, 72, -10},
		denom:    60,
		boundary: 3,
	},
}

// Uniform approximates dX/dt for snapshots spaced dt apart in time.
func Uniform(x mat.Matrix, dt float64, order int) (*mat.Dense, error) {
	if !check.Matrix(x) {
		return nil, check.Invalid("data X must be two-dimensional")
	}
	if dt == 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, check.Invalid("time step dt must be a finite nonzero scalar")
	}
	st, ok := stencils[order]
	if !ok {
		return nil, check.Invalid("invalid order '%d'; valid options: {2, 4, 6}", order)
	}
	n, k := x.Dims()
	if k < len(st.forward) {
		return nil, check.Invalid("order %d requires at least %d snapshots, got %d", order, len(st.forward), k)
	}

	src := mat.DenseCopyOf(x)
	dst := mat.NewDense(n, k, nil)
	scale := st.denom * dt
	for i := range n {
		y := src.RawRowView(i)
		out := dst.RawRowView(i)
		for j := st.boundary; j < k-st.boundary; j++ {
			var sum float64
			for c, o := range st.offsets {
				sum += st.central[c] * y[j+o]
			}
			out[j] = sum / scale
		}
		for j := range st.boundary {
			var fwd, bwd float64
			for c, w := range st.forward {
				fwd += w * y[j+c]
				bwd += w * y[k-1-j-c]
			}
			out[j] = fwd / scale
			out[k-1-j] = -bwd / scale
		}
	}
	return dst, nil
}
