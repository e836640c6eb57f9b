package opinf

import (
	"sort"

	"github.com/yyyoichi/opinf/internal/chart"
	"github.com/yyyoichi/opinf/internal/check"
	"github.com/yyyoichi/opinf/internal/svd"
	"gonum.org/v1/gonum/mat"
)

// SVDVals returns the singular values of X in descending order.
func SVDVals(x mat.Matrix) ([]float64, error) {
	if !check.Matrix(x) {
		return nil, check.Invalid("data X must be two-dimensional")
	}
	return svd.Values(x)
}

// SignificantSVDVals counts, for each cutoff in eps, the singular values of X
// strictly greater than it.
func SignificantSVDVals(x mat.Matrix, eps []float64, opts ...Option) ([]int, error) {
	c, s, err := prepareRank(x, eps, opts)
	if err != nil {
		return nil, err
	}
	ranks := make([]int, len(eps))
	for i, ep := range eps {
		for _, v := range s {
			if v > ep {
				ranks[i]++
			}
		}
	}
	c.logger.Debug().Floats64("eps", eps).Ints("ranks", ranks).Msg("significant singular values")

	c.render(chart.Curve{
		Title:  "Singular values",
		XLabel: "Singular value index j",
		YLabel: "Singular value",
		Name:   "sigma_j",
		X:      indices(1, len(s)),
		Y:      s,
		Marks:  marks(ranks, eps, s),
		LogY:   true,
	})
	return ranks, nil
}

// SignificantRank is SignificantSVDVals for a single cutoff.
func SignificantRank(x mat.Matrix, eps float64, opts ...Option) (int, error) {
	return single(SignificantSVDVals(x, []float64{eps}, opts...))
}

// EnergyCapture returns, for each threshold, the number of singular values
// needed for the cumulative energy
//
//	energy_j = sum(sigma[:j]^2) / sum(sigma^2)
//
// to reach the threshold. Ranks never exceed min(n, k).
func EnergyCapture(x mat.Matrix, thresh []float64, opts ...Option) ([]int, error) {
	c, s, err := prepareRank(x, thresh, opts)
	if err != nil {
		return nil, err
	}
	energy := make([]float64, len(s))
	var sum float64
	for i, v := range s {
		sum += v * v
		energy[i] = sum
	}
	if sum == 0 {
		return nil, check.Invalid("data X has zero energy")
	}
	for i := range energy {
		energy[i] /= sum
	}

	ranks := make([]int, len(thresh))
	for i, th := range thresh {
		// first index whose cumulative energy meets the threshold, 1-based
		ranks[i] = min(sort.SearchFloat64s(energy, th)+1, len(s))
	}
	c.logger.Debug().Floats64("thresh", thresh).Ints("ranks", ranks).Msg("energy capture")

	c.render(chart.Curve{
		Title:  "Cumulative energy",
		XLabel: "Singular value index",
		YLabel: "Cumulative energy",
		Name:   "energy_j",
		X:      indices(1, len(s)),
		Y:      energy,
		Marks:  marks(ranks, thresh, energy),
		LogY:   true,
	})
	return ranks, nil
}

// EnergyRank is EnergyCapture for a single threshold.
func EnergyRank(x mat.Matrix, thresh float64, opts ...Option) (int, error) {
	return single(EnergyCapture(x, []float64{thresh}, opts...))
}

// ProjectionError returns ||X - Vr Vr^T X|| / ||X||, the relative error of
// projecting X onto the range of Vr. The norm is Frobenius, which for a
// single n x 1 snapshot is the Euclidean norm.
func ProjectionError(x, vr mat.Matrix) (float64, error) {
	if !check.Matrix(x) {
		return 0, check.Invalid("data X must be one- or two-dimensional")
	}
	if !check.Matrix(vr) {
		return 0, check.Invalid("basis Vr must be two-dimensional")
	}
	n, _ := x.Dims()
	if vn, _ := vr.Dims(); vn != n {
		return 0, check.Mismatch("X and Vr not aligned, first dimension %d != %d", n, vn)
	}
	norm := mat.Norm(x, 2)
	if norm == 0 {
		return 0, check.Invalid("data X must be nonzero")
	}
	var coef, residual mat.Dense
	coef.Mul(vr.T(), x)
	residual.Mul(vr, &coef)
	residual.Sub(x, &residual)
	return mat.Norm(&residual, 2) / norm, nil
}

// MinimalProjectionError returns, for each cutoff in eps, the smallest POD
// rank whose Frobenius projection error is at most the cutoff. Ranks up to
// WithRMax (default min(n, k)) are examined; a cutoff never met yields rmax.
// The basis is computed once with the configured mode.
func MinimalProjectionError(x mat.Matrix, eps []float64, opts ...Option) ([]int, error) {
	if !check.Matrix(x) {
		return nil, check.Invalid("data X must be two-dimensional")
	}
	if len(eps) == 0 {
		return nil, check.Invalid("at least one cutoff value is required")
	}
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	n, k := x.Dims()
	rmax := min(n, k)
	if c.rmax > 0 {
		rmax = min(rmax, c.rmax)
	}
	norm := mat.Norm(x, 2)
	if norm == 0 {
		return nil, check.Invalid("data X must be nonzero")
	}
	v, _, err := podBasis(x, rmax, c)
	if err != nil {
		return nil, err
	}

	// Residual of the rank-r projection, downdated one basis vector at a time.
	var coef mat.Dense
	coef.Mul(v.T(), x)
	residual := mat.DenseCopyOf(x)
	errs := make([]float64, rmax-1)
	for r := 1; r < rmax; r++ {
		residual.RankOne(residual, -1, v.ColView(r-1), coef.RowView(r-1))
		errs[r-1] = mat.Norm(residual, 2) / norm
	}

	ranks := make([]int, len(eps))
	for i, ep := range eps {
		for _, e := range errs {
			if e > ep {
				ranks[i]++
			}
		}
		ranks[i]++
	}
	c.logger.Debug().Int("rmax", rmax).Floats64("eps", eps).Ints("ranks", ranks).Msg("minimal projection error")

	ms := make([]chart.Mark, len(ranks))
	for i, r := range ranks {
		ms[i] = chart.Mark{Rank: r, Threshold: eps[i], Top: eps[i]}
	}
	c.render(chart.Curve{
		Title:  "Projection error",
		XLabel: "POD basis rank r",
		YLabel: "Projection error",
		Name:   "error_r",
		X:      indices(1, rmax-1),
		Y:      errs,
		Marks:  ms,
		LogY:   true,
	})
	return ranks, nil
}

// MinimalProjectionRank is MinimalProjectionError for a single cutoff.
func MinimalProjectionRank(x mat.Matrix, eps float64, opts ...Option) (int, error) {
	return single(MinimalProjectionError(x, []float64{eps}, opts...))
}

func prepareRank(x mat.Matrix, thresholds []float64, opts []Option) (*config, []float64, error) {
	if !check.Matrix(x) {
		return nil, nil, check.Invalid("data X must be two-dimensional")
	}
	if len(thresholds) == 0 {
		return nil, nil, check.Invalid("at least one threshold is required")
	}
	c, err := newConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	s, err := svd.Values(x)
	if err != nil {
		return nil, nil, err
	}
	return c, s, nil
}

func (c *config) render(curve chart.Curve) {
	if c.plot == nil {
		return
	}
	if err := chart.Render(c.plot, curve, c.plotFormat); err != nil {
		c.logger.Warn().Err(err).Str("chart", curve.Title).Msg("diagnostic chart not rendered")
	}
}

// marks pairs each rank with its threshold; the rank marker ends on the
// curve value at that rank.
func marks(ranks []int, thresholds, curve []float64) []chart.Mark {
	ms := make([]chart.Mark, len(ranks))
	for i, r := range ranks {
		top := thresholds[i]
		if r > 0 {
			top = curve[r-1]
		}
		ms[i] = chart.Mark{Rank: r, Threshold: thresholds[i], Top: top}
	}
	return ms
}

func indices(from, count int) []float64 {
	xs := make([]float64, count)
	for i := range xs {
		xs[i] = float64(from + i)
	}
	return xs
}

func single(ranks []int, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	return ranks[0], nil
}
