package opinf

import (
	"github.com/yyyoichi/opinf/internal/check"
	"github.com/yyyoichi/opinf/internal/fd"
	"gonum.org/v1/gonum/mat"
)

// XdotUniform approximates the time derivative of snapshots spaced dt apart.
// Column j of X is the state at time j*dt. order is 2, 4 or 6; interior
// columns use central differences and the leading and trailing order/2
// columns use one-sided stencils of the same order.
func XdotUniform(x mat.Matrix, dt float64, order int) (*mat.Dense, error) {
	return fd.Uniform(x, dt, order)
}

// XdotNonuniform approximates the time derivative of snapshots taken at the
// strictly monotone times t with a second-order scheme.
func XdotNonuniform(x mat.Matrix, t []float64) (*mat.Dense, error) {
	return fd.Nonuniform(x, t)
}

type schemeKind int

const (
	schemeNone schemeKind = iota
	schemeUniform
	schemeTimes
)

// Scheme selects how Xdot estimates derivatives. Build one with UniformStep
// or TimeVector; the zero value is rejected.
type Scheme struct {
	kind  schemeKind
	dt    float64
	order int
	t     []float64
}

// UniformStep selects XdotUniform with time step dt. An order of 0 means 2.
func UniformStep(dt float64, order int) Scheme {
	return Scheme{kind: schemeUniform, dt: dt, order: order}
}

// TimeVector selects XdotNonuniform with snapshot times t.
func TimeVector(t []float64) Scheme {
	return Scheme{kind: schemeTimes, t: t}
}

// Xdot approximates the time derivative of X with the estimator chosen by s.
func Xdot(x mat.Matrix, s Scheme) (*mat.Dense, error) {
	switch s.kind {
	case schemeUniform:
		if s.dt == 0 && s.order != 0 {
			return nil, check.Invalid("order requires time step dt")
		}
		order := s.order
		if order == 0 {
			order = 2
		}
		return XdotUniform(x, s.dt, order)
	case schemeTimes:
		return XdotNonuniform(x, s.t)
	}
	return nil, check.Invalid("at least one other argument required (dt or t)")
}
