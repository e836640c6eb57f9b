package opinf

import (
	"github.com/yyyoichi/opinf/internal/check"
	"gonum.org/v1/gonum/mat"
)

// Dynamics evaluates a full-order discrete map or vector field at state x
// with input u. u is nil when no inputs are used, a length-1 vector for
// scalar inputs, and the matching column for vector inputs.
// The result must have the same length as x.
type Dynamics func(x, u mat.Vector) mat.Vector

// Inputs holds the control inputs of a trajectory, one per step.
// The zero value means the dynamics take no input.
type Inputs struct {
	scalars []float64
	vectors mat.Matrix
}

// ScalarInputs supplies one scalar input per step.
func ScalarInputs(u []float64) Inputs {
	return Inputs{scalars: u}
}

// VectorInputs supplies one input vector per step, stored as the columns of U.
func VectorInputs(u mat.Matrix) Inputs {
	return Inputs{vectors: u}
}

func (in Inputs) len() int {
	switch {
	case in.vectors != nil:
		_, k := in.vectors.Dims()
		return k
	case in.scalars != nil:
		return len(in.scalars)
	}
	return -1
}

func (in Inputs) at(j int) mat.Vector {
	switch {
	case in.vectors != nil:
		col := mat.Col(nil, j, in.vectors)
		return mat.NewVecDense(len(col), col)
	case in.scalars != nil:
		return mat.NewVecDense(1, []float64{in.scalars[j]})
	}
	return nil
}

// require reports a mismatch when fewer than need inputs are available.
func (in Inputs) require(need int) error {
	if l := in.len(); l >= 0 && l < need {
		return check.Mismatch("%d inputs supplied, %d required", l, need)
	}
	return nil
}

// projector applies Vr Vr^T without forming the n x n matrix.
type projector struct {
	vr   mat.Matrix
	coef *mat.VecDense
}

func newProjector(vr mat.Matrix) *projector {
	_, r := vr.Dims()
	return &projector{vr: vr, coef: mat.NewVecDense(r, nil)}
}

func (p *projector) apply(dst *mat.VecDense, x mat.Vector) {
	p.coef.MulVec(p.vr.T(), x)
	dst.MulVec(p.vr, p.coef)
}

// ReprojectDiscrete samples the re-projected trajectory of the discrete
// system x_{j+1} = f(x_j, u_j):
//
//	x_0 = Vr Vr^T x0,  x_{j+1} = Vr Vr^T f(x_j, u_j),  j = 0..niters-2.
//
// The result is n x niters with one state per column.
func ReprojectDiscrete(f Dynamics, vr mat.Matrix, x0 mat.Vector, niters int, u Inputs) (*mat.Dense, error) {
	if f == nil {
		return nil, check.Invalid("dynamics f is nil")
	}
	if !check.Matrix(vr) {
		return nil, check.Invalid("basis Vr must be two-dimensional")
	}
	if !check.Vector(x0) {
		return nil, check.Invalid("initial condition x0 must be one-dimensional")
	}
	n, _ := vr.Dims()
	if x0.Len() != n {
		return nil, check.Mismatch("basis Vr and initial condition x0 not aligned")
	}
	if niters < 1 {
		return nil, check.Invalid("niters must be positive, got %d", niters)
	}
	if err := u.require(niters - 1); err != nil {
		return nil, err
	}

	p := newProjector(vr)
	out := mat.NewDense(n, niters, nil)
	state := mat.NewVecDense(n, nil)
	p.apply(state, x0)
	out.SetCol(0, state.RawVector().Data)
	for j := range niters - 1 {
		next := f(state, u.at(j))
		if next == nil || next.Len() != n {
			return nil, check.Mismatch("dynamics output at step %d does not have length %d", j, n)
		}
		// States handed to f are never overwritten.
		state = mat.NewVecDense(n, nil)
		p.apply(state, next)
		out.SetCol(j+1, state.RawVector().Data)
	}
	return out, nil
}

// ReprojectContinuous re-projects the trajectory X onto the range of Vr and
// evaluates the vector field there:
//
//	Xrp = Vr Vr^T X,  Xdot[:,j] = f(Xrp[:,j], u_j).
//
// Both results are n x k and aligned column for column.
func ReprojectContinuous(f Dynamics, vr mat.Matrix, x mat.Matrix, u Inputs) (xrp, xdot *mat.Dense, err error) {
	if f == nil {
		return nil, nil, check.Invalid("dynamics f is nil")
	}
	if !check.Matrix(vr) {
		return nil, nil, check.Invalid("basis Vr must be two-dimensional")
	}
	if !check.Matrix(x) {
		return nil, nil, check.Invalid("data X must be two-dimensional")
	}
	xn, k := x.Dims()
	n, _ := vr.Dims()
	if xn != n {
		return nil, nil, check.Mismatch("X and Vr not aligned, first dimension %d != %d", xn, n)
	}
	if err := u.require(k); err != nil {
		return nil, nil, err
	}

	var coef mat.Dense
	coef.Mul(vr.T(), x)
	xrp = mat.NewDense(n, k, nil)
	xrp.Mul(vr, &coef)

	xdot = mat.NewDense(n, k, nil)
	for j := range k {
		v := f(mat.VecDenseCopyOf(xrp.ColView(j)), u.at(j))
		if v == nil || v.Len() != n {
			return nil, nil, check.Mismatch("dynamics output at column %d does not have length %d", j, n)
		}
		xdot.SetCol(j, mat.Col(nil, 0, v))
	}
	return xrp, xdot, nil
}
