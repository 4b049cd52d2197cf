package hwdls

import "gonum.org/v1/gonum/mat"

// priorityLevel owns the matrices and scratch buffers sized to one
// priority level: ny×nx for the task matrix and its weighted/projected
// forms, nx×ny for the two pseudo-inverses. Every buffer is allocated
// once by (*Solver).Configure and overwritten in place on every Solve;
// nothing is read before being written within a single solve.
type priorityLevel struct {
	ny int

	taskWeight weightFactor

	aProj       *mat.Dense // ny x nx: A_p projected onto the running nullspace
	rowWeighted *mat.Dense // ny x nx: Wy^(1/2) * aProj, scratch before joint weighting
	aProjW      *mat.Dense // ny x nx: Wy^(1/2) * aProj * Wq^(-1/2)
	u           *mat.Dense // ny x nx: left singular vectors, zero-padded past min(nx,ny)
	utWy        *mat.Dense // nx x ny: U^T * Wy^(1/2) staging

	aProjInvWLS  *mat.Dense // nx x ny: undamped weighted pseudo-inverse (nullspace projection only)
	aProjInvWDLS *mat.Dense // nx x ny: damped weighted pseudo-inverse (used for the x update)

	yComp *mat.VecDense // length ny: y_p compensated for already-committed motion
	yPred *mat.VecDense // length ny: scratch for A_p * x

	ySol *mat.VecDense // length ny: debug-only scratch for A_p * x against the final x
	aatw *mat.Dense    // ny x ny: debug-only scratch for A_proj_w * A_proj_w^T
	diff *mat.VecDense // length ny: debug-only scratch for y_des - y_solution

	debug PriorityDebug
}

func newPriorityLevel(ny, nx, priority int) *priorityLevel {
	return &priorityLevel{
		ny:           ny,
		taskWeight:   identityWeightFactor(ny),
		aProj:        mat.NewDense(ny, nx, nil),
		rowWeighted:  mat.NewDense(ny, nx, nil),
		aProjW:       mat.NewDense(ny, nx, nil),
		u:            mat.NewDense(ny, nx, nil),
		utWy:         mat.NewDense(nx, ny, nil),
		aProjInvWLS:  mat.NewDense(nx, ny, nil),
		aProjInvWDLS: mat.NewDense(nx, ny, nil),
		yComp:        mat.NewVecDense(ny, nil),
		yPred:        mat.NewVecDense(ny, nil),
		ySol:         mat.NewVecDense(ny, nil),
		aatw:         mat.NewDense(ny, ny, nil),
		diff:         mat.NewVecDense(ny, nil),
		debug:        PriorityDebug{Priority: priority, SingularVals: make([]float64, nx)},
	}
}
