package hwdls

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Solver implements the Hierarchical Weighted Damped Least-Squares
// cascade described in the package doc comment. A Solver moves through
// two lifecycle states, Unconfigured and Configured: Configure must
// succeed before SetJointWeights, SetTaskWeights, or Solve is valid.
// SetNormMax, SetEpsilon, SetSVDMethod, and SetComputeDebug may be called
// in either state, and their values survive Configure. A Solver is safe to
// reuse across an unbounded number of Solve calls once configured, but
// is not safe for concurrent use by multiple goroutines — callers that
// need concurrent solves should use one Solver per goroutine.
type Solver struct {
	nx         int
	configured bool

	levels []*priorityLevel

	jointWeight  weightFactor
	normMax      float64
	epsilon      float64
	svdMethod    SVDMethod
	computeDebug bool

	// cascade scratch, owned by the solver and reused every Solve.
	proj          *mat.Dense // nx x nx, running nullspace projector
	v             *mat.Dense // nx x nx, current level's right singular vectors
	sigma         []float64  // length nx, zero-padded singular values
	sigmaInv      []float64  // length nx, undamped Σ⁺ diagonal
	sigmaInvDamp  []float64  // length nx, damped Σ⁺ diagonal
	wqV           *mat.Dense // nx x nx, Wq^(-1/2) * V
	wqVSInv       *mat.Dense // nx x nx, Wq^(-1/2) * V * Σ⁺
	wqVDampedSInv *mat.Dense // nx x nx, Wq^(-1/2) * V * Σ⁺_damped
	contraction   *mat.Dense // nx x nx, A_proj_inv_wls * aProj staging for the projector update
	xUpdate       *mat.VecDense
}

// NewSolver returns an unconfigured Solver with the default damping
// bound (norm_max = 1), singular-value floor (epsilon = 1e-9), and SVD
// backend (SVDEigen). Call Configure before using it.
func NewSolver() *Solver {
	return &Solver{
		normMax:   1,
		epsilon:   1e-9,
		svdMethod: SVDEigen,
	}
}

// Configure sizes the solver for a cascade of len(nyPerPriority)
// priority levels, each with the given number of task rows, operating
// on nx joint variables. It allocates all scratch storage, resets every
// joint and task weight to identity, and clears any prior debug
// telemetry. Configure is idempotent and may be called again to
// reconfigure a Solver that was already in use; norm_max, epsilon, and
// the SVD method are preserved across a reconfigure.
func (s *Solver) Configure(nyPerPriority []int, nx int) error {
	if nx < 1 {
		return errShape("nx must be >= 1, got %d", nx)
	}
	if len(nyPerPriority) < 1 {
		return errShape("at least one priority level is required")
	}
	for i, ny := range nyPerPriority {
		if ny < 1 {
			return errShape("priority %d: ny must be >= 1, got %d", i, ny)
		}
	}

	if s.normMax == 0 {
		s.normMax = 1
	}
	if s.epsilon == 0 {
		s.epsilon = 1e-9
	}

	s.nx = nx
	s.levels = make([]*priorityLevel, len(nyPerPriority))
	for i, ny := range nyPerPriority {
		s.levels[i] = newPriorityLevel(ny, nx, i)
	}

	s.jointWeight = identityWeightFactor(nx)
	s.proj = identityDense(nx)
	s.v = mat.NewDense(nx, nx, nil)
	s.sigma = make([]float64, nx)
	s.sigmaInv = make([]float64, nx)
	s.sigmaInvDamp = make([]float64, nx)
	s.wqV = mat.NewDense(nx, nx, nil)
	s.wqVSInv = mat.NewDense(nx, nx, nil)
	s.wqVDampedSInv = mat.NewDense(nx, nx, nil)
	s.contraction = mat.NewDense(nx, nx, nil)
	s.xUpdate = mat.NewVecDense(nx, nil)

	s.configured = true
	return nil
}

func identityDense(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	resetIdentity(d)
	return d
}

// resetIdentity overwrites m in place with the identity matrix, without
// reallocating its backing storage.
func resetIdentity(m *mat.Dense) {
	m.Zero()
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		m.Set(i, i, 1)
	}
}

// SetJointWeights installs a new nx×nx symmetric positive-definite joint
// weight matrix W_q. A higher weight makes the corresponding joint move
// less. On error, the previously installed joint weight is unchanged.
func (s *Solver) SetJointWeights(w mat.Matrix) error {
	if !s.configured {
		return &Error{Kind: ErrUnconfigured, Msg: "SetJointWeights called before Configure"}
	}
	compiled, err := compileJointWeight(w, s.nx)
	if err != nil {
		return err
	}
	s.jointWeight = compiled
	return nil
}

// SetTaskWeights installs a new ny_p×ny_p symmetric positive-definite
// task weight matrix W_y for priority level p. On error, the previously
// installed task weight for that level is unchanged.
func (s *Solver) SetTaskWeights(w mat.Matrix, priority int) error {
	if !s.configured {
		return &Error{Kind: ErrUnconfigured, Msg: "SetTaskWeights called before Configure"}
	}
	if priority < 0 || priority >= len(s.levels) {
		return &Error{Kind: ErrInvalidPriority,
			Msg: "priority out of range for configured levels"}
	}
	lv := s.levels[priority]
	compiled, err := compileTaskWeight(w, lv.ny)
	if err != nil {
		return err
	}
	lv.taskWeight = compiled
	return nil
}

// SetNormMax sets the upper bound on the norm of the damped pseudo-
// inverse used to pick the per-level damping factor. v must be
// positive: a zero or negative value, which would divide by zero in the
// damping formula, is rejected with ErrInvalidShape and leaves the
// previous bound in place.
func (s *Solver) SetNormMax(v float64) error {
	if v <= 0 {
		return errShape("norm_max must be positive, got %g", v)
	}
	s.normMax = v
	return nil
}

// SetEpsilon sets the singular-value floor below which the undamped
// pseudo-inverse treats a singular value as exactly zero.
func (s *Solver) SetEpsilon(v float64) error {
	if v <= 0 {
		return errShape("epsilon must be positive, got %g", v)
	}
	s.epsilon = v
	return nil
}

// SetSVDMethod selects the SVD backend used on every subsequent Solve.
func (s *Solver) SetSVDMethod(method SVDMethod) error {
	if method != SVDEigen && method != SVDKDL {
		return &Error{Kind: ErrInvalidSVDMethod, Msg: "unrecognized SVD method"}
	}
	s.svdMethod = method
	return nil
}

// SetComputeDebug enables or disables per-level telemetry collection.
// Debug collection is off by default; enabling it adds a matrix product,
// a determinant, and a vector norm per level. The four wall-clock
// segments are timed on every Solve whether or not debug collection is
// enabled.
func (s *Solver) SetComputeDebug(enabled bool) {
	s.computeDebug = enabled
}

// PriorityDebug returns the per-level telemetry from the most recent
// Solve call. Until the first Solve with debug collection enabled, each
// entry holds only its Priority index and a zeroed SingularVals slice.
func (s *Solver) PriorityDebug() []PriorityDebug {
	out := make([]PriorityDebug, len(s.levels))
	for i, lv := range s.levels {
		out[i] = lv.debug
	}
	return out
}

// Solve computes the joint-space command x that satisfies, as closely
// as priority and conditioning allow, every level of A[p]*x = y[p]. x is
// resized and zeroed if its length does not match the configured nx.
// Solve validates all shapes before making any change to x: on a
// shape error x is left exactly as the caller passed it.
func (s *Solver) Solve(a []mat.Matrix, y []mat.Vector, x *mat.VecDense) error {
	if !s.configured {
		return &Error{Kind: ErrUnconfigured, Msg: "Solve called before Configure"}
	}
	if len(a) != len(s.levels) || len(y) != len(s.levels) {
		return &Error{Kind: ErrInvalidPriorityCount,
			Msg: "len(A) and len(y) must match the configured number of priority levels"}
	}
	for p, lv := range s.levels {
		ar, ac := a[p].Dims()
		if ar != lv.ny || ac != s.nx {
			return errShape("priority %d: A must be %d x %d, got %d x %d", p, lv.ny, s.nx, ar, ac)
		}
		if y[p].Len() != lv.ny {
			return errShape("priority %d: y must have length %d, got %d", p, lv.ny, y[p].Len())
		}
	}

	if x.Len() != s.nx {
		*x = *mat.NewVecDense(s.nx, nil)
	} else {
		x.Zero()
	}

	resetIdentity(s.proj)

	for p, lv := range s.levels {
		if err := s.solveLevel(lv, a[p], y[p], x); err != nil {
			return err
		}
	}

	if s.computeDebug {
		for p, lv := range s.levels {
			lv.ySol.MulVec(a[p], x)
			lv.debug.YSolution = lv.ySol
			lv.diff.SubVec(lv.debug.YDes, lv.debug.YSolution)
			lv.debug.SqrtErr = sqrtErr(mat.Norm(lv.diff, 2))
		}
	}
	return nil
}

// solveLevel runs steps 1-9 of the priority cascade for a single level,
// updating x and the running nullspace projector s.proj in place.
func (s *Solver) solveLevel(lv *priorityLevel, ap mat.Matrix, yp mat.Vector, x *mat.VecDense) *Error {
	start := time.Now()

	// Step 1: residual compensation.
	lv.yPred.MulVec(ap, x)
	lv.yComp.SubVec(yp, lv.yPred)

	// Step 2: nullspace projection.
	lv.aProj.Mul(ap, s.proj)

	projTime := time.Since(start)
	start = time.Now()

	// Step 3: weighting.
	applyWeightLeft(lv.rowWeighted, lv.taskWeight, lv.aProj)
	applyWeightRight(lv.aProjW, lv.rowWeighted, s.jointWeight)

	weightingTime := time.Since(start)
	start = time.Now()

	// Step 4: SVD.
	svd, svdErr := factorizeSVD(s.svdMethod, lv.aProjW)
	if svdErr != nil {
		return svdErr
	}
	ns := min(s.nx, lv.ny)

	for i := 0; i < s.nx; i++ {
		s.sigma[i] = 0
	}
	copy(s.sigma[:ns], svd.s)

	lv.u.Zero()
	for j := 0; j < ns; j++ {
		for i := 0; i < lv.ny; i++ {
			lv.u.Set(i, j, svd.u.At(i, j))
		}
	}
	s.v.Zero()
	for j := 0; j < ns; j++ {
		for i := 0; i < s.nx; i++ {
			s.v.Set(i, j, svd.v.At(i, j))
		}
	}

	svdTime := time.Since(start)
	start = time.Now()

	// Step 5: damping selection, following Maciejewski-Klein (1988).
	sMin := floats.Min(s.sigma[:ns])
	damping := selectDamping(sMin, s.normMax)

	// Step 6: inverse Σ assembly.
	for i := 0; i < s.nx; i++ {
		if i < ns {
			sv := s.sigma[i]
			s.sigmaInvDamp[i] = sv / (sv*sv + damping*damping)
		} else {
			s.sigmaInvDamp[i] = 0
		}
		if s.sigma[i] >= s.epsilon {
			s.sigmaInv[i] = 1 / s.sigma[i]
		} else {
			s.sigmaInv[i] = 0
		}
	}

	// Step 7: pseudo-inverse assembly.
	applyWeightLeft(s.wqV, s.jointWeight, s.v)
	scaleColumns(s.wqVSInv, s.wqV, s.sigmaInv)
	scaleColumns(s.wqVDampedSInv, s.wqV, s.sigmaInvDamp)

	applyWeightRight(lv.utWy, lv.u.T(), lv.taskWeight)
	lv.aProjInvWLS.Mul(s.wqVSInv, lv.utWy)
	lv.aProjInvWDLS.Mul(s.wqVDampedSInv, lv.utWy)

	// Step 8: solution update.
	s.xUpdate.MulVec(lv.aProjInvWDLS, lv.yComp)
	x.AddVec(x, s.xUpdate)

	// Step 9: projector contraction.
	s.contraction.Mul(lv.aProjInvWLS, lv.aProj)
	s.proj.Sub(s.proj, s.contraction)

	inverseTime := time.Since(start)

	if s.computeDebug {
		if lv.debug.YDes == nil {
			lv.debug.YDes = mat.NewVecDense(lv.ny, nil)
		}
		lv.debug.YDes.CopyVec(yp)
		copy(lv.debug.SingularVals, s.sigma)
		lv.aatw.Mul(lv.aProjW, lv.aProjW.T())
		lv.debug.Manipulability = manipulability(lv.aatw)
		lv.debug.Damping = damping
		lv.debug.ProjTime = projTime
		lv.debug.WeightingTime = weightingTime
		lv.debug.SVDTime = svdTime
		lv.debug.ComputeInverseTime = inverseTime
	}
	return nil
}
