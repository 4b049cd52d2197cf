package hwdls

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// PriorityDebug captures the per-level telemetry of the most recent
// Solve call, when (*Solver).SetComputeDebug(true) is in effect. It is
// overwritten in place every Solve; callers that need history across
// calls must copy it themselves.
type PriorityDebug struct {
	// Priority is this level's index in the configured cascade.
	Priority int

	// YDes is the reference task rate y_p passed to this level.
	YDes *mat.VecDense
	// YSolution is A_p * x evaluated against the final accumulated x.
	YSolution *mat.VecDense

	// SingularVals holds the nx-length, zero-padded singular value
	// vector of this level's weighted, projected task matrix.
	SingularVals []float64
	// Manipulability is sqrt(det(A_proj_w * A_proj_w^T)); small values
	// indicate a near-singular configuration at this level.
	Manipulability float64
	// SqrtErr is sqrt(||y_des - y_solution||).
	SqrtErr float64
	// Damping is the damping scalar selected for this level.
	Damping float64

	// ProjTime, WeightingTime, SVDTime, and ComputeInverseTime are the
	// four wall-clock segments of this level's solve step.
	ProjTime           time.Duration
	WeightingTime      time.Duration
	SVDTime            time.Duration
	ComputeInverseTime time.Duration
}

// manipulability returns sqrt(det(m)), clamping negative determinants
// (which only arise from numerical noise on a near-singular matrix) to
// zero rather than propagating NaN into telemetry.
func manipulability(m mat.Matrix) float64 {
	d := mat.Det(m)
	if d <= 0 {
		return 0
	}
	return math.Sqrt(d)
}

// sqrtErr returns sqrt(norm), the square-rooted task error reported in
// PriorityDebug.SqrtErr.
func sqrtErr(norm float64) float64 {
	if norm <= 0 {
		return 0
	}
	return math.Sqrt(norm)
}
