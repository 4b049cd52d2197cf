package hwdls

import "math"

// selectDamping computes the Maciejewski-Klein (1988) damping factor for
// a priority level given the smallest singular value sMin that
// participates at this level (the first min(nx, ny) entries of Σ) and
// the configured norm bound normMax.
//
// With τ = (1/normMax)/2 and τ2 = 1/normMax:
//   - sMin <= τ:  damping = τ  (maximum damping near singularity)
//   - sMin >= τ2: damping = 0  (no damping when well-conditioned)
//   - otherwise:  damping = sqrt(sMin * (τ2 - sMin)), a smooth ramp
//     between the two regimes.
func selectDamping(sMin, normMax float64) float64 {
	tau := (1 / normMax) / 2
	tau2 := 1 / normMax
	switch {
	case sMin <= tau:
		return tau
	case sMin >= tau2:
		return 0
	default:
		return math.Sqrt(sMin * (tau2 - sMin))
	}
}
