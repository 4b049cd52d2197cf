package hwdls

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// jacobiMaxSweeps bounds the one-sided Jacobi iteration. Each sweep
// visits every column pair once; convergence in practice takes a small
// number of sweeps for the modest matrix sizes (joint counts) this
// solver targets.
const jacobiMaxSweeps = 60

// jacobiTol is the relative off-diagonal tolerance at which a column
// pair is considered already orthogonal and is skipped.
const jacobiTol = 1e-14

// factorizeSVDKDL computes the thin SVD of a with one-sided Jacobi
// rotations (Hestenes' method): columns of a working copy of a are
// rotated pairwise until they are mutually orthogonal, at which point
// their norms are the singular values and their normalized directions
// are the left singular vectors; the accumulated rotations are the
// right singular vectors. This is the legacy, dependency-free backend
// named after KDL's Householder-based svd_eigen_HH in the original
// solver; one-sided Jacobi is the classical alternative to a
// Householder bidiagonalization and needs no LAPACK call.
//
// The algorithm requires at least as many rows as columns. When a has
// fewer rows than columns, it is applied to aᵀ instead and the U/V
// results are swapped.
func factorizeSVDKDL(a *mat.Dense) (svdResult, *Error) {
	m, n := a.Dims()
	if m >= n {
		u, v, s := jacobiSVDTall(a)
		return svdResult{u: u, v: v, s: s}, nil
	}
	u, v, s := jacobiSVDTall(mat.DenseCopyOf(a.T()))
	return svdResult{u: v, v: u, s: s}, nil
}

// jacobiSVDTall computes the thin SVD of an m×n matrix w with m >= n,
// returning U (m×n), V (n×n), and the n singular values in descending
// order.
func jacobiSVDTall(w *mat.Dense) (u, v *mat.Dense, s []float64) {
	m, n := w.Dims()
	work := mat.DenseCopyOf(w)
	vAcc := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		vAcc.Set(i, i, 1)
	}

	for sweep := 0; sweep < jacobiMaxSweeps; sweep++ {
		offDiag := 0.0
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				alpha, beta, gamma := 0.0, 0.0, 0.0
				for i := 0; i < m; i++ {
					wp, wq := work.At(i, p), work.At(i, q)
					alpha += wp * wp
					beta += wq * wq
					gamma += wp * wq
				}
				offDiag += gamma * gamma
				if gamma == 0 || gamma*gamma < jacobiTol*jacobiTol*alpha*beta {
					continue
				}
				rotateColumnsJacobi(work, vAcc, p, q, alpha, beta, gamma)
			}
		}
		if offDiag < jacobiTol*jacobiTol {
			break
		}
	}

	sigma := make([]float64, n)
	for j := 0; j < n; j++ {
		sum := 0.0
		for i := 0; i < m; i++ {
			v := work.At(i, j)
			sum += v * v
		}
		sigma[j] = math.Sqrt(sum)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := 0; i < n; i++ {
		max := i
		for j := i + 1; j < n; j++ {
			if sigma[order[j]] > sigma[order[max]] {
				max = j
			}
		}
		order[i], order[max] = order[max], order[i]
	}

	uOut := mat.NewDense(m, n, nil)
	vOut := mat.NewDense(n, n, nil)
	sOut := make([]float64, n)
	for j, src := range order {
		sOut[j] = sigma[src]
		for i := 0; i < n; i++ {
			vOut.Set(i, j, vAcc.At(i, src))
		}
		if sigma[src] > 0 {
			for i := 0; i < m; i++ {
				uOut.Set(i, j, work.At(i, src)/sigma[src])
			}
		}
	}
	return uOut, vOut, sOut
}

// rotateColumnsJacobi applies the Jacobi rotation that annihilates the
// cross term between columns p and q of work, given the precomputed
// inner products alpha = <w_p,w_p>, beta = <w_q,w_q>, gamma = <w_p,w_q>.
// The same rotation is accumulated into v so it can later be read off
// as a right singular vector basis.
func rotateColumnsJacobi(work, v *mat.Dense, p, q int, alpha, beta, gamma float64) {
	zeta := (beta - alpha) / (2 * gamma)
	t := 1 / (math.Abs(zeta) + math.Sqrt(1+zeta*zeta))
	if zeta < 0 {
		t = -t
	}
	c := 1 / math.Sqrt(1+t*t)
	s := c * t

	m, _ := work.Dims()
	for i := 0; i < m; i++ {
		wp, wq := work.At(i, p), work.At(i, q)
		work.Set(i, p, c*wp-s*wq)
		work.Set(i, q, s*wp+c*wq)
	}
	n, _ := v.Dims()
	for i := 0; i < n; i++ {
		vp, vq := v.At(i, p), v.At(i, q)
		v.Set(i, p, c*vp-s*vq)
		v.Set(i, q, s*vp+c*vq)
	}
}
