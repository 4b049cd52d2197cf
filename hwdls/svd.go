package hwdls

import "gonum.org/v1/gonum/mat"

// SVDMethod selects the backend used to factorize the weighted,
// projected task matrix at each priority level. Both backends produce
// results that agree up to the sign convention of individual U/V column
// pairs; every downstream formula in this package multiplies a U column
// and a V column symmetrically through the same singular value, so the
// sign convention never affects the solution.
type SVDMethod int

const (
	// SVDEigen uses gonum's LAPACK-backed mat.SVD (Golub-Kahan with
	// divide-and-conquer/QR iteration, depending on the linked LAPACK
	// implementation).
	SVDEigen SVDMethod = iota
	// SVDKDL uses a native one-sided Jacobi rotation SVD, in the
	// tradition of KDL's Householder-based svd_eigen_HH: a legacy,
	// dependency-free backend that trades some speed on large matrices
	// for a self-contained implementation.
	SVDKDL
)

func (m SVDMethod) String() string {
	switch m {
	case SVDEigen:
		return "svd_eigen"
	case SVDKDL:
		return "svd_kdl"
	default:
		return "invalid"
	}
}

// svdResult holds the thin factorization A = U·Σ·Vᵀ of an m×n matrix:
// U is m×ns, V is n×ns, s has length ns, where ns = min(m,n). Only the
// first ns columns of U and V ever carry a nonzero singular value, so
// the thin form carries everything the cascade's zero-padded Σ⁺ can
// ever select; columns beyond ns are multiplied by a zero Σ⁺ entry
// wherever they would appear in a full decomposition and are omitted
// here rather than padded with arbitrary data.
type svdResult struct {
	u *mat.Dense
	v *mat.Dense
	s []float64
}

// factorizeSVD dispatches to the backend selected by method.
func factorizeSVD(method SVDMethod, a *mat.Dense) (svdResult, *Error) {
	switch method {
	case SVDEigen:
		return factorizeSVDEigen(a)
	case SVDKDL:
		return factorizeSVDKDL(a)
	default:
		return svdResult{}, &Error{Kind: ErrInvalidSVDMethod, Msg: "unrecognized SVD method"}
	}
}

// factorizeSVDEigen computes the thin SVD of a via gonum's mat.SVD.
func factorizeSVDEigen(a *mat.Dense) (svdResult, *Error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return svdResult{}, &Error{Kind: ErrInvalidShape, Msg: "SVD factorization failed to converge"}
	}
	m, n := a.Dims()
	ns := min(m, n)
	s := svd.Values(make([]float64, ns))
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	return svdResult{u: &u, v: &v, s: s}, nil
}
