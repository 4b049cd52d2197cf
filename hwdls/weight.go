package hwdls

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// weightFactor is the compiled, ready-to-multiply form of a user-supplied
// symmetric positive-definite weight matrix. It implements the weighting
// compiler described in the design notes: the identity
//
//	minimize ‖Wy^(1/2) (A x − y)‖² s.t. x-weighting by Wq
//
// reduces to forming M = Wy^(1/2) · A · Wq^(-1/2) and taking the
// pseudo-inverse of M. The diagonal case stores the weight as a
// *mat.DiagDense, and applyWeightLeft/applyWeightRight scale rows or
// columns by its entries instead of forming a dense product; the dense case
// stores the Cholesky-derived factor directly as a *mat.Dense.
type weightFactor struct {
	diagonal bool
	diag     *mat.DiagDense
	dense    *mat.Dense
}

func identityWeightFactor(n int) weightFactor {
	data := make([]float64, n)
	for i := range data {
		data[i] = 1
	}
	return weightFactor{diagonal: true, diag: mat.NewDiagonal(n, data)}
}

// compileJointWeight validates and compiles a joint weight matrix W_q
// (nx×nx, SPD). The diagonal fast path stores sqrt(1/W_ii); the dense
// path Cholesky-factorizes W_q = L·Lᵀ and stores (Lᵀ)⁻¹.
func compileJointWeight(w mat.Matrix, nx int) (weightFactor, *Error) {
	r, c := w.Dims()
	if r != nx || c != nx {
		return weightFactor{}, errShape("joint weight must be %d x %d, got %d x %d", nx, nx, r, c)
	}

	if IsDiagonal(w) {
		data := make([]float64, nx)
		for i := 0; i < nx; i++ {
			v := w.At(i, i)
			if v == 0 {
				return weightFactor{}, &Error{Kind: ErrZeroJointWeight,
					Msg: "a zero joint weight would denote an infinitely movable joint"}
			}
			data[i] = math.Sqrt(1 / v)
		}
		return weightFactor{diagonal: true, diag: mat.NewDiagonal(nx, data)}, nil
	}

	lt, err := choleskyUpperFactor(w, nx)
	if err != nil {
		return weightFactor{}, err
	}
	var inv mat.Dense
	if err := inv.Inverse(lt); err != nil {
		return weightFactor{}, &Error{Kind: ErrNotPositiveDefinite, Msg: err.Error()}
	}
	return weightFactor{dense: &inv}, nil
}

// compileTaskWeight validates and compiles a task weight matrix W_y[p]
// (ny×ny, SPD). The diagonal fast path stores sqrt(W_ii); the dense path
// Cholesky-factorizes W_y = L·Lᵀ and stores Lᵀ.
func compileTaskWeight(w mat.Matrix, ny int) (weightFactor, *Error) {
	r, c := w.Dims()
	if r != ny || c != ny {
		return weightFactor{}, errShape("task weight must be %d x %d, got %d x %d", ny, ny, r, c)
	}

	if IsDiagonal(w) {
		data := make([]float64, ny)
		for i := 0; i < ny; i++ {
			data[i] = math.Sqrt(w.At(i, i))
		}
		return weightFactor{diagonal: true, diag: mat.NewDiagonal(ny, data)}, nil
	}

	lt, err := choleskyUpperFactor(w, ny)
	if err != nil {
		return weightFactor{}, err
	}
	return weightFactor{dense: mat.DenseCopyOf(lt)}, nil
}

// applyWeightLeft computes dst = w * src, where w is a compiled weight
// factor of size (rows of src)×(rows of src). The diagonal path scales
// each row of src by the corresponding diagonal entry; the dense path
// is a plain matrix product.
func applyWeightLeft(dst *mat.Dense, w weightFactor, src mat.Matrix) {
	r, c := src.Dims()
	if w.diagonal {
		for i := 0; i < r; i++ {
			wi := w.diag.At(i, i)
			for j := 0; j < c; j++ {
				dst.Set(i, j, wi*src.At(i, j))
			}
		}
		return
	}
	dst.Mul(w.dense, src)
}

// applyWeightRight computes dst = src * w, where w is a compiled weight
// factor of size (cols of src)×(cols of src). The diagonal path scales
// each column of src by the corresponding diagonal entry; the dense
// path is a plain matrix product.
func applyWeightRight(dst *mat.Dense, src mat.Matrix, w weightFactor) {
	r, c := src.Dims()
	if w.diagonal {
		for j := 0; j < c; j++ {
			wj := w.diag.At(j, j)
			for i := 0; i < r; i++ {
				dst.Set(i, j, wj*src.At(i, j))
			}
		}
		return
	}
	dst.Mul(src, w.dense)
}

// scaleColumns computes dst = src with column j scaled by diag[j]. It is
// used for the Σ⁺ and Σ⁺_damped diagonal scalings, which are per-solve
// quantities rather than compiled weight factors.
func scaleColumns(dst *mat.Dense, src mat.Matrix, diag []float64) {
	r, c := src.Dims()
	for j := 0; j < c; j++ {
		d := diag[j]
		for i := 0; i < r; i++ {
			dst.Set(i, j, d*src.At(i, j))
		}
	}
}

// choleskyUpperFactor returns Lᵀ (upper triangular) for the Cholesky
// factorization W = L·Lᵀ of the n×n symmetric matrix w.
func choleskyUpperFactor(w mat.Matrix, n int) (mat.Matrix, *Error) {
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, w.At(i, j))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, &Error{Kind: ErrNotPositiveDefinite, Msg: "weight matrix is not positive definite"}
	}
	var l mat.TriDense
	chol.LTo(&l)
	return l.T(), nil
}
