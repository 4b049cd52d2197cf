package hwdls

import "gonum.org/v1/gonum/mat"

// IsDiagonal reports whether every off-diagonal entry of the square
// matrix m is exactly zero. The comparison is exact equality, not a
// tolerance: a matrix with a single off-diagonal entry of 1e-300 is not
// diagonal. Callers that want the diagonal fast path elsewhere in this
// package (SetJointWeights, SetTaskWeights) are expected to construct
// their weight matrices as structurally diagonal — e.g. with
// mat.NewDiagonal — rather than rely on values happening to be zero.
func IsDiagonal(m mat.Matrix) bool {
	r, c := m.Dims()
	if r != c {
		panic("hwdls: IsDiagonal requires a square matrix")
	}
	if d, ok := m.(mat.Diagonal); ok {
		_ = d
		return true
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if i == j {
				continue
			}
			if m.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}
