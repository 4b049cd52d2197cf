package hwdls

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestErrorKindString(t *testing.T) {
	for _, test := range []struct {
		kind ErrorKind
		want string
	}{
		{ErrInvalidShape, "invalid shape"},
		{ErrInvalidPriorityCount, "invalid priority count"},
		{ErrInvalidPriority, "invalid priority"},
		{ErrZeroJointWeight, "zero joint weight"},
		{ErrNotPositiveDefinite, "not positive definite"},
		{ErrInvalidSVDMethod, "invalid svd method"},
		{ErrUnconfigured, "unconfigured"},
		{ErrorKind(99), "unknown error kind"},
	} {
		if got := test.kind.String(); got != test.want {
			t.Errorf("%d.String() = %q, want %q", int(test.kind), got, test.want)
		}
	}
}

// TestConfigureValidationReportsExpectedKinds exercises every invalid
// configure() input in one pass and diffs the *Error boxed inside the
// returned error against what's expected, ignoring the free-form Msg
// text (which is not part of the error's contract, only its Kind is).
// Configure returns the error interface, matching the teacher's own
// convention (mat.QR.Solve, mat.Dense.UnmarshalBinary), so the concrete
// *Error is recovered with errors.As before the structural comparison,
// the same pattern callers use to pull a mat.Condition out of a gonum
// error. go-cmp's cmpopts.IgnoreFields keeps the comparison focused on
// exactly the structural field the taxonomy promises callers can branch
// on.
func TestConfigureValidationReportsExpectedKinds(t *testing.T) {
	cases := []struct {
		name      string
		nyPerPrio []int
		nx        int
		want      *Error
	}{
		{"zero nx", []int{1}, 0, &Error{Kind: ErrInvalidShape}},
		{"no priorities", nil, 2, &Error{Kind: ErrInvalidShape}},
		{"zero ny", []int{0, 1}, 2, &Error{Kind: ErrInvalidShape}},
	}

	ignoreMsg := cmpopts.IgnoreFields(Error{}, "Msg")
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSolver()
			err := s.Configure(c.nyPerPrio, c.nx)
			var got *Error
			if !errors.As(err, &got) {
				t.Fatalf("Configure(%v, %v) error = %v, want a *Error", c.nyPerPrio, c.nx, err)
			}
			if diff := cmp.Diff(c.want, got, ignoreMsg); diff != "" {
				t.Errorf("Configure(%v, %v) error mismatch (-want +got):\n%s", c.nyPerPrio, c.nx, diff)
			}
		})
	}
}
