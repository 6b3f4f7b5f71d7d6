package cause

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimeoutError(t *testing.T) {
	t.Parallel()
	err := &Timeout{Ms: 150}
	require.Equal(t, "timeout after 150 ms", err.Error())
}

func TestUserAbortUnwrap(t *testing.T) {
	t.Parallel()
	inner := errors.New("boom")
	err := &UserAbort{Err: inner}
	require.ErrorIs(t, err, inner)
	require.Equal(t, "boom", err.Error())
}

func TestUserAbortNilInner(t *testing.T) {
	t.Parallel()
	err := &UserAbort{}
	require.Equal(t, "user abort", err.Error())
}

func TestScopeClosedError(t *testing.T) {
	t.Parallel()
	require.Equal(t, "scope closed", (&ScopeClosed{}).Error())
}

func TestParentCanceledUnwrap(t *testing.T) {
	t.Parallel()
	inner := errors.New("parent boom")
	err := &ParentCanceled{Parent: inner}
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "parent boom")
}

func TestNormalizeNilReason(t *testing.T) {
	t.Parallel()
	got := Normalize(nil, false)
	var sc *ScopeClosed
	require.ErrorAs(t, got, &sc)
}

func TestNormalizePassesThroughWhenNotFromParent(t *testing.T) {
	t.Parallel()
	reason := errors.New("direct")
	got := Normalize(reason, false)
	require.Same(t, reason, got)
}

func TestNormalizeWrapsWhenFromParent(t *testing.T) {
	t.Parallel()
	reason := errors.New("upstream")
	got := Normalize(reason, true)
	var pc *ParentCanceled
	require.ErrorAs(t, got, &pc)
	require.Same(t, reason, pc.Parent)
}

func TestNormalizeDoesNotDoubleWrapParentCanceled(t *testing.T) {
	t.Parallel()
	already := &ParentCanceled{Parent: errors.New("root")}
	got := Normalize(already, true)
	require.Same(t, already, got)
}

func TestEveryCauseSatisfiesInterface(t *testing.T) {
	t.Parallel()
	var causes = []Cause{
		&Timeout{Ms: 1},
		&UserAbort{},
		&ScopeClosed{},
		&ParentCanceled{},
	}
	for _, c := range causes {
		require.NotEmpty(t, c.Error())
	}
}
