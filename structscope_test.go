package structscope

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunTaskRunsImmediately(t *testing.T) {
	t.Parallel()
	tk := RunTask(func(context.Context) (int, error) { return 42, nil }, RunTaskOptions{})
	v, err := tk.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestRunInScopeClosesScopeOnReturn(t *testing.T) {
	t.Parallel()
	var inner *Scope
	v, err := RunInScope(context.Background(), nil, func(ctx context.Context, s *Scope) (string, error) {
		inner = s
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", v)
	require.Error(t, inner.Context().Err())
}

func TestWithStrictCancellationReturnsFnOutcome(t *testing.T) {
	t.Parallel()
	want := errors.New("boom")
	_, err := WithStrictCancellation(context.Background(), func(ctx context.Context, s *Scope) (int, error) {
		return 0, want
	})
	require.ErrorIs(t, err, want)
}

func TestSleepRespectsContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Sleep(ctx, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSleepReturnsNilAfterDuration(t *testing.T) {
	t.Parallel()
	require.NoError(t, Sleep(context.Background(), time.Millisecond))
}
