package concur

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsFirstTry(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	v, err := Retry(context.Background(), func(context.Context) (int, error) {
		calls.Add(1)
		return 5, nil
	}, RetryOptions{Retries: 3})
	require.NoError(t, err)
	require.Equal(t, 5, v)
	require.EqualValues(t, 1, calls.Load())
}

func TestRetryExhaustsAndReturnsLastError(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	want := errors.New("boom")
	_, err := Retry(context.Background(), func(context.Context) (int, error) {
		calls.Add(1)
		return 0, want
	}, RetryOptions{Retries: 2, InitialDelayMs: 1})
	require.ErrorIs(t, err, want)
	require.EqualValues(t, 3, calls.Load())
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	v, err := Retry(context.Background(), func(context.Context) (int, error) {
		n := calls.Add(1)
		if n < 3 {
			return 0, errors.New("not yet")
		}
		return 99, nil
	}, RetryOptions{Retries: 5, InitialDelayMs: 1})
	require.NoError(t, err)
	require.Equal(t, 99, v)
	require.EqualValues(t, 3, calls.Load())
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	cancel()
	_, err := Retry(ctx, func(context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("boom")
	}, RetryOptions{Retries: 10})
	require.ErrorIs(t, err, context.Canceled)
	require.EqualValues(t, 0, calls.Load())
}

func TestRetryExponentialBackoffGrows(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	start := time.Now()
	_, _ = Retry(context.Background(), func(context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("boom")
	}, RetryOptions{Retries: 2, InitialDelayMs: 10, Backoff: BackoffExponential})
	elapsed := time.Since(start)
	// waits of 10ms then 20ms between three attempts.
	require.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	require.EqualValues(t, 3, calls.Load())
}

func TestRetryZeroRetriesRunsOnce(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	_, err := Retry(context.Background(), func(context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("boom")
	}, RetryOptions{})
	require.Error(t, err)
	require.EqualValues(t, 1, calls.Load())
}
