package combinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSyncAllSucceed(t *testing.T) {
	t.Parallel()
	v, err := Sync(context.Background(), func(c *Ctx) (int, error) {
		NamedTask(c, "a", func(context.Context) (int, error) { return 1, nil })
		NamedTask(c, "b", func(context.Context) (int, error) { return 2, nil })
		return 99, nil
	})
	require.NoError(t, err)
	require.Equal(t, 99, v)
}

func TestSyncFirstFailureCancelsSiblings(t *testing.T) {
	t.Parallel()
	siblingCanceled := make(chan struct{})
	_, err := Sync(context.Background(), func(c *Ctx) (struct{}, error) {
		NamedTask(c, "slow", func(ctx context.Context) (struct{}, error) {
			select {
			case <-time.After(time.Second):
				return struct{}{}, nil
			case <-ctx.Done():
				close(siblingCanceled)
				return struct{}{}, ctx.Err()
			}
		})
		NamedTask(c, "fails", func(context.Context) (struct{}, error) {
			time.Sleep(20 * time.Millisecond)
			return struct{}{}, errors.New("boom")
		})
		return struct{}{}, nil
	})
	require.Error(t, err)
	select {
	case <-siblingCanceled:
	case <-time.After(time.Second):
		t.Fatal("sibling was not cancelled by Sync's first failure")
	}
}

func TestSyncCallbackErrorAbortsScope(t *testing.T) {
	t.Parallel()
	want := errors.New("cb failed")
	_, err := Sync(context.Background(), func(c *Ctx) (struct{}, error) {
		return struct{}{}, want
	})
	require.ErrorIs(t, err, want)
}

func TestSyncToleratesSubtaskOfADifferentType(t *testing.T) {
	t.Parallel()
	v, err := Sync(context.Background(), func(c *Ctx) (int, error) {
		Task(c, func(context.Context) (string, error) { return "aux", nil })
		NamedTask(c, "main", func(context.Context) (int, error) { return 7, nil })
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestSyncWaitsForEverySiblingEvenOnSuccess(t *testing.T) {
	t.Parallel()
	finished := make(chan struct{}, 1)
	_, err := Sync(context.Background(), func(c *Ctx) (struct{}, error) {
		NamedTask(c, "slow-ok", func(context.Context) (struct{}, error) {
			time.Sleep(40 * time.Millisecond)
			finished <- struct{}{}
			return struct{}{}, nil
		})
		return struct{}{}, nil
	})
	require.NoError(t, err)
	select {
	case <-finished:
	default:
		t.Fatal("Sync returned before its scope-bound task finished")
	}
}
