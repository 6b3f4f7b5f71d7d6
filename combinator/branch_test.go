package combinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kirtask/structscope/debug"
	"github.com/kirtask/structscope/scope"
	"github.com/kirtask/structscope/strict"
)

func TestBranchCancelsOnParentScopeClose(t *testing.T) {
	t.Parallel()
	s := scope.New(context.Background(), debug.ScopePlain)
	scopedCtx := s.WithStore(context.Background())

	branchCanceled := make(chan struct{})
	Branch(scopedCtx, func(c *Ctx) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-c.Context().Done():
			close(branchCanceled)
			return c.Context().Err()
		}
	})

	s.Close()
	select {
	case <-branchCanceled:
	case <-time.After(time.Second):
		t.Fatal("branch did not observe parent scope closing")
	}
}

func TestBranchReturnsImmediately(t *testing.T) {
	t.Parallel()
	s := scope.New(context.Background(), debug.ScopePlain)
	defer s.Close()
	scopedCtx := s.WithStore(context.Background())

	blocked := make(chan struct{})
	done := make(chan struct{})
	go func() {
		Branch(scopedCtx, func(c *Ctx) error {
			<-blocked
			return nil
		})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Branch did not return synchronously")
	}
	close(blocked)
}

func TestBranchWithoutParentScopeReportsStrictViolation(t *testing.T) {
	defer strict.Disable()
	var got strict.Violation
	strict.Enable(strict.WarnOnly, func(v strict.Violation, _ string) { got = v })

	done := make(chan struct{})
	Branch(context.Background(), func(c *Ctx) error {
		close(done)
		return nil
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("branch callback never ran")
	}
	require.Equal(t, strict.BranchWithoutScope, got)
}
