package combinator

import (
	"context"
	"sync"

	"github.com/kirtask/structscope/debug"
	"github.com/kirtask/structscope/scope"
	"github.com/kirtask/structscope/task"
)

// Rush runs cb inside a fresh scope and returns the first scope-bound task's
// outcome as its own, but — unlike Race — does not cancel the rest: it waits
// for every other task to reach a terminal state before closing the scope,
// so by the time the scope actually aborts there is nothing left to cancel.
func Rush[T any](ctx context.Context, cb func(c *Ctx) error) (T, error) {
	var zero T
	s := scope.New(ctx, debug.ScopeRush)
	scopedCtx := s.WithStore(ctx)

	type settled struct {
		v   T
		err error
	}
	ch := make(chan settled, 1)
	var once sync.Once

	c := &Ctx{Scope: s, ctx: scopedCtx}
	c.onTaskDone = func(a any) {
		t, ok := a.(*task.Task[T])
		if !ok {
			return
		}
		once.Do(func() { ch <- settled{t.Result(), t.Err()} })
	}

	if err := cb(c); err != nil {
		s.Close()
		return zero, err
	}

	entries := s.Entries()
	if len(entries) == 0 {
		s.Close()
		return zero, noTasksErr("rush")
	}

	winner := <-ch

	for _, e := range entries {
		<-e.Task.Done()
	}
	s.Close()
	return winner.v, winner.err
}
