package combinator

import (
	"context"
	"sync"

	"github.com/kirtask/structscope/debug"
	"github.com/kirtask/structscope/scope"
	"github.com/kirtask/structscope/task"
)

// Race runs cb inside a fresh scope, then waits for the first scope-bound
// task to settle (fulfill or reject) — that outcome is Race's own outcome.
// Before returning it closes the scope, cancelling every other task with a
// ScopeClosed cause. cb must start at least one task.
func Race[T any](ctx context.Context, cb func(c *Ctx) error) (T, error) {
	var zero T
	s := scope.New(ctx, debug.ScopeRace)
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

	if len(s.Entries()) == 0 {
		s.Close()
		return zero, noTasksErr("race")
	}

	winner := <-ch
	s.Close()
	return winner.v, winner.err
}
