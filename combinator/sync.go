package combinator

import (
	"context"
	"sync"

	"github.com/kirtask/structscope/debug"
	"github.com/kirtask/structscope/scope"
	"github.com/kirtask/structscope/task"
)

// Sync runs cb inside a fresh scope and requires every scope-bound task to
// succeed. The first failure — a task error or cb's own returned error —
// closes the scope, cancelling every other scope-bound task with a
// ScopeClosed cause, and becomes Sync's own error. On success, Sync resolves
// with cb's return value only once every scope-bound task has completed.
func Sync[T any](ctx context.Context, cb func(c *Ctx) (T, error)) (T, error) {
	var zero T
	s := scope.New(ctx, debug.ScopeSync)
	scopedCtx := s.WithStore(ctx)

	var mu sync.Mutex
	var firstErr error
	var abortOnce sync.Once

	fail := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		abortOnce.Do(func() { s.Close() })
	}

	c := &Ctx{Scope: s, ctx: scopedCtx}
	c.onTaskDone = func(a any) {
		t, ok := a.(*task.Task[T])
		if !ok {
			return
		}
		if t.Status() == task.Failed {
			fail(t.Err())
		}
	}

	type cbResult struct {
		v   T
		err error
	}
	cbDone := make(chan cbResult, 1)
	go func() {
		v, err := cb(c)
		cbDone <- cbResult{v, err}
	}()

	result := <-cbDone
	if result.err != nil {
		fail(result.err)
	}

	for _, e := range s.Entries() {
		<-e.Task.Done()
	}
	s.Close()

	mu.Lock()
	err := firstErr
	mu.Unlock()
	if err != nil {
		return zero, err
	}
	return result.v, nil
}
