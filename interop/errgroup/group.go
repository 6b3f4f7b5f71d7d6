// Package errgroup provides a golang.org/x/sync/errgroup-shaped adapter over
// the core scope/task machinery, for call sites migrating off errgroup
// incrementally without rewriting their Go/Wait call shape.
package errgroup

import (
	"context"
	"sync"

	"github.com/kirtask/structscope/debug"
	"github.com/kirtask/structscope/scope"
	"github.com/kirtask/structscope/task"
)

// Group mimics errgroup.Group: Go starts a function, the first non-nil error
// it returns aborts the group's scope and every sibling still running, and
// Wait blocks for all of them to settle.
type Group struct {
	s         *scope.Scope
	scopedCtx context.Context

	mu      sync.Mutex
	entries []*task.Task[struct{}]
}

// WithContext creates a Group whose scope is a child of ctx. The returned
// context is done once any function passed to Go fails.
func WithContext(ctx context.Context) (*Group, context.Context) {
	s := scope.New(ctx, debug.ScopeSync)
	g := &Group{s: s, scopedCtx: s.WithStore(ctx)}
	return g, s.Context()
}

// Go starts f in its own task bound to the group's scope. A non-nil return
// aborts the scope with that error, cancelling every still-running sibling.
func (g *Group) Go(f func() error) {
	if f == nil {
		return
	}
	signal := g.s.Context()
	t := task.Run(func(context.Context) (struct{}, error) {
		return struct{}{}, f()
	}, task.Options{Signal: signal})
	scope.RegisterTask(g.scopedCtx, signal, t, t.Done())

	g.mu.Lock()
	g.entries = append(g.entries, t)
	g.mu.Unlock()

	go func() {
		<-t.Done()
		if t.Status() == task.Failed {
			g.s.Abort(t.Err())
		}
	}()
}

// Wait blocks until every function started with Go has returned, then closes
// the group's scope and returns the first error observed, if any: a failed
// task's error, or the cause of a task canceled before it settled.
func (g *Group) Wait() error {
	g.mu.Lock()
	entries := append([]*task.Task[struct{}](nil), g.entries...)
	g.mu.Unlock()

	var firstErr error
	for _, t := range entries {
		<-t.Done()
		if st := t.Status(); firstErr == nil && (st == task.Failed || st == task.Canceled) {
			firstErr = t.Err()
		}
	}
	g.s.Close()
	return firstErr
}
