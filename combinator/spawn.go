package combinator

import (
	"context"

	"github.com/kirtask/structscope/debug"
	"github.com/kirtask/structscope/scope"
	"github.com/kirtask/structscope/task"
)

// Spawn creates a scope parent-linked to the scope ambient in ctx (if any)
// and wraps cb's execution as a single Task using that scope's signal. The
// returned task is a leaf with its own scope; it is not registered in the
// enclosing scope's entries.
func Spawn[T any](ctx context.Context, cb func(c *Ctx) (T, error)) *task.Task[T] {
	parent, hasParent := scope.FromContext(ctx)
	var s *scope.Scope
	if hasParent {
		s = scope.NewChild(parent, debug.ScopeSpawn)
	} else {
		s = scope.New(ctx, debug.ScopeSpawn)
	}
	scopedCtx := s.WithStore(ctx)
	c := &Ctx{Scope: s, ctx: scopedCtx}

	t := task.Run(func(context.Context) (T, error) {
		return cb(c)
	}, task.Options{Signal: s.Context()})

	go func() {
		<-t.Done()
		s.Close()
	}()
	return t
}

// SpawnDetached returns a Task for work with no parent signal at all — not
// cancelled by any ambient scope. This is the one intentional escape hatch
// from structured concurrency; strict mode's unstructured-async check fires
// for it by design, since it is indistinguishable from a task that forgot
// to bind to a scope.
func SpawnDetached[T any](work func(ctx context.Context) (T, error)) *task.Task[T] {
	return task.Run(work, task.Options{})
}

// SpawnScope runs cb inside a fresh scope, same shape as Sync, but returns
// as soon as cb returns without waiting for scope-bound tasks to settle.
// Tasks that were started keep running independently; the scope is not
// explicitly closed here and stays reachable for as long as any of them
// hold it.
func SpawnScope[T any](ctx context.Context, cb func(c *Ctx) (T, error)) (T, error) {
	s := scope.New(ctx, debug.ScopeSpawn)
	scopedCtx := s.WithStore(ctx)
	c := &Ctx{Scope: s, ctx: scopedCtx}
	return cb(c)
}
