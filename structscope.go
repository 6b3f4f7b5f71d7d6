// Package structscope provides structured concurrency for Go: a Task
// lifecycle, a Scope that owns the tasks bound to it, and five combinators
// (Sync, Race, Rush, Branch, Spawn/SpawnDetached, SpawnScope) that compose
// them with a fixed completion rule. Every task belongs to a scope, and
// when a scope ends — normally, by failure, or by first result — every task
// still bound to it is cancelled before control returns to the caller.
//
// Cancellation is cooperative: a signal carrying a tagged reason
// (package cause), never an exception. Work observes cancellation through
// the context.Context it is handed and must check it to unwind promptly.
package structscope

import (
	"context"
	"time"

	"github.com/kirtask/structscope/combinator"
	"github.com/kirtask/structscope/concur"
	"github.com/kirtask/structscope/scope"
	"github.com/kirtask/structscope/strictcancel"
	"github.com/kirtask/structscope/task"
)

// Scope owns a cancellation controller and tracks the tasks bound to it.
type Scope = scope.Scope

// Task is an awaitable unit of work with explicit status and a stored
// result or error.
type Task[T any] = task.Task[T]

// Ctx is handed to every combinator callback.
type Ctx = combinator.Ctx

// RunTaskOptions configures RunTask.
type RunTaskOptions = task.Options

// RunTask creates an owned cancellation context for work and runs it
// immediately, outside of any combinator's scope bookkeeping. Calling it
// with no Signal set (and thus no enclosing scope) is flagged by strict
// mode as unstructured async.
func RunTask[T any](work func(ctx context.Context) (T, error), opts RunTaskOptions) *Task[T] {
	return task.Run(work, opts)
}

// RunInScope creates a Scope (parent-linked when parentScope is non-nil),
// runs fn with it installed in the ambient scope store, then closes the
// scope — cancelling any still-running scope-bound task — before returning
// fn's outcome.
func RunInScope[T any](ctx context.Context, parentScope *Scope, fn func(ctx context.Context, s *Scope) (T, error)) (T, error) {
	return scope.RunIn(ctx, parentScope, fn)
}

// WithStrictCancellationOptions configures WithStrictCancellation.
type WithStrictCancellationOptions = strictcancel.Options

// WithStrictCancellation behaves like RunInScope, but outside production
// (NODE_ENV != "production") arms a development-only timer that warns once
// per scope-bound task still not settled WarnAfterMs (default 2000) after
// the scope aborts.
func WithStrictCancellation[T any](ctx context.Context, fn func(ctx context.Context, s *Scope) (T, error), opts ...WithStrictCancellationOptions) (T, error) {
	return strictcancel.WithCancellation(ctx, fn, opts...)
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	return concur.Sleep(ctx, d)
}
