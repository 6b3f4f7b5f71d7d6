// Package combinator implements the five scope-creating combinators — Sync,
// Race, Rush, Branch, Spawn/SpawnDetached, SpawnScope — and the Ctx object
// every callback receives for creating scope-bound tasks and reaching the
// scope-aware helpers in package concur.
package combinator

import (
	"context"
	"fmt"
	"time"

	"github.com/kirtask/structscope/concur"
	"github.com/kirtask/structscope/scope"
	"github.com/kirtask/structscope/task"
)

// Ctx is handed to every combinator callback. Sleep and Limit are methods;
// task creation (Task/NamedTask) and the Timeout/Retry/Do helpers are
// package functions taking a *Ctx. The post-hoc combinators
// (All/RaceSettled/AllSettled) are free functions over already-started tasks
// and are not reached through Ctx.
type Ctx struct {
	Scope *scope.Scope

	ctx context.Context
	// onTaskDone, when set, is invoked with the *task.Task[T] (boxed as any)
	// of every task started through this Ctx once it reaches a terminal
	// state. The combinator that built this Ctx knows T and performs the
	// type assertion itself.
	onTaskDone func(t any)
}

// Context returns the scoped context backing this Ctx — carries the ambient
// scope store and is done exactly when the scope is aborted.
func (c *Ctx) Context() context.Context { return c.ctx }

// Sleep blocks for d or until the scope aborts, whichever comes first.
func (c *Ctx) Sleep(d time.Duration) error { return concur.Sleep(c.ctx, d) }

// Limit returns a concurrency limiter bound to this scope's lifetime in the
// sense that callers are expected to pass c.Context() (or a context derived
// from it) to concur.Do.
func (c *Ctx) Limit(n int, opts ...concur.LimitOption) *concur.Limiter {
	return concur.NewLimit(n, opts...)
}

// TaskOptions configures a single Task/NamedTask call.
type TaskOptions struct {
	Name string
}

// TaskOption mutates TaskOptions.
type TaskOption func(*TaskOptions)

// WithName sets the diagnostic name for a task created via Task.
func WithName(name string) TaskOption {
	return func(o *TaskOptions) { o.Name = name }
}

func startTask[T any](c *Ctx, name string, work func(ctx context.Context) (T, error)) *task.Task[T] {
	signal := c.Scope.Context()
	t := task.Run(work, task.Options{Signal: signal, Name: name})
	scope.RegisterTask(c.ctx, signal, t, t.Done())
	if c.onTaskDone != nil {
		go func() {
			<-t.Done()
			c.onTaskDone(t)
		}()
	}
	return t
}

// Task starts a scope-bound task. This is the unnamed call shape
// (task(work) in the source spec); pass WithName for the named shape
// (task(work, {name})).
func Task[T any](c *Ctx, work func(ctx context.Context) (T, error), opts ...TaskOption) *task.Task[T] {
	var o TaskOptions
	for _, fn := range opts {
		fn(&o)
	}
	return startTask(c, o.Name, work)
}

// NamedTask starts a scope-bound task with name (task(name, work) in the
// source spec).
func NamedTask[T any](c *Ctx, name string, work func(ctx context.Context) (T, error)) *task.Task[T] {
	return startTask(c, name, work)
}

// Timeout runs work under a deadline of d, aborting the combinator's scope
// with a timeout cause if it elapses first. See concur.Timeout.
func Timeout[T any](c *Ctx, d time.Duration, work func(ctx context.Context) (T, error)) (T, error) {
	return concur.Timeout(c.ctx, c.Scope, d, work)
}

// Retry runs fn with the scope-aware backoff/cancellation rules of
// concur.Retry.
func Retry[T any](c *Ctx, fn func(ctx context.Context) (T, error), opts concur.RetryOptions) (T, error) {
	return concur.Retry(c.ctx, fn, opts)
}

// Do runs fn through limiter l, bound to this Ctx's scope for cancellation.
func Do[T any](c *Ctx, l *concur.Limiter, fn func(ctx context.Context) (T, error)) (T, error) {
	return concur.Do(c.ctx, l, fn)
}

func noTasksErr(name string) error {
	return fmt.Errorf("%s: callback did not start any tasks", name)
}
