package structscope

import (
	"context"
	"time"

	"github.com/kirtask/structscope/combinator"
	"github.com/kirtask/structscope/concur"
)

// TaskOption configures a single task created through a Ctx.
type TaskOption = combinator.TaskOption

// WithName sets the diagnostic name for a task created via NewTask.
func WithName(name string) TaskOption { return combinator.WithName(name) }

// NewTask starts a scope-bound task from inside a combinator callback.
func NewTask[T any](c *Ctx, work func(ctx context.Context) (T, error), opts ...TaskOption) *Task[T] {
	return combinator.Task(c, work, opts...)
}

// NewNamedTask starts a named scope-bound task from inside a combinator
// callback.
func NewNamedTask[T any](c *Ctx, name string, work func(ctx context.Context) (T, error)) *Task[T] {
	return combinator.NamedTask(c, name, work)
}

// Timeout runs work under a deadline, capped by any ambient scope deadline
// already in effect.
func Timeout[T any](c *Ctx, d time.Duration, work func(ctx context.Context) (T, error)) (T, error) {
	return combinator.Timeout(c, d, work)
}

// RetryOptions configures Retry.
type RetryOptions = concur.RetryOptions

// Backoff selects Retry's delay schedule.
type Backoff = concur.Backoff

const (
	BackoffFixed       = concur.BackoffFixed
	BackoffExponential = concur.BackoffExponential
)

// Retry runs fn up to 1+opts.Retries times with the scope's cancellation
// signal.
func Retry[T any](c *Ctx, fn func(ctx context.Context) (T, error), opts RetryOptions) (T, error) {
	return combinator.Retry(c, fn, opts)
}

// Limiter bounds concurrent work within a scope.
type Limiter = concur.Limiter

// LimitOption configures a Limiter.
type LimitOption = concur.LimitOption

// WithCancelQueuedOnAbort toggles whether queued Limiter.Do calls are
// rejected the instant the scope aborts.
func WithCancelQueuedOnAbort(v bool) LimitOption { return concur.WithCancelQueuedOnAbort(v) }

// NewLimiter returns a Limiter admitting at most n concurrent Do calls.
func NewLimiter(c *Ctx, n int, opts ...LimitOption) *Limiter { return c.Limit(n, opts...) }

// LimitDo runs fn through l, bound to c's scope for cancellation.
func LimitDo[T any](c *Ctx, l *Limiter, fn func(ctx context.Context) (T, error)) (T, error) {
	return combinator.Do(c, l, fn)
}

// Outcome is one task's settled result, returned by AllSettled.
type Outcome[T any] = combinator.Outcome[T]

// All waits for every task to complete, in order, or returns the first
// error observed.
func All[T any](ctx context.Context, tasks []*Task[T]) ([]T, error) {
	return combinator.All(ctx, tasks)
}

// RaceTasks waits for the first of tasks to settle and returns its outcome.
func RaceTasks[T any](ctx context.Context, tasks []*Task[T]) (T, error) {
	return combinator.RaceSettled(ctx, tasks)
}

// AllSettled waits for every task to reach a terminal state and returns
// each one's outcome, in input order.
func AllSettled[T any](ctx context.Context, tasks []*Task[T]) []Outcome[T] {
	return combinator.AllSettled(ctx, tasks)
}

// Sync runs cb inside a fresh scope and requires every scope-bound task to
// succeed; see combinator.Sync.
func Sync[T any](ctx context.Context, cb func(c *Ctx) (T, error)) (T, error) {
	return combinator.Sync(ctx, cb)
}

// Race runs cb inside a fresh scope and resolves with the first scope-bound
// task to settle, cancelling the rest; see combinator.Race.
func Race[T any](ctx context.Context, cb func(c *Ctx) error) (T, error) {
	return combinator.Race[T](ctx, cb)
}

// Rush runs cb inside a fresh scope and resolves with the first scope-bound
// task to settle, without cancelling the rest; see combinator.Rush.
func Rush[T any](ctx context.Context, cb func(c *Ctx) error) (T, error) {
	return combinator.Rush[T](ctx, cb)
}

// Branch fires cb in a child scope linked to the scope ambient in ctx and
// returns immediately; see combinator.Branch.
func Branch(ctx context.Context, cb func(c *Ctx) error) {
	combinator.Branch(ctx, cb)
}

// Spawn creates a scope parent-linked to the scope ambient in ctx (if any)
// and wraps cb's execution as a single Task; see combinator.Spawn.
func Spawn[T any](ctx context.Context, cb func(c *Ctx) (T, error)) *Task[T] {
	return combinator.Spawn(ctx, cb)
}

// SpawnDetached returns a Task for work with no parent signal — not
// cancelled by any ambient scope; see combinator.SpawnDetached.
func SpawnDetached[T any](work func(ctx context.Context) (T, error)) *Task[T] {
	return combinator.SpawnDetached(work)
}

// SpawnScope runs cb inside a fresh scope without waiting for scope-bound
// tasks to settle before returning; see combinator.SpawnScope.
func SpawnScope[T any](ctx context.Context, cb func(c *Ctx) (T, error)) (T, error) {
	return combinator.SpawnScope(ctx, cb)
}
