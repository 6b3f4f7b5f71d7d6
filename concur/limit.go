package concur

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// LimitOptions configures a Limiter. CancelQueuedOnAbort defaults to true
// through NewLimit.
type LimitOptions struct {
	CancelQueuedOnAbort bool
}

// LimitOption mutates LimitOptions.
type LimitOption func(*LimitOptions)

// WithCancelQueuedOnAbort toggles whether queued (not yet running) Do calls
// are rejected the instant the bound ctx aborts.
func WithCancelQueuedOnAbort(v bool) LimitOption {
	return func(o *LimitOptions) { o.CancelQueuedOnAbort = v }
}

// Limiter bounds how many Do calls run concurrently. It is built on
// golang.org/x/sync/semaphore.Weighted, whose Acquire is already
// context-cancelable — exactly what a FIFO queue that must drain on abort
// needs.
type Limiter struct {
	sem          *semaphore.Weighted
	cancelQueued bool
}

// NewLimit constructs a Limiter admitting at most concurrency concurrent Do
// calls. It panics synchronously if concurrency < 1.
func NewLimit(concurrency int, opts ...LimitOption) *Limiter {
	if concurrency < 1 {
		panic(fmt.Sprintf("concur: limit concurrency must be >= 1, got %d", concurrency))
	}
	o := LimitOptions{CancelQueuedOnAbort: true}
	for _, fn := range opts {
		fn(&o)
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(concurrency)), cancelQueued: o.CancelQueuedOnAbort}
}

// Do runs fn once a slot is free, or fails immediately if ctx is already
// done. While queued, it is rejected with context.Cause(ctx) as soon as ctx
// aborts, unless the limiter was built WithCancelQueuedOnAbort(false), in
// which case a queued call keeps waiting for a slot regardless of ctx.
func Do[T any](ctx context.Context, l *Limiter, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, context.Cause(ctx)
	}

	acquireCtx := ctx
	if !l.cancelQueued {
		acquireCtx = context.Background()
	}
	if err := l.sem.Acquire(acquireCtx, 1); err != nil {
		if acquireCtx == ctx {
			return zero, context.Cause(ctx)
		}
		return zero, err
	}
	defer l.sem.Release(1)
	return fn(ctx)
}
