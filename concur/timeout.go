package concur

import (
	"context"
	"fmt"
	"time"

	"github.com/kirtask/structscope/actx"
	"github.com/kirtask/structscope/cause"
	"github.com/kirtask/structscope/scope"
)

// TimeoutError is returned when a Timeout call's deadline elapses before
// work completes.
type TimeoutError struct {
	Ms int64
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("Timeout after %d ms", e.Ms) }

// Timeout runs work under a deadline of ms, tightened by any ambient scope
// deadline already in effect (deadline inheritance: nested timeouts only
// ever shrink the remaining budget). On expiry it aborts s with a
// cause.Timeout and returns *TimeoutError. work observes the tightened
// deadline through a cloned store so a nested Timeout call sees the cap too.
func Timeout[T any](ctx context.Context, s *scope.Scope, ms time.Duration, work func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	effective := ms
	if remainingMs, ok := scope.DeadlineRemainingMs(ctx); ok {
		if remaining := time.Duration(remainingMs) * time.Millisecond; remaining < effective {
			effective = remaining
		}
	}
	timeoutErr := &TimeoutError{Ms: effective.Milliseconds()}

	tc := &cause.Timeout{Ms: effective.Milliseconds()}
	fired := make(chan struct{})
	timer := time.AfterFunc(effective, func() {
		s.Abort(tc)
		close(fired)
	})
	defer timer.Stop()

	stopListener := make(chan struct{})
	defer close(stopListener)
	go func() {
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-stopListener:
		}
	}()

	childCtx := withTightenedDeadline(ctx, effective)

	type outcome struct {
		v   T
		err error
	}
	resultCh := make(chan outcome, 1)
	go func() {
		v, err := work(childCtx)
		resultCh <- outcome{v, err}
	}()

	select {
	case <-fired:
		return zero, timeoutErr
	case o := <-resultCh:
		if o.err != nil && s.Reason() == error(tc) {
			return zero, timeoutErr
		}
		return o.v, o.err
	case <-ctx.Done():
		if s.Reason() == error(tc) {
			return zero, timeoutErr
		}
		return zero, context.Cause(ctx)
	}
}

func withTightenedDeadline(ctx context.Context, effective time.Duration) context.Context {
	deadlineMs := time.Now().Add(effective).UnixMilli()
	st, ok := actx.FromContext[scope.Store](ctx)
	if !ok {
		return actx.With(ctx, scope.Store{DeadlineMs: deadlineMs, HasDeadline: true})
	}
	st.DeadlineMs = deadlineMs
	st.HasDeadline = true
	return actx.With(ctx, st)
}
