// Package strictcancel implements withStrictCancellation: a runInScope
// variant that, outside production, arms a one-shot timer after the scope
// aborts and warns once per task that is still not settled warnAfterMs
// later. It exists to surface tasks that ignore their cancellation signal
// without paying the timer's cost in production.
package strictcancel

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/kirtask/structscope/debug"
	"github.com/kirtask/structscope/scope"
)

const defaultWarnAfterMs = 2000

// Options configures WithCancellation.
type Options struct {
	WarnAfterMs int64
}

func developmentMode() bool {
	return os.Getenv("NODE_ENV") != "production"
}

// WithCancellation runs fn inside a fresh unparented scope and closes it when
// fn returns, as scope.RunIn does but without RunIn's strict-mode orphan
// scan; then — outside production — it watches any scope-bound task whose work has
// not settled and logs a single warning per task once WarnAfterMs has
// elapsed since the scope closed.
func WithCancellation[T any](ctx context.Context, fn func(ctx context.Context, s *scope.Scope) (T, error), opts ...Options) (T, error) {
	warnAfterMs := int64(defaultWarnAfterMs)
	if len(opts) > 0 && opts[0].WarnAfterMs > 0 {
		warnAfterMs = opts[0].WarnAfterMs
	}

	s := scope.New(ctx, debug.ScopePlain)
	scopedCtx := s.WithStore(ctx)
	result, err := fn(scopedCtx, s)
	s.Close()

	if developmentMode() {
		armWarnTimer(s, time.Duration(warnAfterMs)*time.Millisecond)
	}
	return result, err
}

func armWarnTimer(s *scope.Scope, warnAfter time.Duration) {
	var pending []*scope.Entry
	for _, e := range s.Entries() {
		if !e.WorkSettled() {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return
	}

	start := time.Now()
	timer := time.AfterFunc(warnAfter, func() {
		for _, e := range pending {
			if !e.WorkSettled() {
				slog.Warn("structscope: task still pending after scope abort",
					"task", e.Task.Name(), "elapsed", time.Since(start))
			}
		}
	})

	go func() {
		for _, e := range pending {
			<-e.Task.Done()
		}
		timer.Stop()
	}()
}
