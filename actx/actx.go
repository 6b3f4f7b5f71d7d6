// Package actx is the async-context storage backend: a frame that survives
// asynchronous suspension. Go has no ambient async-locals facility, but its
// context.Context value chain already satisfies the same contract — a
// goroutine holds the context it was handed across every suspension point
// (channel receive, select, blocking call), so chaining store frames through
// context.WithValue is the native backend rather than a fallback; see
// DESIGN.md for why no "portable chained-promise" backend is needed here.
package actx

import "context"

type storeKey struct{}

// Run installs store as the current frame for the duration of fn. Any
// goroutine started inside fn that is handed ctx (or a context derived from
// it) observes store via FromContext; once fn returns, store is no longer
// reachable through the original ctx.
func Run[T any](ctx context.Context, store T, fn func(context.Context)) {
	fn(context.WithValue(ctx, storeKey{}, store))
}

// With returns a context carrying store as its innermost frame, for callers
// that need the derived context rather than a callback shape.
func With[T any](ctx context.Context, store T) context.Context {
	return context.WithValue(ctx, storeKey{}, store)
}

// FromContext returns the innermost store of type T, or the zero value and
// false when ctx carries none (outside any scope, or a type mismatch from
// nested stores of different shapes).
func FromContext[T any](ctx context.Context) (T, bool) {
	v := ctx.Value(storeKey{})
	t, ok := v.(T)
	return t, ok
}
