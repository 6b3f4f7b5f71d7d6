package combinator

import (
	"context"
	"sync"

	"github.com/kirtask/structscope/task"
)

// Outcome is one task's settled result, for AllSettled.
type Outcome[T any] struct {
	Value T
	Err   error
}

// All waits for every task to complete and returns their results in order,
// or the first error observed across them.
func All[T any](ctx context.Context, tasks []*task.Task[T]) ([]T, error) {
	type settled struct {
		i   int
		v   T
		err error
	}
	ch := make(chan settled, len(tasks))
	for i, t := range tasks {
		i, t := i, t
		go func() {
			v, err := t.Wait(ctx)
			ch <- settled{i, v, err}
		}()
	}
	results := make([]T, len(tasks))
	var firstErr error
	for range tasks {
		r := <-ch
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		results[r.i] = r.v
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// RaceSettled waits for the first of tasks to settle (success or failure)
// and returns its outcome; the rest are left running. Unlike the scope-owning
// Race combinator, it operates over tasks the caller already started and
// never cancels the losers itself.
func RaceSettled[T any](ctx context.Context, tasks []*task.Task[T]) (T, error) {
	var zero T
	if len(tasks) == 0 {
		return zero, noTasksErr("race")
	}
	type settled struct {
		v   T
		err error
	}
	ch := make(chan settled, len(tasks))
	for _, t := range tasks {
		t := t
		go func() {
			v, err := t.Wait(ctx)
			ch <- settled{v, err}
		}()
	}
	r := <-ch
	return r.v, r.err
}

// AllSettled waits for every task to reach a terminal state and returns
// each one's outcome, in input order.
func AllSettled[T any](ctx context.Context, tasks []*task.Task[T]) []Outcome[T] {
	out := make([]Outcome[T], len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		i, t := i, t
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := t.Wait(ctx)
			out[i] = Outcome[T]{Value: v, Err: err}
		}()
	}
	wg.Wait()
	return out
}
