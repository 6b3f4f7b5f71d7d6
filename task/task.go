// Package task implements the awaitable, cancelable unit of asynchronous
// work the rest of the core schedules: Task[T]. A Task owns its own
// cancellation context, transitions through status exactly once, and runs
// its onCancel handlers before its awaitable surface rejects.
package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kirtask/structscope/cause"
	"github.com/kirtask/structscope/debug"
	"github.com/kirtask/structscope/strict"
)

// Status is one of the four lifecycle states a Task passes through.
type Status int32

const (
	Running Status = iota
	Completed
	Failed
	Canceled
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// TaskError wraps a task's terminal error with the task's name, satisfying
// the spec's "non-null error carries an added taskName field" invariant.
type TaskError struct {
	TaskName string
	Err      error
}

func (e *TaskError) Error() string { return fmt.Sprintf("%s: %v", e.TaskName, e.Err) }
func (e *TaskError) Unwrap() error { return e.Err }

// LifecycleHooks are invoked at terminal transitions, before the status flag
// flips observable and before any user onCancel handler runs. Hook panics
// are recovered and never alter the task's outcome.
type LifecycleHooks struct {
	OnTaskComplete func(dur time.Duration)
	OnTaskFail     func(err error)
	OnTaskCancel   func(reason error)
}

// Options configures Run. Signal is the parent cancellation context; when it
// is already done at call time the task is born canceled and work never
// runs. ParentTask marks the reason as attributable to a parent task (so it
// is normalized to a cause.ParentCanceled) rather than a bare user abort.
type Options struct {
	Signal     context.Context
	Name       string
	Lifecycle  LifecycleHooks
	ParentTask bool
}

// Task is an awaitable unit of work with explicit status, a stored result
// or error, and a cancel-hook list run in registration order on cancellation.
type Task[T any] struct {
	name string
	ctx  context.Context

	mu          sync.Mutex
	status      Status
	result      T
	err         error
	cancelHooks []func(error)
	hooksRun    bool
	cancelReas  error
	startTime   time.Time
	endTime     time.Time

	done    chan struct{}
	id      uint64
	settled bool
}

// Run creates an owned cancellation context for work and invokes it
// immediately. See Options for the born-canceled and parent-linking rules.
func Run[T any](work func(ctx context.Context) (T, error), opts Options) *Task[T] {
	t := &Task[T]{name: opts.Name, done: make(chan struct{})}
	if debug.Enabled() {
		t.id = debug.NextID()
	}

	if opts.Signal == nil {
		strict.Report(strict.UnstructuredAsync, diagName(opts.Name))
	}

	parent := opts.Signal
	if parent == nil {
		parent = context.Background()
	}

	if parent.Err() != nil {
		reason := cause.Normalize(context.Cause(parent), opts.ParentTask)
		ctx, cancel := context.WithCancelCause(context.Background())
		cancel(reason)
		t.ctx = ctx
		t.transitionCanceled(reason, opts.Lifecycle.OnTaskCancel)
		return t
	}

	ctx, cancel := context.WithCancelCause(parent)
	t.ctx = ctx

	go func() {
		select {
		case <-ctx.Done():
			reason := cause.Normalize(context.Cause(ctx), opts.ParentTask)
			t.transitionCanceled(reason, opts.Lifecycle.OnTaskCancel)
		case <-t.done:
		}
	}()

	t.startTime = time.Now()
	go func() {
		defer cancel(nil)
		result, err := work(ctx)
		if ctx.Err() != nil {
			reason := cause.Normalize(context.Cause(ctx), opts.ParentTask)
			t.transitionCanceled(reason, opts.Lifecycle.OnTaskCancel)
			return
		}
		if err != nil {
			t.transitionFailed(err, opts.Lifecycle.OnTaskFail)
			return
		}
		t.transitionCompleted(result, opts.Lifecycle.OnTaskComplete)
	}()
	return t
}

func diagName(name string) string {
	if name == "" {
		return "anonymous task"
	}
	return name
}

// Name returns the task's diagnostic name, or "" when unset.
func (t *Task[T]) Name() string { return t.name }

// Status returns the task's current lifecycle state.
func (t *Task[T]) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Result returns the stored result; zero value until Completed.
func (t *Task[T]) Result() T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Err returns the stored terminal error; nil until Failed or Canceled.
func (t *Task[T]) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done returns a channel closed at the task's terminal transition.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// ID returns the debug-assigned task id, or 0 when debug emission is off.
func (t *Task[T]) ID() uint64 { return t.id }

// Context returns the task's owned cancellation context.
func (t *Task[T]) Context() context.Context { return t.ctx }

// Wait blocks until the task reaches a terminal state or ctx is done,
// whichever comes first, and returns the task's outcome.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.result, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnCancel registers handler to run when the task is or becomes canceled.
// If the task is already canceled and its cancel hooks have already run,
// handler is invoked synchronously and at most once with the stored reason.
func (t *Task[T]) OnCancel(handler func(reason error)) {
	if handler == nil {
		return
	}
	t.mu.Lock()
	switch {
	case t.status == Canceled && t.hooksRun:
		reason := t.cancelReas
		t.mu.Unlock()
		safeHook(func() { handler(reason) })
		return
	case t.status == Canceled && !t.hooksRun:
		t.cancelHooks = append(t.cancelHooks, handler)
		t.mu.Unlock()
	case t.status != Running:
		t.mu.Unlock()
	default:
		t.cancelHooks = append(t.cancelHooks, handler)
		t.mu.Unlock()
	}
}

func (t *Task[T]) annotate(err error) error {
	if err == nil || t.name == "" {
		return err
	}
	return &TaskError{TaskName: t.name, Err: err}
}

// claimSettle reports whether this call is the one transition that gets to
// run: it marks the task settled under lock without yet touching status, so
// a lifecycle hook invoked before the status flip never observes a terminal
// Status().
func (t *Task[T]) claimSettle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.settled {
		return false
	}
	t.settled = true
	return true
}

func (t *Task[T]) transitionCompleted(v T, onComplete func(time.Duration)) {
	if !t.claimSettle() {
		return
	}

	if onComplete != nil {
		safeHook(func() { onComplete(time.Since(t.startTime)) })
	}

	t.mu.Lock()
	t.status = Completed
	t.result = v
	t.endTime = time.Now()
	t.mu.Unlock()

	t.emitUpdated()
	close(t.done)
}

func (t *Task[T]) transitionFailed(err error, onFail func(error)) {
	if !t.claimSettle() {
		return
	}

	if onFail != nil {
		safeHook(func() { onFail(err) })
	}

	t.mu.Lock()
	t.status = Failed
	t.err = t.annotate(err)
	t.endTime = time.Now()
	t.mu.Unlock()

	t.emitUpdated()
	close(t.done)
}

func (t *Task[T]) transitionCanceled(reason error, onCancel func(error)) {
	if !t.claimSettle() {
		return
	}

	if onCancel != nil {
		safeHook(func() { onCancel(reason) })
	}

	t.mu.Lock()
	t.status = Canceled
	t.err = t.annotate(reason)
	t.cancelReas = reason
	t.endTime = time.Now()
	hooks := t.cancelHooks
	t.hooksRun = true
	t.mu.Unlock()

	t.emitUpdated()

	if len(hooks) == 0 {
		strict.Report(strict.IgnoredCancel, diagName(t.name))
	}
	for _, h := range hooks {
		h := h
		safeHook(func() { h(reason) })
	}
	close(t.done)
}

func (t *Task[T]) emitUpdated() {
	if !debug.Enabled() {
		return
	}
	t.mu.Lock()
	status := t.status
	timing := debug.Timing{StartTime: t.startTime, EndTime: t.endTime}
	t.mu.Unlock()
	debug.Emit(debug.Event{
		Kind:     debug.TaskUpdated,
		TaskID:   t.id,
		TaskName: t.name,
		Status:   status.String(),
		Timing:   timing,
	})
}

func safeHook(fn func()) {
	defer func() { recover() }()
	fn()
}
