// Package scope implements the Scope entity: an owned cancellation
// controller, a list of scope-bound task entries, an optional deadline, and
// the scope-store record threaded through async-context (package actx) so
// nested combinators and helpers can discover the ambient scope.
package scope

import (
	"context"
	"sync"
	"time"

	"github.com/kirtask/structscope/actx"
	"github.com/kirtask/structscope/cause"
	"github.com/kirtask/structscope/debug"
	"github.com/kirtask/structscope/strict"
	"github.com/kirtask/structscope/task"
)

// TaskHandle is the subset of *task.Task[T] the scope package needs to track
// a scope-bound task without depending on its result type.
type TaskHandle interface {
	ID() uint64
	Name() string
	Status() task.Status
	Done() <-chan struct{}
}

// Entry is one scope-bound task plus whether its underlying work has
// settled (distinct from Status: a task can be Canceled while its goroutine
// is still unwinding).
type Entry struct {
	Task TaskHandle

	mu          sync.Mutex
	workSettled bool
}

// WorkSettled reports whether the entry's work promise has settled.
func (e *Entry) WorkSettled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workSettled
}

func (e *Entry) markSettled() {
	e.mu.Lock()
	e.workSettled = true
	e.mu.Unlock()
}

// Options configures a Scope at construction.
type Options struct {
	Deadline time.Time
	Timeout  time.Duration
}

// Option mutates Options.
type Option func(*Options)

// WithTimeout arms a relative deadline on the scope (ignored if WithDeadline
// is also given).
func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }

// WithDeadline arms an absolute deadline on the scope.
func WithDeadline(t time.Time) Option { return func(o *Options) { o.Deadline = t } }

// Store is the per-scope record installed into async-context.
type Store struct {
	Scope       *Scope
	DeadlineMs  int64
	HasDeadline bool
}

// Scope owns a cancellation controller and tracks the tasks bound to it.
type Scope struct {
	id        uint64
	parentID  uint64
	scopeType debug.ScopeType
	ctx       context.Context
	cancelFn  context.CancelCauseFunc

	mu          sync.Mutex
	entries     []*Entry
	closed      bool
	deadlineMs  int64
	hasDeadline bool
}

// New creates a Scope whose controller is a child of parent.
func New(parent context.Context, scopeType debug.ScopeType, opts ...Option) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	var o Options
	for _, fn := range opts {
		fn(&o)
	}
	ctx, cancel := context.WithCancelCause(parent)
	s := &Scope{ctx: ctx, cancelFn: cancel, scopeType: scopeType}
	if debug.Enabled() {
		s.id = debug.NextID()
	}
	if !o.Deadline.IsZero() {
		s.armDeadline(o.Deadline)
	} else if o.Timeout > 0 {
		s.armDeadline(time.Now().Add(o.Timeout))
	}
	if debug.Enabled() {
		debug.Emit(debug.Event{Kind: debug.ScopeOpened, ScopeID: s.id, ScopeType: scopeType})
	}
	return s
}

// NewChild creates a Scope whose controller is independently owned but
// bridged to parent: parent's abort cancels the child with the parent's
// reason wrapped in cause.ParentCanceled, preserving a user-supplied reason.
func NewChild(parent *Scope, scopeType debug.ScopeType, opts ...Option) *Scope {
	s := New(context.Background(), scopeType, opts...)
	s.parentID = parent.id
	go func() {
		select {
		case <-parent.ctx.Done():
			s.Abort(&cause.ParentCanceled{Parent: context.Cause(parent.ctx)})
		case <-s.ctx.Done():
		}
	}()
	return s
}

func (s *Scope) armDeadline(deadline time.Time) {
	s.deadlineMs = deadline.UnixMilli()
	s.hasDeadline = true
	remaining := time.Until(deadline)
	if remaining <= 0 {
		s.Abort(&cause.Timeout{Ms: 0})
		return
	}
	timer := time.AfterFunc(remaining, func() {
		s.Abort(&cause.Timeout{Ms: remaining.Milliseconds()})
	})
	go func() {
		<-s.ctx.Done()
		timer.Stop()
	}()
}

// ID returns the debug-assigned scope id, or 0 when debug emission is off.
func (s *Scope) ID() uint64 { return s.id }

// Context returns the scope's cancellation context, i.e. its signal.
func (s *Scope) Context() context.Context { return s.ctx }

// Reason returns the scope's cancellation cause, or nil if still open.
func (s *Scope) Reason() error { return context.Cause(s.ctx) }

// Abort cancels the scope with reason, unless it is already closed. The
// first reason sticks; later calls are no-ops.
func (s *Scope) Abort(reason error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if reason == nil {
		reason = &cause.ScopeClosed{}
	}
	s.cancelFn(reason)
	if debug.Enabled() {
		debug.Emit(debug.Event{Kind: debug.ScopeClosed, ScopeID: s.id, ScopeType: s.scopeType})
	}
}

// Close aborts the scope with a ScopeClosed cause unless it is already
// aborted for some other reason.
func (s *Scope) Close() { s.Abort(&cause.ScopeClosed{}) }

// WithStore returns ctx carrying this scope's store as the innermost frame.
// The returned context is also done once the scope aborts, with the scope's
// reason as its cause.
func (s *Scope) WithStore(ctx context.Context) context.Context {
	s.mu.Lock()
	st := Store{Scope: s, DeadlineMs: s.deadlineMs, HasDeadline: s.hasDeadline}
	s.mu.Unlock()
	ctx, cancel := context.WithCancelCause(ctx)
	context.AfterFunc(s.ctx, func() { cancel(context.Cause(s.ctx)) })
	return actx.With(ctx, st)
}

// RegisterTask binds t to the scope, provided the ambient store (read from
// ctx) belongs to a scope whose signal is identical to parentSignal. It is
// a no-op otherwise, e.g. if the scope has already closed.
func RegisterTask(ctx context.Context, parentSignal context.Context, t TaskHandle, workDone <-chan struct{}) {
	st, ok := actx.FromContext[Store](ctx)
	if !ok || st.Scope == nil || st.Scope.ctx != parentSignal {
		return
	}
	st.Scope.registerTask(t, workDone)
}

func (s *Scope) registerTask(t TaskHandle, workDone <-chan struct{}) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	e := &Entry{Task: t}
	s.entries = append(s.entries, e)
	s.mu.Unlock()

	if debug.Enabled() {
		debug.Emit(debug.Event{
			Kind:          debug.TaskRegistered,
			TaskID:        t.ID(),
			TaskName:      t.Name(),
			ParentScopeID: s.id,
			ScopeType:     s.scopeType,
		})
	}

	go func() {
		<-workDone
		e.markSettled()
	}()
}

// Entries returns a snapshot of the scope's bound task entries.
func (s *Scope) Entries() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Scope) scanOrphans() {
	if !strict.Active() {
		return
	}
	for _, e := range s.Entries() {
		if e.Task.Status() == task.Running {
			strict.Report(strict.OrphanAtScopeExit, e.Task.Name())
		}
	}
}

// RunIn creates a Scope (parent-linked when parentScope is non-nil),
// installs its store in async-context, and invokes fn with the scoped
// context and the new Scope. On exit, it scans for non-terminal entries
// under strict mode, then closes the scope (cancelling any still-running
// scope-bound tasks), before returning fn's outcome.
func RunIn[T any](ctx context.Context, parentScope *Scope, fn func(ctx context.Context, s *Scope) (T, error)) (T, error) {
	var s *Scope
	if parentScope != nil {
		s = NewChild(parentScope, debug.ScopePlain)
	} else {
		s = New(ctx, debug.ScopePlain)
	}
	scopedCtx := s.WithStore(ctx)
	result, err := fn(scopedCtx, s)
	s.scanOrphans()
	s.Close()
	return result, err
}

// FromContext returns the ambient scope installed by the nearest enclosing
// RunIn or combinator, or false when ctx carries no store.
func FromContext(ctx context.Context) (*Scope, bool) {
	st, ok := actx.FromContext[Store](ctx)
	if !ok || st.Scope == nil {
		return nil, false
	}
	return st.Scope, true
}

// DeadlineRemainingMs reads the ambient scope store's deadline and returns
// the remaining milliseconds, clamped to zero, or false if unset.
func DeadlineRemainingMs(ctx context.Context) (int64, bool) {
	st, ok := actx.FromContext[Store](ctx)
	if !ok || !st.HasDeadline {
		return 0, false
	}
	remaining := st.DeadlineMs - time.Now().UnixMilli()
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}
