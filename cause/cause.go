// Package cause defines the tagged cancellation reasons the core assigns
// when it aborts a Task or Scope. A Cause is always an error so it can be
// recovered with context.Cause and compared with errors.As.
package cause

import "fmt"

// Cause is the common interface every cancellation reason satisfies.
type Cause interface {
	error
	cause()
}

// Timeout is set when a deadline installed by concur.Timeout elapses.
type Timeout struct {
	Ms int64
}

func (*Timeout) cause() {}
func (c *Timeout) Error() string { return fmt.Sprintf("timeout after %d ms", c.Ms) }

// UserAbort wraps a caller-supplied abort reason unchanged.
type UserAbort struct {
	Err error
}

func (*UserAbort) cause() {}
func (c *UserAbort) Error() string {
	if c.Err == nil {
		return "user abort"
	}
	return c.Err.Error()
}
func (c *UserAbort) Unwrap() error { return c.Err }

// ScopeClosed is set when a scope closes normally (combinator exit, explicit
// abort with no other cause, or runInScope returning).
type ScopeClosed struct{}

func (*ScopeClosed) cause() {}
func (*ScopeClosed) Error() string { return "scope closed" }

// ParentCanceled is set on a child scope or task whose controller was
// aborted because its parent's signal aborted first.
type ParentCanceled struct {
	Parent error
}

func (*ParentCanceled) cause() {}
func (c *ParentCanceled) Error() string {
	if c.Parent == nil {
		return "parent canceled"
	}
	return fmt.Sprintf("parent canceled: %v", c.Parent)
}
func (c *ParentCanceled) Unwrap() error { return c.Parent }

// Normalize wraps a raw abort reason as a ParentCanceled cause when the
// propagation is attributed to a parent task/scope, otherwise passes a
// user-supplied reason through unchanged.
func Normalize(reason error, fromParent bool) error {
	if reason == nil {
		return &ScopeClosed{}
	}
	if fromParent {
		if _, ok := reason.(*ParentCanceled); ok {
			return reason
		}
		return &ParentCanceled{Parent: reason}
	}
	return reason
}
