package combinator

import (
	"context"

	"github.com/kirtask/structscope/debug"
	"github.com/kirtask/structscope/scope"
	"github.com/kirtask/structscope/strict"
)

// Branch fires cb in a child scope linked to the scope ambient in ctx and
// returns immediately — cb runs concurrently with whatever the caller does
// next. Branch tasks are cancelled when the parent scope closes or when cb
// returns, whichever comes first. Calling Branch outside any scope degrades
// gracefully (cb still runs, in its own unparented scope) but reports a
// strict-mode violation, since a branch with no parent can outlive
// everything that created it.
func Branch(ctx context.Context, cb func(c *Ctx) error) {
	parent, hasParent := scope.FromContext(ctx)
	if !hasParent {
		strict.Report(strict.BranchWithoutScope, "branch called with no enclosing scope")
	}

	var s *scope.Scope
	if hasParent {
		s = scope.NewChild(parent, debug.ScopeBranch)
	} else {
		s = scope.New(ctx, debug.ScopeBranch)
	}
	scopedCtx := s.WithStore(ctx)
	c := &Ctx{Scope: s, ctx: scopedCtx}

	go func() {
		defer s.Close()
		_ = cb(c)
	}()
}
