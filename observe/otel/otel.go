// Package otel bridges the debug event stream onto a structured slog.Logger,
// one log line per scope/task lifecycle transition, with scope and task ids
// carried as attributes the way a span's trace/span id would be. It exists
// for deployments that want lifecycle visibility in their existing log
// pipeline without standing up a Prometheus scrape target.
package otel

import (
	"context"
	"log/slog"

	"github.com/kirtask/structscope/debug"
)

// Bridge subscribes to the debug event stream and logs one structured
// record per event through log.
type Bridge struct {
	log         *slog.Logger
	unsubscribe func()
}

// New subscribes to the debug event stream and logs through log (slog.Default
// if nil). Call Close to unsubscribe.
func New(log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	b := &Bridge{log: log}
	b.unsubscribe = debug.Subscribe(b.observe)
	return b
}

// Close stops logging further events.
func (b *Bridge) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

func (b *Bridge) observe(e debug.Event) {
	ctx := context.Background()
	switch e.Kind {
	case debug.ScopeOpened:
		b.log.DebugContext(ctx, "scope opened", "scope_id", e.ScopeID, "scope_type", string(e.ScopeType))
	case debug.ScopeClosed:
		b.log.DebugContext(ctx, "scope closed", "scope_id", e.ScopeID, "scope_type", string(e.ScopeType))
	case debug.TaskRegistered:
		b.log.DebugContext(ctx, "task registered", "task_id", e.TaskID, "task_name", e.TaskName, "parent_scope_id", e.ParentScopeID, "parent_scope_type", string(e.ScopeType))
	case debug.TaskUpdated:
		level := slog.LevelDebug
		if e.Status == "failed" {
			level = slog.LevelWarn
		}
		b.log.Log(ctx, level, "task updated",
			"task_id", e.TaskID, "task_name", e.TaskName, "status", e.Status,
			"started_at", e.Timing.StartTime, "ended_at", e.Timing.EndTime)
	}
}
