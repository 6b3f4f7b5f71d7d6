package structscope

import "github.com/kirtask/structscope/debug"

// DebugEvent is a lifecycle event emitted at scope/task instrumentation
// points once debug emission is enabled.
type DebugEvent = debug.Event

// EnableTaskDebug turns on lifecycle event emission; logger (nil for
// slog.Default()) receives any debug subscriber's panic.
func EnableTaskDebug(logger debug.Logger) { debug.Enable(logger) }

// DisableTaskDebug turns event emission back off.
func DisableTaskDebug() { debug.Disable() }

// SubscribeTaskDebug registers cb to receive every emitted DebugEvent. The
// returned func unsubscribes.
func SubscribeTaskDebug(cb func(DebugEvent)) (unsubscribe func()) {
	return debug.Subscribe(cb)
}
