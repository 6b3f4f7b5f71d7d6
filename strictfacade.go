package structscope

import "github.com/kirtask/structscope/strict"

// StrictPolicy selects what a strict-mode violation does once reported.
type StrictPolicy = strict.Policy

const (
	StrictOff         = strict.Off
	StrictWarnOnly    = strict.WarnOnly
	StrictThrowOnWarn = strict.ThrowOnWarn
)

// StrictModeError is panicked under StrictThrowOnWarn policy.
type StrictModeError = strict.StrictModeError

// Violation identifies which strict-mode check site fired.
type Violation = strict.Violation

const (
	StrictUnstructuredAsync  = strict.UnstructuredAsync
	StrictIgnoredCancel      = strict.IgnoredCancel
	StrictOrphanAtScopeExit  = strict.OrphanAtScopeExit
	StrictBranchWithoutScope = strict.BranchWithoutScope
)

// EnableStrictModeOptions configures EnableStrictMode.
type EnableStrictModeOptions struct {
	OnWarn func(violation strict.Violation, detail string)
}

// EnableStrictMode arms the misuse-warning subsystem process-wide: ignored
// cancellations, orphaned tasks at scope exit, unstructured async, and
// branch-without-parent-scope all report through it.
func EnableStrictMode(policy StrictPolicy, opts ...EnableStrictModeOptions) {
	var onWarn func(strict.Violation, string)
	if len(opts) > 0 {
		onWarn = opts[0].OnWarn
	}
	strict.Enable(policy, onWarn)
}

// DisableStrictMode turns strict-mode checking back off.
func DisableStrictMode() { strict.Disable() }
