// Package concur provides the scope-aware cancellation helpers: Sleep,
// Timeout, Retry and Limit. All of them treat ctx.Done() as the
// cancellation signal and return context.Cause(ctx) as the rejection
// reason, matching the rest of the core's cause-propagation convention.
package concur

import (
	"context"
	"time"
)

// Sleep blocks for d, or until ctx is done, whichever comes first. If ctx is
// already done, it returns immediately without starting a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return context.Cause(ctx)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
