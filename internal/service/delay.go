package service

import (
	"context"
	"time"
)

// SleepDelay is the production delay strategy: it waits in real time,
// honoring context cancellation (implements port.DelayStrategy).
type SleepDelay struct{}

// Wait blocks for d or until the context is cancelled.
func (SleepDelay) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoDelay skips all waits. Used by tests and manual backfills where the
// upstream rate limiter is not a concern.
type NoDelay struct{}

// Wait returns immediately.
func (NoDelay) Wait(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
