package deploy

import (
	"context"
	"time"
)

// Clock abstracts waiting so convergence polling can be tested with a fake
// instead of real elapsed time.
type Clock interface {
	// Sleep blocks for d or until the context is cancelled.
	Sleep(ctx context.Context, d time.Duration) error
	Now() time.Time
}

// RealClock waits on the wall clock.
type RealClock struct{}

// Sleep implements Clock.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Now implements Clock.
func (RealClock) Now() time.Time {
	return time.Now()
}
