package timer

import (
	"context"
	"log/slog"
	"time"
)

// Sleep blocks for duration or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(duration)
	defer stopTimer(t)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Every calls action at a fixed interval until ctx is done.
func Every(ctx context.Context, interval time.Duration, action func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Ticker stopped", "interval", interval)
			return ctx.Err()
		case <-ticker.C:
			action()
		}
	}
}

// Stops the timer and drains it.
func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
