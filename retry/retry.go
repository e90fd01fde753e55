package retry

import (
	"context"
	"time"
)

// Policy describes a bounded retry loop with a fixed inter-attempt delay.
// The zero value retries once with no delay.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Do runs fn up to p.Attempts times, sleeping p.Delay between failed
// attempts. It returns nil on the first success, otherwise the last error.
// The context is checked before every attempt and while sleeping.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i < attempts-1 {
			if err := sleep(ctx, p.Delay); err != nil {
				return err
			}
		}
	}
	return lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
