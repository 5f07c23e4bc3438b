package retry

import (
	"context"
	"fmt"
	"time"
)

// Config parameterizes a bounded retry loop.
type Config struct {
	Attempts int
	Interval time.Duration
}

// Do runs fn up to cfg.Attempts times, sleeping cfg.Interval between
// failures. It returns nil on the first success, the last error once the
// attempts are exhausted, or the context error if ctx is cancelled while
// waiting. Both startup readiness gates (store and broker) share this loop.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := fn(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Interval):
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}
