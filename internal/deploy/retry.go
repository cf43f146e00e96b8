package deploy

import (
	"context"
	"fmt"
	"time"
)

// Policy controls retries for network-bound steps like cloning and
// dependency installation.
type Policy struct {
	// Attempts is the total number of tries, including the first
	Attempts int
	// InitialDelay is the wait before the second attempt
	InitialDelay time.Duration
	// Backoff multiplies the delay after each failed attempt
	Backoff float64
}

// DefaultPolicy retries flaky operations three times, backing off between
// attempts.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:     3,
		InitialDelay: time.Second,
		Backoff:      2.0,
	}
}

// Do runs fn until it succeeds or attempts are exhausted. onRetry, if set,
// is called before each wait with the attempt number that just failed.
func (p Policy) Do(ctx context.Context, onRetry func(attempt int, err error), fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.InitialDelay

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		if onRetry != nil {
			onRetry(attempt, lastErr)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * p.Backoff)
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
