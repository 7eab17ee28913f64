// Package retry provides an explicit retry helper with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds a retried operation.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy matches the provider call policy: 3 attempts, backoff
// starting at 4s and capped at 10s between attempts.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   4 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Do runs op up to p.MaxAttempts times, sleeping with exponential backoff
// between attempts. The delay doubles each attempt and is capped at
// p.MaxDelay. Returns nil on the first success; otherwise the final error.
// Context cancellation aborts the wait and returns the context error.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	var err error
	delay := p.BaseDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		err = op(ctx)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return err
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
}
