// ABOUTME: Retry utilities for outbound calls with exponential backoff
// ABOUTME: Shared by the embedding client and any other flaky network dependency
package util

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// CalculateBackoff returns exponential backoff with jitter
// Base delay is doubled each attempt, with random jitter up to 25%
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second || backoff <= 0 {
		backoff = 30 * time.Second
	}
	half := int64(backoff) / 2
	if half <= 0 {
		return backoff
	}
	// Jitter: -25% to +25%
	jitter := time.Duration(rand.Int64N(half)) - backoff/4
	return backoff + jitter
}

// Retry calls fn up to maxRetries+1 times, sleeping with CalculateBackoff
// between attempts. It stops early when ctx is done or fn returns a
// Permanent error.
func Retry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(ctx context.Context, attempt int) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := Sleep(ctx, CalculateBackoff(baseDelay, attempt)); err != nil {
				return fmt.Errorf("retry aborted after %d attempts: %w", attempt, lastErr)
			}
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if perm, ok := err.(*permanentError); ok {
			return perm.err
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
	}
	return fmt.Errorf("failed after %d attempts: %w", maxRetries+1, lastErr)
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
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

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
