// Package retry runs an operation again after transient failures, with
// exponential backoff between attempts.
//
// Retries are opt-in: the zero Config performs exactly one attempt.
package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Config holds configuration for retry behavior.
type Config struct {
	// MaxRetries is the number of attempts after the first (0 means a single attempt).
	MaxRetries int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the delay after each retry (default: 2.0).
	BackoffFactor float64

	// Jitter adds rand(0, backoff) to each delay.
	Jitter bool
}

// IsRetryableFunc determines if an error should trigger a retry.
type IsRetryableFunc func(error) bool

// OnRetryFunc is called before each retry attempt (optional, for logging/metrics).
// attempt is 1-indexed (first retry is attempt 1).
type OnRetryFunc func(attempt int, err error, backoff time.Duration)

func (c Config) withDefaults() Config {
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = 2.0
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	return c
}

// backoff returns the delay before retry number attempt (1-indexed), without jitter.
func (c Config) backoff(attempt int) time.Duration {
	d := float64(c.InitialBackoff)
	for i := 1; i < attempt; i++ {
		d *= c.BackoffFactor
		if d >= float64(c.MaxBackoff) {
			return c.MaxBackoff
		}
	}
	return min(time.Duration(d), c.MaxBackoff)
}

// Do calls fn until it succeeds, returns a non-retryable error, the retries
// are exhausted, or ctx is done.
func Do[T any](
	ctx context.Context,
	cfg Config,
	isRetryable IsRetryableFunc,
	onRetry OnRetryFunc,
	fn func() (T, error),
) (T, error) {
	var zero T
	cfg = cfg.withDefaults()

	result, err := fn()
	for attempt := 1; err != nil && attempt <= cfg.MaxRetries; attempt++ {
		if isRetryable != nil && !isRetryable(err) {
			return zero, err
		}

		wait := cfg.backoff(attempt)
		if cfg.Jitter {
			wait += rand.N(wait)
		}
		if onRetry != nil {
			onRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("context cancelled while retrying: %w", ctx.Err())
		case <-timer.C:
		}

		result, err = fn()
	}

	if err == nil {
		return result, nil
	}
	if cfg.MaxRetries > 0 && (isRetryable == nil || isRetryable(err)) {
		return zero, fmt.Errorf("operation failed after %d retries: %w", cfg.MaxRetries, err)
	}
	return zero, err
}

// DoVoid is like Do but for functions that don't return a value.
func DoVoid(
	ctx context.Context,
	cfg Config,
	isRetryable IsRetryableFunc,
	onRetry OnRetryFunc,
	fn func() error,
) error {
	_, err := Do(ctx, cfg, isRetryable, onRetry, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
