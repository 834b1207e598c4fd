package trace

import (
	"context"
	"fmt"
	"math"
	"time"
)

// RetryConfig configures retry behavior with exponential backoff.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts
	MaxRetries int

	// InitialDelay is the initial backoff delay
	InitialDelay time.Duration

	// MaxDelay caps the backoff delay
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier
	Multiplier float64

	// RespectRetryAfter uses the Retry-After header when present
	RespectRetryAfter bool
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialDelay:      time.Second,
		MaxDelay:          60 * time.Second,
		Multiplier:        2.0,
		RespectRetryAfter: true,
	}
}

// Retry executes fn with exponential backoff until it succeeds, the context
// is cancelled, or MaxRetries attempts beyond the first have failed. Rate
// limit errors carrying a Retry-After override the computed delay.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(cfg, attempt-1, lastErr)
			select {
			case <-ctx.Done():
				return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	return zero, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}

// backoffDelay computes the wait before retry number attempt+1:
// min(InitialDelay × Multiplier^attempt, MaxDelay), overridden by the
// source's Retry-After when configured to respect it.
func backoffDelay(cfg RetryConfig, attempt int, err error) time.Duration {
	if cfg.RespectRetryAfter {
		if rle, ok := IsRateLimitError(err); ok && rle.RetryAfter > 0 {
			return rle.RetryAfter
		}
	}
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt)))
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}
