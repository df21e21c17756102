// Package retry provides bounded retry with exponential backoff for the
// outbound provider calls made by the transport layer. The trust core itself
// never retries; policy lives out here with the transport.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds a retry loop.
type Policy struct {
	MaxAttempts  int           // total attempts, including the first
	InitialDelay time.Duration // delay before the second attempt
	MaxDelay     time.Duration // backoff ceiling
	Multiplier   float64       // backoff growth factor
}

// DefaultPolicy suits short provider API calls.
var DefaultPolicy = Policy{
	MaxAttempts:  3,
	InitialDelay: 200 * time.Millisecond,
	MaxDelay:     3 * time.Second,
	Multiplier:   2.0,
}

// Retryable decides whether an error is worth another attempt.
type Retryable func(error) bool

// Do runs fn until it succeeds, the policy is exhausted, the error is not
// retryable, or the context ends.
func Do[T any](ctx context.Context, policy Policy, retryable Retryable, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	delay := policy.InitialDelay

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("context cancelled: %w", err)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable(err) {
			return zero, err
		}

		if attempt < policy.MaxAttempts-1 {
			select {
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * policy.Multiplier)
				if delay > policy.MaxDelay {
					delay = policy.MaxDelay
				}
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}

	return zero, fmt.Errorf("max attempts exceeded: %w", lastErr)
}
