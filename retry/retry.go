package retry

import (
	"context"
	"time"
)

// Policy bounds a retried operation. An operation runs at most
// MaxRetries+1 times; the delay before each retry starts at InitialDelay
// and grows by BackoffMultiplier, capped at MaxDelay.
type Policy struct {
	MaxRetries        int
	InitialDelay      time.Duration
	BackoffMultiplier float64
	MaxDelay          time.Duration
}

// Predicate decides whether an error observed on the given attempt
// (0-based) should be retried. A false return aborts immediately.
type Predicate func(err error, attempt int) bool

// Do runs op under the policy, retrying every failure.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	return DoIf(ctx, p, op, nil)
}

// DoIf runs op under the policy, consulting retryable before each retry.
// The last error is returned unchanged once attempts are exhausted.
func DoIf[T any](ctx context.Context, p Policy, op func(context.Context) (T, error), retryable Predicate) (T, error) {
	var zero T
	var lastErr error

	delay := p.InitialDelay
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if retryable != nil && !retryable(err, attempt) {
			return zero, err
		}
		if attempt == p.MaxRetries {
			break
		}

		wait := delay
		if p.MaxDelay > 0 && wait > p.MaxDelay {
			wait = p.MaxDelay
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return zero, ctx.Err()
		}

		delay = time.Duration(float64(delay) * p.BackoffMultiplier)
	}

	return zero, lastErr
}
