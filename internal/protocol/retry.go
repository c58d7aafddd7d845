// internal/protocol/retry.go
// Exponential backoff with jitter, per §5: base 1s, doubling to a 30s
// ceiling, plus uniform jitter up to 10%, for a configured attempt count.

package protocol

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryPolicy configures the backoff schedule for transport-level retries.
type RetryPolicy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
	JitterFrac  float64
}

// DefaultRetryPolicy is the policy named in §5.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
		MaxAttempts: 3,
		JitterFrac:  0.10,
	}
}

// delay returns the backoff duration before attempt n (1-based).
func (p RetryPolicy) delay(n int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < n; i++ {
		d *= 2
		if d > p.MaxDelay {
			d = p.MaxDelay
			break
		}
	}
	jitter := time.Duration(rand.Float64() * p.JitterFrac * float64(d))
	return d + jitter
}

// Do runs fn up to p.MaxAttempts times, retrying only when fn's error is
// retryable per rpcerr.Retryable. It never retries a domain error.
func (p RetryPolicy) Do(ctx context.Context, retryable func(error) bool, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == p.MaxAttempts {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay(attempt)):
		}
	}
	return lastErr
}
