package ai

import (
	"context"
	"time"

	"edunexa-backend/internal/logger"
)

// RetryPolicy bounds re-attempts of a single generation call. Only
// transient-overload failures are retried; anything else propagates
// immediately.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy matches the upstream model's observed overload
// behavior: a few fixed-delay attempts are enough at our request volume.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Delay: 5 * time.Second}

// WithRetry executes op up to p.MaxAttempts times. Between failed attempts
// it waits p.Delay, but only when the failure is transient overload and
// attempts remain. The wait is a select on the context so a cancelled
// request stops immediately and no other request is ever blocked.
func WithRetry(ctx context.Context, p RetryPolicy, op func() (string, error)) (string, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		out, err := op()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !IsTransientOverload(err) {
			return "", err
		}
		if i == attempts-1 {
			break
		}

		logger.Warn("Gemini overloaded, retrying",
			"attempt", i+1,
			"max_attempts", attempts,
			"delay", p.Delay.String())

		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", lastErr
}
