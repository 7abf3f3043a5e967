package upstream

import (
	"context"
	"time"
)

// RetryPolicy configures the retry executor. It is a plain value recreated
// per call site, never persisted.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the wait after the first failed attempt.
	BaseDelay time.Duration
	// ExponentialBackoff doubles the delay after every failed attempt;
	// when false the delay stays at BaseDelay.
	ExponentialBackoff bool
	// RetryUpstreamFailures treats KindUpstreamFailure as recoverable.
	// Rate-limit and network failures are always recoverable; authorization
	// failures never are.
	RetryUpstreamFailures bool
}

func (p RetryPolicy) normalize() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Millisecond
	}
	return p
}

func (p RetryPolicy) retryable(err *ClassifiedError) bool {
	if err.Recoverable() {
		return true
	}
	return p.RetryUpstreamFailures && err.Kind == KindUpstreamFailure
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	if !p.ExponentialBackoff {
		return p.BaseDelay
	}
	return p.BaseDelay << (attempt - 1)
}

// Execute runs op up to policy.MaxAttempts times, classifying each failure.
// A non-recoverable failure stops immediately regardless of remaining
// attempts. The backoff sleep suspends only this call: it waits on a timer
// so goroutines serving other requests are never blocked. When ctx is
// cancelled during a backoff wait the context error is returned; with a
// background context the executor runs to policy exhaustion.
func Execute[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, error) {
	policy = policy.normalize()

	var zero T
	var lastErr *ClassifiedError

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}

		lastErr = Classify(err)
		if !policy.retryable(lastErr) {
			return zero, lastErr
		}
		if attempt == policy.MaxAttempts {
			break
		}

		timer := time.NewTimer(policy.delay(attempt))
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
