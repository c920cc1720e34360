package scraper

import (
	"context"
	"errors"
	"net"
	"time"
)

// Failure classification for proxied provider calls. Each class maps to its
// own backoff so a rate-limited call waits longer than a flaky one, and a
// rejected payload is never retried at all.
var (
	ErrTimeout     = errors.New("provider timed out")
	ErrRateLimited = errors.New("provider rate limit exceeded")
	ErrValidation  = errors.New("provider rejected the request")
)

func classify(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ErrTimeout
	default:
		return err
	}
}

func retryable(err error) bool {
	if errors.Is(err, ErrValidation) || errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func backoffFor(err error, attempt int) time.Duration {
	switch {
	case errors.Is(err, ErrRateLimited):
		// exponential: 2s, 4s, 8s, ...
		return (2 * time.Second) << attempt
	case errors.Is(err, ErrTimeout):
		return 5 * time.Second
	default:
		return time.Second
	}
}

// withRetry runs fn up to maxAttempts times, sleeping the classified backoff
// between attempts. The last error is returned when the budget is exhausted.
func withRetry(ctx context.Context, maxAttempts int, sleep func(time.Duration), fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = classify(fn()); err == nil {
			return nil
		}
		if !retryable(err) || attempt == maxAttempts-1 {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		sleep(backoffFor(err, attempt))
	}
	return err
}
