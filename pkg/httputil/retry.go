package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient failure (timeout, 5xx, 429) that [Retry]
// may attempt again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Backoff describes a retry schedule. The delay doubles after each attempt.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff is three attempts starting at one second.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Retry calls fn until it succeeds, returns an error that is not a
// [RetryableError], or b.Attempts calls have failed. It returns ctx.Err() if
// the context ends while waiting.
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	attempts, delay := max(b.Attempts, 1), b.Delay
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff runs [Retry] with [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultBackoff, fn)
}

// IsRetryable reports whether err wraps a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
