// Package retry provides bounded retries with exponential backoff and
// jitter, used for calls to external collaborators such as tool
// registries and prompt clients.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseWait    = 250 * time.Millisecond
)

// Func is an operation that can be retried.
type Func func() error

type config struct {
	maxAttempts int
	baseWait    time.Duration
}

// Option configures Do.
type Option func(*config)

// WithMaxAttempts sets the total number of attempts, including the first.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseWait sets the wait before the second attempt; subsequent waits
// double, with up to 10% jitter added.
func WithBaseWait(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.baseWait = d
		}
	}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error as non-retryable: Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs f until it succeeds, the attempt budget is exhausted, the
// error is marked Permanent, or the context is canceled. The last error
// is returned on failure.
func Do(ctx context.Context, f Func, opts ...Option) error {
	c := &config{maxAttempts: DefaultMaxAttempts, baseWait: DefaultBaseWait}
	for _, opt := range opts {
		opt(c)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(float64(c.baseWait) * math.Pow(2, float64(attempt-1)))
			jitter := time.Duration(rand.Float64() * float64(backoff) * 0.1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		err := f()
		if err == nil {
			return nil
		}
		var permanent *permanentError
		if errors.As(err, &permanent) {
			return permanent.err
		}
		lastErr = err
	}
	return lastErr
}
