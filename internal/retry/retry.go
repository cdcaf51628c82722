// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retry provides bounded retry with backoff, shared by the
// acquisition and analysis stages.
package retry

import (
	"context"
	"errors"
	"math"
	"time"
)

// Policy controls how Do schedules attempts.
type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// BaseDelay is the wait after a failed attempt. With Exponential set
	// it doubles each attempt: base, 2*base, 4*base, ...
	BaseDelay time.Duration

	// Exponential selects exponential backoff over a fixed delay.
	Exponential bool
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Do stops immediately instead of retrying. It is
// the classifier distinguishing fatal failures from transient ones.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn until it succeeds, returns a permanent error, or the attempt
// budget is exhausted. Between attempts it waits per the policy; a context
// cancelled during a wait returns ctx.Err(). The last error is returned
// unwrapped from any Permanent marker so callers can inspect it with
// errors.Is.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := p.BaseDelay
			if p.Exponential {
				delay = time.Duration(math.Pow(2, float64(attempt-2))) * p.BaseDelay
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err
	}
	return lastErr
}
