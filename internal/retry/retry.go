// Package retry applies a bounded attempt loop with pacing and exponential backoff
// around a single-attempt operation.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMaxRetriesExceeded is returned when every attempt failed.
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy describes how many attempts to make and how long to wait around them.
type Policy struct {
	// Before runs ahead of every attempt, including the first.
	Before func(ctx context.Context) error
	// Backoff returns the wait after failed attempt n (0-based). It is not applied after the last attempt.
	Backoff     func(attempt int) time.Duration
	Sleep       Sleeper
	MaxAttempts int
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

type againError struct{ err error }

func (e *againError) Error() string { return e.err.Error() }
func (e *againError) Unwrap() error { return e.err }

// Permanent marks err as final: Do stops and returns it unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return &permanentError{err: err}
}

// Again marks err as "nothing yet": Do moves to the next attempt without backoff.
func Again(err error) error {
	if err == nil {
		return nil
	}

	return &againError{err: err}
}

// Do runs op until it succeeds, returns a Permanent error, or attempts run out.
//
// A plain error on the last attempt is returned wrapped with ErrMaxRetriesExceeded so
// callers see both the kind and the underlying message. If only Again errors occurred
// the result wraps ErrMaxRetriesExceeded and the last Again cause.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T

	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastAgain error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if p.Before != nil {
			if err := p.Before(ctx); err != nil {
				return zero, err
			}
		}

		v, err := op(ctx, attempt)
		if err == nil {
			return v, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}

		var again *againError
		if errors.As(err, &again) {
			lastAgain = again.err

			continue
		}

		if attempt == p.MaxAttempts-1 {
			return zero, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		if p.Backoff != nil {
			if err := sleep(ctx, p.Backoff(attempt)); err != nil {
				return zero, err
			}
		}
	}

	if lastAgain != nil {
		return zero, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastAgain)
	}

	return zero, ErrMaxRetriesExceeded
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
