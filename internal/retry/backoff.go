// Package retry repeats operations that fail while their peer is still
// coming up, such as dialing a daemon socket that has not been bound
// yet.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ── Stop errors ──────────────────────────────────────────────────────

// StopError ends a retry loop early with its inner error.
type StopError struct {
	Err error
}

func (e *StopError) Error() string { return e.Err.Error() }
func (e *StopError) Unwrap() error { return e.Err }

// Stop marks err as final.  Stop(nil) is nil.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return &StopError{Err: err}
}

// IsStop reports whether err was produced by Stop.
func IsStop(err error) bool {
	var se *StopError
	return errors.As(err, &se)
}

// ── Backoff ──────────────────────────────────────────────────────────

// Backoff is an exponential retry policy.  The zero value retries
// forever, starting at 100ms and capping at 2s.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64 // default 2
	// Attempts is the total number of tries including the first;
	// 0 means until ctx is done.
	Attempts int
	// Jitter spreads each wait by ±25%.
	Jitter bool
	// Retryable filters errors worth another try.  Nil retries
	// everything that is not a StopError.
	Retryable func(error) bool
	// OnRetry is called before each wait.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// Connect returns the policy used for reaching a local daemon.
func Connect(attempts int) *Backoff {
	return &Backoff{
		Initial:    100 * time.Millisecond,
		Max:        2 * time.Second,
		Multiplier: 2,
		Attempts:   attempts,
		Jitter:     true,
	}
}

// Do calls fn until it returns nil, a StopError or a non-retryable
// error, the attempts run out, or ctx is done.  attempt is 1-based.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	delay := b.Initial
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	multiplier := b.Multiplier
	if multiplier <= 0 {
		multiplier = 2
	}
	maxDelay := b.Max
	if maxDelay <= 0 {
		maxDelay = 2 * time.Second
	}

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		switch {
		case err == nil:
			return nil
		case IsStop(err):
			return errors.Unwrap(err)
		case b.Retryable != nil && !b.Retryable(err):
			return err
		case b.Attempts > 0 && attempt >= b.Attempts:
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		wait := delay
		if b.Jitter {
			wait = jitter(delay)
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, wait, err)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-t.C:
		}

		delay = time.Duration(math.Min(float64(delay)*multiplier, float64(maxDelay)))
	}
}

// jitter returns d ±25%, never below a millisecond.
func jitter(d time.Duration) time.Duration {
	quarter := float64(d) * 0.25
	delta := rand.Float64()*2*quarter - quarter
	return time.Duration(math.Max(float64(d)+delta, float64(time.Millisecond)))
}
