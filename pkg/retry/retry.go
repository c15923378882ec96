// Package retry provides bounded retry with exponential backoff for
// chat delivery. The core listing and watch paths never retry; only
// the transport adapter wraps its sends in this.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Config holds retry tuning.
type Config struct {
	MaxAttempts int           // maximum number of attempts (0 = unbounded)
	InitialWait time.Duration // wait before the second attempt
	MaxWait     time.Duration // backoff ceiling
	Multiplier  float64       // backoff multiplier
	Jitter      float64       // jitter factor (0-1)
}

// DefaultConfig returns the tuning used for chat sends.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     30 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.1,
	}
}

// TransientError marks an error as worth retrying. After, when set,
// is the server-requested minimum wait (flood-limit responses carry
// one) and takes precedence over the computed backoff.
type TransientError struct {
	Err   error
	After time.Duration
}

func (e TransientError) Error() string {
	return e.Err.Error()
}

func (e TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps an error to mark it retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return TransientError{Err: err}
}

// TransientAfter marks an error retryable no sooner than the given wait.
func TransientAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return TransientError{Err: err, After: after}
}

// IsTransient reports whether an error is marked for retry.
func IsTransient(err error) bool {
	var te TransientError
	return errors.As(err, &te)
}

// Do executes fn until it succeeds, returns a non-transient error,
// the attempt budget is spent, or ctx is done.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error

	for attempt := 1; cfg.MaxAttempts == 0 || attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var te TransientError
		if !errors.As(err, &te) {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := float64(cfg.InitialWait) * math.Pow(cfg.Multiplier, float64(attempt-1))
		if wait > float64(cfg.MaxWait) {
			wait = float64(cfg.MaxWait)
		}
		if cfg.Jitter > 0 {
			wait += wait * cfg.Jitter * (rand.Float64()*2 - 1)
		}
		if te.After > 0 && float64(te.After) > wait {
			wait = float64(te.After)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(wait)):
		}
	}

	return lastErr
}
