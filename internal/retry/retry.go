// Package retry provides bounded retry with exponential backoff for the
// client's connection attempts.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"syscall"
	"time"
)

// Default retry configuration constants
const (
	// DefaultMaxAttempts is the default number of attempts, including the first.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the default base delay between attempts.
	DefaultBaseDelay = 250 * time.Millisecond

	// DefaultMaxDelay caps the delay between attempts.
	DefaultMaxDelay = 5 * time.Second

	// DefaultJitter is the default jitter factor (0.0 to 1.0).
	DefaultJitter = 0.2
)

// Policy bounds a retry loop.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64
}

// DefaultPolicy returns the default Policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		Jitter:      DefaultJitter,
	}
}

// Delay calculates the delay before retry number attempt (0-based) using
// exponential backoff with jitter.
func Delay(baseDelay, maxDelay time.Duration, jitter float64, attempt int) time.Duration {
	delay := float64(baseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}
	if jitter > 0 {
		delay *= 1 - jitter + rand.Float64()*2*jitter
	}
	return time.Duration(delay)
}

// IsTransientError reports whether err is a network failure worth retrying:
// timeouts, refused or reset connections.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Do calls fn until it succeeds, returns a non-transient error, the policy
// is exhausted, or ctx is done. onRetry, if non-nil, is called before each
// wait.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error, onRetry func(attempt int, err error, wait time.Duration)) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil || !IsTransientError(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		wait := Delay(p.BaseDelay, p.MaxDelay, p.Jitter, attempt)
		if onRetry != nil {
			onRetry(attempt+1, err, wait)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}
