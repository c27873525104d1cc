package retry

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"postboard/internal/domain"
)

func TestDelay_Bounds(t *testing.T) {
	require.Equal(t, 100*time.Millisecond, Delay(100*time.Millisecond, time.Second, 0, 0))
	require.Equal(t, 400*time.Millisecond, Delay(100*time.Millisecond, time.Second, 0, 2))
	require.Equal(t, time.Second, Delay(100*time.Millisecond, time.Second, 0, 10))

	for i := 0; i < 100; i++ {
		d := Delay(100*time.Millisecond, time.Second, 0.2, 0)
		require.GreaterOrEqual(t, d, 79*time.Millisecond)
		require.LessOrEqual(t, d, 121*time.Millisecond)
	}
}

func TestIsTransientError(t *testing.T) {
	require.False(t, IsTransientError(nil))
	require.True(t, IsTransientError(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)))
	require.False(t, IsTransientError(domain.ErrKeyNotFound))
	require.False(t, IsTransientError(domain.ErrInvalidSignature))
}

func fastPolicy(n int) Policy {
	return Policy{MaxAttempts: n, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestDo_RetriesTransient(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), func(context.Context) error {
		calls++
		if calls < 3 {
			return syscall.ECONNREFUSED
		}
		return nil
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDo_GivesUp(t *testing.T) {
	calls, retries := 0, 0
	err := Do(context.Background(), fastPolicy(2), func(context.Context) error {
		calls++
		return syscall.ECONNREFUSED
	}, func(int, error, time.Duration) { retries++ })
	require.ErrorIs(t, err, syscall.ECONNREFUSED)
	require.Equal(t, 2, calls)
	require.Equal(t, 1, retries)
}

func TestDo_NoRetryOnDataErrors(t *testing.T) {
	for _, want := range []error{domain.ErrKeyNotFound, domain.ErrInvalidSignature, errors.New("boom")} {
		calls := 0
		err := Do(context.Background(), fastPolicy(5), func(context.Context) error {
			calls++
			return want
		}, nil)
		require.ErrorIs(t, err, want)
		require.Equal(t, 1, calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
	err := Do(ctx, p, func(context.Context) error {
		cancel()
		return syscall.ECONNREFUSED
	}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
