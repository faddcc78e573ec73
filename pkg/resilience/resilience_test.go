package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
)

var errBoom = errors.New("boom")

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", RetryConfig{MaxAttempts: 4, InitialDelay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond}, func() error {
		calls++
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, calls)
}

func TestRetryStopsOnPermanent(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond}, func() error {
		calls++
		return Permanent(errBoom)
	})
	assert.Equal(t, errBoom, err)
	assert.Equal(t, 1, calls)
	assert.Nil(t, Permanent(nil))
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, "op", RetryConfig{MaxAttempts: 3, InitialDelay: time.Hour}, func() error {
		return errBoom
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelayIsCapped(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 2 * time.Second, Multiplier: 10, JitterFraction: 0.1}
	assert.Equal(t, 2*time.Second, cfg.delay(5))
	assert.InDelta(t, float64(time.Second), float64(cfg.withDefaults().delay(1)), float64(100*time.Millisecond))
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker("cache", CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: 20 * time.Millisecond})
	fail := func() error { return errBoom }

	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateOpen, cb.GetState())
	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrCircuitOpen)

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreakerIgnoredErrors(t *testing.T) {
	errMiss := errors.New("miss")
	cb := NewCircuitBreaker("cache", CircuitBreakerConfig{
		FailureThreshold: 1,
		Ignore:           func(err error) bool { return errors.Is(err, errMiss) },
	})
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errMiss }), errMiss)
	}
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.Equal(t, 503, apperrors.HTTPStatusCode(err))

	err = WithTimeout(context.Background(), 0, "direct", func(ctx context.Context) error { return errBoom })
	assert.ErrorIs(t, err, errBoom)
}

func TestTimedReturnsValue(t *testing.T) {
	n, err := Timed(context.Background(), time.Second, "count", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Timed(ctx, time.Second, "cancelled", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCircuitBreakerReportsTransitions(t *testing.T) {
	var seen []string
	now := time.Unix(1_700_000_000, 0)
	cb := NewCircuitBreaker("cache", CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     time.Minute,
		OnStateChange: func(name string, from, to State) {
			seen = append(seen, name+":"+from.String()+"->"+to.String())
		},
	})
	cb.now = func() time.Time { return now }

	assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Execute(func() error { return nil }))

	assert.Equal(t, []string{
		"cache:closed->open",
		"cache:open->half-open",
		"cache:half-open->open",
		"cache:open->half-open",
		"cache:half-open->closed",
	}, seen)
}
