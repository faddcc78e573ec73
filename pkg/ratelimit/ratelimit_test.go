package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *time.Time) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	l := New(ctx, limit, window)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowExhaustsAndRefills(t *testing.T) {
	l, now := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), i)
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	*now = now.Add(20 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestResetAndRetryAfter(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
	l.Reset("k")
	assert.True(t, l.Allow("k"))
	assert.Equal(t, time.Minute, l.RetryAfter())
}
