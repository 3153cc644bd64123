package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter_SpacesCalls(t *testing.T) {
	l := NewHostLimiter(100 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "openlibrary.org"))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "first call is immediate")

	start = time.Now()
	require.NoError(t, l.Wait(ctx, "openlibrary.org"))
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)

	start = time.Now()
	require.NoError(t, l.Wait(ctx, "covers.openlibrary.org"))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "hosts are independent")
}

func TestHostLimiter_ZeroIntervalUnlimited(t *testing.T) {
	l := NewHostLimiter(0)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	for range 200 {
		require.NoError(t, l.Wait(ctx, "host"))
	}
}

func TestHostLimiter_Pause(t *testing.T) {
	l := NewHostLimiter(0)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Pause("host", 30*time.Second)
	assert.Equal(t, 30*time.Second, l.PausedFor("host"))

	l.Pause("host", 5*time.Second)
	assert.Equal(t, 30*time.Second, l.PausedFor("host"), "shorter pause keeps the longer deadline")

	now = now.Add(31 * time.Second)
	assert.Zero(t, l.PausedFor("host"))
	assert.Zero(t, l.PausedFor("other"))
}

func TestHostLimiter_WaitHonoursPauseAndContext(t *testing.T) {
	l := NewHostLimiter(0)
	l.Pause("host", time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, "host")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
