package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var t0 = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSlidingWindow_CeilingAndExpiry(t *testing.T) {
	clock := &fakeClock{now: t0}
	limiter := NewSlidingWindow(3, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 2-i, res.Remaining)
		clock.Advance(time.Second)
	}

	res, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, t0.Add(time.Minute), res.ResetAt)
	assert.Equal(t, 57*time.Second, res.RetryAfter)

	// The first timestamp is dropped exactly at t0 + window.
	clock.Advance(57 * time.Second)
	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestSlidingWindow_RejectedRequestsAreNotRecorded(t *testing.T) {
	clock := &fakeClock{now: t0}
	limiter := NewSlidingWindow(1, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	res, _ := limiter.Allow(ctx, "k")
	require.True(t, res.Allowed)

	for i := 0; i < 5; i++ {
		clock.Advance(10 * time.Second)
		res, _ = limiter.Allow(ctx, "k")
		require.False(t, res.Allowed)
	}

	clock.Advance(10 * time.Second)
	res, _ = limiter.Allow(ctx, "k")
	assert.True(t, res.Allowed, "only the admitted request counts against the window")
}

func TestSlidingWindow_KeysAreIndependent(t *testing.T) {
	limiter := NewSlidingWindow(1, time.Minute, WithClock(func() time.Time { return t0 }))
	ctx := context.Background()

	a, _ := limiter.Allow(ctx, "a")
	b, _ := limiter.Allow(ctx, "b")
	a2, _ := limiter.Allow(ctx, "a")

	assert.True(t, a.Allowed)
	assert.True(t, b.Allowed)
	assert.False(t, a2.Allowed)
}

func TestSlidingWindow_Concurrent(t *testing.T) {
	limiter := NewSlidingWindow(50, time.Minute, WithClock(func() time.Time { return t0 }))
	ctx := context.Background()

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := limiter.Allow(ctx, "shared")
			if err == nil && res.Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), admitted.Load())
}

func TestSlidingWindow_Sweep(t *testing.T) {
	clock := &fakeClock{now: t0}
	limiter := NewSlidingWindow(5, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	_, _ = limiter.Allow(ctx, "old")
	clock.Advance(30 * time.Second)
	_, _ = limiter.Allow(ctx, "recent")
	require.Equal(t, 2, limiter.Keys())

	assert.Equal(t, 1, limiter.Sweep(t0.Add(time.Minute)))
	assert.Equal(t, 1, limiter.Keys())
}

func TestSlidingWindow_CanceledContext(t *testing.T) {
	limiter := NewSlidingWindow(1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := limiter.Allow(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSlidingWindow_Defaults(t *testing.T) {
	limiter := NewSlidingWindow(0, 0)
	assert.Equal(t, DefaultLimit, limiter.limit)
	assert.Equal(t, DefaultWindow, limiter.window)
}
