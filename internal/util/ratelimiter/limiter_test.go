package ratelimiter

import (
	"sync"
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

func newTestLimiter(interval time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(interval)
	l.now = clock.Now
	return l, clock
}

func TestLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		delays   []time.Duration // clock advance before each Allow() call
		want     []bool          // expected Allow() results
	}{
		{
			name:     "first call always allowed",
			interval: 100 * time.Millisecond,
			delays:   []time.Duration{0},
			want:     []bool{true},
		},
		{
			name:     "second call immediately after is blocked",
			interval: 100 * time.Millisecond,
			delays:   []time.Duration{0, 0},
			want:     []bool{true, false},
		},
		{
			name:     "call after interval is allowed",
			interval: 50 * time.Millisecond,
			delays:   []time.Duration{0, 60 * time.Millisecond},
			want:     []bool{true, true},
		},
		{
			name:     "multiple rapid calls",
			interval: 100 * time.Millisecond,
			delays:   []time.Duration{0, 10 * time.Millisecond, 10 * time.Millisecond, 90 * time.Millisecond},
			want:     []bool{true, false, false, true},
		},
		{
			name:     "zero interval allows everything",
			interval: 0,
			delays:   []time.Duration{0, 0, 0},
			want:     []bool{true, true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter, clock := newTestLimiter(tt.interval)

			for i, delay := range tt.delays {
				clock.Advance(delay)

				allowed, waitTime := limiter.Allow("task")
				assert.Equal(t, tt.want[i], allowed, "call %d", i)
				if allowed {
					assert.Zero(t, waitTime, "call %d", i)
				} else {
					assert.Positive(t, waitTime, "call %d", i)
				}
			}
		})
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter, clock := newTestLimiter(time.Second)

	ok, _ := limiter.Allow("a")
	require.True(t, ok)
	ok, _ = limiter.Allow("b")
	require.True(t, ok)

	ok, wait := limiter.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	clock.Advance(400 * time.Millisecond)
	_, wait = limiter.Allow("b")
	assert.Equal(t, 600*time.Millisecond, wait)
	assert.Equal(t, 2, limiter.Len())
}

func TestLimiter_Forget(t *testing.T) {
	limiter, _ := newTestLimiter(time.Hour)

	ok, _ := limiter.Allow("a")
	require.True(t, ok)
	ok, _ = limiter.Allow("a")
	require.False(t, ok)

	limiter.Forget("a")
	assert.Equal(t, 0, limiter.Len())

	ok, _ = limiter.Allow("a")
	assert.True(t, ok)
}

func TestLimiter_Interval(t *testing.T) {
	interval := 500 * time.Millisecond
	limiter := New(interval)
	assert.Equal(t, interval, limiter.Interval())
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := New(time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("shared"); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, allowedCount)
}
