package ratelimiter

import (
	"sync"
	"time"
)

// Limiter provides time-based rate limiting per key.
// It allows one action per interval for each key and is safe for
// concurrent use.
type Limiter struct {
	mu          sync.Mutex
	interval    time.Duration
	lastAllowed map[string]time.Time
	now         func() time.Time
}

// New creates a new rate limiter with the specified interval.
// Actions will be rate-limited to at most one per interval and key.
// A zero interval allows every action.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval:    interval,
		lastAllowed: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Allow checks if an action for key is allowed at this time.
// Returns true if allowed (and records this as the last allowed time),
// or false with the remaining wait duration if rate-limited.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	last, seen := l.lastAllowed[key]
	if !seen {
		l.lastAllowed[key] = now
		return true, 0
	}

	timeSinceLast := now.Sub(last)
	if timeSinceLast >= l.interval {
		l.lastAllowed[key] = now
		return true, 0
	}

	return false, l.interval - timeSinceLast
}

// Forget drops the state of key, allowing its next action immediately.
func (l *Limiter) Forget(key string) {
	l.mu.Lock()
	delete(l.lastAllowed, key)
	l.mu.Unlock()
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lastAllowed)
}

// Interval returns the configured rate limit interval.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
