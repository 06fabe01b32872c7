// Package ratelimit provides the sliding-window admission gate shared by
// the aggregation-triggering endpoints. Keys are caller-composed, typically
// "<operation>:<identity>".
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks per-key attempt history over a sliding window. A single
// mutex guards the whole map so check-then-append is atomic per key;
// without it concurrent admission checks could let more than maxAttempts
// through.
type Limiter struct {
	mu       sync.Mutex
	now      func() time.Time
	attempts map[string][]time.Time
}

func New() *Limiter {
	return NewWithClock(time.Now)
}

// NewWithClock injects the clock, for tests.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		now:      now,
		attempts: make(map[string][]time.Time),
	}
}

// Allow records an admission attempt for key. It discards history older
// than window, admits iff fewer than maxAttempts remain, and appends the
// current instant only on admission.
func (l *Limiter) Allow(key string, maxAttempts int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	live := l.compact(key, now, window)
	if len(live) >= maxAttempts {
		return false
	}
	l.attempts[key] = append(live, now)
	return true
}

// Remaining reports how many attempts are left in the current window
// without consuming one.
func (l *Limiter) Remaining(key string, maxAttempts int, window time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := maxAttempts - len(l.windowed(key, l.now(), window))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TimeUntilNext reports how long until the oldest in-window attempt expires
// and a new one would be admitted. Zero means a call would be admitted now.
func (l *Limiter) TimeUntilNext(key string, maxAttempts int, window time.Duration) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	live := l.windowed(key, now, window)
	if len(live) < maxAttempts {
		return 0
	}
	return live[0].Add(window).Sub(now)
}

// Reset clears the history for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// windowed returns the attempts still inside the window, oldest first,
// without mutating state. History is append-only so it is already sorted.
func (l *Limiter) windowed(key string, now time.Time, window time.Duration) []time.Time {
	history := l.attempts[key]
	cutoff := now.Add(-window)
	i := 0
	for i < len(history) && !history[i].After(cutoff) {
		i++
	}
	return history[i:]
}

// compact is windowed plus eviction: expired attempts are dropped from the
// map, and keys whose history emptied are deleted so old keys do not
// accumulate. Callers must hold l.mu.
func (l *Limiter) compact(key string, now time.Time, window time.Duration) []time.Time {
	live := l.windowed(key, now, window)
	if len(live) == 0 {
		delete(l.attempts, key)
		return nil
	}
	l.attempts[key] = live
	return live
}
