package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"presencegate/pkg/clock"
)

// DefaultMinInterval is the minimum spacing between accepted updates when the
// caller does not configure one. The presence host rejects faster schedules.
const DefaultMinInterval = 15 * time.Second

// Error is returned by Record when the cooldown window has not elapsed.
// RetryAfter carries the exact remaining wait.
type Error struct {
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("rate limited: retry in %s", e.RetryAfter)
}

// Limiter enforces a minimum interval between accepted updates. It keeps a
// single piece of state: the time of the last accepted update.
type Limiter struct {
	minInterval time.Duration
	clk         clock.Clock

	mu           sync.Mutex
	lastAccepted time.Time
	hasAccepted  bool
}

// New creates a Limiter with the given minimum interval. A nil clk falls back
// to the system clock. minInterval must be strictly positive; anything else is
// a programmer error and panics.
func New(minInterval time.Duration, clk clock.Clock) *Limiter {
	if minInterval <= 0 {
		panic(fmt.Sprintf("ratelimit: minimum interval must be positive, got %s", minInterval))
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Limiter{
		minInterval: minInterval,
		clk:         clk,
	}
}

// Record attempts to accept an update now. On success the current time
// becomes the new last-accepted marker and Record returns nil. Inside the
// cooldown window it returns an *Error carrying the remaining wait and leaves
// the marker untouched.
func (l *Limiter) Record() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clk.Now()
	if remaining := l.remainingLocked(now); remaining > 0 {
		return &Error{RetryAfter: remaining}
	}

	l.lastAccepted = now
	l.hasAccepted = true
	return nil
}

// CanRecord reports whether Record would succeed right now. It never mutates
// the limiter.
func (l *Limiter) CanRecord() bool {
	return l.UntilNext() == 0
}

// UntilNext returns the remaining cooldown: zero when an update would be
// accepted, otherwise the positive remainder. It never returns a negative
// duration and never exceeds the minimum interval.
func (l *Limiter) UntilNext() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remainingLocked(l.clk.Now())
}

// Reset clears the last-accepted marker so the next Record unconditionally
// succeeds. Intended for use after the underlying peer connection has been
// torn down and recreated.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastAccepted = time.Time{}
	l.hasAccepted = false
}

// MinInterval returns the configured minimum interval.
func (l *Limiter) MinInterval() time.Duration {
	return l.minInterval
}

func (l *Limiter) remainingLocked(now time.Time) time.Duration {
	if !l.hasAccepted {
		return 0
	}
	remaining := l.minInterval - now.Sub(l.lastAccepted)
	if remaining < 0 {
		return 0
	}
	// A clock that moved backwards never extends the wait past one interval.
	if remaining > l.minInterval {
		return l.minInterval
	}
	return remaining
}
