package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time. Components that depend on elapsed time
// take a Clock instead of calling time.Now directly so tests can drive
// time deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

// Mock is a manually advanced Clock for tests.
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMock creates a Mock frozen at start.
func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

// Now returns the mock's current time.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the mock's time forward by d. Negative d moves it backward.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set pins the mock's time to t.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}
