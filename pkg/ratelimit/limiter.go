package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Acquire blocks until the quota allows another request
	Acquire()
	// Reset resets the rate limiter state
	Reset()
}

// Interval implements a minimum-interval rate limiter. A grant is handed
// out no earlier than 1/N seconds after the previous one; the last-grant
// timestamp is the only shared mutable state and is serialized by the mutex.
type Interval struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex

	// injectable clock for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewInterval creates a limiter allowing callsPerSecond grants per second.
func NewInterval(callsPerSecond float64) *Interval {
	if callsPerSecond <= 0 {
		callsPerSecond = 1
	}
	return &Interval{
		interval: time.Duration(float64(time.Second) / callsPerSecond),
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Acquire blocks the caller until at least one interval has elapsed since
// the previous grant. The sleep happens under the mutex, so waiting callers
// queue in arrival order and exactly one passes per interval.
func (l *Interval) Acquire() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		if wait := l.interval - l.now().Sub(l.last); wait > 0 {
			l.sleep(wait)
		}
	}
	l.last = l.now()
}

// Reset clears the last-grant timestamp so the next Acquire passes immediately
func (l *Interval) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last = time.Time{}
}
