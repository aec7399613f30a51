package bmp280

import (
	"time"

	"envnode-go/x/timex"
)

// DefaultPeriod is the minimum spacing between bus transactions when the
// caller does not configure one.
const DefaultPeriod = 25 * time.Millisecond

// LimiterState is the externally visible state of a Limiter.
type LimiterState uint8

const (
	Idle LimiterState = iota
	Locked
)

func (s LimiterState) String() string {
	if s == Locked {
		return "locked"
	}
	return "idle"
}

// Limiter enforces a minimum interval between consecutive register accesses
// on one device. It holds only a deadline; Acquire spins on the clock until
// the deadline passes and then re-arms it. There is no timer callback.
type Limiter struct {
	clock    timex.Clock
	period   time.Duration
	deadline time.Time
}

// NewLimiter returns an idle limiter. period <= 0 selects DefaultPeriod.
func NewLimiter(period time.Duration, clock timex.Clock) *Limiter {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Limiter{clock: timex.Or(clock), period: period}
}

// Period returns the configured spacing.
func (l *Limiter) Period() time.Duration { return l.period }

// State reports Locked while the deadline has not yet passed.
func (l *Limiter) State() LimiterState {
	if l.deadline.IsZero() || !l.clock.Now().Before(l.deadline) {
		return Idle
	}
	return Locked
}

// Acquire blocks (busy-wait) until the limiter is idle, then locks it for
// one period starting now.
func (l *Limiter) Acquire() {
	now := l.clock.Now()
	for now.Before(l.deadline) {
		now = l.clock.Now()
	}
	l.deadline = now.Add(l.period)
}
