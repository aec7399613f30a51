package timex

import "time"

// Clock is a monotonic time source. time.Now readings carry the monotonic
// component, so Sub/Before on them are immune to wall-clock steps.
type Clock interface {
	Now() time.Time
}

// System is the process clock.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Or returns c, or System if c is nil.
func Or(c Clock) Clock {
	if c == nil {
		return System
	}
	return c
}

// Ms converts an integer millisecond count from config into a Duration.
// Negative values are coerced to 0.
func Ms(ms int) time.Duration {
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}
