package clock

import "time"

// Clock supplies the current time so core logic can be tested at fixed instants.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a clock pinned to one instant, adjustable between assertions.
type Fixed struct {
	now time.Time
}

// NewFixed returns a clock that always reports t until Set is called.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	return f.now
}

// Set moves the fixed clock to t.
func (f *Fixed) Set(t time.Time) {
	f.now = t.UTC()
}
