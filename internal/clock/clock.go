package clock

import "time"

// Clock abstracts wall-clock reads so TTL and timestamp logic is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock pinned to a settable instant, for tests.
type Fixed struct {
	Instant time.Time
}

func (f *Fixed) Now() time.Time {
	return f.Instant
}

// Advance moves the fixed clock forward.
func (f *Fixed) Advance(d time.Duration) {
	f.Instant = f.Instant.Add(d)
}
