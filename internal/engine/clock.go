package engine

import "time"

// Clock abstracts time.Now() so calendar generation can be tested on fixed dates.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
