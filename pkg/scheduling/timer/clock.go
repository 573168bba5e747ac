package timer

import "time"

// Clock supplies the current time to a Manager. Tests inject a fake clock
// to move time backwards and exercise rollover handling.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
