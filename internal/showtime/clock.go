package showtime

import "time"

// Clock supplies the current instant to schedule logic so that
// lifecycle decisions can be tested against a frozen time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystemClock returns a Clock backed by time.Now.
func NewSystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

type fixedClock struct {
	now time.Time
}

// NewFixedClock returns a Clock that always reports the same instant.
func NewFixedClock(t time.Time) Clock { return fixedClock{now: t} }

func (f fixedClock) Now() time.Time { return f.now }
