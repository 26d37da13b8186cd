package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps snapshots and drives the fly-to delay. Tests swap in a fake
// with SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Clock returns the current time source.
func Clock() clockwork.Clock { return clock }

// Now is the current time on the package clock, in UTC.
func Now() time.Time { return clock.Now().UTC() }
