package domain

import "github.com/jonboulle/clockwork"

// clock stamps run reports. Tests and fixture generators freeze it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for run reports. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
