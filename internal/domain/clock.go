package domain

import "github.com/jonboulle/clockwork"

// clock supplies "now" for incidents that arrive without a date.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for defaulted dates. Pass nil to
// restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
