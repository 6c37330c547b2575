package giveaway

import "time"

// Clock is the time source used for end times, cleanup deadlines and expiry checks.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }
