package adapter

import "time"

// Clock defines an interface for time operations to enable mocking.
// The ledger uses it for issuance and dividend timestamps.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package
type RealClock struct{}

// NewClock creates a new real clock implementation
func NewClock() Clock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
