package service

import (
	"time"
)

// systemClock is the production Clock backed by the wall clock.
type systemClock struct{}

// NewSystemClock returns a Clock that reads the wall clock in UTC.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
