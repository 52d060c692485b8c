package dashboard

import "time"

// Clock abstracts time for the scheduler and transfer engine.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns a Clock backed by time.Now.
func RealClock() Clock {
	return realClock{}
}
