package reactive

import "time"

// Clock schedules deferred callbacks. The default uses time.AfterFunc;
// tests and event-loop hosts can supply their own.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the wall-clock implementation.
func RealClock() Clock { return realClock{} }
