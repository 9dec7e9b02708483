package engine

import "time"

// Clock supplies the current time to the engines.  Injecting it
// keeps TTL and refund-tier arithmetic testable; production code
// uses RealClock.  All timestamps are UTC.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// RealClock returns a Clock backed by time.Now in UTC.
func RealClock() Clock { return realClock{} }
