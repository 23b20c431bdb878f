package timex

import "time"

// NowMillis returns the current wall clock as milliseconds since the epoch,
// the unit every logical timestamp in the store uses.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Clock returns "now" in milliseconds. Components accept one so tests can
// pin time.
type Clock func() int64

// Fixed returns a Clock that always reports ts.
func Fixed(ts int64) Clock {
	return func() int64 { return ts }
}

// Sequence returns a Clock that starts at start and advances by step on
// every call.
func Sequence(start, step int64) Clock {
	next := start
	return func() int64 {
		v := next
		next += step
		return v
	}
}
