// Package clock provides the time utilities the rest of the system
// builds its cadences and timestamps on, and a seam tests use to
// control time without sleeping.
package clock

import (
	"math"
	"time"
)

// Clock is the seam between the aggregator/workers and wall time.
// Production code uses Real; tests substitute a Fake.
type Clock interface {
	// Now returns the current time as seconds since the Unix epoch.
	Now() float64
	// Sleep blocks for the given duration in seconds, or returns early
	// if the clock is a Fake and has no reason to block.
	Sleep(seconds float64)
}

// Real is the production Clock backed by the operating system.
type Real struct{}

// Now returns time.Now() as a monotonic-ish float64 seconds value.
// time.Now() on Go already carries a monotonic reading internal to
// the runtime, which survives through subtraction; it is exposed here
// as plain wall seconds since the epoch, matching the original
// implementation's `clock_gettime(CLOCK_REALTIME)` seconds+nanos
// pairing.
func (Real) Now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// Sleep blocks the calling goroutine for the given number of seconds.
// Negative or zero durations return immediately.
func (Real) Sleep(seconds float64) {
	if seconds <= 0 {
		return
	}
	time.Sleep(time.Duration(seconds * float64(time.Second)))
}

// BoundedSleep sleeps for seconds, clamped so that a caller passing a
// negative or NaN duration never blocks forever by accident.
func BoundedSleep(c Clock, seconds float64) {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	c.Sleep(seconds)
}

// FormatISO8601 renders t (seconds since epoch) as an ISO-8601 UTC
// timestamp with microsecond precision and a trailing "Z", matching
// the snapshot's reported_at field.
func FormatISO8601(t float64) string {
	sec := int64(t)
	fracNanos := int64((t - float64(sec)) * 1e9)
	if fracNanos < 0 {
		fracNanos = 0
	}
	tm := time.Unix(sec, fracNanos).UTC()
	return tm.Format("2006-01-02T15:04:05.000000Z")
}
