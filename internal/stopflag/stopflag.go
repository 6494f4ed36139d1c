// Package stopflag provides the shared, signal-safe cancellation
// primitive every worker and the aggregator poll: a single atomic
// boolean set exactly once by the supervisor's signal handler (or by
// a test), and read every loop iteration.
package stopflag

import "sync/atomic"

// Flag is a signal-safe stop flag. The zero value is unset.
type Flag struct {
	set atomic.Bool
}

// Set raises the flag. Idempotent.
func (f *Flag) Set() {
	f.set.Store(true)
}

// IsSet reports whether the flag has been raised.
func (f *Flag) IsSet() bool {
	return f.set.Load()
}
