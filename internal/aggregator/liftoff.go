package aggregator

import "github.com/Niettzche/Rocket/internal/activity"

// Liftoff detector constants (spec §4.4.1).
const (
	liftoffRef      = 1.0
	liftoffTol      = 0.05
	liftoffRequired = 2
	liftoffMinDelay = 1.0 // seconds
)

// liftoffState tracks the detector's own counters, separate from the
// activity tracker's write-once latch. zero_last_detection starts at
// zero seconds, matching AggregatorState's zero value.
type liftoffState struct {
	count         int
	lastDetection float64
}

// evaluate applies the detector to one non-dummy IMU magnitude
// sample at the given timestamp. It is a no-op once tracker's zero
// signal has already latched.
func (s *liftoffState) evaluate(tracker *activity.Tracker, magnitude, timestamp float64, onDetect func(count int, magnitude float64), onLatch func(timestamp, magnitude float64)) {
	if tracker.Zero.Sent {
		return
	}

	within := magnitude >= liftoffRef-liftoffTol && magnitude <= liftoffRef+liftoffTol
	elapsed := timestamp-s.lastDetection > liftoffMinDelay
	if !(within && elapsed) {
		// Do not reset the counter on an out-of-tolerance or
		// too-soon sample — this is the preserved one-shot latch
		// behavior, not an omission.
		return
	}

	s.count++
	s.lastDetection = timestamp
	if onDetect != nil {
		onDetect(s.count, magnitude)
	}

	if s.count >= liftoffRequired {
		tracker.RecordZeroSignal(timestamp, magnitude)
		if onLatch != nil {
			onLatch(timestamp, magnitude)
		}
	}
}
