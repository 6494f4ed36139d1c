// Package activity tracks per-sensor liveness and the one-shot
// zero-acceleration (liftoff) signal. It is touched exclusively by
// the aggregator goroutine, so it carries no internal locking of its
// own — the supervisor only reads it after joining the aggregator,
// a happens-before relationship established by the join itself.
package activity

import "github.com/Niettzche/Rocket/internal/sensorid"

// ZeroSignal is the write-once-monotonic liftoff latch: Sent
// transitions false→true exactly once, and Timestamp/Magnitude are
// stable from that transition onward.
type ZeroSignal struct {
	Sent      bool
	Timestamp float64
	Magnitude float64
}

// perSensor holds the seen/last-dummy bits for one sensor.
type perSensor struct {
	seen      bool
	lastDummy bool
}

// Tracker is the aggregator's view of sensor liveness plus the
// liftoff latch. Not safe for concurrent use; owned by one goroutine.
type Tracker struct {
	sensors [len(sensorid.All)]perSensor
	Zero    ZeroSignal
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{}
}

// Record marks id as seen and stores whether its latest sample was
// dummy data.
func (t *Tracker) Record(id sensorid.ID, dummy bool) {
	t.sensors[id].seen = true
	t.sensors[id].lastDummy = dummy
}

// Seen reports whether at least one sample with id has been observed.
func (t *Tracker) Seen(id sensorid.ID) bool {
	return t.sensors[id].seen
}

// LastDummy reports whether the most recent sample recorded for id
// was synthesized (dummy) data.
func (t *Tracker) LastDummy(id sensorid.ID) bool {
	return t.sensors[id].lastDummy
}

// RecordZeroSignal latches the liftoff event with the given timestamp
// and magnitude. A no-op if the latch has already fired — the first
// transition's values are permanent.
func (t *Tracker) RecordZeroSignal(timestamp, magnitude float64) {
	if t.Zero.Sent {
		return
	}
	t.Zero.Sent = true
	t.Zero.Timestamp = timestamp
	t.Zero.Magnitude = magnitude
}
