// Package aggregator implements the single consumer of the message
// channel: it maintains latest-per-sensor state, drives the liftoff
// detector on IMU frames, and at a fixed cadence serializes and
// forwards a JSON snapshot to the log sink, the radio transport, and
// the ambient sinks (MQTT mirror, websocket live feed, ground panel).
package aggregator

import (
	"github.com/Niettzche/Rocket/internal/activity"
	"github.com/Niettzche/Rocket/internal/clock"
	"github.com/Niettzche/Rocket/internal/logging"
	"github.com/Niettzche/Rocket/internal/queue"
	"github.com/Niettzche/Rocket/internal/sensorid"
	"github.com/Niettzche/Rocket/internal/stopflag"
	"github.com/Niettzche/Rocket/internal/telemetry"
)

const sourceTag = "AGGREGATOR"

// Transport is the radio send capability the aggregator holds. Both
// the real radio.Transport and an in-memory test capture sink satisfy
// this — the "polymorphic sink" design from the design notes.
type Transport interface {
	Send(payload []byte) bool
}

// AmbientSink is the shape shared by the MQTT mirror and the
// websocket live feed: each is handed the raw snapshot bytes and
// never blocks or fails the aggregator loop.
type AmbientSink interface {
	Publish(payload []byte)
}

// PanelSink is the ground panel display's narrower contract: it wants
// the latest structured IMU/GPS samples, not the encoded bytes, so it
// can lay out its own glyphs. Either argument may be nil.
type PanelSink interface {
	Render(imuSample, gpsSample *telemetry.SensorSample)
}

// Aggregator owns AggregatorState and ActivityTracker exclusively —
// no internal locking, since only this goroutine touches them.
type Aggregator struct {
	queue      *queue.Queue
	clock      clock.Clock
	emitSecs   float64
	popTimeout float64
	tracker    *activity.Tracker
	liftoff    liftoffState

	latest   [len(sensorid.All)]*telemetry.SensorSample
	lastEmit float64

	transport Transport
	ambient   []AmbientSink
	panel     PanelSink
}

// New constructs an Aggregator. transport may be nil (snapshots are
// then never sent over the radio); ambient sinks are optional.
// popTimeoutSeconds bounds how long Run blocks on an empty queue
// before re-checking the stop flag.
func New(q *queue.Queue, c clock.Clock, emitIntervalSeconds, popTimeoutSeconds float64, transport Transport, ambient ...AmbientSink) *Aggregator {
	return &Aggregator{
		queue:      q,
		clock:      c,
		emitSecs:   emitIntervalSeconds,
		popTimeout: popTimeoutSeconds,
		tracker:    activity.New(),
		transport:  transport,
		ambient:    ambient,
	}
}

// SetPanel attaches the optional ground panel display. Safe to call
// before Run; not safe to call concurrently with Run.
func (a *Aggregator) SetPanel(p PanelSink) {
	a.panel = p
}

// Tracker exposes the activity tracker for the supervisor's
// final-summary phase — read only after Run has returned (join
// establishes the happens-before).
func (a *Aggregator) Tracker() *activity.Tracker {
	return a.tracker
}

// Run drains the queue until stop is set or the queue is
// closed-and-empty, whichever comes first.
func (a *Aggregator) Run(stop *stopflag.Flag) {
	for !stop.IsSet() {
		sample, ok := a.queue.Pop(a.popTimeout)
		if !ok {
			if a.queueDrained() {
				return
			}
			continue
		}

		a.tracker.Record(sample.Kind, sample.Dummy)

		if sample.Kind == sensorid.IMU && !sample.Dummy {
			magnitude := sample.Magnitude()
			a.liftoff.evaluate(a.tracker, magnitude, sample.Timestamp,
				func(count int, magnitude float64) {
					logging.Info(sourceTag, "zero-acceleration detection %d (magnitude=%.4f)", count, magnitude)
				},
				func(timestamp, magnitude float64) {
					logging.Warn(sourceTag, "liftoff signal latched at t=%.3f magnitude=%.4f", timestamp, magnitude)
				},
			)
		}

		s := sample
		a.latest[sample.Kind] = &s

		now := a.clock.Now()
		if now-a.lastEmit < a.emitSecs {
			continue
		}
		a.emit(now)
		a.lastEmit = now
	}
}

// queueDrained reports whether Pop's false return means the queue is
// closed and empty (vs. a mere timeout) — Len() after a timed-out Pop
// on a closed, empty queue is 0 and stays 0 since no more producers
// can push.
func (a *Aggregator) queueDrained() bool {
	return a.queue.Closed() && a.queue.Len() == 0
}

func (a *Aggregator) emit(now float64) {
	snap := telemetry.Snapshot{ReportedAt: now, Sensors: make(map[sensorid.ID]*telemetry.SensorSample, len(sensorid.All))}
	for _, id := range sensorid.All {
		snap.Sensors[id] = a.latest[id]
	}

	payload := telemetry.Encode(snap)
	logging.Payload(sourceTag, payload)

	if a.transport != nil {
		if !a.transport.Send(payload) {
			logging.Error(sourceTag, "radio transport failed to send snapshot")
		}
	}

	for _, sink := range a.ambient {
		sink.Publish(payload)
	}

	if a.panel != nil {
		a.panel.Render(a.latest[sensorid.IMU], a.latest[sensorid.GPS])
	}
}
