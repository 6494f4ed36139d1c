// Package summary renders the human-readable start and final reports
// the supervisor logs around a flight, grounded on the original
// implementation's summaries.c.
package summary

import (
	"strings"

	"github.com/Niettzche/Rocket/internal/activity"
	"github.com/Niettzche/Rocket/internal/caps"
	"github.com/Niettzche/Rocket/internal/logging"
	"github.com/Niettzche/Rocket/internal/sensorid"
)

const sourceTag = "SUPERVISOR"

// Start logs the startup banner: channel capacity and emit interval.
func Start(channelCapacity int, emitIntervalSeconds float64) {
	logging.Sys(sourceTag, "rocket telemetry aggregator starting (channel=%d emit_interval=%.2fs)", channelCapacity, emitIntervalSeconds)
}

// Final logs the shutdown report: per-sensor capability/seen state and
// the liftoff signal, if any.
func Final(registry *caps.Registry, tracker *activity.Tracker) {
	var b strings.Builder
	for _, id := range sensorid.All {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		mode := "dummy"
		if registry.Real(id) {
			mode = "real"
		}
		seen := "unseen"
		if tracker.Seen(id) {
			seen = "seen"
		}
		b.WriteString(id.Name())
		b.WriteString("=")
		b.WriteString(mode)
		b.WriteString("/")
		b.WriteString(seen)
	}
	logging.Sys(sourceTag, "shutdown summary: %s", b.String())

	if tracker.Zero.Sent {
		logging.Sys(sourceTag, "liftoff signal latched at t=%.3f magnitude=%.4f", tracker.Zero.Timestamp, tracker.Zero.Magnitude)
	} else {
		logging.Sys(sourceTag, "liftoff signal never latched")
	}
}
