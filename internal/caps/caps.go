// Package caps holds the process-wide sensor capability bits: whether
// each worker is driving real hardware. Per the design notes, these
// are re-architected from a shared mutable struct into independent
// publish-once atomic booleans, each written at most once by its
// owning worker just before its real acquisition loop starts (a worker
// in dummy mode never writes its bit, which stays false), and read only after
// the workers have been joined (at final-summary time).
package caps

import (
	"sync/atomic"

	"github.com/Niettzche/Rocket/internal/sensorid"
)

// Registry holds one atomic bit per sensor.
type Registry struct {
	bits [len(sensorid.All)]atomic.Bool
}

// New returns a Registry with every bit false.
func New() *Registry {
	return &Registry{}
}

// Publish sets the capability bit for id. Intended to be called
// exactly once, by the worker that owns id, immediately before it
// begins its real acquisition loop.
func (r *Registry) Publish(id sensorid.ID, real bool) {
	r.bits[id].Store(real)
}

// Real reports whether the worker for id is driving real hardware.
func (r *Registry) Real(id sensorid.ID) bool {
	return r.bits[id].Load()
}
