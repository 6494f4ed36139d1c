// Package queue implements the bounded multi-producer/single-consumer
// message channel the sensor workers publish into and the aggregator
// drains. It mirrors the original implementation's mutex + two
// condition-variable ring buffer.
package queue

import (
	"sync"
	"time"

	"github.com/Niettzche/Rocket/internal/telemetry"
)

// Queue is a bounded ring buffer of telemetry.SensorSample with
// blocking push, timed pop, and a cooperative close that wakes every
// waiter. The zero value is not usable; construct with New.
type Queue struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	buf    []telemetry.SensorSample
	head   int
	count  int
	closed bool
}

// New returns a Queue with the given fixed capacity. capacity must be
// at least 1.
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	q := &Queue{buf: make([]telemetry.SensorSample, capacity)}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push blocks while the queue is full and open. It returns false
// without writing if the queue is or becomes closed before room is
// available; otherwise it stores sample, wakes one waiting consumer,
// and returns true.
func (q *Queue) Push(sample telemetry.SensorSample) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.closed && q.count == len(q.buf) {
		q.notFull.Wait()
	}
	if q.closed {
		return false
	}

	tail := (q.head + q.count) % len(q.buf)
	q.buf[tail] = sample
	q.count++
	q.notEmpty.Signal()
	return true
}

// Pop waits for a sample or a timeout. A negative timeoutSeconds
// blocks indefinitely until a sample arrives or the queue closes. A
// non-negative timeoutSeconds waits at most that long. Returns the
// sample and true on success; returns false on timeout or on
// closed-and-drained.
func (q *Queue) Pop(timeoutSeconds float64) (telemetry.SensorSample, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timeoutSeconds < 0 {
		for q.count == 0 && !q.closed {
			q.notEmpty.Wait()
		}
	} else {
		deadline := time.Now().Add(time.Duration(timeoutSeconds * float64(time.Second)))
		for q.count == 0 && !q.closed {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return telemetry.SensorSample{}, false
			}
			woken := make(chan struct{})
			timer := time.AfterFunc(remaining, func() {
				q.mu.Lock()
				q.notEmpty.Broadcast()
				q.mu.Unlock()
				close(woken)
			})
			q.notEmpty.Wait()
			timer.Stop()
			select {
			case <-woken:
			default:
			}
		}
	}

	if q.count == 0 {
		// closed and drained
		return telemetry.SensorSample{}, false
	}

	sample := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	q.notFull.Signal()
	return sample, true
}

// Close idempotently marks the queue closed and wakes every waiter,
// both producers blocked in Push and the consumer blocked in Pop.
// Subsequent Push calls return false without blocking; Pop continues
// to drain whatever remains before returning false.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the current occupancy. Intended for diagnostics/tests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}
