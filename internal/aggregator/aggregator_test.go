package aggregator

import (
	"sync"
	"testing"

	"github.com/Niettzche/Rocket/internal/clock"
	"github.com/Niettzche/Rocket/internal/queue"
	"github.com/Niettzche/Rocket/internal/sensorid"
	"github.com/Niettzche/Rocket/internal/stopflag"
	"github.com/Niettzche/Rocket/internal/telemetry"
)

type captureTransport struct {
	mu    sync.Mutex
	sends [][]byte
}

func (c *captureTransport) Send(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	c.sends = append(c.sends, cp)
	return true
}

func (c *captureTransport) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sends)
}

// S8 - ambient sinks never block or fail the aggregator loop: each
// sink independently receives every emitted payload, and a sink with
// no failure path (Publish returns nothing) cannot make emit() return
// an error or stop the loop.
type captureSink struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (c *captureSink) Publish(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	c.payloads = append(c.payloads, cp)
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}

func TestEmitFansOutToTransportAndAmbientSinks(t *testing.T) {
	q := queue.New(4)
	fc := clock.NewFake(100.0)
	transport := &captureTransport{}
	sinkA := &captureSink{}
	sinkB := &captureSink{}

	agg := New(q, fc, 1.0, 0.05, transport, sinkA, sinkB)

	stop := &stopflag.Flag{}
	done := make(chan struct{})
	go func() {
		agg.Run(stop)
		close(done)
	}()

	q.Push(telemetry.SensorSample{Kind: sensorid.IMU, Timestamp: 100.0, Imu: telemetry.ImuFrame{Ax: 0, Ay: 0, Az: 1}})

	fc.Advance(1.1)
	q.Push(telemetry.SensorSample{Kind: sensorid.BARO, Timestamp: 101.1})

	deadlineSamples := 0
	for transport.count() == 0 && deadlineSamples < 1000 {
		q.Push(telemetry.SensorSample{Kind: sensorid.GPS, Timestamp: 101.1})
		deadlineSamples++
	}

	stop.Set()
	q.Close()
	<-done

	if transport.count() == 0 {
		t.Fatal("expected at least one snapshot sent to the transport")
	}
	if sinkA.count() != transport.count() || sinkB.count() != transport.count() {
		t.Fatalf("ambient sinks did not receive the same number of snapshots: transport=%d a=%d b=%d",
			transport.count(), sinkA.count(), sinkB.count())
	}
}

func TestQueueDrainedStopsRunWithoutStopFlag(t *testing.T) {
	q := queue.New(1)
	fc := clock.NewFake(0)
	agg := New(q, fc, 1000.0, 0.05, nil)

	q.Push(telemetry.SensorSample{Kind: sensorid.IMU, Timestamp: 0})
	q.Close()

	stop := &stopflag.Flag{}
	done := make(chan struct{})
	go func() {
		agg.Run(stop)
		close(done)
	}()

	<-done
}
