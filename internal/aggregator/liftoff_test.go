package aggregator

import (
	"testing"

	"github.com/Niettzche/Rocket/internal/activity"
	"github.com/Niettzche/Rocket/internal/clock"
	"github.com/Niettzche/Rocket/internal/queue"
	"github.com/Niettzche/Rocket/internal/sensorid"
	"github.com/Niettzche/Rocket/internal/stopflag"
	"github.com/Niettzche/Rocket/internal/telemetry"
)

// S2 - Liftoff latch.
func TestLiftoffLatch(t *testing.T) {
	tracker := activity.New()
	var s liftoffState

	for _, ts := range []float64{10.0, 11.5} {
		s.evaluate(tracker, 1.0, ts, nil, nil)
	}
	if !tracker.Zero.Sent {
		t.Fatal("expected latch to be set after two qualifying detections")
	}
	if tracker.Zero.Timestamp != 11.5 || tracker.Zero.Magnitude != 1.0 {
		t.Fatalf("unexpected latch values: %+v", tracker.Zero)
	}

	// A third detection must not overwrite.
	s.evaluate(tracker, 1.0, 13.0, nil, nil)
	if tracker.Zero.Timestamp != 11.5 {
		t.Fatalf("latch was overwritten: %+v", tracker.Zero)
	}
}

// S3 - Dummy suppression: caller never invokes evaluate for dummy
// samples (the aggregator's Run loop gates on !sample.Dummy), so the
// detector itself simply never sees them. This test exercises that
// contract at the aggregator level.
func TestDummySamplesNeverReachDetector(t *testing.T) {
	q := queue.New(4)
	agg := New(q, clock.NewFake(0), 1000.0, 0.05, nil)

	// The same timestamps and magnitude that latch in S2, but dummy.
	for _, ts := range []float64{10.0, 11.5, 13.0} {
		q.Push(telemetry.SensorSample{Kind: sensorid.IMU, Timestamp: ts, Dummy: true, Imu: telemetry.ImuFrame{Az: 1.0}})
	}
	q.Close()
	agg.Run(&stopflag.Flag{})

	if agg.Tracker().Zero.Sent {
		t.Fatal("latch should stay unset for dummy samples")
	}
	if agg.liftoff.count != 0 {
		t.Fatalf("counter should stay at 0, got %d", agg.liftoff.count)
	}
}

// S4 - Magnitude out of tolerance.
func TestMagnitudeOutOfTolerance(t *testing.T) {
	tracker := activity.New()
	var s liftoffState

	for _, ts := range []float64{10.0, 11.5, 13.0} {
		s.evaluate(tracker, 0.9, ts, nil, nil)
	}
	if tracker.Zero.Sent {
		t.Fatal("latch should not set for out-of-tolerance magnitude")
	}
	if s.count != 0 {
		t.Fatalf("counter should stay at 0, got %d", s.count)
	}
}

func TestCounterNotResetOnGap(t *testing.T) {
	tracker := activity.New()
	var s liftoffState

	s.evaluate(tracker, 1.0, 10.0, nil, nil)
	s.evaluate(tracker, 0.9, 10.2, nil, nil) // out of tolerance, too soon anyway
	s.evaluate(tracker, 1.0, 11.5, nil, nil)

	if !tracker.Zero.Sent {
		t.Fatal("expected latch to set despite an intervening out-of-tolerance sample")
	}
}
