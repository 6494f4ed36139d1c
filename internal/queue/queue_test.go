package queue

import (
	"testing"

	"github.com/Niettzche/Rocket/internal/sensorid"
	"github.com/Niettzche/Rocket/internal/telemetry"
)

func sample(ts float64) telemetry.SensorSample {
	return telemetry.SensorSample{Kind: sensorid.IMU, Timestamp: ts}
}

// S1 - Channel FIFO & close.
func TestFIFOAndClose(t *testing.T) {
	q := New(2)

	if ok := q.Push(sample(1)); !ok {
		t.Fatalf("push A: want true")
	}
	if ok := q.Push(sample(2)); !ok {
		t.Fatalf("push B: want true")
	}

	got, ok := q.Pop(-1)
	if !ok || got.Timestamp != 1 {
		t.Fatalf("pop want A(1), got %v ok=%v", got, ok)
	}

	q.Close()

	if ok := q.Push(sample(3)); ok {
		t.Fatalf("push C after close: want false")
	}

	got, ok = q.Pop(-1)
	if !ok || got.Timestamp != 2 {
		t.Fatalf("pop want B(2), got %v ok=%v", got, ok)
	}

	if _, ok := q.Pop(-1); ok {
		t.Fatalf("pop on drained closed queue: want false")
	}
}

func TestPushBlocksUntilRoom(t *testing.T) {
	q := New(1)
	if ok := q.Push(sample(1)); !ok {
		t.Fatal("first push should succeed")
	}

	done := make(chan bool)
	go func() {
		done <- q.Push(sample(2))
	}()

	got, ok := q.Pop(-1)
	if !ok || got.Timestamp != 1 {
		t.Fatalf("unexpected pop result: %v %v", got, ok)
	}

	if ok := <-done; !ok {
		t.Fatalf("blocked push should eventually succeed")
	}
}

func TestPopTimeout(t *testing.T) {
	q := New(1)
	_, ok := q.Pop(0.05)
	if ok {
		t.Fatalf("pop on empty open queue with timeout: want false")
	}
}

func TestCloseWakesBlockedPush(t *testing.T) {
	q := New(1)
	q.Push(sample(1))

	done := make(chan bool)
	go func() {
		done <- q.Push(sample(2))
	}()

	q.Close()
	if ok := <-done; ok {
		t.Fatalf("push woken by close should return false")
	}
}
