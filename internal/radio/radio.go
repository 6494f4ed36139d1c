// Package radio implements the packet-radio downlink transport: a
// stateful sender that fragments a JSON payload into framed packets
// and hands each to a Driver, degrading to a logged no-op stub when
// no driver is configured.
package radio

import (
	"github.com/Niettzche/Rocket/internal/logging"
)

const (
	mtu       = 200
	frameTag  = 'J'
	sourceTag = "RADIO"
)

// Driver is the minimal third-party hardware surface the transport
// needs. It stands in for the absent LoRa driver module in this
// retrieval pack (the only reference available is a standalone
// non-module SX127x file, not a fetchable dependency) — production
// wiring is a nil Driver, which Transport already treats as its
// documented stub path. This is the "polymorphic sink" design: the
// aggregator's send capability is identical whether Driver is real or
// nil.
type Driver interface {
	Init(channel int, freqHz uint32, sf int) error
	Send(frame []byte) error
}

// Transport is the stateful radio sender.
type Transport struct {
	driver Driver
	ready  bool
	topic  string
}

// New constructs a Transport bound to topic (truncated to 15 bytes).
// driver may be nil.
func New(driver Driver, topic string) *Transport {
	if len(topic) > 15 {
		topic = topic[:15]
	}
	return &Transport{driver: driver, topic: topic}
}

// Init initializes the underlying driver at the given link
// parameters. If driver is nil, Init leaves ready=false and Send
// becomes a logged no-op that still reports success, matching the
// spec's "driver absent at build time" contingency.
func (t *Transport) Init(channel int, freqHz uint32, sf int) error {
	if t.driver == nil {
		logging.Warn(sourceTag, "no radio driver configured, transport stubbed")
		t.ready = false
		return nil
	}
	if err := t.driver.Init(channel, freqHz, sf); err != nil {
		logging.Error(sourceTag, "driver init failed: %v", err)
		t.ready = false
		return err
	}
	t.ready = true
	return nil
}

// Ready reports whether the transport is backed by an initialized
// driver.
func (t *Transport) Ready() bool {
	return t.ready
}

// Send fragments payload into framed packets and sends each through
// the driver. Frame layout: ['J', len(topic), topic bytes, i&0xFF,
// F&0xFF, payload slice]. Returns true only once every frame has
// succeeded.
func (t *Transport) Send(payload []byte) bool {
	if !t.ready {
		logging.Debug(sourceTag, "stub send (%d bytes)", len(payload))
		return true
	}

	header := 1 + 1 + len(t.topic) + 1 + 1
	room := mtu - header
	if room < 1 {
		room = 1
	}
	total := (len(payload) + room - 1) / room
	if total < 1 {
		total = 1
	}

	for i := 1; i <= total; i++ {
		start := (i - 1) * room
		end := start + room
		if end > len(payload) {
			end = len(payload)
		}
		if start > len(payload) {
			start = len(payload)
		}

		frame := make([]byte, 0, header+(end-start))
		frame = append(frame, frameTag)
		frame = append(frame, byte(len(t.topic)))
		frame = append(frame, []byte(t.topic)...)
		frame = append(frame, byte(i&0xFF))
		frame = append(frame, byte(total&0xFF))
		frame = append(frame, payload[start:end]...)

		if err := t.driver.Send(frame); err != nil {
			logging.Error(sourceTag, "frame %d/%d failed: %v", i, total, err)
			return false
		}
	}

	return true
}

// FrameCount returns the number of frames Send would produce for a
// payload of length payloadLen with the transport's configured topic
// — exposed for tests exercising the fragmentation math directly
// (property 6 / scenario S6).
func (t *Transport) FrameCount(payloadLen int) int {
	header := 1 + 1 + len(t.topic) + 1 + 1
	room := mtu - header
	if room < 1 {
		room = 1
	}
	total := (payloadLen + room - 1) / room
	if total < 1 {
		total = 1
	}
	return total
}
