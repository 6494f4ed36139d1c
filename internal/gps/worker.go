// Package gps implements the GPS sensor worker: a serial NMEA line
// reader that validates and extracts fixes, falling back to a
// deterministic dummy trajectory when the serial port is unavailable.
package gps

import (
	"bufio"
	"io"
	"strings"

	"github.com/jacobsa/go-serial/serial"

	"github.com/Niettzche/Rocket/internal/caps"
	"github.com/Niettzche/Rocket/internal/clock"
	"github.com/Niettzche/Rocket/internal/logging"
	"github.com/Niettzche/Rocket/internal/sensorid"
	"github.com/Niettzche/Rocket/internal/stopflag"
	"github.com/Niettzche/Rocket/internal/telemetry"
)

const (
	readTimeoutSecs  = 0.4
	dummyCycleSecs   = 0.5
	dummyLatStep     = 1e-5
	dummyLonStep     = 1e-5
	dummyAltitude    = 512.0
	dummyStartLat    = 25.651
	dummyStartLon    = -100.289
	sourceTag        = "NEO6M"
)

// Sink is the push side of the message channel.
type Sink interface {
	Push(telemetry.SensorSample) bool
}

// Config parameterizes the serial port.
type Config struct {
	Port     string
	BaudRate uint
}

// Port is the minimal surface this worker needs from an open serial
// device.
type Port interface {
	io.Reader
	io.Closer
}

// Open opens the GPS serial port in raw mode, matching the teacher's
// gps_producer.go options.
func Open(cfg Config) (Port, error) {
	opts := serial.OpenOptions{
		PortName:              cfg.Port,
		BaudRate:              cfg.BaudRate,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		MinimumReadSize:       1,
		InterCharacterTimeout: uint(readTimeoutSecs * 1000),
	}
	return serial.Open(opts)
}

// Run drives the GPS worker until stop is set or the sink's queue is
// closed. If port is nil, the dummy loop runs instead.
func Run(port Port, sink Sink, registry *caps.Registry, stop *stopflag.Flag, c clock.Clock) {
	if port == nil {
		runDummy(sink, registry, stop, c)
		return
	}
	runReal(port, sink, registry, stop, c)
}

func runReal(port Port, sink Sink, registry *caps.Registry, stop *stopflag.Flag, c clock.Clock) {
	defer port.Close()
	registry.Publish(sensorid.GPS, true)

	reader := bufio.NewReader(port)
	for !stop.IsSet() {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			logging.Error(sourceTag, "read failed, exiting worker: %v", err)
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" || !accepted(line) {
			continue
		}
		if err := validate(line); err != nil {
			logging.Warn(sourceTag, "dropping malformed sentence: %v", err)
			continue
		}

		fix, ok := extractGGAStyle(line)
		if !ok {
			continue
		}

		sample := telemetry.SensorSample{
			Kind:      sensorid.GPS,
			Timestamp: c.Now(),
			Dummy:     false,
			Gps: telemetry.GpsFrame{
				Latitude:     fix.Latitude,
				HasLatitude:  true,
				Longitude:    fix.Longitude,
				HasLongitude: true,
				Altitude:     fix.Altitude,
				HasAltitude:  true,
				FixTime:      fix.FixTime,
				HasFixTime:   true,
				Raw:          line,
				HasRaw:       true,
			},
		}
		if !sink.Push(sample) {
			return
		}
	}
}

func runDummy(sink Sink, registry *caps.Registry, stop *stopflag.Flag, c clock.Clock) {
	lat := dummyStartLat
	lon := dummyStartLon

	for !stop.IsSet() {
		sample := telemetry.SensorSample{
			Kind:      sensorid.GPS,
			Timestamp: c.Now(),
			Dummy:     true,
			Gps: telemetry.GpsFrame{
				Latitude:     lat,
				HasLatitude:  true,
				Longitude:    lon,
				HasLongitude: true,
				Altitude:     dummyAltitude,
				HasAltitude:  true,
				FixTime:      "DUMMY",
				HasFixTime:   true,
				Raw:          "$GPGGA,DUMMY",
				HasRaw:       true,
			},
		}
		lat += dummyLatStep
		lon -= dummyLonStep

		if !sink.Push(sample) {
			return
		}
		c.Sleep(dummyCycleSecs)
	}
}
