// Package baro implements the barometric temperature/pressure worker:
// a newline-terminated serial line reader, falling back to a
// deterministic dummy trajectory when the serial port is unavailable.
package baro

import (
	"bufio"
	"fmt"
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
	readTimeoutSecs = 0.2
	dummyCycleSecs  = 0.2
	tempStep        = 0.01
	pressureStep    = 0.02
	sourceTag       = "BMP180"
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
// device; satisfied by io.ReadWriteCloser.
type Port interface {
	io.Reader
	io.Closer
}

// Open opens the serial port in raw mode (VMIN=0, VTIME matching the
// read timeout), exactly as the teacher's gps_producer.go configures
// its NMEA port.
func Open(cfg Config) (Port, error) {
	opts := serial.OpenOptions{
		PortName:              cfg.Port,
		BaudRate:              cfg.BaudRate,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		MinimumReadSize:       0,
		InterCharacterTimeout: uint(readTimeoutSecs * 1000),
	}
	return serial.Open(opts)
}

// Run drives the baro worker until stop is set or the sink's queue is
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
	registry.Publish(sensorid.BARO, true)

	reader := bufio.NewReader(port)
	for !stop.IsSet() {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			logging.Error(sourceTag, "read failed, exiting worker: %v", err)
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		sample := telemetry.SensorSample{
			Kind:      sensorid.BARO,
			Timestamp: c.Now(),
			Dummy:     false,
			Baro: telemetry.BaroFrame{
				Raw:    line,
				HasRaw: true,
			},
		}
		if !sink.Push(sample) {
			return
		}
	}
}

func runDummy(sink Sink, registry *caps.Registry, stop *stopflag.Flag, c clock.Clock) {
	temp := 25.0
	pressure := 1013.25

	for !stop.IsSet() {
		raw := fmt.Sprintf("T=%.2f,P=%.2f", temp, pressure)
		sample := telemetry.SensorSample{
			Kind:      sensorid.BARO,
			Timestamp: c.Now(),
			Dummy:     true,
			Baro: telemetry.BaroFrame{
				Temperature:    temp,
				HasTemperature: true,
				Pressure:       pressure,
				HasPressure:    true,
				Raw:            raw,
				HasRaw:         true,
			},
		}
		temp += tempStep
		pressure += pressureStep

		if !sink.Push(sample) {
			return
		}
		c.Sleep(dummyCycleSecs)
	}
}
