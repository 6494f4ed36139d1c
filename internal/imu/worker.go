// Package imu implements the IMU sensor worker: I2C acquisition from
// a real MPU-6050 with calibration, EMA smoothing, and a
// complementary filter, falling back to a deterministic dummy
// trajectory when the device is unavailable.
package imu

import (
	"math"

	"github.com/Niettzche/Rocket/internal/caps"
	"github.com/Niettzche/Rocket/internal/clock"
	"github.com/Niettzche/Rocket/internal/logging"
	"github.com/Niettzche/Rocket/internal/sensorid"
	"github.com/Niettzche/Rocket/internal/stopflag"
	"github.com/Niettzche/Rocket/internal/telemetry"
)

const (
	calibrationSamples      = 500
	calibrationIntervalSecs = 0.002
	cycleIntervalSecs       = 0.050
	dummyPhaseStep          = 0.05

	sourceTag = "MPU6050"
)

// Sink is the push side of the message channel, satisfied by
// *queue.Queue.
type Sink interface {
	Push(telemetry.SensorSample) bool
}

// Config parameterizes the worker's device access.
type Config struct {
	BusName string
	Addr    uint16
}

// Open attempts to open the MPU-6050 over I2C. A non-nil error means
// the caller should run the dummy loop instead.
func Open(cfg Config) (*Device, error) {
	return OpenDevice(cfg.BusName, cfg.Addr)
}

// Run drives the IMU worker until stop is set or the sink's queue is
// closed. If dev is nil, the dummy loop runs instead of real
// acquisition.
func Run(dev *Device, sink Sink, registry *caps.Registry, stop *stopflag.Flag, c clock.Clock) {
	if dev == nil {
		runDummy(sink, registry, stop, c)
		return
	}
	runReal(dev, sink, registry, stop, c)
}

func runReal(dev *Device, sink Sink, registry *caps.Registry, stop *stopflag.Flag, c clock.Clock) {
	defer dev.Close()

	samples := make([]raw, 0, calibrationSamples)
	for i := 0; i < calibrationSamples; i++ {
		if stop.IsSet() {
			return
		}
		r, err := dev.ReadRaw()
		if err != nil {
			logging.Error(sourceTag, "calibration read failed: %v", err)
			return
		}
		samples = append(samples, r)
		c.Sleep(calibrationIntervalSecs)
	}
	off := calibrate(samples)
	logging.Info(sourceTag, "calibration complete over %d samples", len(samples))

	registry.Publish(sensorid.IMU, true)

	var e ema
	var att attitude
	lastT := c.Now()

	for !stop.IsSet() {
		r, err := dev.ReadRaw()
		if err != nil {
			logging.Error(sourceTag, "read failed, exiting worker: %v", err)
			return
		}

		now := c.Now()
		dt := now - lastT
		lastT = now

		ax, ay, az, gx, gy, gz := scaled(r, off)
		ax, ay, az, gx, gy, gz = e.apply(ax, ay, az, gx, gy, gz)
		pitch, roll, yaw := att.update(ax, ay, az, gx, gy, gz, dt)

		sample := telemetry.SensorSample{
			Kind:      sensorid.IMU,
			Timestamp: now,
			Dummy:     false,
			Imu: telemetry.ImuFrame{
				Ax: ax, Ay: ay, Az: az,
				Gx: gx, Gy: gy, Gz: gz,
				Pitch: pitch, Roll: roll, Yaw: yaw,
			},
		}

		if !sink.Push(sample) {
			return
		}

		c.Sleep(cycleIntervalSecs)
	}
}

func runDummy(sink Sink, registry *caps.Registry, stop *stopflag.Flag, c clock.Clock) {
	phi := 0.0
	for !stop.IsSet() {
		sample := telemetry.SensorSample{
			Kind:      sensorid.IMU,
			Timestamp: c.Now(),
			Dummy:     true,
			Imu: telemetry.ImuFrame{
				Ax: 0.01 * math.Sin(phi),
				Ay: 0.01 * math.Cos(phi),
				Az: 1.0,
				Gx: 0.1 * math.Sin(phi),
				Gy: 0.1 * math.Cos(phi),
				Gz: 0,
				Pitch: 0, Roll: 0, Yaw: 0,
			},
		}
		phi += dummyPhaseStep

		if !sink.Push(sample) {
			return
		}
		c.Sleep(cycleIntervalSecs)
	}
}
