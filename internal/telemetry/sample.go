// Package telemetry defines the sample types carried through the
// message channel and the snapshot encoder that turns the
// aggregator's latest-per-sensor state into the wire payload.
package telemetry

import (
	"math"

	"github.com/Niettzche/Rocket/internal/sensorid"
)

// ImuFrame carries one IMU cycle's smoothed accel/gyro channels and
// the complementary-filter attitude.
type ImuFrame struct {
	Ax, Ay, Az float64 // g
	Gx, Gy, Gz float64 // deg/s
	Pitch      float64 // deg
	Roll       float64 // deg
	Yaw        float64 // deg
}

// BaroFrame carries a barometer line. At least one of Raw or the two
// parsed values is meaningful; HasTemperature/HasPressure/HasRaw gate
// which fields the encoder considers present.
type BaroFrame struct {
	Temperature    float64
	HasTemperature bool
	Pressure       float64
	HasPressure    bool
	Raw            string
	HasRaw         bool
}

// GpsFrame carries an optional fix. Presence flags mirror the design
// note that every optional BARO/GPS field is guarded by an explicit
// flag rather than a sentinel value.
type GpsFrame struct {
	Latitude     float64
	HasLatitude  bool
	Longitude    float64
	HasLongitude bool
	Altitude     float64
	HasAltitude  bool
	FixTime      string
	HasFixTime   bool
	Raw          string
	HasRaw       bool
}

// SensorSample is the tagged union pushed through the message
// channel. Only the field matching Kind is meaningful.
type SensorSample struct {
	Kind      sensorid.ID
	Timestamp float64
	Dummy     bool

	Imu  ImuFrame
	Baro BaroFrame
	Gps  GpsFrame
}

// Magnitude returns the Euclidean norm of the IMU acceleration
// vector. Only meaningful when Kind == sensorid.IMU.
func (s SensorSample) Magnitude() float64 {
	ax, ay, az := s.Imu.Ax, s.Imu.Ay, s.Imu.Az
	return math.Sqrt(ax*ax + ay*ay + az*az)
}
