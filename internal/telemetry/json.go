package telemetry

import (
	"strconv"
	"strings"

	"github.com/Niettzche/Rocket/internal/clock"
	"github.com/Niettzche/Rocket/internal/sensorid"
)

// Snapshot is the per-sensor latest-state view the aggregator hands
// to the encoder. A nil entry for a sensor encodes as JSON null.
type Snapshot struct {
	ReportedAt float64
	Sensors    map[sensorid.ID]*SensorSample
}

// Encode renders the snapshot as pretty-printed JSON with 2-space
// indentation, fixed field order, and a trailing newline — built with
// a strings.Builder rather than encoding/json so that field order,
// numeric precision, and conditional presence stay exactly as
// specified instead of depending on struct-tag/reflection behavior.
func Encode(snap Snapshot) []byte {
	var b strings.Builder
	b.WriteString("{\n")
	b.WriteString("  \"reported_at\": ")
	writeJSONString(&b, clock.FormatISO8601(snap.ReportedAt))
	b.WriteString(",\n")
	b.WriteString("  \"sensors\": {\n")

	for i, id := range sensorid.All {
		b.WriteString("    \"")
		b.WriteString(id.Name())
		b.WriteString("\": ")
		sample := snap.Sensors[id]
		if sample == nil {
			b.WriteString("null")
		} else {
			writeSensorObject(&b, id, *sample, "    ")
		}
		if i < len(sensorid.All)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}

	b.WriteString("  }\n")
	b.WriteString("}\n")
	return []byte(b.String())
}

func writeSensorObject(b *strings.Builder, id sensorid.ID, s SensorSample, indent string) {
	switch id {
	case sensorid.IMU:
		writeImu(b, s, indent)
	case sensorid.BARO:
		writeBaro(b, s, indent)
	case sensorid.GPS:
		writeGps(b, s, indent)
	default:
		b.WriteString("null")
	}
}

func writeImu(b *strings.Builder, s SensorSample, indent string) {
	inner := indent + "  "
	b.WriteString("{\n")

	b.WriteString(inner)
	b.WriteString("\"timestamp\": ")
	writeJSONString(b, clock.FormatISO8601(s.Timestamp))
	b.WriteString(",\n")

	b.WriteString(inner)
	b.WriteString("\"accel_g\": {\"x\": ")
	writeFloat(b, s.Imu.Ax, 4)
	b.WriteString(", \"y\": ")
	writeFloat(b, s.Imu.Ay, 4)
	b.WriteString(", \"z\": ")
	writeFloat(b, s.Imu.Az, 4)
	b.WriteString("},\n")

	b.WriteString(inner)
	b.WriteString("\"gyro_dps\": {\"x\": ")
	writeFloat(b, s.Imu.Gx, 3)
	b.WriteString(", \"y\": ")
	writeFloat(b, s.Imu.Gy, 3)
	b.WriteString(", \"z\": ")
	writeFloat(b, s.Imu.Gz, 3)
	b.WriteString("},\n")

	b.WriteString(inner)
	b.WriteString("\"attitude_deg\": {\"pitch\": ")
	writeFloat(b, s.Imu.Pitch, 2)
	b.WriteString(", \"roll\": ")
	writeFloat(b, s.Imu.Roll, 2)
	b.WriteString(", \"yaw\": ")
	writeFloat(b, s.Imu.Yaw, 2)
	b.WriteString("}")

	writeDummyTrailer(b, s.Dummy, inner)
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString("}")
}

func writeBaro(b *strings.Builder, s SensorSample, indent string) {
	inner := indent + "  "
	b.WriteString("{\n")

	b.WriteString(inner)
	b.WriteString("\"timestamp\": ")
	writeJSONString(b, clock.FormatISO8601(s.Timestamp))
	b.WriteString(",\n")

	b.WriteString(inner)
	b.WriteString("\"raw\": ")
	switch {
	case s.Baro.HasRaw:
		writeJSONString(b, s.Baro.Raw)
	default:
		b.WriteString("{\"T\": ")
		if s.Baro.HasTemperature {
			writeFloat(b, s.Baro.Temperature, 2)
		} else {
			b.WriteString("null")
		}
		b.WriteString(", \"P\": ")
		if s.Baro.HasPressure {
			writeFloat(b, s.Baro.Pressure, 2)
		} else {
			b.WriteString("null")
		}
		b.WriteString("}")
	}

	writeDummyTrailer(b, s.Dummy, inner)
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString("}")
}

func writeGps(b *strings.Builder, s SensorSample, indent string) {
	inner := indent + "  "
	b.WriteString("{")

	first := true
	comma := func() {
		if !first {
			b.WriteString(",")
		}
		b.WriteString("\n")
		b.WriteString(inner)
		first = false
	}

	comma()
	b.WriteString("\"timestamp\": ")
	writeJSONString(b, clock.FormatISO8601(s.Timestamp))

	if s.Gps.HasLatitude {
		comma()
		b.WriteString("\"latitude\": ")
		writeFloat(b, s.Gps.Latitude, 6)
	}
	if s.Gps.HasLongitude {
		comma()
		b.WriteString("\"longitude\": ")
		writeFloat(b, s.Gps.Longitude, 6)
	}
	if s.Gps.HasAltitude {
		comma()
		b.WriteString("\"altitude\": ")
		writeFloat(b, s.Gps.Altitude, 1)
	}
	if s.Gps.HasFixTime {
		comma()
		b.WriteString("\"fix_time\": ")
		writeJSONString(b, s.Gps.FixTime)
	}
	if s.Gps.HasRaw {
		comma()
		b.WriteString("\"raw\": ")
		writeJSONString(b, s.Gps.Raw)
	}
	if s.Dummy {
		comma()
		b.WriteString("\"dummy\": true")
	}

	if first {
		b.WriteString("}")
		return
	}
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString("}")
}

func writeDummyTrailer(b *strings.Builder, dummy bool, inner string) {
	if !dummy {
		return
	}
	b.WriteString(",\n")
	b.WriteString(inner)
	b.WriteString("\"dummy\": true")
}

func writeFloat(b *strings.Builder, v float64, decimals int) {
	b.WriteString(strconv.FormatFloat(v, 'f', decimals, 64))
}

// writeJSONString writes s as a JSON string literal, escaping
// backslash, quote, and control bytes (LF/CR/TAB as their short
// escapes, the rest of the < 0x20 range as \u00xx).
func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				const hex = "0123456789abcdef"
				b.WriteByte(hex[c>>4])
				b.WriteByte(hex[c&0xf])
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
}
