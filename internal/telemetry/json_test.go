package telemetry

import (
	"strings"
	"testing"

	"github.com/Niettzche/Rocket/internal/sensorid"
)

// S5 - Snapshot schema stability.
func TestSnapshotSchemaStability(t *testing.T) {
	imuSample := SensorSample{
		Kind:      sensorid.IMU,
		Timestamp: 1700000000,
		Dummy:     false,
		Imu: ImuFrame{
			Ax: 0.1234, Ay: -0.5678, Az: 0.9999,
			Gx: 1.234, Gy: 0, Gz: 0,
			Pitch: 1.23, Roll: -4.56, Yaw: 7.89,
		},
	}

	snap := Snapshot{
		ReportedAt: 1700000000,
		Sensors: map[sensorid.ID]*SensorSample{
			sensorid.IMU:  &imuSample,
			sensorid.BARO: nil,
			sensorid.GPS:  nil,
		},
	}

	out := string(Encode(snap))

	if !strings.Contains(out, `"reported_at"`) {
		t.Fatal("missing reported_at key")
	}
	if strings.Index(out, `"reported_at"`) > strings.Index(out, `"sensors"`) {
		t.Fatal("reported_at must come before sensors")
	}
	if !strings.Contains(out, `"timestamp": "2023-11-14T22:13:20.000000Z"`) {
		t.Fatalf("expected per-sensor timestamp field:\n%s", out)
	}
	if !strings.Contains(out, `"accel_g": {"x": 0.1234, "y": -0.5678, "z": 0.9999}`) {
		t.Fatalf("unexpected accel_g encoding:\n%s", out)
	}
	if !strings.Contains(out, `"bmp180": null`) {
		t.Fatalf("expected bmp180 null:\n%s", out)
	}
	if !strings.Contains(out, `"neo6m": null`) {
		t.Fatalf("expected neo6m null:\n%s", out)
	}
}

func TestBaroRawPreferredOverParsed(t *testing.T) {
	s := SensorSample{
		Kind: sensorid.BARO,
		Baro: BaroFrame{
			Temperature: 25.12, HasTemperature: true,
			Pressure: 1013.25, HasPressure: true,
			Raw: "T=25.12,P=1013.25", HasRaw: true,
		},
	}
	snap := Snapshot{Sensors: map[sensorid.ID]*SensorSample{sensorid.BARO: &s}}
	out := string(Encode(snap))
	if !strings.Contains(out, `"raw": "T=25.12,P=1013.25"`) {
		t.Fatalf("expected opaque raw string to win:\n%s", out)
	}
}

func TestBaroNestedWhenNoRaw(t *testing.T) {
	s := SensorSample{
		Kind: sensorid.BARO,
		Baro: BaroFrame{Temperature: 25.0, HasTemperature: true},
	}
	snap := Snapshot{Sensors: map[sensorid.ID]*SensorSample{sensorid.BARO: &s}}
	out := string(Encode(snap))
	if !strings.Contains(out, `"raw": {"T": 25.00, "P": null}`) {
		t.Fatalf("expected nested T/P object:\n%s", out)
	}
}

func TestDummyFlagOnlyWhenTrue(t *testing.T) {
	s := SensorSample{Kind: sensorid.IMU, Dummy: false}
	out := string(Encode(Snapshot{Sensors: map[sensorid.ID]*SensorSample{sensorid.IMU: &s}}))
	if strings.Contains(out, "dummy") {
		t.Fatalf("dummy key should be absent when false:\n%s", out)
	}

	s.Dummy = true
	out = string(Encode(Snapshot{Sensors: map[sensorid.ID]*SensorSample{sensorid.IMU: &s}}))
	if !strings.Contains(out, `"dummy": true`) {
		t.Fatalf("dummy key should be present when true:\n%s", out)
	}
}

func TestStringEscaping(t *testing.T) {
	s := SensorSample{
		Kind: sensorid.GPS,
		Gps:  GpsFrame{Raw: "line\twith\ncontrol\x01chars", HasRaw: true},
	}
	out := string(Encode(Snapshot{Sensors: map[sensorid.ID]*SensorSample{sensorid.GPS: &s}}))
	if !strings.Contains(out, `\t`) || !strings.Contains(out, `\n`) {
		t.Fatalf("expected escaped control characters:\n%s", out)
	}
}
