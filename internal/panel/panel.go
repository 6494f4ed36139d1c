// Package panel implements the optional dual-OLED ground bench
// display: one SSD1306 showing the latest IMU attitude, one showing
// the latest GPS fix. Grounded on the teacher's display.go render
// loop (image1bit.NewVerticalLSB + font.Drawer + basicfont.Face7x13).
// Absence of the I2C bus or either display address degrades to a
// no-op panel, logged once.
package panel

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/Niettzche/Rocket/internal/logging"
	"github.com/Niettzche/Rocket/internal/telemetry"
)

const sourceTag = "PANEL"

// Panel renders IMU attitude on one display and GPS fix on the other.
// A nil Panel (returned alongside an error from Open) is handled by
// the supervisor as a no-op, the same contingency every other
// optional sink in this system follows.
type Panel struct {
	bus   i2c.BusCloser
	left  *ssd1306.Dev
	right *ssd1306.Dev
}

// Open initializes the host drivers, opens the I2C bus, and attaches
// both displays. Any failure is returned so the caller can fall back
// to a no-op panel.
func Open(busName string, leftAddr, rightAddr uint16) (*Panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("panel: host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("panel: open i2c bus: %w", err)
	}

	left, err := ssd1306.NewI2C(bus, leftAddr, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("panel: left display: %w", err)
	}
	right, err := ssd1306.NewI2C(bus, rightAddr, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("panel: right display: %w", err)
	}

	return &Panel{bus: bus, left: left, right: right}, nil
}

// Close releases the I2C bus.
func (p *Panel) Close() error {
	return p.bus.Close()
}

// Render draws the latest IMU attitude onto the left display and the
// latest GPS fix onto the right. Either argument may be nil when that
// sensor has not reported yet. A draw failure is logged and does not
// propagate — the aggregator must keep running regardless.
func (p *Panel) Render(imuSample, gpsSample *telemetry.SensorSample) {
	if err := p.renderImu(imuSample); err != nil {
		logging.Warn(sourceTag, "left display draw failed: %v", err)
	}
	if err := p.renderGps(gpsSample); err != nil {
		logging.Warn(sourceTag, "right display draw failed: %v", err)
	}
}

func (p *Panel) renderImu(sample *telemetry.SensorSample) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{Dst: img, Src: &image.Uniform{C: image1bit.On}, Face: basicfont.Face7x13}

	if sample == nil {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawString("IMU")
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawString("Waiting...")
	} else {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawString(fmt.Sprintf("P:%6.2f", sample.Imu.Pitch))
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawString(fmt.Sprintf("R:%6.2f", sample.Imu.Roll))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawString(fmt.Sprintf("Y:%6.2f", sample.Imu.Yaw))
	}

	return p.left.Draw(p.left.Bounds(), img, image.Point{})
}

func (p *Panel) renderGps(sample *telemetry.SensorSample) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{Dst: img, Src: &image.Uniform{C: image1bit.On}, Face: basicfont.Face7x13}

	if sample == nil || !sample.Gps.HasLatitude {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawString("GPS")
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawString("Waiting...")
	} else {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawString(fmt.Sprintf("LA:%9.5f", sample.Gps.Latitude))
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawString(fmt.Sprintf("LO:%9.5f", sample.Gps.Longitude))
		if sample.Gps.HasAltitude {
			drawer.Dot = fixed.P(0, 39)
			drawer.DrawString(fmt.Sprintf("ALT:%7.1f", sample.Gps.Altitude))
		}
	}

	return p.right.Draw(p.right.Bounds(), img, image.Point{})
}
