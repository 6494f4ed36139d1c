package imu

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	regPowerMgmt1 = 0x6B
	regAccelStart = 0x3B
	burstLen      = 14
)

// Device talks to a real MPU-6050 over I2C via raw register
// transactions, following the teacher's host.Init()/i2creg.Open() bus
// acquisition (internal/sensors/imu_source.go,
// internal/app/hmc5983_producer.go) but issuing the spec-mandated raw
// reads/writes directly through i2c.Dev.Tx rather than a packaged
// device driver, since this is a fixed-register MPU-6050 rather than
// the teacher's SPI MPU-9250.
type Device struct {
	dev *i2c.Dev
	bus i2c.BusCloser
}

// OpenDevice initializes the host drivers, opens the named I2C bus,
// and wakes the MPU-6050 at the given address. busName may be empty
// to use the first available bus.
func OpenDevice(busName string, addr uint16) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("imu: host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("imu: open i2c bus %q: %w", busName, err)
	}

	dev := &i2c.Dev{Bus: bus, Addr: addr}

	// Wake sequence: write 0x00 to the power management register.
	if err := dev.Tx([]byte{regPowerMgmt1, 0x00}, nil); err != nil {
		bus.Close()
		return nil, fmt.Errorf("imu: wake write: %w", err)
	}

	return &Device{dev: dev, bus: bus}, nil
}

// ReadRaw performs the 14-byte burst read starting at the
// accelerometer register and decodes big-endian int16 per axis:
// ax, ay, az, temp(skipped), gx, gy, gz.
func (d *Device) ReadRaw() (raw, error) {
	w := []byte{regAccelStart}
	r := make([]byte, burstLen)
	if err := d.dev.Tx(w, r); err != nil {
		return raw{}, fmt.Errorf("imu: burst read: %w", err)
	}

	return raw{
		Ax: int16(binary.BigEndian.Uint16(r[0:2])),
		Ay: int16(binary.BigEndian.Uint16(r[2:4])),
		Az: int16(binary.BigEndian.Uint16(r[4:6])),
		// r[6:8] is temperature; not used by this worker.
		Gx: int16(binary.BigEndian.Uint16(r[8:10])),
		Gy: int16(binary.BigEndian.Uint16(r[10:12])),
		Gz: int16(binary.BigEndian.Uint16(r[12:14])),
	}, nil
}

// Close releases the underlying I2C bus.
func (d *Device) Close() error {
	return d.bus.Close()
}
