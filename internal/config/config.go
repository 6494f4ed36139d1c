// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all process configuration values: the message channel
// capacity, the aggregator's emit cadence, each sensor worker's
// device parameters, the radio transport's link parameters, and the
// three ambient/domain sinks (MQTT mirror, websocket live feed,
// ground panel).
type Config struct {
	// Message channel
	ChannelCapacity int

	// Aggregator
	EmitIntervalSeconds float64
	PopTimeoutSeconds   float64

	// IMU (I2C device)
	IMUI2CBus  int
	IMUI2CAddr uint16

	// Baro (serial)
	BaroSerialPort string
	BaroBaudRate   int

	// GPS (serial)
	GPSSerialPort string
	GPSBaudRate   int

	// Radio transport
	RadioChannel   int
	RadioFreqHz    uint32
	RadioSF        int
	RadioTopic     string

	// MQTT telemetry mirror
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string

	// Ground-support live feed (websocket)
	LiveFeedBindAddr string
	LiveFeedPath     string

	// Ground panel display (dual SSD1306 over I2C)
	DisplayLeftI2CAddr    uint16
	DisplayRightI2CAddr   uint16
	DisplayUpdateInterval int // milliseconds
}

// Defaults returns the built-in configuration used when no config
// file path is given, or the file is missing — matching the defaults
// named in the specification (channel 128, emit interval 0.5s, I2C
// address 0x68, baud 9600, radio channel 0 / 433MHz / SF7).
func Defaults() *Config {
	return &Config{
		ChannelCapacity:     128,
		EmitIntervalSeconds: 0.5,
		PopTimeoutSeconds:   0.2,

		IMUI2CBus:  1,
		IMUI2CAddr: 0x68,

		BaroSerialPort: "/dev/ttyUSB0",
		BaroBaudRate:   9600,

		GPSSerialPort: "/dev/ttyUSB1",
		GPSBaudRate:   9600,

		RadioChannel: 0,
		RadioFreqHz:  433000000,
		RadioSF:      7,
		RadioTopic:   "sensors",

		MQTTBroker:   "",
		MQTTClientID: "rocket-telemetry",
		MQTTTopic:    "rocket/telemetry",

		LiveFeedBindAddr: "",
		LiveFeedPath:     "/ws/telemetry",

		DisplayLeftI2CAddr:    0x3C,
		DisplayRightI2CAddr:   0x3D,
		DisplayUpdateInterval: 500,
	}
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot reach around
//     InitGlobal/Get to mutate it directly.
//   - configOnce: ensures InitGlobal only runs once, even if called
//     multiple times.
//   - configMu: RWMutex protects concurrent access; the write lock
//     guards initialization, the read lock lets Get callers overlap.
//   - configErr: the first InitGlobal call's error, returned again by
//     every later call.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
	configErr    error
)

// Load reads a KEY=VALUE configuration file and returns a Config
// seeded from Defaults() and overridden per line. An empty configPath
// returns Defaults() directly — a config file is optional.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()
	if configPath == "" {
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "CHANNEL_CAPACITY":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CHANNEL_CAPACITY %q: %w", value, err)
		}
		if v < 1 {
			return fmt.Errorf("CHANNEL_CAPACITY must be >= 1, got %d", v)
		}
		c.ChannelCapacity = v

	case "EMIT_INTERVAL_SECONDS":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid EMIT_INTERVAL_SECONDS %q: %w", value, err)
		}
		if v <= 0 {
			return fmt.Errorf("EMIT_INTERVAL_SECONDS must be > 0, got %v", v)
		}
		c.EmitIntervalSeconds = v

	case "POP_TIMEOUT_SECONDS":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid POP_TIMEOUT_SECONDS %q: %w", value, err)
		}
		c.PopTimeoutSeconds = v

	case "IMU_I2C_BUS":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_BUS %q: %w", value, err)
		}
		c.IMUI2CBus = v
	case "IMU_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_ADDR %q: %w", value, err)
		}
		c.IMUI2CAddr = uint16(addr)

	case "BARO_SERIAL_PORT":
		c.BaroSerialPort = value
	case "BARO_BAUD_RATE":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BARO_BAUD_RATE %q: %w", value, err)
		}
		c.BaroBaudRate = v

	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = v

	case "RADIO_CHANNEL":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid RADIO_CHANNEL %q: %w", value, err)
		}
		c.RadioChannel = v
	case "RADIO_FREQ_HZ":
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid RADIO_FREQ_HZ %q: %w", value, err)
		}
		c.RadioFreqHz = uint32(v)
	case "RADIO_SF":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid RADIO_SF %q: %w", value, err)
		}
		if v < 6 || v > 12 {
			return fmt.Errorf("RADIO_SF must be 6-12, got %d", v)
		}
		c.RadioSF = v
	case "RADIO_TOPIC":
		if len(value) > 15 {
			return fmt.Errorf("RADIO_TOPIC must be <= 15 bytes, got %d", len(value))
		}
		c.RadioTopic = value

	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_TOPIC":
		c.MQTTTopic = value

	case "LIVE_FEED_BIND_ADDR":
		c.LiveFeedBindAddr = value
	case "LIVE_FEED_PATH":
		c.LiveFeedPath = value

	case "DISPLAY_LEFT_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_LEFT_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayLeftI2CAddr = uint16(addr)
	case "DISPLAY_RIGHT_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_RIGHT_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayRightI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = v

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that required fields are coherent after a config
// file overrides the defaults.
func (c *Config) validate() error {
	if c.ChannelCapacity < 1 {
		return fmt.Errorf("CHANNEL_CAPACITY must be >= 1")
	}
	if c.EmitIntervalSeconds <= 0 {
		return fmt.Errorf("EMIT_INTERVAL_SECONDS must be > 0")
	}
	if c.BaroSerialPort == "" {
		return fmt.Errorf("BARO_SERIAL_PORT is required")
	}
	if c.GPSSerialPort == "" {
		return fmt.Errorf("GPS_SERIAL_PORT is required")
	}
	if len(c.RadioTopic) > 15 {
		return fmt.Errorf("RADIO_TOPIC must be <= 15 bytes")
	}
	return nil
}

// InitGlobal initializes the global configuration from file, once.
// Subsequent calls are no-ops that return the first call's error (nil
// on success).
func InitGlobal(configPath string) error {
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, configErr = Load(configPath)
	})
	return configErr
}

// Get returns the global configuration instance. InitGlobal must be
// called first, or this returns nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
