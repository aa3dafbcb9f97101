// Package serial provides the byte transport the widget protocol runs
// over: a thin wrapper around a real serial port plus a non-blocking pump
// that adapts the port's blocking reads to the widget's poll-driven
// Available/ReadByte contract.
package serial

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port is the minimal serial device surface the pump needs. Satisfied by
// tarm/serial ports and by in-memory fakes in tests.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate. USB CDC widgets ignore this, real FTDI-style widgets
	// run at 115200.
	Baud int

	// Read timeout; bounds how long the pump blocks per read so Close
	// is honored promptly.
	ReadTimeout time.Duration
}

// DefaultConfig returns the configuration matching the emulated widget's
// default link settings
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 20 * time.Millisecond,
	}
}

// Open opens the serial device described by cfg
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return port, nil
}
