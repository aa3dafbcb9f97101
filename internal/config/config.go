// Package config loads the widget emulator configuration from TOML.
package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full emulator configuration.
type Config struct {
	Device       string `toml:"device"`
	Baud         int    `toml:"baud"`
	Profile      string `toml:"profile"`
	UniversesOut int    `toml:"universes_out"` // dmxusb profile only
	SerialNumber string `toml:"serial_number"` // 4 bytes, hex
	IdleTimeout  int    `toml:"idle_timeout_ms"`
	LogLevel     string `toml:"log_level"`
	Headless     bool   `toml:"headless"`

	SACN   SACNConfig   `toml:"sacn"`
	ArtNet ArtNetConfig `toml:"artnet"`
}

// SACNConfig controls E1.31 forwarding of received universes.
type SACNConfig struct {
	Enabled    bool   `toml:"enabled"`
	SourceName string `toml:"source_name"`
	Priority   uint8  `toml:"priority"`
	// StartUniverse maps widget universe 0 to this sACN universe
	// (numbering starts at 1).
	StartUniverse uint16 `toml:"start_universe"`
}

// ArtNetConfig controls Art-Net forwarding of received universes.
type ArtNetConfig struct {
	Enabled bool   `toml:"enabled"`
	Target  string `toml:"target"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Device:       "/dev/ttyUSB0",
		Baud:         115200,
		Profile:      "ultra-dmx-micro",
		SerialNumber: "C0FFEE01",
		IdleTimeout:  100,
		LogLevel:     "info",
		SACN: SACNConfig{
			SourceName:    "dmx-widget",
			Priority:      100,
			StartUniverse: 1,
		},
		ArtNet: ArtNetConfig{
			Target: "255.255.255.255:6454",
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges; it does not touch the filesystem or
// network.
func (c Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("device must be set")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("baud must be positive, got %d", c.Baud)
	}
	switch c.Profile {
	case "ultra-dmx-micro", "ultra-dmx-pro", "dmxusb":
	default:
		return fmt.Errorf("unknown profile %q", c.Profile)
	}
	// The universe-indexed label family starts at 100, so the label byte
	// bounds the output count.
	if c.UniversesOut < 0 || c.UniversesOut > 155 {
		return fmt.Errorf("universes_out must be in [0, 155], got %d", c.UniversesOut)
	}
	if _, err := c.SerialNumberBytes(); err != nil {
		return err
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle_timeout_ms must be positive, got %d", c.IdleTimeout)
	}
	if c.SACN.Enabled {
		// E1.31 priorities run 0-200.
		if c.SACN.Priority > 200 {
			return fmt.Errorf("sacn priority must be in [0, 200], got %d", c.SACN.Priority)
		}
		if c.SACN.StartUniverse == 0 {
			return fmt.Errorf("sacn start_universe must be at least 1")
		}
	}
	if c.ArtNet.Enabled && c.ArtNet.Target == "" {
		return fmt.Errorf("artnet target must be set when artnet is enabled")
	}
	return nil
}

// SerialNumberBytes decodes the configured serial number.
func (c Config) SerialNumberBytes() ([4]byte, error) {
	var serial [4]byte
	raw, err := hex.DecodeString(c.SerialNumber)
	if err != nil || len(raw) != 4 {
		return serial, fmt.Errorf("serial_number must be 8 hex digits, got %q", c.SerialNumber)
	}
	copy(serial[:], raw)
	return serial, nil
}

// IdleTimeoutDuration returns the idle threshold as a duration.
func (c Config) IdleTimeoutDuration() time.Duration {
	return time.Duration(c.IdleTimeout) * time.Millisecond
}
