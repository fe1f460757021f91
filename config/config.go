// Package config loads the harvester daemon's configuration from a TOML
// file, with environment variable overrides: a defaulted struct,
// Load(log, paths...) that skips missing files, and HARVESTERD_* env overrides
// applied afterward.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// PlatformKind selects which mppt.Platform implementation the daemon runs.
type PlatformKind string

const (
	// PlatformPeriph drives real hardware via periph.io.
	PlatformPeriph PlatformKind = "periph"
	// PlatformSimulated runs entirely in-memory; useful for dry runs and
	// development off-hardware.
	PlatformSimulated PlatformKind = "simulated"
)

// ClockConfig selects the tick period: 1000ms when the 32768Hz crystal is
// present, 250ms when falling back to the internal low-frequency
// oscillator.
type ClockConfig struct {
	CrystalPresent bool `toml:"crystal_present"`
}

// HardwareConfig names the GPIO/I²C resources the periph platform binds to.
// Unused when Platform is "simulated".
type HardwareConfig struct {
	I2CBus       string `toml:"i2c_bus"`
	ADCAddress   int    `toml:"adc_address"`
	MOSFETPin    string `toml:"mosfet_pin"`
	IndicatorPin string `toml:"indicator_pin"`
}

// Config is the top-level harvester daemon configuration.
type Config struct {
	Platform PlatformKind   `toml:"platform"`
	LogLevel string         `toml:"log_level"`
	Clock    ClockConfig    `toml:"clock"`
	Hardware HardwareConfig `toml:"hardware"`
}

// Load reads config from the first existing path in paths, then applies
// HARVESTERD_* environment variable overrides. Missing files are skipped
// silently; a malformed file returns an error. Load() with no arguments
// returns defaults plus any env overrides. Env-override warnings are
// logged through log; pass nil to discard them.
func Load(log *logrus.Logger, paths ...string) (*Config, error) {
	cfg := defaults()

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("config: parsing %q: %w", path, err)
			}
			break
		} else if !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("config: checking %q: %w", path, statErr)
		}
	}

	applyEnvOverrides(cfg, log)

	if cfg.Platform != PlatformPeriph && cfg.Platform != PlatformSimulated {
		return nil, fmt.Errorf("config: unknown platform %q", cfg.Platform)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Platform: PlatformSimulated,
		LogLevel: "info",
		Clock:    ClockConfig{CrystalPresent: true},
		Hardware: HardwareConfig{
			I2CBus:       "1",
			ADCAddress:   0x48,
			MOSFETPin:    "GPIO2",
			IndicatorPin: "GPIO6",
		},
	}
}

func applyEnvOverrides(cfg *Config, log *logrus.Logger) {
	if v := os.Getenv("HARVESTERD_PLATFORM"); v != "" {
		cfg.Platform = PlatformKind(v)
	}
	if v := os.Getenv("HARVESTERD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HARVESTERD_CRYSTAL_PRESENT"); v != "" {
		cfg.Clock.CrystalPresent = v == "true" || v == "1"
	}
	if v := os.Getenv("HARVESTERD_I2C_BUS"); v != "" {
		cfg.Hardware.I2CBus = v
	}
	if v := os.Getenv("HARVESTERD_ADC_ADDRESS"); v != "" {
		if addr, err := strconv.ParseInt(v, 0, 32); err == nil {
			cfg.Hardware.ADCAddress = int(addr)
		} else if log != nil {
			log.WithError(err).Warnf("config: ignoring invalid HARVESTERD_ADC_ADDRESS=%q", v)
		}
	}
	if v := os.Getenv("HARVESTERD_MOSFET_PIN"); v != "" {
		cfg.Hardware.MOSFETPin = v
	}
	if v := os.Getenv("HARVESTERD_INDICATOR_PIN"); v != "" {
		cfg.Hardware.IndicatorPin = v
	}
}
