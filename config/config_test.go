package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wrale/solar-mppt-fw/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Platform != config.PlatformSimulated {
		t.Errorf("Platform = %q, want %q", cfg.Platform, config.PlatformSimulated)
	}
	if !cfg.Clock.CrystalPresent {
		t.Error("Clock.CrystalPresent should default to true")
	}
	if cfg.Hardware.MOSFETPin != "GPIO2" {
		t.Errorf("Hardware.MOSFETPin = %q, want GPIO2", cfg.Hardware.MOSFETPin)
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	cfg, err := config.Load(nil, "/nonexistent/path/harvester.toml")
	if err != nil {
		t.Fatalf("Load() with missing file: %v", err)
	}
	if cfg.Platform != config.PlatformSimulated {
		t.Errorf("Platform = %q, want default %q", cfg.Platform, config.PlatformSimulated)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harvester.toml")
	contents := `
platform = "periph"
log_level = "debug"

[clock]
crystal_present = false

[hardware]
i2c_bus = "2"
mosfet_pin = "GPIO17"
indicator_pin = "GPIO27"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := config.Load(nil, path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Platform != config.PlatformPeriph {
		t.Errorf("Platform = %q, want periph", cfg.Platform)
	}
	if cfg.Clock.CrystalPresent {
		t.Error("Clock.CrystalPresent should be false")
	}
	if cfg.Hardware.MOSFETPin != "GPIO17" {
		t.Errorf("Hardware.MOSFETPin = %q, want GPIO17", cfg.Hardware.MOSFETPin)
	}
}

func TestLoadRejectsUnknownPlatform(t *testing.T) {
	t.Setenv("HARVESTERD_PLATFORM", "bogus")
	if _, err := config.Load(nil); err == nil {
		t.Fatal("expected error for unknown platform")
	}
}
