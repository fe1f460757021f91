// Command harvesterd runs the solar MPPT control loop against real
// hardware (or, with platform="simulated" in the config, entirely
// in-memory). It wires config -> platform -> mppt.Controller and shuts
// down cleanly on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/wrale/solar-mppt-fw/config"
	"github.com/wrale/solar-mppt-fw/mppt"
	"github.com/wrale/solar-mppt-fw/platform"
)

func main() {
	configPath := flag.String("config", "harvester.toml", "path to the harvester TOML config file")
	flag.Parse()

	log := logrus.New()

	cfg, err := config.Load(log, *configPath)
	if err != nil {
		log.WithError(err).Fatal("harvesterd: failed to load config")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("harvesterd: invalid log level, defaulting to info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	p, err := newPlatform(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("harvesterd: failed to initialize platform")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	run(ctx, log, p)
}

func newPlatform(cfg *config.Config, log *logrus.Logger) (mppt.Platform, error) {
	switch cfg.Platform {
	case config.PlatformSimulated:
		return platform.NewSimulated(), nil
	default:
		return platform.NewPeriph(platform.PeriphConfig{
			I2CBus:         cfg.Hardware.I2CBus,
			ADCAddress:     uint16(cfg.Hardware.ADCAddress),
			MOSFETPin:      cfg.Hardware.MOSFETPin,
			IndicatorPin:   cfg.Hardware.IndicatorPin,
			CrystalPresent: cfg.Clock.CrystalPresent,
			Logger:         log,
		})
	}
}

// run executes the tick loop until ctx is canceled: sample, decide,
// actuate, sleep until the next tick. One structured log line per tick:
// entering Off (over-voltage or darkness) logs at warn, resuming from Off
// logs at info, and every other tick logs at debug.
func run(ctx context.Context, log *logrus.Logger, p mppt.Platform) {
	ctrl := mppt.NewController()

	for {
		select {
		case <-ctx.Done():
			log.Info("harvesterd: shutting down")
			return
		default:
		}

		wasOff := ctrl.IsOff()
		action := ctrl.Tick(p)
		state, up, lastEnergy, off := ctrl.Snapshot()

		entry := log.WithFields(logrus.Fields{
			"state":       state,
			"up":          up,
			"last_energy": lastEnergy,
		})
		switch {
		case off && !wasOff:
			entry.Warn("harvesterd: entered Off")
		case !off && wasOff:
			entry.Info("harvesterd: resumed charging")
		default:
			entry.Debug("harvesterd: tick")
		}
		_ = action

		p.SleepUntilNextTick()
	}
}
