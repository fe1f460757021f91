// Package simulator drives an mppt.Controller against a scripted sequence
// of (vcc, sensor) samples on a host-side Platform, so the control loop can
// be exercised exhaustively off-hardware.
package simulator

import (
	"time"

	"github.com/wrale/solar-mppt-fw/mppt"
	"github.com/wrale/solar-mppt-fw/platform"
)

// Sample is one tick's worth of scripted ADC readings.
type Sample struct {
	VCC    uint16
	Sensor uint16
}

// Observation is the controller's state after processing one Sample.
type Observation struct {
	Sample     Sample
	State      int16
	Up         bool
	LastEnergy int16
	Off        bool
	Action     mppt.Action
}

// Run feeds samples through ctrl one at a time on p, calling
// p.SleepUntilNextTick() between samples the way a real tick loop would,
// and returns an Observation per sample. p is normally constructed with
// WithClock and a mock clock so the run completes instantly regardless of
// the configured tick period.
func Run(ctrl *mppt.Controller, p *platform.Simulated, samples []Sample) []Observation {
	observations := make([]Observation, 0, len(samples))

	for i, sample := range samples {
		if i > 0 {
			p.SleepUntilNextTick()
		}
		p.SetReadings(sample.VCC, sample.Sensor)
		action := ctrl.Tick(p)

		state, up, lastEnergy, off := ctrl.Snapshot()
		observations = append(observations, Observation{
			Sample:     sample,
			State:      state,
			Up:         up,
			LastEnergy: lastEnergy,
			Off:        off,
			Action:     action,
		})
	}

	return observations
}

// Scenario is a named, reusable sample sequence for exercising common
// control-loop transitions end to end.
type Scenario struct {
	Name    string
	Samples []Sample
}

// ColdStartThenClimb scripts a cold start followed by several ticks inside
// the MPPT band, enough to observe at least one direction reversal.
func ColdStartThenClimb() Scenario {
	return Scenario{
		Name: "cold-start-then-climb",
		Samples: []Sample{
			{VCC: 400, Sensor: 200}, // cold start -> FirstState
			{VCC: 400, Sensor: 140},
			{VCC: 400, Sensor: 130},
			{VCC: 400, Sensor: 150},
			{VCC: 400, Sensor: 145},
		},
	}
}

// OverVoltageThenRecover scripts a run into the indicator-warning band,
// into over-voltage cut-off, and back down into the charging band once vcc
// recovers.
func OverVoltageThenRecover() Scenario {
	return Scenario{
		Name: "over-voltage-then-recover",
		Samples: []Sample{
			{VCC: 400, Sensor: 200}, // cold start -> FirstState
			{VCC: 860, Sensor: 200}, // > 852, <= 869: indicator on, MPPT still active
			{VCC: 900, Sensor: 200}, // > 869: forced Off
			{VCC: 400, Sensor: 200}, // recovered: cold restart
		},
	}
}

// DarknessShutdown scripts a run charging down to darkness and staying Off.
func DarknessShutdown() Scenario {
	return Scenario{
		Name: "darkness-shutdown",
		Samples: []Sample{
			{VCC: 400, Sensor: 200},
			{VCC: 400, Sensor: 10},
			{VCC: 400, Sensor: 10},
			{VCC: 400, Sensor: 10},
			{VCC: 400, Sensor: 10},
		},
	}
}

// DefaultTickPeriod is the nominal tick period used by scenario playback
// when no period is configured, matching the crystal-present tick rate.
const DefaultTickPeriod = time.Second
