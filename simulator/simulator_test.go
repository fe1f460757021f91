package simulator_test

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/solar-mppt-fw/mppt"
	"github.com/wrale/solar-mppt-fw/platform"
	"github.com/wrale/solar-mppt-fw/simulator"
)

func runScenario(t *testing.T, s simulator.Scenario) []simulator.Observation {
	t.Helper()
	ctrl := mppt.NewController()
	p := platform.NewSimulated().WithClock(clock.NewMock(), simulator.DefaultTickPeriod)
	return simulator.Run(ctrl, p, s.Samples)
}

func TestColdStartThenClimbEndsRunning(t *testing.T) {
	obs := runScenario(t, simulator.ColdStartThenClimb())
	require.Len(t, obs, 5)
	assert.False(t, obs[len(obs)-1].Off)
	assert.EqualValues(t, mppt.FirstState, obs[0].State)
}

func TestOverVoltageThenRecoverEndsInFirstState(t *testing.T) {
	obs := runScenario(t, simulator.OverVoltageThenRecover())
	require.Len(t, obs, 4)

	assert.False(t, obs[1].Off, "warning band alone should not cut MPPT")

	assert.True(t, obs[2].Off, "over-voltage tick should force Off")
	assert.True(t, obs[2].Action.Stopped)

	assert.False(t, obs[3].Off)
	assert.EqualValues(t, mppt.FirstState, obs[3].State)
}

func TestDarknessShutdownEndsOff(t *testing.T) {
	obs := runScenario(t, simulator.DarknessShutdown())
	last := obs[len(obs)-1]
	assert.True(t, last.Off)
}

func TestRunNeverProducesInvalidState(t *testing.T) {
	scenarios := []simulator.Scenario{
		simulator.ColdStartThenClimb(),
		simulator.OverVoltageThenRecover(),
		simulator.DarknessShutdown(),
	}
	for _, s := range scenarios {
		for _, o := range runScenario(t, s) {
			if o.Off {
				continue
			}
			assert.GreaterOrEqual(t, o.State, int16(0))
			assert.LessOrEqual(t, o.State, int16(mppt.StateCount-1))
		}
	}
}
