// Package mppt implements the maximum-power-point-tracking control loop for
// a solar energy harvester: the periodic wake/measure/decide/actuate cycle,
// the 42-entry discrete duty-cycle hill-climb, and the charging/over-voltage/
// darkness state machine. The package has no hardware dependencies; all
// peripheral access goes through the Platform interface, which callers
// satisfy with either real hardware (see package platform) or a simulator.
package mppt

const (
	// vccStopThreshold is the 10-bit vcc reading above which the
	// supercapacitor is considered at its cut-off voltage (~2.55V): MPPT
	// is suspended entirely until vcc drops back down.
	vccStopThreshold = 869

	// vccWarnThreshold is the 10-bit vcc reading above which the
	// indicator is latched on as an early warning (~2.50V) while MPPT
	// keeps running.
	vccWarnThreshold = 852

	// darkThreshold is the 10-bit sensor reading below which the cell is
	// considered too dark to usefully charge.
	darkThreshold = 64

	// brightThreshold is the 10-bit sensor reading above which the
	// converter is saturated and duty cycle should climb quickly.
	brightThreshold = 255

	// fastStep is the state-index step size used by the darkness and
	// saturation fast paths.
	fastStep = 4

	// lastEnergyMax is the sentinel last_energy value that forces the
	// next hill-climb comparison to treat the objective as having
	// decreased, re-entering perturb-and-observe after a fast climb.
	lastEnergyMax int16 = 1<<15 - 1
)

// Platform is the boundary the controller requires from its environment: a
// narrow set of ADC/PWM/indicator/sleep operations. Its methods return no
// errors, so an implementation absorbs its own I/O failures instead of
// failing the control law. Platform operations are called from a single
// logical context (the tick handler) and are never invoked concurrently with themselves.
type Platform interface {
	// MeasureVCC returns a 10-bit ADC reading of the supply rail.
	MeasureVCC() uint16
	// MeasureSensor returns a 10-bit ADC reading of the sense node. Always
	// called immediately after MeasureVCC.
	MeasureSensor() uint16
	// SetPWM programs the PWM output to a period of periodTicks+1 ticks
	// of the 32768Hz auxiliary clock, with a fixed one-tick-high pulse.
	SetPWM(periodTicks uint16)
	// StopPWM halts PWM generation and forces the output low.
	StopPWM()
	// Indicator drives the status LED.
	Indicator(on bool)
	// SleepUntilNextTick blocks until the next tick is due. Tick itself
	// never calls this — the outer loop (a daemon or the simulator) calls
	// it once per iteration, between Tick invocations, as the idle body
	// between wakeups.
	SleepUntilNextTick()
}

// Action records what a Tick did to the PWM output, for diagnostics and
// testing. It never drives behavior on its own — Tick already applied it
// to the Platform before returning.
type Action struct {
	Stopped bool   // PWM was stopped (state went to Off)
	Set     bool   // SetPWM was called
	Period  uint16 // the periodTicks argument, if Set
	Restart bool   // the PWM timer was (re)started from a cold stop
}

// Controller holds the MPPT state machine's mutable triple: state, up,
// lastEnergy. It is created Off and is owned exclusively by whatever calls
// Tick — there is no internal locking, by design: the tick handler runs to
// completion in a single logical context and is never reentered, so a mutex
// here would protect against a race that cannot occur and would only hide a
// misuse bug (concurrent Tick calls) behind a false sense of safety.
type Controller struct {
	state      int16 // Off (-1) or 0..StateCount-1
	up         bool  // direction of the last hill-climb step
	lastEnergy int16 // most recent log-domain objective value
}

// NewController returns a Controller in the Off state, as at power-up.
func NewController() *Controller {
	return &Controller{state: Off}
}

// State returns the current state index, or Off.
func (c *Controller) State() int16 { return c.state }

// IsOff reports whether the controller is currently generating no PWM.
func (c *Controller) IsOff() bool { return c.state == Off }

// Snapshot returns the full internal triple for diagnostics/logging. up and
// lastEnergy are undefined when off is true and must not be read in that
// case.
func (c *Controller) Snapshot() (state int16, up bool, lastEnergy int16, off bool) {
	return c.state, c.up, c.lastEnergy, c.state == Off
}

// Tick executes exactly one control-loop decision: sample vcc and sensor,
// apply the over-voltage guard, select and run the darkness/saturation/
// hill-climb branch, then program the PWM output to match. It must be
// called once per timer wake and must run to completion without
// interleaving with another Tick on the same Controller.
func (c *Controller) Tick(p Platform) Action {
	vcc := p.MeasureVCC()
	sensor := p.MeasureSensor()

	if vcc > vccWarnThreshold {
		p.Indicator(true)
		if vcc > vccStopThreshold {
			p.StopPWM()
			c.state = Off
			return Action{Stopped: true}
		}
	} else {
		p.Indicator(false)
	}

	wasOff := c.state == Off

	switch {
	case wasOff:
		if sensor < darkThreshold {
			// Too dark to start; stay Off, touch nothing else.
			return Action{}
		}
		c.state = FirstState
		c.up = false
		c.lastEnergy = 0

	case sensor < darkThreshold:
		c.state = max16(c.state-fastStep, Off)
		c.up = false
		c.lastEnergy = 0

	case sensor > brightThreshold:
		c.state = min16(c.state+fastStep, StateCount-1)
		c.up = true
		c.lastEnergy = lastEnergyMax

	default:
		c.hillClimb(sensor)
	}

	return c.apply(p, wasOff)
}

// hillClimb runs the perturb-and-observe step for sensor readings within
// the MPPT band [darkThreshold, brightThreshold]. After an upward step it
// reverses unless the objective increased; after a downward step it
// reverses only if the objective decreased, and keeps descending when the
// objective is unchanged.
func (c *Controller) hillClimb(sensor uint16) {
	energy := LOG_ENERGY[(sensor>>1)-32] + LOG_COUNT[c.state]

	if c.up {
		if energy > c.lastEnergy {
			if c.state != StateCount-1 {
				c.state++
			}
		} else {
			c.state--
			c.up = false
		}
	} else {
		if energy < c.lastEnergy {
			c.state++
			c.up = true
		} else {
			c.state--
		}
	}

	c.lastEnergy = energy
}

// apply programs the Platform's PWM output to match c.state.
func (c *Controller) apply(p Platform, wasOff bool) Action {
	if c.state == Off {
		p.StopPWM()
		return Action{Stopped: true}
	}

	period := INTERVAL[c.state] - 1
	p.SetPWM(period)
	return Action{Set: true, Period: period, Restart: wasOff}
}

func max16(a, b int16) int16 {
	if a > b {
		return a
	}
	return b
}

func min16(a, b int16) int16 {
	if a < b {
		return a
	}
	return b
}
