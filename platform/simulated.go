// Package platform provides Platform implementations for the mppt
// controller: an in-memory Simulated adapter for tests and the host-side
// simulator, and a Periph adapter for real hardware.
package platform

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Simulated is an in-memory Platform: state lives in plain guarded fields
// instead of real registers, but every call observes the same contract a
// real adapter would. Safe for concurrent reads of its accessors while a
// single goroutine drives Tick.
type Simulated struct {
	mu sync.Mutex

	vcc    uint16
	sensor uint16

	pwmRunning bool
	pwmPeriod  uint16
	indicator  bool

	ticks        int
	setPWMCalls  int
	stopPWMCalls int

	clock      clock.Clock
	tickPeriod time.Duration
}

// NewSimulated returns a Simulated platform with vcc/sensor both zero and
// PWM stopped, mirroring power-up. SleepUntilNextTick uses a real clock and
// the 1000ms period by default; see WithClock to drive it from tests or the
// host-side simulator instead.
func NewSimulated() *Simulated {
	return &Simulated{
		clock:      clock.New(),
		tickPeriod: time.Second,
	}
}

// WithClock swaps in clk (typically a *clock.Mock in tests) and the tick
// period SleepUntilNextTick waits for, so tests advance instantly instead
// of sleeping wall-clock time.
func (s *Simulated) WithClock(clk clock.Clock, tickPeriod time.Duration) *Simulated {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clk
	s.tickPeriod = tickPeriod
	return s
}

// SleepUntilNextTick implements mppt.Platform.
func (s *Simulated) SleepUntilNextTick() {
	s.mu.Lock()
	clk, period := s.clock, s.tickPeriod
	s.mu.Unlock()
	clk.Sleep(period)
}

// SetReadings sets the values the next MeasureVCC/MeasureSensor calls will
// return. Call this between Tick invocations to script a scenario.
func (s *Simulated) SetReadings(vcc, sensor uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vcc = vcc
	s.sensor = sensor
}

// MeasureVCC implements mppt.Platform.
func (s *Simulated) MeasureVCC() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks++
	return s.vcc
}

// MeasureSensor implements mppt.Platform.
func (s *Simulated) MeasureSensor() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sensor
}

// SetPWM implements mppt.Platform.
func (s *Simulated) SetPWM(periodTicks uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pwmRunning = true
	s.pwmPeriod = periodTicks
	s.setPWMCalls++
}

// StopPWM implements mppt.Platform.
func (s *Simulated) StopPWM() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pwmRunning = false
	s.pwmPeriod = 0
	s.stopPWMCalls++
}

// Indicator implements mppt.Platform.
func (s *Simulated) Indicator(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indicator = on
}

// PWMState returns whether PWM is currently running and, if so, its
// programmed period, so tests can assert the PWM output matches the
// controller's state.
func (s *Simulated) PWMState() (running bool, period uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pwmRunning, s.pwmPeriod
}

// IndicatorState returns the last value passed to Indicator.
func (s *Simulated) IndicatorState() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indicator
}

// Calls returns how many times SetPWM/StopPWM have been invoked, for tests
// asserting call counts rather than just final state.
func (s *Simulated) Calls() (setPWM, stopPWM int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPWMCalls, s.stopPWMCalls
}
