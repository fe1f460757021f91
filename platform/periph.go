package platform

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/wrale/solar-mppt-fw/internal/adc"
)

// tickDuration is the length of one 32768Hz auxiliary-clock tick, the unit
// PWM periods are expressed in.
const tickDuration = time.Second / 32768

// PeriphConfig names the hardware resources a Periph platform binds to.
type PeriphConfig struct {
	// I2CBus is the bus name periph's i2creg registry resolves, e.g. "1"
	// for /dev/i2c-1. Empty selects the default bus.
	I2CBus string
	// ADCAddress is the ADC's I²C address; zero selects adc.DefaultAddress.
	ADCAddress uint16
	// MOSFETPin is the GPIO pin name driving the buck converter's power
	// FET gate (the PWM output).
	MOSFETPin string
	// IndicatorPin is the GPIO pin name driving the status LED.
	IndicatorPin string
	// CrystalPresent selects the tick period: 1000ms when true, 250ms when
	// the 32768Hz crystal is absent and the internal low-frequency
	// oscillator is used instead.
	CrystalPresent bool
	// Logger receives tick-level diagnostics. A nil Logger disables
	// logging entirely.
	Logger *logrus.Logger
}

const (
	tickPeriodWithCrystal    = 1000 * time.Millisecond
	tickPeriodWithoutCrystal = 250 * time.Millisecond
)

// Periph is a Platform backed by real hardware via periph.io: a GPIO pin
// bit-banged in software for PWM, driven by the 42-entry period table, a
// second GPIO pin for the indicator LED, and an ADC for the two analog
// channels.
type Periph struct {
	mosfet     gpio.PinOut
	indicator  gpio.PinOut
	adc        *adc.Dev
	log        *logrus.Logger
	tickPeriod time.Duration

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewPeriph initializes periph's host drivers and opens the configured
// GPIO pins and I²C bus. Unlike the bare-metal original, initialization can
// fail here (missing device, permission error) and returns an error rather
// than silently doing nothing.
func NewPeriph(cfg PeriphConfig) (*Periph, error) {
	if cfg.MOSFETPin == "" {
		return nil, fmt.Errorf("platform: MOSFET pin name is required")
	}
	if cfg.IndicatorPin == "" {
		return nil, fmt.Errorf("platform: indicator pin name is required")
	}
	if cfg.ADCAddress == 0 {
		cfg.ADCAddress = adc.DefaultAddress
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
		cfg.Logger.SetLevel(logrus.PanicLevel)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("platform: init periph host: %w", err)
	}

	mosfet := gpioreg.ByName(cfg.MOSFETPin)
	if mosfet == nil {
		return nil, fmt.Errorf("platform: MOSFET pin %q not found", cfg.MOSFETPin)
	}
	if err := mosfet.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("platform: configure MOSFET pin as output: %w", err)
	}

	indicator := gpioreg.ByName(cfg.IndicatorPin)
	if indicator == nil {
		return nil, fmt.Errorf("platform: indicator pin %q not found", cfg.IndicatorPin)
	}
	if err := indicator.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("platform: configure indicator pin as output: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("platform: open I2C bus %q: %w", cfg.I2CBus, err)
	}

	tickPeriod := tickPeriodWithoutCrystal
	if cfg.CrystalPresent {
		tickPeriod = tickPeriodWithCrystal
	}

	return &Periph{
		mosfet:     mosfet,
		indicator:  indicator,
		adc:        adc.New(bus, cfg.ADCAddress),
		log:        cfg.Logger,
		tickPeriod: tickPeriod,
	}, nil
}

// SleepUntilNextTick implements mppt.Platform.
func (p *Periph) SleepUntilNextTick() {
	time.Sleep(p.tickPeriod)
}

// MeasureVCC implements mppt.Platform.
func (p *Periph) MeasureVCC() uint16 {
	v, err := p.adc.ReadVCC()
	if err != nil {
		p.log.WithError(err).Warn("platform: vcc read failed, reusing zero")
		return 0
	}
	return v
}

// MeasureSensor implements mppt.Platform.
func (p *Periph) MeasureSensor() uint16 {
	v, err := p.adc.ReadSensor()
	if err != nil {
		p.log.WithError(err).Warn("platform: sensor read failed, reusing zero")
		return 0
	}
	return v
}

// SetPWM implements mppt.Platform: starts (or reprograms) the software PWM
// loop so the MOSFET gate pulses high for one tick every periodTicks+1
// ticks.
func (p *Periph) SetPWM(periodTicks uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()

	period := time.Duration(periodTicks+1) * tickDuration
	p.log.WithField("period", period).Debug("platform: set pwm")

	if !p.running {
		p.running = true
		p.done = make(chan struct{})
		p.wg.Add(1)
		go p.pwmLoop(period, p.done)
		return
	}
	// Reprogramming an already-running loop stops the old goroutine (a
	// pulse in progress finishes first) and starts a new one with the new
	// period, timed from this call, rather than mutating shared state
	// mid-pulse.
	close(p.done)
	p.wg.Wait()
	p.done = make(chan struct{})
	p.wg.Add(1)
	go p.pwmLoop(period, p.done)
}

// StopPWM implements mppt.Platform.
func (p *Periph) StopPWM() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.done)
	p.wg.Wait()
	p.running = false
	if err := p.mosfet.Out(gpio.Low); err != nil {
		p.log.WithError(err).Warn("platform: failed to force MOSFET pin low")
	}
}

// Indicator implements mppt.Platform.
func (p *Periph) Indicator(on bool) {
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := p.indicator.Out(level); err != nil {
		p.log.WithError(err).Warn("platform: failed to drive indicator pin")
	}
}

// pwmLoop pulses the MOSFET pin high for a single tick once per period: a
// fixed-width pulse at a variable repetition rate. Best-effort: a single
// missed edge does not tear down the loop.
func (p *Periph) pwmLoop(period time.Duration, done <-chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := p.mosfet.Out(gpio.High); err != nil {
				continue
			}
			time.Sleep(tickDuration)
			if err := p.mosfet.Out(gpio.Low); err != nil {
				continue
			}
		}
	}
}
