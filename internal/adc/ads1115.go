// Package adc provides a minimal two-channel ADC reader over I²C, scaled
// to the 10-bit domain the mppt control law expects. It stands in for the
// original firmware's internal ADC10 peripheral on a Linux-hosted board,
// conceptually an ADS1115 with the non-negative half of its 16-bit signed
// conversion register truncated down to 10 bits.
//
// Each read triggers a one-shot conversion over an i2c.Dev and then reads
// back the result register.
package adc

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddress is the ADS1115's default I²C address with ADDR tied low.
const DefaultAddress uint16 = 0x48

// Channel identifies a single-ended ADC input.
type Channel uint8

const (
	// ChannelVCC is the input wired to the divided supply rail.
	ChannelVCC Channel = 0
	// ChannelSensor is the input wired to the divided converter sense node.
	ChannelSensor Channel = 1
)

const (
	regConversion = 0x00
	regConfig     = 0x01

	cfgOS        = 1 << 15 // start a single conversion
	cfgModeOneshot = 1 << 8
	cfgPGA2_048V = 0x02 << 9 // +-2.048V full scale
	cfgDR860SPS  = 0x07 << 5
	cfgCompDisable = 0x03
)

// conversionTime bounds how long a one-shot conversion takes at 860SPS,
// with margin; see Dev.Read.
const conversionTime = 2 * time.Millisecond

// Dev reads two single-ended channels of an ADS1115-class ADC.
type Dev struct {
	d *i2c.Dev
}

// New returns a Dev communicating over bus at addr. Pass adc.DefaultAddress
// when ADDR is tied to GND.
func New(bus i2c.Bus, addr uint16) *Dev {
	return &Dev{d: &i2c.Dev{Bus: bus, Addr: addr}}
}

// muxFor returns the MUX field for a single-ended read of ch against GND.
func muxFor(ch Channel) uint16 {
	return (4 + uint16(ch)) << 12
}

// Read triggers a one-shot conversion on ch and returns it scaled to a
// 10-bit unsigned reading, the resolution the control law's thresholds are
// expressed against.
func (d *Dev) Read(ch Channel) (uint16, error) {
	cfg := cfgOS | muxFor(ch) | cfgPGA2_048V | cfgModeOneshot | cfgDR860SPS | cfgCompDisable

	var cfgBytes [2]byte
	binary.BigEndian.PutUint16(cfgBytes[:], cfg)
	if err := d.d.Tx([]byte{regConfig, cfgBytes[0], cfgBytes[1]}, nil); err != nil {
		return 0, fmt.Errorf("adc: write config for channel %d: %w", ch, err)
	}

	time.Sleep(conversionTime)

	if err := d.d.Tx([]byte{regConversion}, nil); err != nil {
		return 0, fmt.Errorf("adc: select conversion register: %w", err)
	}
	var raw [2]byte
	if err := d.d.Tx(nil, raw[:]); err != nil {
		return 0, fmt.Errorf("adc: read conversion register: %w", err)
	}

	counts := int16(binary.BigEndian.Uint16(raw[:]))
	if counts < 0 {
		counts = 0
	}
	// Non-negative 15-bit single-ended range down to the 10-bit range the
	// control law was tuned against.
	return uint16(counts) >> 5, nil
}

// ReadVCC reads the supply-rail channel.
func (d *Dev) ReadVCC() (uint16, error) { return d.Read(ChannelVCC) }

// ReadSensor reads the converter sense-node channel. Callers issue this
// immediately after ReadVCC so the two readings reflect the same instant.
func (d *Dev) ReadSensor() (uint16, error) { return d.Read(ChannelSensor) }
