package adc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
)

// fakeBus is a minimal periph i2c.Bus double: the config write and the
// conversion register read are fixed in advance, and each Tx call is
// recorded so tests can assert on the exact wire sequence.
type fakeBus struct {
	conversionCounts int16
	writes           [][]byte
}

func (f *fakeBus) String() string { return "fakeBus" }

func (f *fakeBus) Duplex() conn.Duplex { return conn.Half }

func (f *fakeBus) SetSpeed(physic.Frequency) error { return nil }

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	if len(w) > 0 {
		cp := make([]byte, len(w))
		copy(cp, w)
		f.writes = append(f.writes, cp)
	}
	if len(r) == 2 {
		r[0] = byte(f.conversionCounts >> 8)
		r[1] = byte(f.conversionCounts)
	}
	return nil
}

func TestReadScalesCountsTo10Bits(t *testing.T) {
	bus := &fakeBus{conversionCounts: 0x7FE0} // top 10 bits all set
	dev := New(bus, DefaultAddress)

	v, err := dev.Read(ChannelSensor)
	require.NoError(t, err)
	assert.EqualValues(t, 0x7FE0>>5, v)
}

func TestReadClampsNegativeCountsToZero(t *testing.T) {
	bus := &fakeBus{conversionCounts: -1}
	dev := New(bus, DefaultAddress)

	v, err := dev.Read(ChannelVCC)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)
}

func TestReadSelectsDistinctMuxPerChannel(t *testing.T) {
	bus := &fakeBus{}
	dev := New(bus, DefaultAddress)

	_, err := dev.ReadVCC()
	require.NoError(t, err)
	_, err = dev.ReadSensor()
	require.NoError(t, err)

	require.Len(t, bus.writes, 4) // config write + register-select read, twice
	vccCfg := bus.writes[0]
	sensorCfg := bus.writes[2]
	require.Equal(t, byte(regConfig), vccCfg[0])
	require.Equal(t, byte(regConfig), sensorCfg[0])
	assert.NotEqual(t, vccCfg[1], sensorCfg[1], "VCC and sensor reads must select different MUX inputs")
}
