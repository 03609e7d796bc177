package apu

import (
	"testing"

	"github.com/pinwheel/gbcore/internal/savestate"
	"github.com/stretchr/testify/require"
)

func powerOn(a *APU) {
	a.WriteRegister(0xFF26, 0x80)
}

func TestPowerOffClearsRegistersButNotWaveRAM(t *testing.T) {
	a := New()
	powerOn(a)
	a.WriteRegister(0xFF30, 0xAB)
	a.WriteRegister(0xFF11, 0xC0)
	require.Equal(t, uint8(0xC0), a.pulse1.readNRx1()&0xC0)

	a.WriteRegister(0xFF26, 0x00)
	require.False(t, a.enabled)
	require.Equal(t, uint8(0), a.pulse1.duty)
	require.Equal(t, uint8(0xAB), a.ReadRegister(0xFF30))
}

func TestPulseTriggerStartsChannel(t *testing.T) {
	a := New()
	powerOn(a)
	a.WriteRegister(0xFF12, 0xF0) // max volume, no envelope sweep
	a.WriteRegister(0xFF13, 0x00)
	a.WriteRegister(0xFF14, 0x87) // trigger, freq high bits 0b111

	require.True(t, a.pulse1.enabled)
	require.Equal(t, uint8(0x0F), a.pulse1.volume)
}

func TestLengthCounterDisablesChannel(t *testing.T) {
	a := New()
	powerOn(a)
	a.WriteRegister(0xFF12, 0xF0)
	a.WriteRegister(0xFF11, 0x3F) // length load = 63, one step from max
	a.WriteRegister(0xFF14, 0xC0) // trigger + length enable

	require.True(t, a.pulse1.enabled)
	require.Equal(t, uint16(1), a.pulse1.length)

	a.clockLength()
	require.False(t, a.pulse1.enabled)
	require.Equal(t, uint16(0), a.pulse1.length)
}

func TestNoiseChannelDACGating(t *testing.T) {
	a := New()
	powerOn(a)
	a.WriteRegister(0xFF21, 0x00) // volume 0, dac off
	a.WriteRegister(0xFF23, 0x80) // trigger
	require.False(t, a.noise.enabled)
	require.False(t, a.noise.dacOn)
}

func TestMixerRoutesChannelsByNR51(t *testing.T) {
	a := New()
	powerOn(a)
	a.WriteRegister(0xFF12, 0xF0)
	a.WriteRegister(0xFF14, 0x80)
	a.WriteRegister(0xFF24, 0x77) // max volume both sides, no VIN
	a.WriteRegister(0xFF25, 0x11) // channel 1 only, both sides

	a.ClearSamples()
	for i := 0; i < DotsPerFrame; i++ {
		a.step()
	}
	require.NotEmpty(t, a.Samples())
}

func TestSaveLoadRoundTripsChannelState(t *testing.T) {
	a := New()
	powerOn(a)
	a.WriteRegister(0xFF12, 0xA5)
	a.WriteRegister(0xFF13, 0x55)
	a.WriteRegister(0xFF14, 0x83)

	enc := savestate.NewEncoder()
	a.Save(enc)

	b := New()
	dec := savestate.NewDecoder(enc.Bytes())
	b.Load(dec)

	require.Equal(t, a.pulse1.freq, b.pulse1.freq)
	require.Equal(t, a.pulse1.volume, b.pulse1.volume)
	require.Equal(t, a.pulse1.enabled, b.pulse1.enabled)
}
