package interrupts

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pinwheel/gbcore/internal/savestate"
)

func TestLowestPendingPicksThePriorityOrderOverRequestOrder(t *testing.T) {
	c := New()
	c.Enable = 0x1F
	c.Request(Joypad)
	c.Request(Timer)

	bit, ok := c.LowestPending()
	require.True(t, ok)
	require.Equal(t, Timer, bit)
}

func TestLowestPendingIgnoresFlagsThatAreNotEnabled(t *testing.T) {
	c := New()
	c.Enable = 1 << Serial
	c.Request(VBlank)
	c.Request(Serial)

	bit, ok := c.LowestPending()
	require.True(t, ok)
	require.Equal(t, Serial, bit)
}

func TestPendingIsFalseWithNothingEnabled(t *testing.T) {
	c := New()
	c.Request(VBlank)
	require.False(t, c.Pending())
	_, ok := c.LowestPending()
	require.False(t, ok)
}

func TestClearLowersOnlyTheGivenBit(t *testing.T) {
	c := New()
	c.Enable = 0x1F
	c.Request(VBlank)
	c.Request(LCDStat)

	c.Clear(VBlank)
	bit, ok := c.LowestPending()
	require.True(t, ok)
	require.Equal(t, LCDStat, bit)
}

func TestReadIFReportsTheUnusedTopBitsSet(t *testing.T) {
	c := New()
	c.Request(Timer)
	require.Equal(t, uint8(0xE0|1<<Timer), c.Read(FlagAddress))
}

func TestWriteIFMasksToFiveBits(t *testing.T) {
	c := New()
	c.Write(FlagAddress, 0xFF)
	require.Equal(t, uint8(0x1F), c.Flag)
}

func TestVectorAddressesAreSpacedByEightBytesFromBlank(t *testing.T) {
	require.Equal(t, uint16(0x0040), Vector(VBlank))
	require.Equal(t, uint16(0x0060), Vector(Joypad))
}

func TestSaveLoadRoundTripsBothRegisters(t *testing.T) {
	c := New()
	c.Enable = 0x1D
	c.Flag = 0x0B

	e := savestate.NewEncoder()
	c.Save(e)

	loaded := New()
	loaded.Load(savestate.NewDecoder(e.Bytes()))
	require.Equal(t, c.Enable, loaded.Enable)
	require.Equal(t, c.Flag, loaded.Flag)
}
