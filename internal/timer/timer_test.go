package timer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pinwheel/gbcore/internal/interrupts"
	"github.com/pinwheel/gbcore/internal/savestate"
)

func TestTickAdvancesDIVByFourDotsPerMachineCycle(t *testing.T) {
	c := New(interrupts.New())
	c.div = 0
	c.Tick()
	require.Equal(t, uint8(0), c.ReadDIV()) // div=4, div>>8 still 0
	for i := 0; i < 63; i++ {
		c.Tick()
	}
	require.Equal(t, uint8(1), c.ReadDIV()) // div=256 after 64 ticks
}

func TestWriteDIVResetsTheWholeCounter(t *testing.T) {
	c := New(interrupts.New())
	c.div = 0x1234
	c.WriteDIV()
	require.Equal(t, uint16(0), c.div)
}

func TestWriteDIVCanItselfClockTIMAOnAFallingEdge(t *testing.T) {
	c := New(interrupts.New())
	c.tac = 0x05 // enabled, select bit 3
	c.div = 0x0008 // bit 3 set -> edge currently high
	c.WriteDIV()  // resets div to 0 -> bit 3 now low -> falling edge
	require.Equal(t, uint8(1), c.tima)
}

func TestFallingEdgeOnSelectedBitIncrementsTIMA(t *testing.T) {
	c := New(interrupts.New())
	c.tac = 0x05 // enabled, select bit 3 (selectedBit[1] == 3)
	c.div = 12   // bit 3 set (8 <= 12 < 16)
	c.Tick()     // div becomes 16, bit 3 clears: falling edge
	require.Equal(t, uint8(1), c.tima)
}

func TestTIMAOverflowReloadsFromTMAAfterAOneCycleDelayAndRaisesTimer(t *testing.T) {
	irq := interrupts.New()
	irq.Enable = 1 << interrupts.Timer
	c := New(irq)
	c.tac = 0x05
	c.tma = 0x42
	c.tima = 0xFF
	c.div = 12

	c.Tick() // falling edge: tima wraps 0xFF->0x00, reloadDelay starts at 0
	require.Equal(t, uint8(0), c.tima)
	require.False(t, irq.Pending())

	c.Tick() // reloadDelay==0 at entry: reload fires here
	require.Equal(t, uint8(0x42), c.tima)
	require.True(t, irq.Pending())
}

func TestWriteTIMADuringTheDelayCancelsTheReload(t *testing.T) {
	irq := interrupts.New()
	irq.Enable = 1 << interrupts.Timer
	c := New(irq)
	c.tac = 0x05
	c.tma = 0x42
	c.tima = 0xFF
	c.div = 12

	c.Tick() // reloadDelay == 0 (the single delay cycle)
	c.WriteTIMA(0x10)
	require.Equal(t, uint8(0x10), c.tima)

	c.Tick()
	require.Equal(t, uint8(0x10), c.tima) // the cancel stuck: no reload to TMA happened
	require.False(t, irq.Pending())
}

func TestReadTIMAReportsZeroDuringTheReloadDelay(t *testing.T) {
	c := New(interrupts.New())
	c.tac = 0x05
	c.tima = 0xFF
	c.div = 12
	c.Tick()
	require.Equal(t, uint8(0), c.ReadTIMA())
}

func TestWriteTMADuringTheReloadDelayAlsoUpdatesTIMA(t *testing.T) {
	c := New(interrupts.New())
	c.tac = 0x05
	c.tima = 0xFF
	c.div = 12
	c.Tick() // now in the reload delay (reloadDelay == 0)
	c.WriteTMA(0x99)
	require.Equal(t, uint8(0x99), c.tima)
}

func TestReadTACReportsTheUnusedTopBitsSet(t *testing.T) {
	c := New(interrupts.New())
	c.WriteTAC(0x02)
	require.Equal(t, uint8(0xFA), c.ReadTAC())
}

func TestSaveLoadRoundTripsTheReloadDelay(t *testing.T) {
	c := New(interrupts.New())
	c.tac = 0x05
	c.tima = 0xFF
	c.div = 12
	c.Tick() // reloadDelay == 0 (the single delay cycle)

	e := savestate.NewEncoder()
	c.Save(e)
	loaded := New(interrupts.New())
	loaded.Load(savestate.NewDecoder(e.Bytes()))
	require.Equal(t, c.div, loaded.div)
	require.Equal(t, c.tima, loaded.tima)
	require.Equal(t, c.reloadDelay, loaded.reloadDelay)
}
