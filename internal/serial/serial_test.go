package serial

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pinwheel/gbcore/internal/interrupts"
	"github.com/pinwheel/gbcore/internal/savestate"
)

type fakeCable struct {
	sent     []byte
	recvQ    []byte
	recvCall int
}

func (c *fakeCable) Send(b byte) { c.sent = append(c.sent, b) }

func (c *fakeCable) TryRecv() (byte, bool) {
	c.recvCall++
	if len(c.recvQ) == 0 {
		return 0, false
	}
	b := c.recvQ[0]
	c.recvQ = c.recvQ[1:]
	return b, true
}

func TestWriteSCWithoutTheStartBitDoesNotBeginATransfer(t *testing.T) {
	c := New(interrupts.New())
	c.WriteSC(0x01) // internal clock, no start bit
	c.Tick()
	require.False(t, c.transferring)
}

func TestInternalClockTransferCompletesAfterEightBitsAndRaisesSerial(t *testing.T) {
	irq := interrupts.New()
	irq.Enable = 1 << interrupts.Serial
	c := New(irq)
	cable := &fakeCable{recvQ: []byte{0xFF}}
	c.Attach(cable)
	c.WriteSB(0xA5)
	c.WriteSC(0x81) // internal clock, start transfer

	require.Equal(t, []byte{0xA5}, cable.sent)
	require.True(t, c.transferring)

	for bit := 0; bit < 8; bit++ {
		for tick := 0; tick < ticksPerBit; tick++ {
			c.Tick()
		}
	}

	require.False(t, c.transferring)
	require.True(t, irq.Pending())
	require.Equal(t, uint8(0xFF), c.sb) // shifted in all-1 bits from the peer
}

func TestWriteSCIgnoresARestartWhileATransferIsInFlight(t *testing.T) {
	c := New(interrupts.New())
	c.WriteSC(0x81)
	c.WriteSB(0x11)
	c.WriteSC(0x81) // should be a no-op: already transferring
	require.Equal(t, uint8(8), c.bitsLeft)
}

func TestExternalClockWaitsForTheCableBeforeFinishing(t *testing.T) {
	irq := interrupts.New()
	irq.Enable = 1 << interrupts.Serial
	c := New(irq)
	cable := &fakeCable{}
	c.Attach(cable)
	c.WriteSC(0x80) // external clock, start transfer

	c.Tick()
	require.True(t, c.transferring)
	require.False(t, irq.Pending())

	cable.recvQ = []byte{0x7E}
	c.Tick()
	require.False(t, c.transferring)
	require.True(t, irq.Pending())
	require.Equal(t, uint8(0x7E), c.sb)
}

func TestReadSCReportsTheUnusedMiddleBitsSet(t *testing.T) {
	c := New(interrupts.New())
	require.Equal(t, uint8(0x7E), c.ReadSC())
}

func TestSaveLoadRoundTripsAnInFlightTransfer(t *testing.T) {
	c := New(interrupts.New())
	c.WriteSB(0x33)
	c.WriteSC(0x81)
	c.Tick()

	e := savestate.NewEncoder()
	c.Save(e)

	loaded := New(interrupts.New())
	loaded.Load(savestate.NewDecoder(e.Bytes()))
	require.Equal(t, c.sb, loaded.sb)
	require.Equal(t, c.sc, loaded.sc)
	require.Equal(t, c.transferring, loaded.transferring)
	require.Equal(t, c.bitsLeft, loaded.bitsLeft)
	require.Equal(t, c.clockTicks, loaded.clockTicks)
}
