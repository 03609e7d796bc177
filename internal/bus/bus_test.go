package bus

import (
	"testing"

	"github.com/pinwheel/gbcore/internal/apu"
	"github.com/pinwheel/gbcore/internal/cartridge"
	"github.com/pinwheel/gbcore/internal/interrupts"
	"github.com/pinwheel/gbcore/internal/joypad"
	"github.com/pinwheel/gbcore/internal/ppu"
	"github.com/pinwheel/gbcore/internal/serial"
	"github.com/pinwheel/gbcore/internal/timer"
	"github.com/stretchr/testify/require"
)

type nullCable struct{}

func (nullCable) Send(byte)            {}
func (nullCable) TryRecv() (byte, bool) { return 0, false }

func newTestBus(t *testing.T, bootROM []byte) (*Bus, *interrupts.Controller) {
	t.Helper()
	irq := &interrupts.Controller{}
	rom := make([]byte, 0x8000)
	rom[0x147] = 0x00 // NullMbc
	rom[0x148] = 0x00
	rom[0x149] = 0x00
	var acc uint8
	for addr := 0x134; addr <= 0x14C; addr++ {
		acc = acc - rom[addr] - 1
	}
	rom[0x14D] = acc
	r, err := cartridge.NewRom(rom)
	require.NoError(t, err)
	cart, err := cartridge.New(r, nil)
	require.NoError(t, err)

	p := ppu.New(irq, [4]ppu.Color{{255, 255, 255}, {170, 170, 170}, {85, 85, 85}, {0, 0, 0}}, 0x2000)
	a := apu.New()
	tm := timer.New(irq)
	sr := serial.New(irq)
	sr.Attach(nullCable{})
	jp := joypad.New(irq)

	b := New(cart, p, a, tm, sr, jp, irq, false, bootROM)
	return b, irq
}

func TestBootOverlayShadowsCartridgeUntilUnmapped(t *testing.T) {
	boot := make([]byte, 0x100)
	boot[0] = 0xAA
	b, _ := newTestBus(t, boot)

	require.Equal(t, uint8(0xAA), b.Read(0x0000))

	b.Write(0xFF50, 0x01)
	require.NotEqual(t, uint8(0xAA), b.Read(0x0000))
}

func TestOAMDMACopiesFromSourcePage(t *testing.T) {
	b, _ := newTestBus(t, nil)
	for i := 0; i < 0x1000; i++ {
		b.wram[0][i] = uint8(i)
	}
	b.Write(0xFF46, 0xC0) // source page 0xC000 -> our wram[0]

	// arm delay (2 M-cycles) + 160 bytes, in 4-dot steps
	for i := 0; i < 2+160; i++ {
		b.Tick(4)
	}

	require.Equal(t, uint8(0x00), b.PPU.ReadOAM(0xFE00))
	require.Equal(t, uint8(0x9F), b.PPU.ReadOAM(0xFE9F))
}

func TestOAMReadsReturn0xFFDuringActiveDMA(t *testing.T) {
	b, _ := newTestBus(t, nil)
	b.Write(0xFF46, 0xC0)
	b.Tick(4)
	b.Tick(4) // arm delay elapses, dmaArmed true now

	require.Equal(t, uint8(0xFF), b.Read(0xFE00))
}

func TestWRAMEchoMirrorsC000Region(t *testing.T) {
	b, _ := newTestBus(t, nil)
	b.Write(0xC010, 0x42)
	require.Equal(t, uint8(0x42), b.Read(0xE010))
}

func TestReadImmutableNeverReturnsIOOrIE(t *testing.T) {
	b, _ := newTestBus(t, nil)
	_, ok := b.ReadImmutable(0xFF00)
	require.False(t, ok)
	_, ok = b.ReadImmutable(0xFFFF)
	require.False(t, ok)

	v, ok := b.ReadImmutable(0xC000)
	require.True(t, ok)
	require.Equal(t, uint8(0), v)
}
