// Package bus implements the 64 KiB address-space dispatch table: boot
// ROM overlay, cartridge, VRAM/OAM (delegated to the PPU, whose lock
// methods gate CPU-facing access), work RAM with CGB bank switching,
// I/O block, high RAM, IE, and the OAM DMA engine, as described in spec
// section 4.3.
package bus

import (
	"github.com/pinwheel/gbcore/internal/apu"
	"github.com/pinwheel/gbcore/internal/cartridge"
	"github.com/pinwheel/gbcore/internal/interrupts"
	"github.com/pinwheel/gbcore/internal/joypad"
	"github.com/pinwheel/gbcore/internal/ppu"
	"github.com/pinwheel/gbcore/internal/savestate"
	"github.com/pinwheel/gbcore/internal/serial"
	"github.com/pinwheel/gbcore/internal/timer"
)

// Bus wires every peripheral behind one address-dispatching surface.
type Bus struct {
	Cart cartridge.Cartridge
	PPU  *ppu.PPU
	APU  *apu.APU

	Timer   *timer.Controller
	Serial  *serial.Controller
	Joypad  *joypad.State
	IRQ     *interrupts.Controller

	isCGB bool

	bootROM     []byte
	bootMapped  bool

	wram     [8][0x1000]byte
	wramBank uint8 // CGB SVBK, 1-7; DMG always banks onto 1

	hram [0x7F]byte

	dmaSource uint16
	dmaPos    uint16
	dmaArmed  bool
	dmaDelay  int8
}

// New wires a Bus over already-constructed peripherals. bootROM may be
// nil, in which case the boot overlay starts unmapped.
func New(cart cartridge.Cartridge, p *ppu.PPU, a *apu.APU, t *timer.Controller, s *serial.Controller, j *joypad.State, irq *interrupts.Controller, isCGB bool, bootROM []byte) *Bus {
	b := &Bus{
		Cart:     cart,
		PPU:      p,
		APU:      a,
		Timer:    t,
		Serial:   s,
		Joypad:   j,
		IRQ:      irq,
		isCGB:    isCGB,
		bootROM:  bootROM,
		wramBank: 1,
	}
	b.bootMapped = len(bootROM) > 0
	return b
}

func (b *Bus) wramBankIndex() uint8 {
	if !b.isCGB || b.wramBank == 0 {
		return 1
	}
	return b.wramBank
}

// Read performs a CPU-facing read: DMA-locked OAM returns 0xFF, mode-3
// VRAM lock returns 0xFF, and the boot overlay shadows the cartridge
// while mapped.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x0100 && b.bootMapped:
		return b.bootROM[addr]
	case addr < 0x8000:
		return b.Cart.Read(addr)
	case addr < 0xA000:
		if b.PPU.VRAMLocked() {
			return 0xFF
		}
		return b.PPU.ReadVRAM(addr)
	case addr < 0xC000:
		return b.Cart.Read(addr)
	case addr < 0xD000:
		return b.wram[0][addr-0xC000]
	case addr < 0xE000:
		return b.wram[b.wramBankIndex()][addr-0xD000]
	case addr < 0xF000:
		return b.wram[0][addr-0xE000]
	case addr < 0xFE00:
		return b.wram[b.wramBankIndex()][addr-0xF000]
	case addr < 0xFEA0:
		if b.dmaArmed || b.PPU.OAMLocked() {
			return 0xFF
		}
		return b.PPU.ReadOAM(addr)
	case addr < 0xFF00:
		return 0xFF
	case addr < 0xFF80:
		return b.readIO(addr)
	case addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	default:
		return b.IRQ.Read(interrupts.EnableAddress)
	}
}

// Write is Read's mirror for the write side.
func (b *Bus) Write(addr uint16, v uint8) {
	switch {
	case addr < 0x8000:
		b.Cart.Write(addr, v)
	case addr < 0xA000:
		if b.PPU.VRAMLocked() {
			return
		}
		b.PPU.WriteVRAM(addr, v)
	case addr < 0xC000:
		b.Cart.Write(addr, v)
	case addr < 0xD000:
		b.wram[0][addr-0xC000] = v
	case addr < 0xE000:
		b.wram[b.wramBankIndex()][addr-0xD000] = v
	case addr < 0xF000:
		b.wram[0][addr-0xE000] = v
	case addr < 0xFE00:
		b.wram[b.wramBankIndex()][addr-0xF000] = v
	case addr < 0xFEA0:
		if b.dmaArmed || b.PPU.OAMLocked() {
			return
		}
		b.PPU.WriteOAM(addr, v)
	case addr < 0xFF00:
		// unusable
	case addr < 0xFF80:
		b.writeIO(addr, v)
	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = v
	default:
		b.IRQ.Write(interrupts.EnableAddress, v)
	}
}

// ReadImmutable is the disassembler's non-perturbing accessor: it never
// triggers DMA/lock side effects and refuses to read I/O or IE.
func (b *Bus) ReadImmutable(addr uint16) (uint8, bool) {
	switch {
	case addr < 0x0100 && b.bootMapped:
		return b.bootROM[addr], true
	case addr < 0x8000:
		return b.Cart.Read(addr), true
	case addr < 0xA000:
		return b.PPU.ReadVRAM(addr), true
	case addr < 0xC000:
		return b.Cart.Read(addr), true
	case addr < 0xD000:
		return b.wram[0][addr-0xC000], true
	case addr < 0xE000:
		return b.wram[b.wramBankIndex()][addr-0xD000], true
	case addr < 0xF000:
		return b.wram[0][addr-0xE000], true
	case addr < 0xFE00:
		return b.wram[b.wramBankIndex()][addr-0xF000], true
	case addr < 0xFEA0:
		return b.PPU.ReadOAM(addr), true
	case addr < 0xFF80:
		return 0, false
	case addr < 0xFFFF:
		return b.hram[addr-0xFF80], true
	default:
		return 0, false
	}
}

// Tick advances peripherals and the DMA engine by one machine cycle's
// worth of dots (4, or 2 at CGB double speed).
func (b *Bus) Tick(dots uint8) {
	b.stepDMA(dots)
	b.Timer.Tick()
	b.Serial.Tick()
	b.PPU.Tick(dots)
	b.APU.Tick(dots)
	if rtc, ok := b.Cart.(interface{ TickRTC() }); ok {
		rtc.TickRTC()
	}
}

// readForDMA reads a DMA source byte bypassing the CPU-facing VRAM/OAM
// mode locks: the DMA engine is not the CPU and hardware lets it read
// through whatever the PPU is doing.
func (b *Bus) readForDMA(addr uint16) uint8 {
	switch {
	case addr < 0x0100 && b.bootMapped:
		return b.bootROM[addr]
	case addr < 0x8000:
		return b.Cart.Read(addr)
	case addr < 0xA000:
		return b.PPU.ReadVRAM(addr)
	case addr < 0xC000:
		return b.Cart.Read(addr)
	case addr < 0xD000:
		return b.wram[0][addr-0xC000]
	case addr < 0xE000:
		return b.wram[b.wramBankIndex()][addr-0xD000]
	case addr < 0xF000:
		return b.wram[0][addr-0xE000]
	case addr < 0xFE00:
		return b.wram[b.wramBankIndex()][addr-0xF000]
	case addr < 0xFEA0:
		return b.PPU.ReadOAM(addr)
	default:
		return 0xFF
	}
}

func (b *Bus) stepDMA(dots uint8) {
	for i := uint8(0); i < dots; i += 4 {
		if b.dmaDelay > 0 {
			b.dmaDelay--
			if b.dmaDelay == 0 {
				b.dmaArmed = true
				b.dmaPos = 0
			}
			continue
		}
		if !b.dmaArmed {
			continue
		}
		src := b.dmaSource<<8 | b.dmaPos
		b.PPU.WriteOAM(0xFE00+b.dmaPos, b.readForDMA(src))
		b.dmaPos++
		if b.dmaPos >= 160 {
			b.dmaArmed = false
		}
	}
}

func (b *Bus) Save(e *savestate.Encoder) {
	e.WriteBool(b.bootMapped)
	for _, bank := range b.wram {
		e.WriteBytes(bank[:])
	}
	e.Write8(b.wramBank)
	e.WriteBytes(b.hram[:])
	e.Write16(b.dmaSource)
	e.Write16(b.dmaPos)
	e.WriteBool(b.dmaArmed)
	e.Write8(uint8(b.dmaDelay))
}

func (b *Bus) Load(d *savestate.Decoder) {
	b.bootMapped = d.ReadBool()
	for i := range b.wram {
		d.ReadBytes(b.wram[i][:])
	}
	b.wramBank = d.Read8()
	d.ReadBytes(b.hram[:])
	b.dmaSource = d.Read16()
	b.dmaPos = d.Read16()
	b.dmaArmed = d.ReadBool()
	b.dmaDelay = int8(d.Read8())
}
