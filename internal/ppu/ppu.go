// Package ppu implements scanline-at-a-time rendering: the PPU mode
// state machine (OAM search / transfer / hblank / vblank), STAT
// edge-detected interrupts, and BG/window/sprite compositing as
// described in spec section 4.5.
package ppu

import (
	"github.com/pinwheel/gbcore/internal/interrupts"
	"github.com/pinwheel/gbcore/internal/savestate"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144
	dotsPerLine  = 456
	linesPerFrame = 154
)

// Mode is one of the four PPU scan states.
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeTransfer Mode = 3
)

// Color is one RGB triple, indexed by a 2-bit DMG palette code.
type Color [3]uint8

// pixelSource marks whether a composited pixel came from BG/window or a
// sprite, and at what BG color index, so sprite priority can consult it.
type pixelSource struct {
	colorIndex    uint8
	fromSprite    bool
	spritePalette uint8
}

// PPU holds all picture-processing state: LCDC/STAT/SCX/SCY/WX/WY,
// palettes, OAM, VRAM, and the 160x144 frame buffer.
type PPU struct {
	lcdc uint8
	stat uint8
	scy, scx uint8
	ly, lyc  uint8
	wy, wx   uint8
	bgp, obp0, obp1 uint8

	mode Mode
	dot  uint16

	windowLine     uint8
	windowRendered bool

	statLine bool

	frameBuf   [ScreenHeight][ScreenWidth][3]uint8
	lineColors [ScreenWidth]pixelSource

	frameCount uint64

	OAM  [160]byte
	VRAM []byte // 8 KiB DMG, 16 KiB CGB (bank switching not exercised)

	palette [4]Color

	irq *interrupts.Controller
}

// New returns a PPU primed with the given DMG output palette. vramSize
// should be 0x2000 for DMG or 0x4000 for CGB.
func New(irq *interrupts.Controller, palette [4]Color, vramSize int) *PPU {
	return &PPU{
		irq:     irq,
		palette: palette,
		VRAM:    make([]byte, vramSize),
		lcdc:    0x91,
		stat:    0x80,
		bgp:     0xFC,
	}
}

func (p *PPU) Mode() Mode { return p.mode }

func (p *PPU) lcdEnabled() bool { return p.lcdc&0x80 != 0 }

// VRAMLocked reports whether the CPU bus should block VRAM access right
// now (during mode 3).
func (p *PPU) VRAMLocked() bool { return p.lcdEnabled() && p.mode == ModeTransfer }

// OAMLocked reports whether the CPU bus should block OAM access (OAM
// search or transfer).
func (p *PPU) OAMLocked() bool {
	return p.lcdEnabled() && (p.mode == ModeOAM || p.mode == ModeTransfer)
}

func (p *PPU) FrameBuffer() [ScreenHeight][ScreenWidth][3]uint8 { return p.frameBuf }
func (p *PPU) FrameCount() uint64                               { return p.frameCount }

func (p *PPU) ReadVRAM(addr uint16) uint8 {
	return p.vramByte(addr)
}

func (p *PPU) WriteVRAM(addr uint16, v uint8) {
	off := int(addr - 0x8000)
	if off >= 0 && off < len(p.VRAM) {
		p.VRAM[off] = v
	}
}

func (p *PPU) ReadOAM(addr uint16) uint8 {
	off := addr - 0xFE00
	if off < uint16(len(p.OAM)) {
		return p.OAM[off]
	}
	return 0xFF
}

func (p *PPU) WriteOAM(addr uint16, v uint8) {
	off := addr - 0xFE00
	if off < uint16(len(p.OAM)) {
		p.OAM[off] = v
	}
}

// Tick advances the PPU by the given number of dots (4 at normal speed,
// 2 at CGB double speed), one dot at a time so mode transitions and the
// STAT edge-detector land exactly where hardware would.
func (p *PPU) Tick(dots uint8) {
	for i := uint8(0); i < dots; i++ {
		p.step()
	}
}

func (p *PPU) step() {
	if !p.lcdEnabled() {
		// LCDC.7->0 outside vblank is undefined; freeze at hblank, LY=0.
		p.mode = ModeHBlank
		p.ly = 0
		p.dot = 0
		p.windowLine = 0
		p.updateSTATLine()
		return
	}

	p.dot++

	transferLen := uint16(172) + uint16(p.scx%8)

	switch {
	case p.ly < ScreenHeight:
		switch {
		case p.dot == 1:
			p.setMode(ModeOAM)
		case p.dot == 81:
			p.setMode(ModeTransfer)
			p.renderScanline()
		case p.dot == 81+transferLen:
			p.setMode(ModeHBlank)
		}
	}

	if p.dot >= dotsPerLine {
		p.dot = 0
		p.ly++
		if p.ly == ScreenHeight {
			p.setMode(ModeVBlank)
			p.irq.Request(interrupts.VBlank)
			p.frameCount++
		}
		if p.ly >= linesPerFrame {
			p.ly = 0
			p.windowLine = 0
		}
		p.updateSTATLine()
	}

	p.updateSTATLine()
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	p.updateSTATLine()
}

// statSignal computes the level-sensitive OR described in spec 4.5.
func (p *PPU) statSignal() bool {
	lycMatch := p.ly == p.lyc
	if lycMatch && p.stat&0x40 != 0 {
		return true
	}
	switch p.mode {
	case ModeHBlank:
		return p.stat&0x08 != 0
	case ModeVBlank:
		if p.stat&0x10 != 0 {
			return true
		}
		return p.ly == ScreenHeight && p.stat&0x20 != 0
	case ModeOAM:
		return p.stat&0x20 != 0
	}
	return false
}

func (p *PPU) updateSTATLine() {
	line := p.statSignal()
	if line && !p.statLine {
		p.irq.Request(interrupts.LCDStat)
	}
	p.statLine = line
}

func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0xFF40:
		return p.lcdc
	case 0xFF41:
		v := p.stat & 0x78
		v |= uint8(p.mode) & 0x03
		if p.ly == p.lyc {
			v |= 0x04
		}
		return v | 0x80
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		return p.ly
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgp
	case 0xFF48:
		return p.obp0
	case 0xFF49:
		return p.obp1
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	}
	return 0xFF
}

func (p *PPU) WriteRegister(addr uint16, v uint8) {
	switch addr {
	case 0xFF40:
		wasEnabled := p.lcdEnabled()
		p.lcdc = v
		if wasEnabled && !p.lcdEnabled() {
			p.mode = ModeHBlank
			p.ly = 0
			p.dot = 0
		}
	case 0xFF41:
		p.stat = v & 0x78
		p.updateSTATLine()
	case 0xFF42:
		p.scy = v
	case 0xFF43:
		p.scx = v
	case 0xFF44:
		// read-only
	case 0xFF45:
		p.lyc = v
		p.updateSTATLine()
	case 0xFF47:
		p.bgp = v
	case 0xFF48:
		p.obp0 = v
	case 0xFF49:
		p.obp1 = v
	case 0xFF4A:
		p.wy = v
	case 0xFF4B:
		p.wx = v
	}
}

func (p *PPU) Save(e *savestate.Encoder) {
	e.Write8(p.lcdc)
	e.Write8(p.stat)
	e.Write8(p.scy)
	e.Write8(p.scx)
	e.Write8(p.ly)
	e.Write8(p.lyc)
	e.Write8(p.wy)
	e.Write8(p.wx)
	e.Write8(p.bgp)
	e.Write8(p.obp0)
	e.Write8(p.obp1)
	e.Write8(uint8(p.mode))
	e.Write16(p.dot)
	e.Write8(p.windowLine)
	e.WriteBool(p.windowRendered)
	e.WriteBool(p.statLine)
	e.Write64(p.frameCount)
	e.WriteBytes(p.OAM[:])
	e.WriteBlob(p.VRAM)
}

func (p *PPU) Load(d *savestate.Decoder) {
	p.lcdc = d.Read8()
	p.stat = d.Read8()
	p.scy = d.Read8()
	p.scx = d.Read8()
	p.ly = d.Read8()
	p.lyc = d.Read8()
	p.wy = d.Read8()
	p.wx = d.Read8()
	p.bgp = d.Read8()
	p.obp0 = d.Read8()
	p.obp1 = d.Read8()
	p.mode = Mode(d.Read8())
	p.dot = d.Read16()
	p.windowLine = d.Read8()
	p.windowRendered = d.ReadBool()
	p.statLine = d.ReadBool()
	p.frameCount = d.Read64()
	d.ReadBytes(p.OAM[:])
	p.VRAM = d.ReadBlob()
}
