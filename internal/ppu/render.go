package ppu

import "sort"

// renderScanline composites BG, window, and sprites for the current LY
// into frameBuf, on entry to mode 3 — a per-scanline simplification of
// dot-by-dot FIFO rendering that spec section 4.5 calls out explicitly.
func (p *PPU) renderScanline() {
	if int(p.ly) >= ScreenHeight {
		return
	}

	for x := range p.lineColors {
		p.lineColors[x] = pixelSource{}
	}

	if p.lcdc&0x01 != 0 {
		p.renderBackground()
	}
	windowUsed := false
	if p.lcdc&0x20 != 0 && p.lcdc&0x01 != 0 {
		windowUsed = p.renderWindow()
	}
	if windowUsed {
		p.windowLine++
	}
	if p.lcdc&0x02 != 0 {
		p.renderSprites()
	}

	for x := 0; x < ScreenWidth; x++ {
		p.frameBuf[p.ly][x] = p.lineColors[x].rgb(p)
	}
}

func (src pixelSource) rgb(p *PPU) [3]uint8 {
	var palette uint8
	if src.fromSprite {
		palette = src.spritePalette
	} else {
		palette = p.bgp
	}
	shade := (palette >> (src.colorIndex * 2)) & 0x03
	return p.palette[shade]
}

func (p *PPU) tileDataBase() (base uint16, signed bool) {
	if p.lcdc&0x10 != 0 {
		return 0x8000, false
	}
	return 0x9000, true
}

func (p *PPU) bgMapBase() uint16 {
	if p.lcdc&0x08 != 0 {
		return 0x9C00
	}
	return 0x9800
}

func (p *PPU) windowMapBase() uint16 {
	if p.lcdc&0x40 != 0 {
		return 0x9C00
	}
	return 0x9800
}

// tileRow returns the 8 color indices (0-3) for one row of an 8x8 tile.
func (p *PPU) tileRow(tileIndex uint8, signed bool, dataBase uint16, row uint8) [8]uint8 {
	var tileAddr uint16
	if signed {
		tileAddr = uint16(int32(dataBase) + int32(int8(tileIndex))*16)
	} else {
		tileAddr = dataBase + uint16(tileIndex)*16
	}
	lo := p.vramByte(tileAddr + uint16(row)*2)
	hi := p.vramByte(tileAddr + uint16(row)*2 + 1)

	var out [8]uint8
	for bit := 0; bit < 8; bit++ {
		shift := 7 - bit
		l := (lo >> shift) & 1
		h := (hi >> shift) & 1
		out[bit] = l | h<<1
	}
	return out
}

func (p *PPU) vramByte(addr uint16) uint8 {
	off := int(addr - 0x8000)
	if off < 0 || off >= len(p.VRAM) {
		return 0xFF
	}
	return p.VRAM[off]
}

func (p *PPU) renderBackground() {
	dataBase, signed := p.tileDataBase()
	mapBase := p.bgMapBase()

	y := p.scy + p.ly
	tileRow := y / 8
	rowInTile := y % 8

	for x := 0; x < ScreenWidth; x++ {
		px := p.scx + uint8(x)
		tileCol := px / 8
		colInTile := px % 8

		mapAddr := mapBase + uint16(tileRow)*32 + uint16(tileCol)
		tileIndex := p.vramByte(mapAddr)
		row := p.tileRow(tileIndex, signed, dataBase, rowInTile)
		p.lineColors[x] = pixelSource{colorIndex: row[colInTile]}
	}
}

// renderWindow draws the window layer where active, returning whether
// it contributed at least one pixel to this scanline (the window's
// internal line counter only advances on such lines).
func (p *PPU) renderWindow() bool {
	if p.wy > p.ly {
		return false
	}
	if p.wx > 166 {
		return false
	}

	dataBase, signed := p.tileDataBase()
	mapBase := p.windowMapBase()

	tileRow := p.windowLine / 8
	rowInTile := p.windowLine % 8

	rendered := false
	for x := 0; x < ScreenWidth; x++ {
		screenX := int16(x) + 7
		if screenX < int16(p.wx) {
			continue
		}
		wxPixel := uint8(screenX) - p.wx
		tileCol := wxPixel / 8
		colInTile := wxPixel % 8

		mapAddr := mapBase + uint16(tileRow)*32 + uint16(tileCol)
		tileIndex := p.vramByte(mapAddr)
		row := p.tileRow(tileIndex, signed, dataBase, rowInTile)
		p.lineColors[x] = pixelSource{colorIndex: row[colInTile]}
		rendered = true
	}
	return rendered
}

type spriteCandidate struct {
	oamIndex int
	y, x     uint8
	tile     uint8
	attr     uint8
}

func (p *PPU) renderSprites() {
	size := uint8(8)
	if p.lcdc&0x04 != 0 {
		size = 16
	}

	var candidates []spriteCandidate
	for i := 0; i < 40 && len(candidates) < 10; i++ {
		base := i * 4
		y := p.OAM[base]
		x := p.OAM[base+1]
		tile := p.OAM[base+2]
		attr := p.OAM[base+3]

		top := int16(y) - 16
		if int16(p.ly) < top || int16(p.ly) >= top+int16(size) {
			continue
		}
		candidates = append(candidates, spriteCandidate{oamIndex: i, y: y, x: x, tile: tile, attr: attr})
	}

	// DMG priority: smaller X draws on top, ties resolve to the lower
	// OAM index; render lowest priority first so higher priority pixels
	// overwrite them.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].x != candidates[j].x {
			return candidates[i].x > candidates[j].x
		}
		return candidates[i].oamIndex > candidates[j].oamIndex
	})

	dataBase := uint16(0x8000)
	for _, s := range candidates {
		tile := s.tile
		if size == 16 {
			tile &^= 0x01
		}
		yFlip := s.attr&0x40 != 0
		xFlip := s.attr&0x20 != 0
		behindBG := s.attr&0x80 != 0
		useOBP1 := s.attr&0x10 != 0

		top := int16(s.y) - 16
		rowInSprite := uint8(int16(p.ly) - top)
		if yFlip {
			rowInSprite = size - 1 - rowInSprite
		}
		effTile := tile
		if size == 16 && rowInSprite >= 8 {
			effTile |= 0x01
			rowInSprite -= 8
		}
		row := p.tileRow(effTile, false, dataBase, rowInSprite)

		palette := p.obp0
		if useOBP1 {
			palette = p.obp1
		}

		left := int16(s.x) - 8
		for col := uint8(0); col < 8; col++ {
			screenX := left + int16(col)
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}
			srcCol := col
			if xFlip {
				srcCol = 7 - col
			}
			colorIndex := row[srcCol]
			if colorIndex == 0 {
				continue
			}
			under := p.lineColors[screenX]
			if behindBG && !under.fromSprite && under.colorIndex != 0 {
				continue
			}
			p.lineColors[screenX] = pixelSource{colorIndex: colorIndex, fromSprite: true, spritePalette: palette}
		}
	}
}
