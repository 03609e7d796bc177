// Package timer implements DIV/TIMA/TMA/TAC: the falling-edge-detection
// timer described in spec section 4.7, including the one-cycle reload
// delay and its write-race corner cases.
package timer

import (
	"github.com/pinwheel/gbcore/internal/interrupts"
	"github.com/pinwheel/gbcore/internal/savestate"
)

// selectedBit maps TAC's 2-bit clock-select to the bit of the internal
// 16-bit divider that is ANDed with the enable flag to detect the
// falling edge that clocks TIMA.
var selectedBit = [4]uint8{9, 3, 5, 7}

// Controller is the DIV/TIMA/TMA/TAC block.
type Controller struct {
	div  uint16 // internal 16-bit counter; DIV register is div>>8
	tima uint8
	tma  uint8
	tac  uint8

	reloadDelay int8 // 0: the one cycle where TIMA reads 0 before the TMA reload; -1: idle

	irq *interrupts.Controller
}

// New returns a Controller with DIV primed the way post-boot hardware
// leaves it.
func New(irq *interrupts.Controller) *Controller {
	return &Controller{div: 0xABCC, reloadDelay: -1, irq: irq}
}

func (c *Controller) enabled() bool {
	return c.tac&0x04 != 0
}

func (c *Controller) bit() uint8 {
	return selectedBit[c.tac&0x03]
}

func (c *Controller) edgeInput() bool {
	return c.enabled() && c.div&(1<<c.bit()) != 0
}

// Tick advances the timer by one machine cycle (4 dots).
func (c *Controller) Tick() {
	if c.reloadDelay == 0 {
		c.tima = c.tma
		c.irq.Request(interrupts.Timer)
		c.reloadDelay = -1
	}

	before := c.edgeInput()
	c.div += 4
	after := c.edgeInput()
	if before && !after {
		c.incrementTIMA()
	}
}

func (c *Controller) incrementTIMA() {
	c.tima++
	if c.tima == 0 {
		// TIMA reads 0 for this cycle; the next Tick loads TMA and
		// raises the interrupt.
		c.reloadDelay = 0
	}
}

func (c *Controller) ReadDIV() uint8 {
	return uint8(c.div >> 8)
}

// WriteDIV resets the whole 16-bit counter, which can itself produce a
// falling edge on the currently selected bit.
func (c *Controller) WriteDIV() {
	before := c.edgeInput()
	c.div = 0
	after := c.edgeInput()
	if before && !after {
		c.incrementTIMA()
	}
}

func (c *Controller) ReadTIMA() uint8 {
	if c.reloadDelay == 0 {
		return 0
	}
	return c.tima
}

// WriteTIMA sets TIMA. A write during the reload delay (the cycle in
// which TIMA reads 0) cancels the pending TMA reload. The cycle in which
// the reload itself happens is not tracked, so a write in that cycle is
// not ignored: it replaces the value just loaded from TMA.
func (c *Controller) WriteTIMA(v uint8) {
	c.tima = v
	c.reloadDelay = -1
}

func (c *Controller) ReadTMA() uint8 {
	return c.tma
}

// WriteTMA updates TMA. A write during the reload delay also sets TIMA
// to the new value, which is the value the reload then loads. The cycle
// in which the reload itself happens is not tracked, so a write in that
// cycle leaves TIMA unchanged.
func (c *Controller) WriteTMA(v uint8) {
	c.tma = v
	if c.reloadDelay == 0 {
		c.tima = v
	}
}

func (c *Controller) ReadTAC() uint8 {
	return c.tac | 0xF8
}

func (c *Controller) WriteTAC(v uint8) {
	before := c.edgeInput()
	c.tac = v & 0x07
	after := c.edgeInput()
	if before && !after {
		c.incrementTIMA()
	}
}

func (c *Controller) Save(e *savestate.Encoder) {
	e.Write16(c.div)
	e.Write8(c.tima)
	e.Write8(c.tma)
	e.Write8(c.tac)
	e.Write8(uint8(int8(c.reloadDelay) + 1))
}

func (c *Controller) Load(d *savestate.Decoder) {
	c.div = d.Read16()
	c.tima = d.Read8()
	c.tma = d.Read8()
	c.tac = d.Read8()
	c.reloadDelay = int8(d.Read8()) - 1
}
