// Package serial implements the one-wire serial shift register at
// SB/SC, including the narrow LinkCable collaborator interface the core
// calls synchronously from Tick.
package serial

import (
	"github.com/pinwheel/gbcore/internal/interrupts"
	"github.com/pinwheel/gbcore/internal/savestate"
)

// LinkCable is the two-method interface an external collaborator
// implements to exchange bytes with the emulated serial port. The core
// tolerates a nil cable: transfers simply never complete with a peer.
type LinkCable interface {
	Send(byte byte)
	TryRecv() (byte, bool)
}

// ticksPerBit is how many machine cycles the internal 8192 Hz clock
// takes to shift one bit (4194304 / 8192 / 4 cycles-per-dot-group).
const ticksPerBit = 128

// Controller is the SB/SC shift register.
type Controller struct {
	sb uint8
	sc uint8

	transferring bool
	bitsLeft     uint8
	clockTicks   uint16

	irq   *interrupts.Controller
	cable LinkCable
}

// New returns a Controller with no cable attached.
func New(irq *interrupts.Controller) *Controller {
	return &Controller{sc: 0x7E, irq: irq}
}

// Attach installs (or, with nil, removes) the link-cable collaborator.
func (c *Controller) Attach(cable LinkCable) {
	c.cable = cable
}

func (c *Controller) ReadSB() uint8 { return c.sb }

func (c *Controller) WriteSB(v uint8) { c.sb = v }

func (c *Controller) ReadSC() uint8 { return c.sc | 0x7E }

func (c *Controller) WriteSC(v uint8) {
	c.sc = v & 0x81
	if c.sc&0x80 == 0 || c.transferring {
		return
	}
	c.transferring = true
	c.bitsLeft = 8
	c.clockTicks = 0
	if c.cable != nil {
		c.cable.Send(c.sb)
	}
}

func (c *Controller) internalClock() bool {
	return c.sc&0x01 != 0
}

// Tick advances the shifter by one machine cycle. External-clock mode
// completes as soon as a byte is available from the attached cable;
// internal-clock mode completes after shifting 8 bits at 8192 Hz.
func (c *Controller) Tick() {
	if !c.transferring {
		return
	}

	if !c.internalClock() {
		if c.cable == nil {
			return
		}
		if b, ok := c.cable.TryRecv(); ok {
			c.sb = b
			c.finish()
		}
		return
	}

	c.clockTicks++
	if c.clockTicks < ticksPerBit {
		return
	}
	c.clockTicks = 0

	recv := byte(0xFF)
	if c.cable != nil {
		if b, ok := c.cable.TryRecv(); ok {
			recv = b
		}
	}
	bit := (recv >> (c.bitsLeft - 1)) & 1
	c.sb = c.sb<<1 | bit
	c.bitsLeft--
	if c.bitsLeft == 0 {
		c.finish()
	}
}

func (c *Controller) finish() {
	c.transferring = false
	c.sc &^= 0x80
	c.irq.Request(interrupts.Serial)
}

func (c *Controller) Save(e *savestate.Encoder) {
	e.Write8(c.sb)
	e.Write8(c.sc)
	e.WriteBool(c.transferring)
	e.Write8(c.bitsLeft)
	e.Write16(c.clockTicks)
}

func (c *Controller) Load(d *savestate.Decoder) {
	c.sb = d.Read8()
	c.sc = d.Read8()
	c.transferring = d.ReadBool()
	c.bitsLeft = d.Read8()
	c.clockTicks = d.Read16()
}
