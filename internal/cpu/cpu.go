package cpu

import "github.com/pinwheel/gbcore/internal/interrupts"
import "github.com/pinwheel/gbcore/internal/savestate"

// Bus is the narrow surface the CPU needs from the rest of the machine:
// byte-addressed read/write, plus a Tick that advances every other
// peripheral by one machine cycle's worth of dots.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
	Tick(dots uint8)
}

type mode uint8

const (
	modeNormal mode = iota
	modeHalt
	modeHaltBug
	modeStop
	modeEnableIME // EI was executed; IME takes effect after this step
)

// CPU is the Sharp SM83 core.
type CPU struct {
	Registers
	PC, SP uint16

	ime         bool
	doubleSpeed bool
	mode        mode

	bus Bus
	irq *interrupts.Controller
}

// New wires a CPU over a Bus and the shared interrupt controller.
func New(bus Bus, irq *interrupts.Controller) *CPU {
	return &CPU{bus: bus, irq: irq}
}

// Reset sets registers to the documented DMG post-boot-ROM state; used
// when a boot ROM image isn't supplied.
func (c *CPU) Reset() {
	c.SetAF(0x01B0)
	c.SetBC(0x0013)
	c.SetDE(0x00D8)
	c.SetHL(0x014D)
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.ime = false
	c.mode = modeNormal
}

// tick advances every other peripheral by one machine cycle.
func (c *CPU) tick() {
	if c.doubleSpeed {
		c.bus.Tick(2)
	} else {
		c.bus.Tick(4)
	}
}

func (c *CPU) readByte(addr uint16) uint8 {
	c.tick()
	return c.bus.Read(addr)
}

func (c *CPU) writeByte(addr uint16, v uint8) {
	c.tick()
	c.bus.Write(addr, v)
}

func (c *CPU) fetch() uint8 {
	v := c.readByte(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) push(v uint16) {
	c.SP--
	c.writeByte(c.SP, uint8(v>>8))
	c.SP--
	c.writeByte(c.SP, uint8(v))
}

func (c *CPU) pop() uint16 {
	lo := c.readByte(c.SP)
	c.SP++
	hi := c.readByte(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// Step executes one instruction (or one halted/stalled cycle) and
// returns whether an interrupt was dispatched this step.
func (c *CPU) Step() bool {
	switch c.mode {
	case modeHalt:
		c.tick()
		if c.irq.Pending() {
			c.mode = modeNormal
		}
		return false
	case modeStop:
		c.tick()
		if c.irq.Pending() {
			c.mode = modeNormal
		}
		return false
	case modeHaltBug:
		opcode := c.fetch()
		c.PC--
		c.execute(opcode)
		c.mode = modeNormal
		return c.maybeDispatchInterrupt()
	case modeEnableIME:
		c.mode = modeNormal
		opcode := c.fetch()
		c.execute(opcode)
		c.ime = true
		return c.maybeDispatchInterrupt()
	}

	opcode := c.fetch()
	c.execute(opcode)
	return c.maybeDispatchInterrupt()
}

// maybeDispatchInterrupt pushes PC and jumps to the highest-priority
// pending-and-enabled interrupt's vector, honoring the documented quirk
// where a write to IE during the high-byte push can cancel the vector
// and dispatch to 0x0000 instead.
func (c *CPU) maybeDispatchInterrupt() bool {
	if !c.ime {
		return false
	}
	bit, ok := c.irq.LowestPending()
	if !ok {
		return false
	}

	c.ime = false

	c.SP--
	c.writeByte(c.SP, uint8(c.PC>>8))

	// Re-check: a write to IE during the high-byte push above can make
	// this interrupt no longer pending, in which case the vector is
	// canceled and execution resumes at 0x0000.
	var vector uint16
	if rebit, ok := c.irq.LowestPending(); ok && rebit == bit {
		c.irq.Clear(bit)
		vector = interrupts.Vector(bit)
	} else {
		vector = 0x0000
	}

	c.SP--
	c.writeByte(c.SP, uint8(c.PC))

	c.PC = vector
	c.tick()
	c.tick()
	c.tick()
	return true
}

func (c *CPU) Save(e *savestate.Encoder) {
	e.Write8(c.A)
	e.Write8(c.F)
	e.Write8(c.B)
	e.Write8(c.C)
	e.Write8(c.D)
	e.Write8(c.E)
	e.Write8(c.H)
	e.Write8(c.L)
	e.Write16(c.SP)
	e.Write16(c.PC)
	e.WriteBool(c.ime)
	e.WriteBool(c.doubleSpeed)
	e.Write8(uint8(c.mode))
}

func (c *CPU) Load(d *savestate.Decoder) {
	c.A = d.Read8()
	c.F = d.Read8()
	c.B = d.Read8()
	c.C = d.Read8()
	c.D = d.Read8()
	c.E = d.Read8()
	c.H = d.Read8()
	c.L = d.Read8()
	c.SP = d.Read16()
	c.PC = d.Read16()
	c.ime = d.ReadBool()
	c.doubleSpeed = d.ReadBool()
	c.mode = mode(d.Read8())
}
