package cpu

// execute dispatches one primary-table opcode. The four regular blocks
// (8-bit load, ALU-A, 16-bit group ops, and the conditional control-flow
// opcodes) are decoded from the opcode's bit fields instead of a 256-
// entry literal table; every irregular single opcode gets its own case.
func (c *CPU) execute(op uint8) {
	switch {
	case op == 0x76:
		c.opHALT()
		return
	case op >= 0x40 && op <= 0x7F:
		c.opLDrr(op)
		return
	case op >= 0x80 && op <= 0xBF:
		c.opALU(op)
		return
	}

	switch op {
	case 0x00:
	case 0x07:
		c.A = c.rlc(c.A)
		c.setFlag(FlagZero, false)
	case 0x0F:
		c.A = c.rrc(c.A)
		c.setFlag(FlagZero, false)
	case 0x17:
		c.A = c.rl(c.A)
		c.setFlag(FlagZero, false)
	case 0x1F:
		c.A = c.rr(c.A)
		c.setFlag(FlagZero, false)
	case 0x10:
		c.fetch() // STOP's second byte, always 0x00, is discarded
		c.mode = modeStop
	case 0x27:
		c.daa()
	case 0x2F:
		c.A = ^c.A
		c.setFlag(FlagSubtract, true)
		c.setFlag(FlagHalfCarry, true)
	case 0x37:
		c.setFlag(FlagSubtract, false)
		c.setFlag(FlagHalfCarry, false)
		c.setFlag(FlagCarry, true)
	case 0x3F:
		c.setFlag(FlagSubtract, false)
		c.setFlag(FlagHalfCarry, false)
		c.setFlag(FlagCarry, !c.flag(FlagCarry))
	case 0x02:
		c.writeByte(c.BC(), c.A)
	case 0x12:
		c.writeByte(c.DE(), c.A)
	case 0x22:
		hl := c.HL()
		c.writeByte(hl, c.A)
		c.SetHL(hl + 1)
	case 0x32:
		hl := c.HL()
		c.writeByte(hl, c.A)
		c.SetHL(hl - 1)
	case 0x0A:
		c.A = c.readByte(c.BC())
	case 0x1A:
		c.A = c.readByte(c.DE())
	case 0x2A:
		hl := c.HL()
		c.A = c.readByte(hl)
		c.SetHL(hl + 1)
	case 0x3A:
		hl := c.HL()
		c.A = c.readByte(hl)
		c.SetHL(hl - 1)
	case 0x08:
		addr := c.fetch16()
		c.writeByte(addr, uint8(c.SP))
		c.writeByte(addr+1, uint8(c.SP>>8))
	case 0x01, 0x11, 0x21, 0x31:
		c.setRP(rpIndex(op), c.fetch16())
	case 0x03, 0x13, 0x23, 0x33:
		c.tick()
		c.setRP(rpIndex(op), c.getRP(rpIndex(op))+1)
	case 0x0B, 0x1B, 0x2B, 0x3B:
		c.tick()
		c.setRP(rpIndex(op), c.getRP(rpIndex(op))-1)
	case 0x09, 0x19, 0x29, 0x39:
		c.tick()
		c.addHL(c.getRP(rpIndex(op)))
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x3C:
		r := c.reg8(regIndex(op, 3))
		*r = c.inc8(*r)
	case 0x34:
		v := c.inc8(c.readByte(c.HL()))
		c.writeByte(c.HL(), v)
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x3D:
		r := c.reg8(regIndex(op, 3))
		*r = c.dec8(*r)
	case 0x35:
		v := c.dec8(c.readByte(c.HL()))
		c.writeByte(c.HL(), v)
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x3E:
		*c.reg8(regIndex(op, 3)) = c.fetch()
	case 0x36:
		c.writeByte(c.HL(), c.fetch())
	case 0x18:
		c.jr(true)
	case 0x20, 0x28, 0x30, 0x38:
		c.jr(c.condition(ccIndex(op)))
	case 0xC3:
		c.PC = c.fetch16()
		c.tick()
	case 0xC2, 0xCA, 0xD2, 0xDA:
		addr := c.fetch16()
		if c.condition(ccIndex(op)) {
			c.PC = addr
			c.tick()
		}
	case 0xE9:
		c.PC = c.HL()
	case 0xCD:
		addr := c.fetch16()
		c.tick()
		c.push(c.PC)
		c.PC = addr
	case 0xC4, 0xCC, 0xD4, 0xDC:
		addr := c.fetch16()
		if c.condition(ccIndex(op)) {
			c.tick()
			c.push(c.PC)
			c.PC = addr
		}
	case 0xC9:
		c.PC = c.pop()
		c.tick()
	case 0xD9:
		c.PC = c.pop()
		c.tick()
		c.ime = true
	case 0xC0, 0xC8, 0xD0, 0xD8:
		c.tick()
		if c.condition(ccIndex(op)) {
			c.PC = c.pop()
			c.tick()
		}
	case 0xC1, 0xD1, 0xE1, 0xF1:
		c.setRP2(rp2Index(op), c.pop())
	case 0xC5, 0xD5, 0xE5, 0xF5:
		c.tick()
		c.push(c.getRP2(rp2Index(op)))
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		c.tick()
		c.push(c.PC)
		c.PC = uint16(op & 0x38)
	case 0xC6:
		c.A = c.add8(c.A, c.fetch(), false)
	case 0xCE:
		c.A = c.add8(c.A, c.fetch(), c.flag(FlagCarry))
	case 0xD6:
		c.A = c.sub8(c.A, c.fetch(), false)
	case 0xDE:
		c.A = c.sub8(c.A, c.fetch(), c.flag(FlagCarry))
	case 0xE6:
		c.A = c.and8(c.A, c.fetch())
	case 0xEE:
		c.A = c.xor8(c.A, c.fetch())
	case 0xF6:
		c.A = c.or8(c.A, c.fetch())
	case 0xFE:
		c.sub8(c.A, c.fetch(), false)
	case 0xE0:
		c.writeByte(0xFF00+uint16(c.fetch()), c.A)
	case 0xF0:
		c.A = c.readByte(0xFF00 + uint16(c.fetch()))
	case 0xE2:
		c.writeByte(0xFF00+uint16(c.C), c.A)
	case 0xF2:
		c.A = c.readByte(0xFF00 + uint16(c.C))
	case 0xEA:
		c.writeByte(c.fetch16(), c.A)
	case 0xFA:
		c.A = c.readByte(c.fetch16())
	case 0xE8:
		c.SP = c.addSPSigned()
		c.tick()
		c.tick()
	case 0xF8:
		c.SetHL(c.addSPSigned())
		c.tick()
	case 0xF9:
		c.SP = c.HL()
		c.tick()
	case 0xF3:
		c.ime = false
	case 0xFB:
		c.mode = modeEnableIME
	case 0xCB:
		c.executeCB(c.fetch())
	default:
		// D3,DB,DD,E3,E4,EB,EC,ED,F4,FC,FD: undefined opcodes lock the
		// CPU on real hardware; here they're simply treated as no-ops,
		// since no ROM in SPEC_FULL's scope is expected to execute one.
	}
}

func (c *CPU) opHALT() {
	pending := c.irq.Pending()
	if !c.ime && pending {
		c.mode = modeHaltBug
	} else {
		c.mode = modeHalt
	}
}

// opLDrr implements the 0x40-0x7F block of 8-bit register-to-register
// loads, where (HL) plays the role of register index 6 on either side.
func (c *CPU) opLDrr(op uint8) {
	dst := regIndex(op, 3)
	src := regIndex(op, 0)

	var v uint8
	if src == 6 {
		v = c.readByte(c.HL())
	} else {
		v = *c.reg8(src)
	}
	if dst == 6 {
		c.writeByte(c.HL(), v)
	} else {
		*c.reg8(dst) = v
	}
}

// opALU implements the 0x80-0xBF block: ADD/ADC/SUB/SBC/AND/XOR/OR/CP
// A, r for every register (and (HL)).
func (c *CPU) opALU(op uint8) {
	src := regIndex(op, 0)
	var v uint8
	if src == 6 {
		v = c.readByte(c.HL())
	} else {
		v = *c.reg8(src)
	}

	switch (op >> 3) & 0x07 {
	case 0:
		c.A = c.add8(c.A, v, false)
	case 1:
		c.A = c.add8(c.A, v, c.flag(FlagCarry))
	case 2:
		c.A = c.sub8(c.A, v, false)
	case 3:
		c.A = c.sub8(c.A, v, c.flag(FlagCarry))
	case 4:
		c.A = c.and8(c.A, v)
	case 5:
		c.A = c.xor8(c.A, v)
	case 6:
		c.A = c.or8(c.A, v)
	case 7:
		c.sub8(c.A, v, false)
	}
}

func (c *CPU) jr(take bool) {
	disp := int8(c.fetch())
	if take {
		c.PC = uint16(int32(c.PC) + int32(disp))
		c.tick()
	}
}

func (c *CPU) condition(cc uint8) bool {
	switch cc {
	case 0:
		return !c.flag(FlagZero)
	case 1:
		return c.flag(FlagZero)
	case 2:
		return !c.flag(FlagCarry)
	case 3:
		return c.flag(FlagCarry)
	}
	return false
}

// regIndex extracts a 3-bit register field at the given bit offset.
func regIndex(op uint8, shift uint8) uint8 { return (op >> shift) & 0x07 }

func rpIndex(op uint8) uint8 { return (op >> 4) & 0x03 }
func rp2Index(op uint8) uint8 { return (op >> 4) & 0x03 }
func ccIndex(op uint8) uint8  { return (op >> 3) & 0x03 }

func (c *CPU) getRP(i uint8) uint16 {
	switch i {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

func (c *CPU) setRP(i uint8, v uint16) {
	switch i {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SP = v
	}
}

func (c *CPU) getRP2(i uint8) uint16 {
	switch i {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.AF()
	}
}

func (c *CPU) setRP2(i uint8, v uint16) {
	switch i {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SetAF(v)
	}
}
