package cpu

// executeCB dispatches the CB-prefixed table: the low 3 bits always
// select the operand register ((HL) at index 6), and the upper bits
// select either a rotate/shift kind (0x00-0x3F), or a bit index for
// BIT/RES/SET (0x40-0xFF).
func (c *CPU) executeCB(op uint8) {
	regIdx := op & 0x07
	bitIdx := (op >> 3) & 0x07

	get := func() uint8 {
		if regIdx == 6 {
			return c.readByte(c.HL())
		}
		return *c.reg8(regIdx)
	}
	set := func(v uint8) {
		if regIdx == 6 {
			c.writeByte(c.HL(), v)
		} else {
			*c.reg8(regIdx) = v
		}
	}

	switch {
	case op < 0x40:
		v := get()
		switch bitIdx {
		case 0:
			v = c.rlc(v)
		case 1:
			v = c.rrc(v)
		case 2:
			v = c.rl(v)
		case 3:
			v = c.rr(v)
		case 4:
			v = c.sla(v)
		case 5:
			v = c.sra(v)
		case 6:
			v = c.swap(v)
		case 7:
			v = c.srl(v)
		}
		set(v)
	case op < 0x80:
		c.bit(bitIdx, get())
	case op < 0xC0:
		set(get() &^ (1 << bitIdx))
	default:
		set(get() | (1 << bitIdx))
	}
}
