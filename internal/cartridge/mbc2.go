package cartridge

import "github.com/pinwheel/gbcore/internal/savestate"

// mbc2 has a 4-bit ROM bank register and 512x4-bit RAM built into the
// cartridge itself (stored packed, two nibbles per byte).
type mbc2 struct {
	rom   []byte
	ram   [256]byte // 512 nibbles packed two-per-byte
	banks int

	ramEnable bool
	romBank   uint8 // 4 bits, 0 coerced to 1
}

func newMBC2(rom *Rom, backup []byte) *mbc2 {
	m := &mbc2{rom: rom.Data, banks: romBankCount(rom.Data), romBank: 1}
	copy(m.ram[:], backup)
	return m
}

func (m *mbc2) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank) % m.banks
		off := bank*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnable {
			return 0xFF
		}
		nibble := m.readNibble(int(addr-0xA000) & 0x1FF)
		return nibble | 0xF0
	}
	return 0xFF
}

func (m *mbc2) Write(addr uint16, data uint8) {
	switch {
	case addr < 0x4000:
		// bit 8 of the address picks bank-register vs ram-enable.
		if addr&0x100 != 0 {
			data &= 0x0F
			if data == 0 {
				data = 1
			}
			m.romBank = data
		} else {
			m.ramEnable = data&0x0F == 0x0A
		}
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnable {
			return
		}
		m.writeNibble(int(addr-0xA000)&0x1FF, data&0x0F)
	}
}

func (m *mbc2) readNibble(index int) uint8 {
	b := m.ram[index/2]
	if index%2 == 0 {
		return b & 0x0F
	}
	return b >> 4
}

func (m *mbc2) writeNibble(index int, nibble uint8) {
	i := index / 2
	if index%2 == 0 {
		m.ram[i] = (m.ram[i] & 0xF0) | nibble
	} else {
		m.ram[i] = (m.ram[i] & 0x0F) | (nibble << 4)
	}
}

func (m *mbc2) ExternalRAM() []byte { return nil }
func (m *mbc2) InternalRAM() []byte { return m.ram[:] }

func (m *mbc2) Save(e *savestate.Encoder) {
	e.WriteBytes(m.ram[:])
	e.WriteBool(m.ramEnable)
	e.Write8(m.romBank)
}

func (m *mbc2) Load(d *savestate.Decoder) {
	d.ReadBytes(m.ram[:])
	m.ramEnable = d.ReadBool()
	m.romBank = d.Read8()
}
