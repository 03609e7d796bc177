package cartridge

import "github.com/pinwheel/gbcore/internal/savestate"

// mbc1 implements the 5-bit ROM bank / 2-bit RAM-or-high-ROM-bank
// register layout described in spec section 4.4.
type mbc1 struct {
	rom  []byte
	ram  []byte
	banks int

	ramEnable bool
	bank1     uint8 // 5 bits, 0 coerced to 1
	bank2     uint8 // 2 bits
	mode      bool  // banking_mode
}

func newMBC1(rom *Rom, backup []byte) *mbc1 {
	return &mbc1{
		rom:   rom.Data,
		ram:   seedRAM(rom.Header.RAMSize, backup),
		banks: romBankCount(rom.Data),
		bank1: 1,
	}
}

func (m *mbc1) romBank(window4000 bool) int {
	if window4000 {
		bank := int(m.bank1) | int(m.bank2)<<5
		return bank % m.banks
	}
	if m.mode {
		return (int(m.bank2) << 5) % m.banks
	}
	return 0
}

func (m *mbc1) ramBank() int {
	if m.mode {
		return int(m.bank2) & 0x03
	}
	return 0
}

func (m *mbc1) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		base := m.romBank(false) * 0x4000
		off := base + int(addr)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr < 0x8000:
		base := m.romBank(true) * 0x4000
		off := base + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnable || len(m.ram) == 0 {
			return 0xFF
		}
		off := m.ramBank()*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	}
	return 0xFF
}

func (m *mbc1) Write(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnable = data&0x0F == 0x0A
	case addr < 0x4000:
		data &= 0x1F
		if data == 0 {
			data = 1
		}
		m.bank1 = data
	case addr < 0x6000:
		m.bank2 = data & 0x03
	case addr < 0x8000:
		m.mode = data&0x01 != 0
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnable || len(m.ram) == 0 {
			return
		}
		off := m.ramBank()*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			m.ram[off] = data
		}
	}
}

func (m *mbc1) ExternalRAM() []byte { return m.ram }
func (m *mbc1) InternalRAM() []byte { return nil }

func (m *mbc1) Save(e *savestate.Encoder) {
	e.WriteBlob(m.ram)
	e.WriteBool(m.ramEnable)
	e.Write8(m.bank1)
	e.Write8(m.bank2)
	e.WriteBool(m.mode)
}

func (m *mbc1) Load(d *savestate.Decoder) {
	copy(m.ram, d.ReadBlob())
	m.ramEnable = d.ReadBool()
	m.bank1 = d.Read8()
	m.bank2 = d.Read8()
	m.mode = d.ReadBool()
}
