package cartridge

import "github.com/pinwheel/gbcore/internal/savestate"

// mbc5 has a 9-bit ROM bank split across two writable registers and a
// 4-bit RAM bank register (3 bits plus a rumble-motor bit when the
// cartridge has a rumble motor).
type mbc5 struct {
	rom    []byte
	ram    []byte
	banks  int
	rumble bool

	ramEnable bool
	romBankLo uint8
	romBankHi uint8 // bit 0 only
	ramBank   uint8 // 4 bits, top bit drives rumble when present
}

func newMBC5(rom *Rom, backup []byte) *mbc5 {
	return &mbc5{
		rom:    rom.Data,
		ram:    seedRAM(rom.Header.RAMSize, backup),
		banks:  romBankCount(rom.Data),
		rumble: rom.Header.Type.Rumble,
	}
}

func (m *mbc5) romBank() int {
	bank := int(m.romBankLo) | int(m.romBankHi&0x01)<<8
	if m.banks == 0 {
		return 0
	}
	return bank % m.banks
}

func (m *mbc5) ramSelect() uint8 {
	if m.rumble {
		return m.ramBank & 0x07
	}
	return m.ramBank & 0x0F
}

func (m *mbc5) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		off := m.romBank()*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnable || len(m.ram) == 0 {
			return 0xFF
		}
		off := int(m.ramSelect())*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	}
	return 0xFF
}

func (m *mbc5) Write(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnable = data&0x0F == 0x0A
	case addr < 0x3000:
		m.romBankLo = data
	case addr < 0x4000:
		m.romBankHi = data & 0x01
	case addr < 0x6000:
		m.ramBank = data & 0x0F
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnable || len(m.ram) == 0 {
			return
		}
		off := int(m.ramSelect())*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			m.ram[off] = data
		}
	}
}

// RumbleActive reports whether the rumble motor's drive bit is set; a
// host rumble-feedback collaborator polls this, it does nothing on its
// own inside the core.
func (m *mbc5) RumbleActive() bool {
	return m.rumble && m.ramBank&0x08 != 0
}

func (m *mbc5) ExternalRAM() []byte { return m.ram }
func (m *mbc5) InternalRAM() []byte { return nil }

func (m *mbc5) Save(e *savestate.Encoder) {
	e.WriteBlob(m.ram)
	e.WriteBool(m.ramEnable)
	e.Write8(m.romBankLo)
	e.Write8(m.romBankHi)
	e.Write8(m.ramBank)
}

func (m *mbc5) Load(d *savestate.Decoder) {
	copy(m.ram, d.ReadBlob())
	m.ramEnable = d.ReadBool()
	m.romBankLo = d.Read8()
	m.romBankHi = d.Read8()
	m.ramBank = d.Read8()
}
