package cartridge

import "github.com/pinwheel/gbcore/internal/savestate"

// nullMBC is a bare 32 KiB ROM with no banking, optionally backed by up
// to 8 KiB of unbanked external RAM.
type nullMBC struct {
	rom []byte
	ram []byte
}

func newNullMBC(rom *Rom, backup []byte) *nullMBC {
	return &nullMBC{rom: rom.Data, ram: seedRAM(rom.Header.RAMSize, backup)}
}

func (m *nullMBC) Read(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr >= 0xA000 && addr < 0xC000:
		off := addr - 0xA000
		if int(off) < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	}
	return 0xFF
}

func (m *nullMBC) Write(addr uint16, data uint8) {
	if addr >= 0xA000 && addr < 0xC000 {
		off := addr - 0xA000
		if int(off) < len(m.ram) {
			m.ram[off] = data
		}
	}
	// writes to the ROM window are no-ops; there is no bank register.
}

func (m *nullMBC) ExternalRAM() []byte { return m.ram }
func (m *nullMBC) InternalRAM() []byte { return nil }

func (m *nullMBC) Save(e *savestate.Encoder) { e.WriteBlob(m.ram) }
func (m *nullMBC) Load(d *savestate.Decoder) { copy(m.ram, d.ReadBlob()) }
