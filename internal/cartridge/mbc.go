package cartridge

import (
	"fmt"

	"github.com/pinwheel/gbcore/internal/savestate"
)

// Cartridge is the common contract every MBC implements: address
// decoding for the 0x0000-0x7FFF ROM window and the 0xA000-0xBFFF
// external-RAM/RTC window.
type Cartridge interface {
	Read(addr uint16) uint8
	Write(addr uint16, data uint8)

	// ExternalRAM returns the battery-backed RAM for host persistence,
	// or nil if the cartridge has none.
	ExternalRAM() []byte

	// InternalRAM returns MBC2's packed 512x4-bit RAM, or nil for every
	// other MBC kind.
	InternalRAM() []byte

	Save(*savestate.Encoder)
	Load(*savestate.Decoder)
}

// New constructs the Cartridge implementation matching the ROM's header,
// seeded with previously saved backup RAM if the host supplies it.
func New(rom *Rom, backupRAM []byte) (Cartridge, error) {
	switch rom.Header.Type.Kind {
	case MBCNone:
		return newNullMBC(rom, backupRAM), nil
	case MBC1:
		return newMBC1(rom, backupRAM), nil
	case MBC2:
		return newMBC2(rom, backupRAM), nil
	case MBC3:
		return newMBC3(rom, backupRAM), nil
	case MBC5:
		return newMBC5(rom, backupRAM), nil
	default:
		return nil, fmt.Errorf("cartridge: unsupported mbc for type code 0x%02X", rom.Header.TypeCode)
	}
}

func seedRAM(size uint, backup []byte) []byte {
	if size == 0 {
		return nil
	}
	ram := make([]byte, size)
	copy(ram, backup)
	return ram
}

// romBankCount returns how many 16 KiB banks the image contains, never
// less than 1.
func romBankCount(rom []byte) int {
	n := len(rom) / 0x4000
	if n == 0 {
		return 1
	}
	return n
}
