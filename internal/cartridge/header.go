// Package cartridge parses ROM headers and implements the MBC family
// (null, MBC1, MBC2, MBC3 with RTC, MBC5) described in spec section 4.4.
package cartridge

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// CGBFlag classifies a cartridge's Game Boy Color support.
type CGBFlag uint8

const (
	CGBNone CGBFlag = iota
	CGBSupports
	CGBOnly
)

// MBCKind names the bank-controller family a cartridge uses.
type MBCKind uint8

const (
	MBCNone MBCKind = iota
	MBC1
	MBC2
	MBC3
	MBC5
	MBCUnsupported
)

// TypeInfo decodes the single cartridge-type byte at 0x0147 into the MBC
// family plus the peripheral flags that ride along with it.
type TypeInfo struct {
	Kind    MBCKind
	RAM     bool
	Battery bool
	Timer   bool
	Rumble  bool
}

var cartridgeTypes = map[uint8]TypeInfo{
	0x00: {Kind: MBCNone},
	0x01: {Kind: MBC1},
	0x02: {Kind: MBC1, RAM: true},
	0x03: {Kind: MBC1, RAM: true, Battery: true},
	0x05: {Kind: MBC2},
	0x06: {Kind: MBC2, Battery: true},
	0x08: {Kind: MBCNone, RAM: true},
	0x09: {Kind: MBCNone, RAM: true, Battery: true},
	0x0F: {Kind: MBC3, Timer: true, Battery: true},
	0x10: {Kind: MBC3, Timer: true, RAM: true, Battery: true},
	0x11: {Kind: MBC3},
	0x12: {Kind: MBC3, RAM: true},
	0x13: {Kind: MBC3, RAM: true, Battery: true},
	0x19: {Kind: MBC5},
	0x1A: {Kind: MBC5, RAM: true},
	0x1B: {Kind: MBC5, RAM: true, Battery: true},
	0x1C: {Kind: MBC5, Rumble: true},
	0x1D: {Kind: MBC5, Rumble: true, RAM: true},
	0x1E: {Kind: MBC5, Rumble: true, RAM: true, Battery: true},
}

var ramSizeCodes = map[uint8]uint{
	0x00: 0,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Header is the decoded, fixed-layout cartridge header at 0x0100-0x014F.
type Header struct {
	Title               string
	CGBFlag             CGBFlag
	Type                TypeInfo
	TypeCode            uint8
	ROMSize             uint
	RAMSize             uint
	DestinationCode     uint8
	HeaderChecksum      uint8
	ComputedHeaderCheck uint8
	HeaderChecksumOK    bool
	GlobalChecksum      uint16
	ComputedGlobalCheck uint16
	GlobalChecksumOK    bool
}

// ParseHeader decodes a ROM's header and validates it, returning every
// defect it finds combined into one error rather than stopping at the
// first. The global checksum is only recorded in GlobalChecksumOK; a
// mismatch there is not reported as an error, so a nil error means every
// other header field is well-formed. Lenient callers may still use the
// returned Header after a non-nil error if they only care about specific
// fields.
func ParseHeader(rom []byte) (*Header, error) {
	var errs *multierror.Error

	if len(rom) < 0x150 {
		return nil, fmt.Errorf("cartridge: rom too short to contain a header (%d bytes)", len(rom))
	}

	h := &Header{}
	h.Title = decodeTitle(rom[0x134:0x144])
	h.CGBFlag = decodeCGBFlag(rom[0x143])

	h.TypeCode = rom[0x147]
	info, known := cartridgeTypes[h.TypeCode]
	if !known {
		errs = multierror.Append(errs, fmt.Errorf("cartridge: unsupported cartridge type code 0x%02X", h.TypeCode))
		info = TypeInfo{Kind: MBCUnsupported}
	}
	h.Type = info

	romSizeCode := rom[0x148]
	if romSizeCode > 8 {
		errs = multierror.Append(errs, fmt.Errorf("cartridge: invalid rom size code 0x%02X", romSizeCode))
	} else {
		h.ROMSize = 32 * 1024 << romSizeCode
	}

	ramSizeCode := rom[0x149]
	ramSize, knownRAM := ramSizeCodes[ramSizeCode]
	if !knownRAM {
		errs = multierror.Append(errs, fmt.Errorf("cartridge: invalid ram size code 0x%02X", ramSizeCode))
	}
	h.RAMSize = ramSize

	h.DestinationCode = rom[0x14A]
	h.HeaderChecksum = rom[0x14D]
	h.ComputedHeaderCheck = computeHeaderChecksum(rom)
	h.HeaderChecksumOK = h.HeaderChecksum == h.ComputedHeaderCheck
	if !h.HeaderChecksumOK {
		errs = multierror.Append(errs, fmt.Errorf("cartridge: header checksum mismatch: got 0x%02X, want 0x%02X", h.HeaderChecksum, h.ComputedHeaderCheck))
	}

	h.GlobalChecksum = uint16(rom[0x14E])<<8 | uint16(rom[0x14F])
	h.ComputedGlobalCheck = computeGlobalChecksum(rom)
	h.GlobalChecksumOK = h.GlobalChecksum == h.ComputedGlobalCheck

	if h.ROMSize != 0 && h.ROMSize != uint(len(rom)) {
		errs = multierror.Append(errs, fmt.Errorf("cartridge: header rom size %d does not match file size %d", h.ROMSize, len(rom)))
	}

	if errs != nil {
		return h, errs
	}
	return h, nil
}

func decodeTitle(raw []byte) string {
	end := len(raw)
	for i, b := range raw {
		if b == 0 {
			end = i
			break
		}
	}
	return string(raw[:end])
}

func decodeCGBFlag(b byte) CGBFlag {
	switch b {
	case 0xC0:
		return CGBOnly
	case 0x80:
		return CGBSupports
	default:
		return CGBNone
	}
}

// computeHeaderChecksum implements acc = acc - b - 1 over 0x0134..0x014C.
func computeHeaderChecksum(rom []byte) uint8 {
	var acc uint8
	for addr := 0x0134; addr <= 0x014C; addr++ {
		acc = acc - rom[addr] - 1
	}
	return acc
}

func computeGlobalChecksum(rom []byte) uint16 {
	var sum uint16
	for i, b := range rom {
		if i == 0x14E || i == 0x14F {
			continue
		}
		sum += uint16(b)
	}
	return sum
}
