package gbcore

import "github.com/pinwheel/gbcore/internal/ppu"

// Model selects which hardware revision to emulate.
type Model uint8

const (
	// ModelAuto picks DMG or CGB from the cartridge's CGB flag.
	ModelAuto Model = iota
	ModelDMG
	ModelCGB
	// ModelSGB, ModelSGB2, and ModelAGB are accepted but currently
	// stubbed to CGB/DMG-equivalent behavior: the spec's non-goals
	// exclude SGB border rendering and AGB-specific quirks.
	ModelSGB
	ModelSGB2
	ModelAGB
)

// DMGPalette is the four-shade output palette DMG mode maps BGP/OBP0/
// OBP1's 2-bit codes onto.
type DMGPalette [4]ppu.Color

// DefaultDMGPalette is the classic four-shade green-tinted palette.
var DefaultDMGPalette = DMGPalette{
	{0xE0, 0xF8, 0xD0},
	{0x88, 0xC0, 0x70},
	{0x34, 0x68, 0x56},
	{0x08, 0x18, 0x20},
}

// Config configures a Machine at construction time. The zero value is
// usable: Auto model, DefaultDMGPalette, no boot ROM, rewind recording
// disabled, strict header validation.
type Config struct {
	// Model selects the hardware revision; ModelAuto (the zero value)
	// follows the cartridge's CGB flag.
	Model Model

	// DMGPalette is the output palette used in DMG mode. The zero value
	// of DMGPalette is four identical black entries, which is almost
	// certainly not what's wanted, so New substitutes
	// DefaultDMGPalette when every entry is the zero Color.
	DMGPalette DMGPalette

	// BootROM, if non-empty, is mapped at reset instead of jumping
	// straight to the cartridge entry point at 0x0100.
	BootROM []byte

	// RewindInterval is how many frames elapse between automatic
	// rewind-point recordings. 0 disables rewind recording; the host
	// can still call RecordRewindPoint directly.
	RewindInterval int

	// HeaderLenient, when true, lets New continue past non-fatal header
	// defects (a bad header checksum, a ROM-size mismatch) instead of failing,
	// logging each one as a warning.
	HeaderLenient bool
}

func (c DMGPalette) isZero() bool {
	var zero DMGPalette
	return c == zero
}
