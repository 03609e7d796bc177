// Package gbcore is a cycle-accurate DMG/CGB Game Boy core: the CPU,
// PPU, APU, timer/serial/joypad, and MBC cartridge family wired behind
// one Machine facade, plus save-state and rewind support.
package gbcore

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/pinwheel/gbcore/internal/apu"
	"github.com/pinwheel/gbcore/internal/bus"
	"github.com/pinwheel/gbcore/internal/cartridge"
	"github.com/pinwheel/gbcore/internal/cpu"
	"github.com/pinwheel/gbcore/internal/interrupts"
	"github.com/pinwheel/gbcore/internal/joypad"
	"github.com/pinwheel/gbcore/internal/log"
	"github.com/pinwheel/gbcore/internal/ppu"
	"github.com/pinwheel/gbcore/internal/rewind"
	"github.com/pinwheel/gbcore/internal/savestate"
	"github.com/pinwheel/gbcore/internal/serial"
	"github.com/pinwheel/gbcore/internal/timer"
)

// ScreenWidth and ScreenHeight are the native DMG/CGB display dimensions.
const (
	ScreenWidth  = ppu.ScreenWidth
	ScreenHeight = ppu.ScreenHeight
)

// FrameBuffer is one rendered frame: RGB triples, row-major, top-left
// origin.
type FrameBuffer struct {
	Width, Height int
	Pixels        [ScreenHeight][ScreenWidth][3]uint8
}

// AudioBuffer is one frame's worth of synthesized stereo audio.
type AudioBuffer struct {
	SampleRate int
	Samples    []apu.Sample
}

// Machine is a fully wired Game Boy. Every subsystem is held in an
// unexported field; the host drives it through the operations below.
type Machine struct {
	cpu   *cpu.CPU
	bus   *bus.Bus
	ppu   *ppu.PPU
	apu   *apu.APU
	timer *timer.Controller
	serial *serial.Controller
	joypad *joypad.State
	irq   *interrupts.Controller
	cart  cartridge.Cartridge

	rom       *cartridge.Rom
	isCGB     bool
	bootROM   []byte
	rewind    *rewind.Buffer
	rewindEvery int
	framesSinceRewind int

	logger log.Logger
}

// New parses rom, builds the MBC its header names, and wires a Machine
// ready to run. backupRAM, if non-nil, seeds the cartridge's external
// (or MBC2 internal) RAM from a prior session.
func New(rom []byte, backupRAM []byte, cfg Config) (*Machine, error) {
	logger := log.New()

	parsed, err := cartridge.NewRom(rom)
	if err != nil {
		if parsed == nil || !cfg.HeaderLenient {
			return nil, newError(RomError, err)
		}
		logger.Errorf("gbcore: continuing past header defect (HeaderLenient): %v", err)
	}

	isCGB, err := resolveModel(cfg.Model, parsed.Header.CGBFlag)
	if err != nil {
		return nil, err
	}

	cart, err := cartridge.New(parsed, backupRAM)
	if err != nil {
		return nil, newError(UnsupportedMbc, err)
	}

	palette := cfg.DMGPalette
	if palette.isZero() {
		palette = DefaultDMGPalette
	}

	vramSize := 0x2000
	if isCGB {
		vramSize = 0x4000
	}

	irq := interrupts.New()
	p := ppu.New(irq, [4]ppu.Color(palette), vramSize)
	a := apu.New()
	t := timer.New(irq)
	s := serial.New(irq)
	j := joypad.New(irq)
	b := bus.New(cart, p, a, t, s, j, irq, isCGB, cfg.BootROM)
	c := cpu.New(b, irq)

	m := &Machine{
		cpu: c, bus: b, ppu: p, apu: a, timer: t, serial: s, joypad: j, irq: irq,
		cart: cart, rom: parsed, isCGB: isCGB, bootROM: cfg.BootROM,
		rewind:      rewind.New(64),
		rewindEvery: cfg.RewindInterval,
		logger:      logger,
	}
	m.Reset()
	return m, nil
}

func resolveModel(requested Model, flag cartridge.CGBFlag) (bool, error) {
	switch requested {
	case ModelDMG, ModelSGB, ModelSGB2:
		if flag == cartridge.CGBOnly {
			return false, newError(ModelMismatch, fmt.Errorf("gbcore: cartridge requires CGB but DMG-class model was forced"))
		}
		return false, nil
	case ModelCGB, ModelAGB:
		return true, nil
	default: // ModelAuto
		return flag != cartridge.CGBNone, nil
	}
}

// Reset puts the CPU registers back to their post-boot state or, when a
// boot ROM is configured, clears them and sets PC to 0x0000. It does not
// re-parse the cartridge. The PPU, APU, timer, serial port, joypad, bus
// (including the boot-ROM overlay latch) and cartridge keep their
// current state.
func (m *Machine) Reset() {
	if len(m.bootROM) > 0 {
		m.cpu.PC = 0x0000
		m.cpu.SP = 0x0000
		m.cpu.SetAF(0)
		m.cpu.SetBC(0)
		m.cpu.SetDE(0)
		m.cpu.SetHL(0)
	} else {
		m.cpu.Reset()
	}
}

// ExecFrame steps the CPU until the PPU completes one full frame
// (VBlank), then returns. Input changes made via SetInput since the
// previous call take effect immediately, since the joypad matrix is
// read live by the CPU during the frame, not snapshotted at the edge.
func (m *Machine) ExecFrame() {
	m.apu.ClearSamples()
	before := m.ppu.FrameCount()
	for m.ppu.FrameCount() == before {
		m.cpu.Step()
	}

	if m.rewindEvery > 0 {
		m.framesSinceRewind++
		if m.framesSinceRewind >= m.rewindEvery {
			m.framesSinceRewind = 0
			m.RecordRewindPoint()
		}
	}
}

// SetInput applies the current button state.
func (m *Machine) SetInput(snap joypad.Snapshot) {
	m.joypad.SetInput(snap)
}

// FrameBuffer returns the most recently completed frame.
func (m *Machine) FrameBuffer() FrameBuffer {
	return FrameBuffer{Width: ScreenWidth, Height: ScreenHeight, Pixels: m.ppu.FrameBuffer()}
}

// AudioBuffer returns the audio samples synthesized during the last
// ExecFrame call.
func (m *Machine) AudioBuffer() AudioBuffer {
	return AudioBuffer{SampleRate: 48000, Samples: m.apu.Samples()}
}

// BackupRAM returns the cartridge's battery-backed external RAM, or
// MBC2's packed internal RAM, for the host to persist between runs. It
// returns nil if the cartridge has neither.
func (m *Machine) BackupRAM() []byte {
	if ram := m.cart.ExternalRAM(); ram != nil {
		return ram
	}
	return m.cart.InternalRAM()
}

// SetLinkCable installs (or, with nil, removes) the serial-port
// collaborator.
func (m *Machine) SetLinkCable(cable serial.LinkCable) {
	m.serial.Attach(cable)
}

// SetLogger redirects runtime warnings (invalid register writes,
// out-of-spec cartridge behavior) to the given Logger.
func (m *Machine) SetLogger(l log.Logger) {
	m.logger = l
}

// RecordRewindPoint serializes the current machine state into the
// rewind ring immediately, independent of Config.RewindInterval.
func (m *Machine) RecordRewindPoint() {
	m.rewind.Record(m.encodeState())
}

// RewindCount reports how many rewind points are currently held.
func (m *Machine) RewindCount() int {
	return m.rewind.Count()
}

// RewindTo restores the machine to the state recorded at index (0 =
// oldest point still held).
func (m *Machine) RewindTo(index int) error {
	snapshot, ok := m.rewind.At(index)
	if !ok {
		err := newError(Io, fmt.Errorf("gbcore: no rewind point at index %d (have %d)", index, m.rewind.Count()))
		m.logger.Errorf("%v", err)
		return err
	}
	return m.decodeState(snapshot)
}

// stateHeaderLen is the SHA-256 digest size prefixed to every save-state
// payload, binding it to the ROM that produced it.
const stateHeaderLen = sha256.Size

// SaveState serializes the full machine into a versioned, brotli-
// compressed, ROM-hash-bound payload.
func (m *Machine) SaveState() []byte {
	raw := m.encodeState()

	var compressed bytes.Buffer
	w := brotli.NewWriterLevel(&compressed, brotli.DefaultCompression)
	_, _ = w.Write(raw)
	_ = w.Close()

	hash := m.rom.Hash()
	out := make([]byte, 0, stateHeaderLen+compressed.Len())
	out = append(out, hash[:]...)
	out = append(out, compressed.Bytes()...)
	return out
}

// LoadState restores a Machine from bytes produced by SaveState. It
// refuses to load a state produced by a different ROM.
func (m *Machine) LoadState(data []byte) error {
	if len(data) < stateHeaderLen {
		return newError(DeserializeFailed, fmt.Errorf("gbcore: save-state too short (%d bytes)", len(data)))
	}
	hash := m.rom.Hash()
	if string(data[:stateHeaderLen]) != string(hash[:]) {
		return newError(RomHashMismatch, fmt.Errorf("gbcore: save-state was produced by a different ROM"))
	}

	r := brotli.NewReader(bytes.NewReader(data[stateHeaderLen:]))
	raw, err := io.ReadAll(r)
	if err != nil {
		return newError(DeserializeFailed, err)
	}
	return m.decodeState(raw)
}

func (m *Machine) encodeState() []byte {
	e := savestate.NewEncoder()
	e.Write8(savestate.Version)
	e.WriteBool(m.isCGB)
	m.cpu.Save(e)
	m.bus.Save(e)
	m.ppu.Save(e)
	m.apu.Save(e)
	m.timer.Save(e)
	m.serial.Save(e)
	m.joypad.Save(e)
	m.irq.Save(e)
	m.cart.Save(e)
	return e.Bytes()
}

func (m *Machine) decodeState(raw []byte) error {
	d := savestate.NewDecoder(raw)
	version := d.Read8()
	if version != savestate.Version {
		return newError(DeserializeFailed, fmt.Errorf("gbcore: save-state version %d unsupported (want %d)", version, savestate.Version))
	}
	_ = d.ReadBool() // isCGB: fixed for the lifetime of this Machine, not re-applied
	m.cpu.Load(d)
	m.bus.Load(d)
	m.ppu.Load(d)
	m.apu.Load(d)
	m.timer.Load(d)
	m.serial.Load(d)
	m.joypad.Load(d)
	m.irq.Load(d)
	m.cart.Load(d)
	if err := d.Err(); err != nil {
		return newError(DeserializeFailed, err)
	}
	return nil
}
