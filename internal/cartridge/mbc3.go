package cartridge

import "github.com/pinwheel/gbcore/internal/savestate"

// mbc3 adds a 7-bit ROM bank register, a RAM-bank-or-RTC-register
// selector, and a real-time clock.
//
// The RTC advances on the emulated clock rather than sampling the host's
// wall-clock time: spec section 4.4 describes latch-from-wall-clock
// hardware behaviour, but driving it from dots keeps save-state/load
// round trips byte-for-byte reproducible (spec section 8's round-trip
// property), which a host-time read would break between runs.
type mbc3 struct {
	rom   []byte
	ram   []byte
	banks int

	ramEnable bool
	romBank   uint8 // 7 bits, 0 coerced to 1
	selector  uint8 // 0-3: ram bank, 8-C: rtc register

	rtc       [5]uint8 // seconds, minutes, hours, day-low, day-high/flags
	rtcLatch  [5]uint8
	latchStep uint8 // tracks the 0-then-1 write sequence on 0x6000-0x7FFF
	dotAccum  uint32
}

const (
	rtcDayHighCarry = 0x80
	rtcDayHighHalt  = 0x40
	rtcDayHighBit8  = 0x01
)

func newMBC3(rom *Rom, backup []byte) *mbc3 {
	return &mbc3{
		rom:     rom.Data,
		ram:     seedRAM(rom.Header.RAMSize, backup),
		banks:   romBankCount(rom.Data),
		romBank: 1,
	}
}

func (m *mbc3) Read(addr uint16) uint8 {
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
		if m.selector <= 0x03 {
			off := int(m.selector)*0x2000 + int(addr-0xA000)
			if off < len(m.ram) {
				return m.ram[off]
			}
			return 0xFF
		}
		if m.selector >= 0x08 && m.selector <= 0x0C {
			return m.rtcLatch[m.selector-0x08]
		}
	}
	return 0xFF
}

func (m *mbc3) Write(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnable = data&0x0F == 0x0A
	case addr < 0x4000:
		data &= 0x7F
		if data == 0 {
			data = 1
		}
		m.romBank = data
	case addr < 0x6000:
		m.selector = data
	case addr < 0x8000:
		if data == 0 {
			m.latchStep = 1
		} else if data == 1 && m.latchStep == 1 {
			m.latchRTC()
			m.latchStep = 0
		} else {
			m.latchStep = 0
		}
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnable {
			return
		}
		if m.selector <= 0x03 {
			off := int(m.selector)*0x2000 + int(addr-0xA000)
			if off < len(m.ram) {
				m.ram[off] = data
			}
			return
		}
		if m.selector >= 0x08 && m.selector <= 0x0C {
			m.writeRTC(m.selector-0x08, data)
		}
	}
}

func (m *mbc3) writeRTC(reg, value uint8) {
	switch reg {
	case 0:
		m.rtc[0] = value % 60
	case 1:
		m.rtc[1] = value % 60
	case 2:
		m.rtc[2] = value % 24
	case 3:
		m.rtc[3] = value
	case 4:
		m.rtc[4] = value & (rtcDayHighCarry | rtcDayHighHalt | rtcDayHighBit8)
	}
}

func (m *mbc3) latchRTC() {
	copy(m.rtcLatch[:], m.rtc[:])
}

// TickRTC advances the clock by one machine cycle's worth of dots; it is
// invoked by the bus once per tick when the cartridge implements it.
func (m *mbc3) TickRTC() {
	if m.rtc[4]&rtcDayHighHalt != 0 {
		return
	}
	m.dotAccum += 4
	if m.dotAccum < 4194304 {
		return
	}
	m.dotAccum -= 4194304
	m.advanceSecond()
}

func (m *mbc3) advanceSecond() {
	m.rtc[0]++
	if m.rtc[0] < 60 {
		return
	}
	m.rtc[0] = 0
	m.rtc[1]++
	if m.rtc[1] < 60 {
		return
	}
	m.rtc[1] = 0
	m.rtc[2]++
	if m.rtc[2] < 24 {
		return
	}
	m.rtc[2] = 0

	day := uint16(m.rtc[3]) | uint16(m.rtc[4]&rtcDayHighBit8)<<8
	prevDay := day
	day = (day + 1) & 0x1FF
	m.rtc[3] = uint8(day)
	m.rtc[4] = (m.rtc[4] &^ rtcDayHighBit8) | uint8(day>>8)&rtcDayHighBit8
	if day < prevDay {
		m.rtc[4] |= rtcDayHighCarry
	}
}

func (m *mbc3) ExternalRAM() []byte { return m.ram }
func (m *mbc3) InternalRAM() []byte { return nil }

func (m *mbc3) Save(e *savestate.Encoder) {
	e.WriteBlob(m.ram)
	e.WriteBool(m.ramEnable)
	e.Write8(m.romBank)
	e.Write8(m.selector)
	e.WriteBytes(m.rtc[:])
	e.WriteBytes(m.rtcLatch[:])
	e.Write8(m.latchStep)
	e.Write32(m.dotAccum)
}

func (m *mbc3) Load(d *savestate.Decoder) {
	copy(m.ram, d.ReadBlob())
	m.ramEnable = d.ReadBool()
	m.romBank = d.Read8()
	m.selector = d.Read8()
	d.ReadBytes(m.rtc[:])
	d.ReadBytes(m.rtcLatch[:])
	m.latchStep = d.Read8()
	m.dotAccum = d.Read32()
}
