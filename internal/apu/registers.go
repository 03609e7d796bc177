package apu

import "github.com/pinwheel/gbcore/internal/savestate"

// ReadRegister reads one of FF10-FF3F. While the APU is powered off every
// register except NR52 reads 0xFF; wave RAM remains readable regardless
// of power state.
func (a *APU) ReadRegister(addr uint16) uint8 {
	if addr >= 0xFF30 && addr <= 0xFF3F {
		return a.wave.readRAM(addr)
	}
	if !a.enabled && addr != 0xFF26 {
		return 0xFF
	}
	switch addr {
	case 0xFF10:
		return a.pulse1.readNR10()
	case 0xFF11:
		return a.pulse1.readNRx1()
	case 0xFF12:
		return a.pulse1.readNRx2()
	case 0xFF13:
		return a.pulse1.readNRx3()
	case 0xFF14:
		return a.pulse1.readNRx4()
	case 0xFF16:
		return a.pulse2.readNRx1()
	case 0xFF17:
		return a.pulse2.readNRx2()
	case 0xFF18:
		return a.pulse2.readNRx3()
	case 0xFF19:
		return a.pulse2.readNRx4()
	case 0xFF1A:
		return a.wave.readNR30()
	case 0xFF1C:
		return a.wave.readNR32()
	case 0xFF1E:
		return a.wave.readNR34()
	case 0xFF20:
		return 0xFF
	case 0xFF21:
		return a.noise.readNR42()
	case 0xFF22:
		return a.noise.readNR43()
	case 0xFF23:
		return a.noise.readNR44()
	case 0xFF24:
		return a.readNR50()
	case 0xFF25:
		return a.readNR51()
	case 0xFF26:
		return a.readNR52()
	}
	return 0xFF
}

// WriteRegister writes FF10-FF3F. Most channel registers are ignored
// while the APU is powered off; NR52 and wave RAM are always writable.
func (a *APU) WriteRegister(addr uint16, v uint8) {
	if addr >= 0xFF30 && addr <= 0xFF3F {
		a.wave.writeRAM(addr, v)
		return
	}
	if !a.enabled && addr != 0xFF26 && addr != 0xFF11 && addr != 0xFF16 &&
		addr != 0xFF1B && addr != 0xFF20 {
		return
	}
	extra := !a.nextStepClocksLength()
	switch addr {
	case 0xFF10:
		a.pulse1.writeNR10(v)
	case 0xFF11:
		a.pulse1.writeNRx1(v)
	case 0xFF12:
		a.pulse1.writeNRx2(v)
	case 0xFF13:
		a.pulse1.writeNRx3(v)
	case 0xFF14:
		a.pulse1.writeNRx4(v, extra)
	case 0xFF16:
		a.pulse2.writeNRx1(v)
	case 0xFF17:
		a.pulse2.writeNRx2(v)
	case 0xFF18:
		a.pulse2.writeNRx3(v)
	case 0xFF19:
		a.pulse2.writeNRx4(v, extra)
	case 0xFF1A:
		a.wave.writeNR30(v)
	case 0xFF1B:
		a.wave.writeNR31(v)
	case 0xFF1C:
		a.wave.writeNR32(v)
	case 0xFF1D:
		a.wave.writeNR33(v)
	case 0xFF1E:
		a.wave.writeNR34(v, extra)
	case 0xFF20:
		a.noise.writeNR41(v)
	case 0xFF21:
		a.noise.writeNR42(v)
	case 0xFF22:
		a.noise.writeNR43(v)
	case 0xFF23:
		a.noise.writeNR44(v, extra)
	case 0xFF24:
		a.writeNR50(v)
	case 0xFF25:
		a.writeNR51(v)
	case 0xFF26:
		a.writeNR52(v)
	}
}

func (a *APU) readNR50() uint8 {
	v := a.volumeLeft<<4 | a.volumeRight
	if a.vinLeft {
		v |= 0x80
	}
	if a.vinRight {
		v |= 0x08
	}
	return v
}

func (a *APU) writeNR50(v uint8) {
	a.volumeRight = v & 0x07
	a.vinRight = v&0x08 != 0
	a.volumeLeft = (v >> 4) & 0x07
	a.vinLeft = v&0x80 != 0
}

func (a *APU) readNR51() uint8 {
	var v uint8
	for i, r := range a.routing {
		if r.right {
			v |= 1 << uint(i)
		}
		if r.left {
			v |= 1 << uint(i+4)
		}
	}
	return v
}

func (a *APU) writeNR51(v uint8) {
	for i := range a.routing {
		a.routing[i].right = v&(1<<uint(i)) != 0
		a.routing[i].left = v&(1<<uint(i+4)) != 0
	}
}

func (a *APU) readNR52() uint8 {
	v := uint8(0x70)
	if a.enabled {
		v |= 0x80
	}
	if a.pulse1.enabled {
		v |= 0x01
	}
	if a.pulse2.enabled {
		v |= 0x02
	}
	if a.wave.enabled {
		v |= 0x04
	}
	if a.noise.enabled {
		v |= 0x08
	}
	return v
}

func (a *APU) writeNR52(v uint8) {
	wasEnabled := a.enabled
	a.enabled = v&0x80 != 0
	if wasEnabled && !a.enabled {
		a.powerOff()
	} else if !wasEnabled && a.enabled {
		a.sequencerStep = 0
	}
}

// powerOff clears every register except wave RAM, matching hardware's
// documented power-off behaviour.
func (a *APU) powerOff() {
	wave := a.wave.ram
	a.pulse1 = pulseChannel{hasSweep: true}
	a.pulse2 = pulseChannel{}
	a.wave = waveChannel{ram: wave}
	a.noise = noiseChannel{}
	a.volumeLeft, a.volumeRight = 0, 0
	a.vinLeft, a.vinRight = false, false
	a.routing = [4]struct{ left, right bool }{}
}

func (a *APU) Save(e *savestate.Encoder) {
	e.WriteBool(a.enabled)
	e.Write8(uint8(a.sequencerStep))
	e.Write32(a.sequencerCounter)
	e.Write32(a.sampleAccum)
	e.WriteBool(a.vinLeft)
	e.WriteBool(a.vinRight)
	e.Write8(a.volumeLeft)
	e.Write8(a.volumeRight)
	for _, r := range a.routing {
		e.WriteBool(r.left)
		e.WriteBool(r.right)
	}
	a.savePulse(e, &a.pulse1)
	a.savePulse(e, &a.pulse2)
	a.saveWave(e)
	a.saveNoise(e)
}

func (a *APU) savePulse(e *savestate.Encoder, c *pulseChannel) {
	e.WriteBool(c.enabled)
	e.Write8(c.duty)
	e.Write8(c.dutyPos)
	e.Write16(c.length)
	e.WriteBool(c.lengthEnabled)
	e.Write8(c.startVolume)
	e.WriteBool(c.envAdd)
	e.Write8(c.envPeriod)
	e.Write8(c.envTimer)
	e.Write8(c.volume)
	e.WriteBool(c.dacOn)
	e.Write8(c.sweepPeriod)
	e.Write8(c.sweepTimer)
	e.WriteBool(c.sweepNeg)
	e.Write8(c.sweepShift)
	e.WriteBool(c.sweepEnabled)
	e.Write16(c.sweepFreq)
	e.Write16(c.freq)
	e.Write32(uint32(c.freqTimer))
}

func (a *APU) saveWave(e *savestate.Encoder) {
	c := &a.wave
	e.WriteBool(c.enabled)
	e.WriteBool(c.dacOn)
	e.Write16(c.length)
	e.WriteBool(c.lengthEnabled)
	e.Write8(c.volumeCode)
	e.Write16(c.freq)
	e.Write32(uint32(c.freqTimer))
	e.Write8(c.position)
	e.WriteBytes(c.ram[:])
	e.Write8(c.sampleBuf)
}

func (a *APU) saveNoise(e *savestate.Encoder) {
	c := &a.noise
	e.WriteBool(c.enabled)
	e.Write16(c.length)
	e.WriteBool(c.lengthEnabled)
	e.Write8(c.startVolume)
	e.WriteBool(c.envAdd)
	e.Write8(c.envPeriod)
	e.Write8(c.envTimer)
	e.Write8(c.volume)
	e.WriteBool(c.dacOn)
	e.Write8(c.shiftAmount)
	e.WriteBool(c.widthMode)
	e.Write8(c.divisorCode)
	e.Write16(c.lfsr)
	e.Write32(uint32(c.freqTimer))
}

func (a *APU) Load(d *savestate.Decoder) {
	a.enabled = d.ReadBool()
	a.sequencerStep = d.Read8()
	a.sequencerCounter = d.Read32()
	a.sampleAccum = d.Read32()
	a.vinLeft = d.ReadBool()
	a.vinRight = d.ReadBool()
	a.volumeLeft = d.Read8()
	a.volumeRight = d.Read8()
	for i := range a.routing {
		a.routing[i].left = d.ReadBool()
		a.routing[i].right = d.ReadBool()
	}
	a.loadPulse(d, &a.pulse1)
	a.loadPulse(d, &a.pulse2)
	a.loadWave(d)
	a.loadNoise(d)
}

func (a *APU) loadPulse(d *savestate.Decoder, c *pulseChannel) {
	c.enabled = d.ReadBool()
	c.duty = d.Read8()
	c.dutyPos = d.Read8()
	c.length = d.Read16()
	c.lengthEnabled = d.ReadBool()
	c.startVolume = d.Read8()
	c.envAdd = d.ReadBool()
	c.envPeriod = d.Read8()
	c.envTimer = d.Read8()
	c.volume = d.Read8()
	c.dacOn = d.ReadBool()
	c.sweepPeriod = d.Read8()
	c.sweepTimer = d.Read8()
	c.sweepNeg = d.ReadBool()
	c.sweepShift = d.Read8()
	c.sweepEnabled = d.ReadBool()
	c.sweepFreq = d.Read16()
	c.freq = d.Read16()
	c.freqTimer = int32(d.Read32())
}

func (a *APU) loadWave(d *savestate.Decoder) {
	c := &a.wave
	c.enabled = d.ReadBool()
	c.dacOn = d.ReadBool()
	c.length = d.Read16()
	c.lengthEnabled = d.ReadBool()
	c.volumeCode = d.Read8()
	c.freq = d.Read16()
	c.freqTimer = int32(d.Read32())
	c.position = d.Read8()
	d.ReadBytes(c.ram[:])
	c.sampleBuf = d.Read8()
}

func (a *APU) loadNoise(d *savestate.Decoder) {
	c := &a.noise
	c.enabled = d.ReadBool()
	c.length = d.Read16()
	c.lengthEnabled = d.ReadBool()
	c.startVolume = d.Read8()
	c.envAdd = d.ReadBool()
	c.envPeriod = d.Read8()
	c.envTimer = d.Read8()
	c.volume = d.Read8()
	c.dacOn = d.ReadBool()
	c.shiftAmount = d.Read8()
	c.widthMode = d.ReadBool()
	c.divisorCode = d.Read8()
	c.lfsr = d.Read16()
	c.freqTimer = int32(d.Read32())
}
