// Package apu implements the four-channel synthesizer: two pulse
// channels (one with sweep), a wave channel, and a noise channel, all
// driven by the 512 Hz frame sequencer and re-sampled to a fixed output
// rate, as described in spec section 4.6.
package apu

const (
	dotsPerLine   = 456
	linesPerFrame = 154
	// DotsPerFrame is the dot count of one full 154-line frame.
	DotsPerFrame = dotsPerLine * linesPerFrame

	// AudioSamplesPerFrame is the target stereo-sample count per frame
	// at the nominal output rate of ~48 kHz / 60 Hz.
	AudioSamplesPerFrame = 800

	frameSequencerPeriod = 8192
)

// Sample is one stereo output pair.
type Sample struct {
	L, R int16
}

// APU is the mixer plus its four channels.
type APU struct {
	enabled bool

	pulse1 pulseChannel
	pulse2 pulseChannel
	wave   waveChannel
	noise  noiseChannel

	vinLeft, vinRight       bool
	volumeLeft, volumeRight uint8
	routing                 [4]struct{ left, right bool }

	sequencerCounter uint32
	sequencerStep    uint8

	sampleAccum uint32
	samples     []Sample
}

// New returns a powered-off APU.
func New() *APU {
	a := &APU{}
	a.pulse1.hasSweep = true
	a.samples = make([]Sample, 0, AudioSamplesPerFrame+4)
	return a
}

// ClearSamples empties the per-frame sample buffer; the host calls this
// at the start of each frame via the machine facade.
func (a *APU) ClearSamples() {
	a.samples = a.samples[:0]
}

func (a *APU) Samples() []Sample { return a.samples }

// Tick advances the APU by one machine cycle (4 dots, or 2 at CGB double
// speed — the caller passes the dot count).
func (a *APU) Tick(dots uint8) {
	for i := uint8(0); i < dots; i++ {
		a.step()
	}
}

func (a *APU) step() {
	if a.enabled {
		a.sequencerCounter++
		if a.sequencerCounter >= frameSequencerPeriod {
			a.sequencerCounter = 0
			a.clockSequencer()
		}

		a.pulse1.stepFrequency()
		a.pulse2.stepFrequency()
		a.wave.stepFrequency()
		a.noise.stepFrequency()
	}

	a.sampleAccum += AudioSamplesPerFrame
	if a.sampleAccum >= DotsPerFrame {
		a.sampleAccum -= DotsPerFrame
		a.emitSample()
	}
}

func (a *APU) clockSequencer() {
	switch a.sequencerStep {
	case 0, 4:
		a.clockLength()
	case 2, 6:
		a.clockLength()
		a.pulse1.clockSweep()
	case 7:
		a.pulse1.clockEnvelope()
		a.pulse2.clockEnvelope()
		a.noise.clockEnvelope()
	}
	a.sequencerStep = (a.sequencerStep + 1) & 7
}

func (a *APU) clockLength() {
	a.pulse1.clockLength()
	a.pulse2.clockLength()
	a.wave.clockLength()
	a.noise.clockLength()
}

// nextStepClocksLength reports whether the sequencer step about to run
// is one that clocks the length counter — used by the trigger logic's
// "extra length clocking" rule.
func (a *APU) nextStepClocksLength() bool {
	return a.sequencerStep&1 == 0
}

func dacOutput(x uint8, dacOn bool) int16 {
	if !dacOn {
		return 0
	}
	return int16((int32(x)*1000 - 7500) / 8)
}

func (a *APU) emitSample() {
	c1 := dacOutput(a.pulse1.output(), a.pulse1.dacEnabled())
	c2 := dacOutput(a.pulse2.output(), a.pulse2.dacEnabled())
	c3 := dacOutput(a.wave.output(), a.wave.dacEnabled())
	c4 := dacOutput(a.noise.output(), a.noise.dacEnabled())

	outs := [4]int16{c1, c2, c3, c4}

	var left, right int32
	for i, o := range outs {
		if a.routing[i].left {
			left += int32(o)
		}
		if a.routing[i].right {
			right += int32(o)
		}
	}
	left *= int32(a.volumeLeft) + 1
	right *= int32(a.volumeRight) + 1

	a.samples = append(a.samples, Sample{L: clamp16(left), R: clamp16(right)})
}

func clamp16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
