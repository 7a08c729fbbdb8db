// Package apu implements the Audio Processing Unit (2A03) for the NES.
package apu

import (
	"nesemu/internal/logger"
)

const (
	// CPUFrequency is the NTSC CPU clock in Hz.
	CPUFrequency = 1789773

	// DefaultSampleRate is used until SetSampleRate is called.
	DefaultSampleRate = 44100

	// Frame sequencer step positions in CPU cycles
	frameStep1      = 7457
	frameStep2      = 14913
	frameStep3      = 22371
	frameStep4      = 29829
	frameFourLength = 29830
	frameStep5      = 37281
	frameFiveLength = 37282

	maxBufferedSeconds = 1
)

// APU represents the Audio Processing Unit
type APU struct {
	pulse1   PulseChannel
	pulse2   PulseChannel
	triangle TriangleChannel
	noise    NoiseChannel
	dmc      DMCChannel

	// Frame sequencer
	frameCycle      int
	frameFiveStep   bool
	frameIRQInhibit bool
	frameIRQFlag    bool
	frameResetDelay int

	cycles uint64

	sampleRate       int
	cycleAccumulator int
	filters          filterChain
	samples          []Sample
	sampleCallback   func(Sample)
	droppedSamples   bool
}

// New creates a new APU instance
func New() *APU {
	apu := &APU{
		pulse1:     newPulse(1),
		pulse2:     newPulse(2),
		noise:      newNoise(),
		dmc:        newDMC(),
		sampleRate: DefaultSampleRate,
	}
	apu.filters = newFilterChain(apu.sampleRate)
	return apu
}

// Reset silences every channel and restarts the frame sequencer in 4-step
// mode. Buffered samples are discarded.
func (apu *APU) Reset() {
	apu.pulse1.reset()
	apu.pulse2.reset()
	apu.triangle.reset()
	apu.noise.reset()
	apu.dmc.reset()

	apu.frameCycle = 0
	apu.frameFiveStep = false
	apu.frameIRQInhibit = false
	apu.frameIRQFlag = false
	apu.frameResetDelay = 0
	apu.cycles = 0

	apu.cycleAccumulator = 0
	apu.filters = newFilterChain(apu.sampleRate)
	apu.samples = apu.samples[:0]
}

// SetDMCReader sets the function the DMC uses to fetch sample bytes.
func (apu *APU) SetDMCReader(reader func(address uint16) uint8) {
	apu.dmc.reader = reader
}

// SetSampleCallback sets a function that receives every sample as it is
// produced. While set, samples are not buffered for Samples.
func (apu *APU) SetSampleCallback(callback func(Sample)) {
	apu.sampleCallback = callback
}

// SetSampleRate sets the output sample rate
func (apu *APU) SetSampleRate(rate int) {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	apu.sampleRate = rate
	apu.cycleAccumulator = 0
	apu.filters = newFilterChain(rate)
}

// Samples returns and clears the buffered samples.
func (apu *APU) Samples() []Sample {
	out := make([]Sample, len(apu.samples))
	copy(out, apu.samples)
	apu.samples = apu.samples[:0]
	return out
}

// Step advances the APU by one CPU cycle.
func (apu *APU) Step() {
	apu.cycles++

	apu.stepFrameCounter()

	apu.triangle.clockTimer()
	apu.noise.clockTimer()
	apu.dmc.clockTimer()
	if apu.cycles%2 == 0 {
		apu.pulse1.clockTimer()
		apu.pulse2.clockTimer()
	}

	apu.pulse1.length.endCycle()
	apu.pulse2.length.endCycle()
	apu.triangle.length.endCycle()
	apu.noise.length.endCycle()

	apu.cycleAccumulator += apu.sampleRate
	if apu.cycleAccumulator >= CPUFrequency {
		apu.cycleAccumulator -= CPUFrequency
		apu.emitSample()
	}
}

func (apu *APU) stepFrameCounter() {
	if apu.frameResetDelay > 0 {
		apu.frameResetDelay--
		if apu.frameResetDelay == 0 {
			apu.frameCycle = 0
			if apu.frameFiveStep {
				apu.clockQuarterFrame()
				apu.clockHalfFrame()
			}
			return
		}
	}

	apu.frameCycle++
	if apu.frameFiveStep {
		switch apu.frameCycle {
		case frameStep1, frameStep3:
			apu.clockQuarterFrame()
		case frameStep2, frameStep5:
			apu.clockQuarterFrame()
			apu.clockHalfFrame()
		case frameFiveLength:
			apu.frameCycle = 0
		}
		return
	}

	switch apu.frameCycle {
	case frameStep1, frameStep3:
		apu.clockQuarterFrame()
	case frameStep2:
		apu.clockQuarterFrame()
		apu.clockHalfFrame()
	case frameStep4 - 1:
		apu.raiseFrameIRQ()
	case frameStep4:
		apu.clockQuarterFrame()
		apu.clockHalfFrame()
		apu.raiseFrameIRQ()
	case frameFourLength:
		apu.raiseFrameIRQ()
		apu.frameCycle = 0
	}
}

func (apu *APU) raiseFrameIRQ() {
	if !apu.frameIRQInhibit {
		apu.frameIRQFlag = true
	}
}

// clockQuarterFrame clocks envelopes and the triangle's linear counter
func (apu *APU) clockQuarterFrame() {
	apu.pulse1.envelope.clock()
	apu.pulse2.envelope.clock()
	apu.noise.envelope.clock()
	apu.triangle.clockLinear()
}

// clockHalfFrame clocks length counters and sweep units
func (apu *APU) clockHalfFrame() {
	apu.pulse1.length.clock()
	apu.pulse2.length.clock()
	apu.triangle.length.clock()
	apu.noise.length.clock()
	apu.pulse1.clockSweep()
	apu.pulse2.clockSweep()
}

func (apu *APU) emitSample() {
	raw := mix(apu.pulse1.output(), apu.pulse2.output(),
		apu.triangle.output(), apu.noise.output(), apu.dmc.output())
	value := clamp(apu.filters.step(raw*2 - 1))
	sample := Sample{Left: value, Right: value}

	if apu.sampleCallback != nil {
		apu.sampleCallback(sample)
		return
	}
	if len(apu.samples) >= apu.sampleRate*maxBufferedSeconds {
		if !apu.droppedSamples {
			logger.Log(logger.TagAPU, "sample buffer full, dropping samples until drained")
			apu.droppedSamples = true
		}
		return
	}
	apu.droppedSamples = false
	apu.samples = append(apu.samples, sample)
}

// WriteRegister writes to an APU register ($4000-$4013, $4015, $4017)
func (apu *APU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x4000:
		apu.pulse1.writeControl(value)
	case 0x4001:
		apu.pulse1.writeSweep(value)
	case 0x4002:
		apu.pulse1.writeTimerLow(value)
	case 0x4003:
		apu.pulse1.writeTimerHigh(value)
	case 0x4004:
		apu.pulse2.writeControl(value)
	case 0x4005:
		apu.pulse2.writeSweep(value)
	case 0x4006:
		apu.pulse2.writeTimerLow(value)
	case 0x4007:
		apu.pulse2.writeTimerHigh(value)
	case 0x4008:
		apu.triangle.writeControl(value)
	case 0x400A:
		apu.triangle.writeTimerLow(value)
	case 0x400B:
		apu.triangle.writeTimerHigh(value)
	case 0x400C:
		apu.noise.writeControl(value)
	case 0x400E:
		apu.noise.writePeriod(value)
	case 0x400F:
		apu.noise.writeLength(value)
	case 0x4010:
		apu.dmc.writeControl(value)
	case 0x4011:
		apu.dmc.writeLevel(value)
	case 0x4012:
		apu.dmc.writeAddress(value)
	case 0x4013:
		apu.dmc.writeLength(value)
	case 0x4015:
		apu.writeChannelEnable(value)
	case 0x4017:
		apu.writeFrameCounter(value)
	}
}

// ReadStatus reads the APU status register ($4015). Bit 5 is open bus and
// is left to the caller.
func (apu *APU) ReadStatus() uint8 {
	var status uint8
	if apu.pulse1.length.active() {
		status |= 0x01
	}
	if apu.pulse2.length.active() {
		status |= 0x02
	}
	if apu.triangle.length.active() {
		status |= 0x04
	}
	if apu.noise.length.active() {
		status |= 0x08
	}
	if apu.dmc.bytesRemaining > 0 {
		status |= 0x10
	}
	if apu.frameIRQFlag {
		status |= 0x40
	}
	if apu.dmc.irqFlag {
		status |= 0x80
	}
	apu.frameIRQFlag = false
	return status
}

func (apu *APU) writeChannelEnable(value uint8) {
	apu.pulse1.length.setEnabled(value&0x01 != 0)
	apu.pulse2.length.setEnabled(value&0x02 != 0)
	apu.triangle.length.setEnabled(value&0x04 != 0)
	apu.noise.length.setEnabled(value&0x08 != 0)
	apu.dmc.setEnabled(value&0x10 != 0)
}

// writeFrameCounter handles $4017. The sequencer restarts 3 cycles after a
// write landing on an even cycle and 4 after an odd one.
func (apu *APU) writeFrameCounter(value uint8) {
	apu.frameFiveStep = value&0x80 != 0
	apu.frameIRQInhibit = value&0x40 != 0
	if apu.frameIRQInhibit {
		apu.frameIRQFlag = false
	}
	if (apu.cycles+1)%2 == 1 {
		apu.frameResetDelay = 4
	} else {
		apu.frameResetDelay = 3
	}
}

// FrameIRQ reports whether the frame sequencer is asserting IRQ.
func (apu *APU) FrameIRQ() bool {
	return apu.frameIRQFlag
}

// DMCIRQ reports whether the DMC is asserting IRQ.
func (apu *APU) DMCIRQ() bool {
	return apu.dmc.irqFlag
}

// ChannelOutputs returns the current DAC input of each channel in the order
// pulse 1, pulse 2, triangle, noise, DMC.
func (apu *APU) ChannelOutputs() [5]uint8 {
	return [5]uint8{
		apu.pulse1.output(),
		apu.pulse2.output(),
		apu.triangle.output(),
		apu.noise.output(),
		apu.dmc.output(),
	}
}

// Cycles returns the number of CPU cycles the APU has run since reset.
func (apu *APU) Cycles() uint64 {
	return apu.cycles
}
