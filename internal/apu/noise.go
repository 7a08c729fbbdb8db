package apu

// Noise period lookup table, in CPU cycles
var noisePeriodTable = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068,
}

// NoiseChannel outputs the envelope volume gated by a 15-bit LFSR.
type NoiseChannel struct {
	mode        bool
	timerPeriod uint16
	timer       uint16
	shift       uint16

	envelope envelope
	length   lengthCounter
}

func newNoise() NoiseChannel {
	return NoiseChannel{shift: 1, timerPeriod: noisePeriodTable[0]}
}

func (n *NoiseChannel) writeControl(value uint8) {
	n.length.setHalt(value&0x20 != 0)
	n.envelope.write(value)
}

func (n *NoiseChannel) writePeriod(value uint8) {
	n.mode = value&0x80 != 0
	n.timerPeriod = noisePeriodTable[value&0x0F]
}

func (n *NoiseChannel) writeLength(value uint8) {
	n.length.load(value >> 3)
	n.envelope.start = true
}

func (n *NoiseChannel) clockTimer() {
	if n.timer > 0 {
		n.timer--
		return
	}
	n.timer = n.timerPeriod - 1
	n.clockShift()
}

// clockShift advances the LFSR. Mode 1 taps bit 6 for the short
// 93-step sequence.
func (n *NoiseChannel) clockShift() {
	tap := uint(1)
	if n.mode {
		tap = 6
	}
	feedback := (n.shift ^ n.shift>>tap) & 1
	n.shift = n.shift>>1 | feedback<<14
}

func (n *NoiseChannel) output() uint8 {
	if !n.length.active() || n.shift&1 != 0 {
		return 0
	}
	return n.envelope.output()
}

func (n *NoiseChannel) reset() {
	*n = newNoise()
}
