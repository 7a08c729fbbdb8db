package apu

// Duty cycle sequences
var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0}, // 12.5%
	{0, 1, 1, 0, 0, 0, 0, 0}, // 25%
	{0, 1, 1, 1, 1, 0, 0, 0}, // 50%
	{1, 0, 0, 1, 1, 1, 1, 1}, // 25% negated
}

// PulseChannel is one of the two square wave generators. The two differ
// only in how the sweep unit negates: channel 1 subtracts one extra.
type PulseChannel struct {
	channel int

	duty        uint8
	dutyPos     uint8
	timerPeriod uint16
	timer       uint16

	envelope envelope
	length   lengthCounter

	sweepEnabled bool
	sweepNegate  bool
	sweepReload  bool
	sweepPeriod  uint8
	sweepShift   uint8
	sweepDivider uint8
}

func newPulse(channel int) PulseChannel {
	return PulseChannel{channel: channel}
}

func (p *PulseChannel) writeControl(value uint8) {
	p.duty = value >> 6
	p.length.setHalt(value&0x20 != 0)
	p.envelope.write(value)
}

func (p *PulseChannel) writeSweep(value uint8) {
	p.sweepEnabled = value&0x80 != 0
	p.sweepPeriod = (value >> 4) & 0x07
	p.sweepNegate = value&0x08 != 0
	p.sweepShift = value & 0x07
	p.sweepReload = true
}

func (p *PulseChannel) writeTimerLow(value uint8) {
	p.timerPeriod = p.timerPeriod&0x0700 | uint16(value)
}

func (p *PulseChannel) writeTimerHigh(value uint8) {
	p.timerPeriod = p.timerPeriod&0x00FF | uint16(value&0x07)<<8
	p.length.load(value >> 3)
	p.dutyPos = 0
	p.envelope.start = true
}

// clockTimer runs once per APU cycle (every other CPU cycle).
func (p *PulseChannel) clockTimer() {
	if p.timer == 0 {
		p.timer = p.timerPeriod
		p.dutyPos = (p.dutyPos + 1) & 7
	} else {
		p.timer--
	}
}

func (p *PulseChannel) targetPeriod() int {
	period := int(p.timerPeriod)
	change := period >> p.sweepShift
	if !p.sweepNegate {
		return period + change
	}
	if p.channel == 1 {
		return period - change - 1
	}
	return period - change
}

// muted is evaluated continuously, whether or not the sweep is enabled.
func (p *PulseChannel) muted() bool {
	return p.timerPeriod < 8 || p.targetPeriod() > 0x7FF
}

func (p *PulseChannel) clockSweep() {
	if p.sweepDivider == 0 && p.sweepEnabled && p.sweepShift > 0 && !p.muted() {
		target := p.targetPeriod()
		if target < 0 {
			target = 0
		}
		p.timerPeriod = uint16(target)
	}
	if p.sweepDivider == 0 || p.sweepReload {
		p.sweepDivider = p.sweepPeriod
		p.sweepReload = false
	} else {
		p.sweepDivider--
	}
}

func (p *PulseChannel) output() uint8 {
	if !p.length.active() || dutyTable[p.duty][p.dutyPos] == 0 || p.muted() {
		return 0
	}
	return p.envelope.output()
}

func (p *PulseChannel) reset() {
	*p = newPulse(p.channel)
}
