package apu

// Triangle wave sequence
var triangleTable = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// TriangleChannel steps a 32-entry sequence gated by both a length counter
// and a linear counter.
type TriangleChannel struct {
	control      bool
	linearPeriod uint8
	linear       uint8
	linearReload bool

	timerPeriod uint16
	timer       uint16
	step        uint8

	length lengthCounter
}

func (t *TriangleChannel) writeControl(value uint8) {
	t.control = value&0x80 != 0
	t.length.setHalt(t.control)
	t.linearPeriod = value & 0x7F
}

func (t *TriangleChannel) writeTimerLow(value uint8) {
	t.timerPeriod = t.timerPeriod&0x0700 | uint16(value)
}

func (t *TriangleChannel) writeTimerHigh(value uint8) {
	t.timerPeriod = t.timerPeriod&0x00FF | uint16(value&0x07)<<8
	t.length.load(value >> 3)
	t.linearReload = true
}

// clockTimer runs every CPU cycle. The sequencer holds its position while
// either counter is zero so the output freezes instead of dropping to 0.
func (t *TriangleChannel) clockTimer() {
	if t.timer > 0 {
		t.timer--
		return
	}
	t.timer = t.timerPeriod
	if t.length.active() && t.linear > 0 {
		t.step = (t.step + 1) & 31
	}
}

func (t *TriangleChannel) clockLinear() {
	if t.linearReload {
		t.linear = t.linearPeriod
	} else if t.linear > 0 {
		t.linear--
	}
	if !t.control {
		t.linearReload = false
	}
}

func (t *TriangleChannel) output() uint8 {
	return triangleTable[t.step]
}

func (t *TriangleChannel) reset() {
	*t = TriangleChannel{}
}
