package apu

// Length counter lookup table
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

// lengthCounter silences a channel after a programmed number of half
// frames. Reloads and halt changes are staged and applied at the end of the
// CPU cycle, so a reload written on the same cycle as a half-frame clock is
// dropped when that clock decremented a non-zero counter.
type lengthCounter struct {
	enabled       bool
	halt          bool
	newHalt       bool
	counter       uint8
	reloadValue   uint8
	previousValue uint8
}

func (l *lengthCounter) load(index uint8) {
	if !l.enabled {
		return
	}
	l.reloadValue = lengthTable[index&0x1F]
	l.previousValue = l.counter
}

func (l *lengthCounter) setHalt(halt bool) {
	l.newHalt = halt
}

func (l *lengthCounter) setEnabled(enabled bool) {
	if !enabled {
		l.counter = 0
	}
	l.enabled = enabled
}

func (l *lengthCounter) clock() {
	if l.counter > 0 && !l.halt {
		l.counter--
	}
}

// endCycle commits the staged reload and halt flag.
func (l *lengthCounter) endCycle() {
	if l.reloadValue != 0 {
		if l.counter == l.previousValue {
			l.counter = l.reloadValue
		}
		l.reloadValue = 0
	}
	l.halt = l.newHalt
}

func (l *lengthCounter) active() bool {
	return l.counter > 0
}

func (l *lengthCounter) reset() {
	*l = lengthCounter{}
}

// envelope produces a decaying volume, or a constant one.
type envelope struct {
	start    bool
	loop     bool
	constant bool
	volume   uint8
	divider  uint8
	decay    uint8
}

func (e *envelope) write(value uint8) {
	e.loop = value&0x20 != 0
	e.constant = value&0x10 != 0
	e.volume = value & 0x0F
}

func (e *envelope) clock() {
	if e.start {
		e.start = false
		e.decay = 15
		e.divider = e.volume
		return
	}
	if e.divider > 0 {
		e.divider--
		return
	}
	e.divider = e.volume
	if e.decay > 0 {
		e.decay--
	} else if e.loop {
		e.decay = 15
	}
}

func (e *envelope) output() uint8 {
	if e.constant {
		return e.volume
	}
	return e.decay
}
