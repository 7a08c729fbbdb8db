package apu

// DMC rate lookup table, in CPU cycles
var dmcRateTable = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54,
}

// DMCChannel plays 1-bit delta encoded samples fetched from CPU memory.
type DMCChannel struct {
	irqEnabled bool
	loop       bool
	irqFlag    bool

	timerPeriod uint16
	timer       uint16
	level       uint8

	sampleAddress  uint16
	sampleLength   uint16
	currentAddress uint16
	bytesRemaining uint16

	buffer      uint8
	bufferEmpty bool

	shift         uint8
	bitsRemaining uint8
	silence       bool

	// reader performs the DMA fetch; the caller is responsible for stalling
	// the CPU
	reader func(address uint16) uint8
}

func newDMC() DMCChannel {
	return DMCChannel{
		timerPeriod:   dmcRateTable[0],
		bufferEmpty:   true,
		bitsRemaining: 8,
		silence:       true,
		sampleAddress: 0xC000,
		sampleLength:  1,
	}
}

func (d *DMCChannel) writeControl(value uint8) {
	d.irqEnabled = value&0x80 != 0
	if !d.irqEnabled {
		d.irqFlag = false
	}
	d.loop = value&0x40 != 0
	d.timerPeriod = dmcRateTable[value&0x0F]
}

func (d *DMCChannel) writeLevel(value uint8) {
	d.level = value & 0x7F
}

func (d *DMCChannel) writeAddress(value uint8) {
	d.sampleAddress = 0xC000 | uint16(value)<<6
}

func (d *DMCChannel) writeLength(value uint8) {
	d.sampleLength = uint16(value)<<4 | 1
}

func (d *DMCChannel) setEnabled(enabled bool) {
	d.irqFlag = false
	if !enabled {
		d.bytesRemaining = 0
		return
	}
	if d.bytesRemaining == 0 {
		d.restart()
	}
}

func (d *DMCChannel) restart() {
	d.currentAddress = d.sampleAddress
	d.bytesRemaining = d.sampleLength
}

// clockTimer runs every CPU cycle.
func (d *DMCChannel) clockTimer() {
	if d.timer > 0 {
		d.timer--
	} else {
		d.timer = d.timerPeriod - 1
		d.clockOutput()
	}
	d.fillBuffer()
}

func (d *DMCChannel) clockOutput() {
	if !d.silence {
		if d.shift&1 != 0 {
			if d.level <= 125 {
				d.level += 2
			}
		} else if d.level >= 2 {
			d.level -= 2
		}
	}
	d.shift >>= 1

	d.bitsRemaining--
	if d.bitsRemaining > 0 {
		return
	}
	d.bitsRemaining = 8
	if d.bufferEmpty {
		d.silence = true
		return
	}
	d.silence = false
	d.shift = d.buffer
	d.bufferEmpty = true
}

func (d *DMCChannel) fillBuffer() {
	if !d.bufferEmpty || d.bytesRemaining == 0 {
		return
	}
	var value uint8
	if d.reader != nil {
		value = d.reader(d.currentAddress)
	}
	d.buffer = value
	d.bufferEmpty = false

	d.currentAddress++
	if d.currentAddress == 0 {
		d.currentAddress = 0x8000
	}
	d.bytesRemaining--
	if d.bytesRemaining > 0 {
		return
	}
	if d.loop {
		d.restart()
	} else if d.irqEnabled {
		d.irqFlag = true
	}
}

func (d *DMCChannel) output() uint8 {
	return d.level
}

func (d *DMCChannel) reset() {
	reader := d.reader
	*d = newDMC()
	d.reader = reader
}
