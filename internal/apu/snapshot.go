package apu

// Snapshot is the channel and frame sequencer state of the APU. Output
// filters and buffered samples are not part of it.
type Snapshot struct {
	Pulse1   PulseSnapshot    `json:"pulse1"`
	Pulse2   PulseSnapshot    `json:"pulse2"`
	Triangle TriangleSnapshot `json:"triangle"`
	Noise    NoiseSnapshot    `json:"noise"`
	DMC      DMCSnapshot      `json:"dmc"`

	FrameCycle      int    `json:"frame_cycle"`
	FrameFiveStep   bool   `json:"frame_five_step"`
	FrameIRQInhibit bool   `json:"frame_irq_inhibit"`
	FrameIRQ        bool   `json:"frame_irq"`
	FrameResetDelay int    `json:"frame_reset_delay"`
	Cycles          uint64 `json:"cycles"`
}

type EnvelopeSnapshot struct {
	Start    bool  `json:"start"`
	Loop     bool  `json:"loop"`
	Constant bool  `json:"constant"`
	Volume   uint8 `json:"volume"`
	Divider  uint8 `json:"divider"`
	Decay    uint8 `json:"decay"`
}

type LengthSnapshot struct {
	Enabled       bool  `json:"enabled"`
	Halt          bool  `json:"halt"`
	NewHalt       bool  `json:"new_halt"`
	Counter       uint8 `json:"counter"`
	ReloadValue   uint8 `json:"reload_value"`
	PreviousValue uint8 `json:"previous_value"`
}

type PulseSnapshot struct {
	Duty         uint8            `json:"duty"`
	DutyPos      uint8            `json:"duty_pos"`
	TimerPeriod  uint16           `json:"timer_period"`
	Timer        uint16           `json:"timer"`
	Envelope     EnvelopeSnapshot `json:"envelope"`
	Length       LengthSnapshot   `json:"length"`
	SweepEnabled bool             `json:"sweep_enabled"`
	SweepNegate  bool             `json:"sweep_negate"`
	SweepReload  bool             `json:"sweep_reload"`
	SweepPeriod  uint8            `json:"sweep_period"`
	SweepShift   uint8            `json:"sweep_shift"`
	SweepDivider uint8            `json:"sweep_divider"`
}

type TriangleSnapshot struct {
	Control      bool           `json:"control"`
	LinearPeriod uint8          `json:"linear_period"`
	Linear       uint8          `json:"linear"`
	LinearReload bool           `json:"linear_reload"`
	TimerPeriod  uint16         `json:"timer_period"`
	Timer        uint16         `json:"timer"`
	Step         uint8          `json:"step"`
	Length       LengthSnapshot `json:"length"`
}

type NoiseSnapshot struct {
	Mode        bool             `json:"mode"`
	TimerPeriod uint16           `json:"timer_period"`
	Timer       uint16           `json:"timer"`
	Shift       uint16           `json:"shift"`
	Envelope    EnvelopeSnapshot `json:"envelope"`
	Length      LengthSnapshot   `json:"length"`
}

type DMCSnapshot struct {
	IRQEnabled     bool   `json:"irq_enabled"`
	Loop           bool   `json:"loop"`
	IRQ            bool   `json:"irq"`
	TimerPeriod    uint16 `json:"timer_period"`
	Timer          uint16 `json:"timer"`
	Level          uint8  `json:"level"`
	SampleAddress  uint16 `json:"sample_address"`
	SampleLength   uint16 `json:"sample_length"`
	CurrentAddress uint16 `json:"current_address"`
	BytesRemaining uint16 `json:"bytes_remaining"`
	Buffer         uint8  `json:"buffer"`
	BufferEmpty    bool   `json:"buffer_empty"`
	Shift          uint8  `json:"shift"`
	BitsRemaining  uint8  `json:"bits_remaining"`
	Silence        bool   `json:"silence"`
}

// Snapshot captures the APU state.
func (apu *APU) Snapshot() Snapshot {
	return Snapshot{
		Pulse1:          apu.pulse1.snapshot(),
		Pulse2:          apu.pulse2.snapshot(),
		Triangle:        apu.triangle.snapshot(),
		Noise:           apu.noise.snapshot(),
		DMC:             apu.dmc.snapshot(),
		FrameCycle:      apu.frameCycle,
		FrameFiveStep:   apu.frameFiveStep,
		FrameIRQInhibit: apu.frameIRQInhibit,
		FrameIRQ:        apu.frameIRQFlag,
		FrameResetDelay: apu.frameResetDelay,
		Cycles:          apu.cycles,
	}
}

// Restore loads a snapshot taken by Snapshot. The output filters restart
// from silence and buffered samples are dropped.
func (apu *APU) Restore(s Snapshot) {
	apu.pulse1.restore(s.Pulse1)
	apu.pulse2.restore(s.Pulse2)
	apu.triangle.restore(s.Triangle)
	apu.noise.restore(s.Noise)
	apu.dmc.restore(s.DMC)

	apu.frameCycle = s.FrameCycle
	apu.frameFiveStep = s.FrameFiveStep
	apu.frameIRQInhibit = s.FrameIRQInhibit
	apu.frameIRQFlag = s.FrameIRQ
	apu.frameResetDelay = s.FrameResetDelay
	apu.cycles = s.Cycles

	apu.cycleAccumulator = 0
	apu.filters = newFilterChain(apu.sampleRate)
	apu.samples = apu.samples[:0]
}

func (e *envelope) snapshot() EnvelopeSnapshot {
	return EnvelopeSnapshot{e.start, e.loop, e.constant, e.volume, e.divider, e.decay}
}

func (e *envelope) restore(s EnvelopeSnapshot) {
	*e = envelope{s.Start, s.Loop, s.Constant, s.Volume, s.Divider, s.Decay}
}

func (l *lengthCounter) snapshot() LengthSnapshot {
	return LengthSnapshot{l.enabled, l.halt, l.newHalt, l.counter, l.reloadValue, l.previousValue}
}

func (l *lengthCounter) restore(s LengthSnapshot) {
	*l = lengthCounter{s.Enabled, s.Halt, s.NewHalt, s.Counter, s.ReloadValue, s.PreviousValue}
}

func (p *PulseChannel) snapshot() PulseSnapshot {
	return PulseSnapshot{
		Duty: p.duty, DutyPos: p.dutyPos,
		TimerPeriod: p.timerPeriod, Timer: p.timer,
		Envelope:     p.envelope.snapshot(),
		Length:       p.length.snapshot(),
		SweepEnabled: p.sweepEnabled, SweepNegate: p.sweepNegate, SweepReload: p.sweepReload,
		SweepPeriod: p.sweepPeriod, SweepShift: p.sweepShift, SweepDivider: p.sweepDivider,
	}
}

func (p *PulseChannel) restore(s PulseSnapshot) {
	p.duty, p.dutyPos = s.Duty, s.DutyPos
	p.timerPeriod, p.timer = s.TimerPeriod, s.Timer
	p.envelope.restore(s.Envelope)
	p.length.restore(s.Length)
	p.sweepEnabled, p.sweepNegate, p.sweepReload = s.SweepEnabled, s.SweepNegate, s.SweepReload
	p.sweepPeriod, p.sweepShift, p.sweepDivider = s.SweepPeriod, s.SweepShift, s.SweepDivider
}

func (t *TriangleChannel) snapshot() TriangleSnapshot {
	return TriangleSnapshot{
		Control: t.control, LinearPeriod: t.linearPeriod,
		Linear: t.linear, LinearReload: t.linearReload,
		TimerPeriod: t.timerPeriod, Timer: t.timer, Step: t.step,
		Length: t.length.snapshot(),
	}
}

func (t *TriangleChannel) restore(s TriangleSnapshot) {
	t.control, t.linearPeriod = s.Control, s.LinearPeriod
	t.linear, t.linearReload = s.Linear, s.LinearReload
	t.timerPeriod, t.timer, t.step = s.TimerPeriod, s.Timer, s.Step
	t.length.restore(s.Length)
}

func (n *NoiseChannel) snapshot() NoiseSnapshot {
	return NoiseSnapshot{
		Mode: n.mode, TimerPeriod: n.timerPeriod, Timer: n.timer, Shift: n.shift,
		Envelope: n.envelope.snapshot(),
		Length:   n.length.snapshot(),
	}
}

func (n *NoiseChannel) restore(s NoiseSnapshot) {
	n.mode, n.timerPeriod, n.timer, n.shift = s.Mode, s.TimerPeriod, s.Timer, s.Shift
	n.envelope.restore(s.Envelope)
	n.length.restore(s.Length)
}

func (d *DMCChannel) snapshot() DMCSnapshot {
	return DMCSnapshot{
		IRQEnabled: d.irqEnabled, Loop: d.loop, IRQ: d.irqFlag,
		TimerPeriod: d.timerPeriod, Timer: d.timer, Level: d.level,
		SampleAddress: d.sampleAddress, SampleLength: d.sampleLength,
		CurrentAddress: d.currentAddress, BytesRemaining: d.bytesRemaining,
		Buffer: d.buffer, BufferEmpty: d.bufferEmpty,
		Shift: d.shift, BitsRemaining: d.bitsRemaining, Silence: d.silence,
	}
}

func (d *DMCChannel) restore(s DMCSnapshot) {
	d.irqEnabled, d.loop, d.irqFlag = s.IRQEnabled, s.Loop, s.IRQ
	d.timerPeriod, d.timer, d.level = s.TimerPeriod, s.Timer, s.Level
	d.sampleAddress, d.sampleLength = s.SampleAddress, s.SampleLength
	d.currentAddress, d.bytesRemaining = s.CurrentAddress, s.BytesRemaining
	d.buffer, d.bufferEmpty = s.Buffer, s.BufferEmpty
	d.shift, d.bitsRemaining, d.silence = s.Shift, s.BitsRemaining, s.Silence
}
