package cpu

// Snapshot is the complete CPU state, including the interrupt latches that
// State leaves out.
type Snapshot struct {
	A      uint8  `json:"a"`
	X      uint8  `json:"x"`
	Y      uint8  `json:"y"`
	P      uint8  `json:"p"`
	SP     uint8  `json:"sp"`
	PC     uint16 `json:"pc"`
	Cycles uint64 `json:"cycles"`

	NMIPending   bool      `json:"nmi_pending"`
	IRQLines     IRQSource `json:"irq_lines"`
	PollI        bool      `json:"poll_i"`
	IRQPolled    bool      `json:"irq_polled"`
	IRQPollValid bool      `json:"irq_poll_valid"`
	Jammed       bool      `json:"jammed"`
}

// Snapshot captures the CPU state.
func (cpu *CPU) Snapshot() Snapshot {
	return Snapshot{
		A: cpu.A, X: cpu.X, Y: cpu.Y,
		P:            cpu.GetStatusByte(),
		SP:           cpu.SP,
		PC:           cpu.PC,
		Cycles:       cpu.cycles,
		NMIPending:   cpu.nmiPending,
		IRQLines:     cpu.irqLines,
		PollI:        cpu.pollI,
		IRQPolled:    cpu.irqPolled,
		IRQPollValid: cpu.irqPollValid,
		Jammed:       cpu.jammed,
	}
}

// Restore loads a snapshot taken by Snapshot.
func (cpu *CPU) Restore(s Snapshot) {
	cpu.A, cpu.X, cpu.Y = s.A, s.X, s.Y
	cpu.SetStatusByte(s.P)
	cpu.SP = s.SP
	cpu.PC = s.PC
	cpu.cycles = s.Cycles
	cpu.nmiPending = s.NMIPending
	cpu.irqLines = s.IRQLines
	cpu.pollI = s.PollI
	cpu.irqPolled = s.IRQPolled
	cpu.irqPollValid = s.IRQPollValid
	cpu.jammed = s.Jammed
}
