// Package cpu implements the 6502 CPU used by the NES (a 2A03 without
// decimal mode).
package cpu

import (
	"fmt"

	"nesemu/internal/logger"
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	pageMask = 0xFF00

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE

	// cycles consumed by the reset and interrupt sequences
	InterruptCycles = 7
)

// IRQSource identifies one device driving the shared IRQ line. The line is
// asserted while any source is asserted.
type IRQSource uint8

const (
	IRQFrameCounter IRQSource = 1 << iota
	IRQDMC
	IRQMapper
)

// MemoryInterface is the CPU's view of the address space.
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU represents the 6502 processor used in the NES
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	// status flags; B exists only on the stack
	C bool
	Z bool
	I bool
	D bool
	V bool
	N bool

	memory MemoryInterface
	cycles uint64

	nmiPending bool
	irqLines   IRQSource

	// value of I sampled by the previous instruction's interrupt poll
	pollI bool

	// IRQ line as sampled on an instruction's penultimate cycle
	irqPolled    bool
	irqPollValid bool

	jammed bool
}

// State is a snapshot of the programmer-visible registers.
type State struct {
	A, X, Y uint8
	P       uint8
	SP      uint8
	PC      uint16
	Cycles  uint64
}

func (s State) String() string {
	return fmt.Sprintf("PC:%04X A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		s.PC, s.A, s.X, s.Y, s.P, s.SP, s.Cycles)
}

// New creates a CPU in its power-up state. Reset must be called before
// the first instruction so that PC is loaded from the reset vector.
func New(memory MemoryInterface) *CPU {
	cpu := &CPU{memory: memory}
	cpu.PowerOn()
	return cpu
}

// PowerOn clears the registers to their power-up values.
func (cpu *CPU) PowerOn() {
	cpu.A, cpu.X, cpu.Y = 0, 0, 0
	cpu.SP = 0x00
	cpu.SetStatusByte(iFlagMask)
	cpu.cycles = 0
	cpu.nmiPending = false
	cpu.irqLines = 0
	cpu.irqPollValid = false
	cpu.jammed = false
}

// Reset runs the reset sequence. The sequence performs three suppressed
// stack pushes, which leave SP at $FD from power-up; repeated resets land
// on the same state.
func (cpu *CPU) Reset() {
	cpu.SP = 0xFD
	cpu.I = true
	cpu.pollI = true
	cpu.irqPollValid = false
	cpu.nmiPending = false
	cpu.jammed = false
	cpu.PC = cpu.read16(resetVector)
	cpu.cycles = InterruptCycles
}

// Cycles returns the number of CPU cycles since reset.
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// AddCycles accounts for cycles in which the CPU was halted by DMA.
func (cpu *CPU) AddCycles(n uint64) {
	cpu.cycles += n
}

// State returns a register snapshot.
func (cpu *CPU) State() State {
	return State{
		A: cpu.A, X: cpu.X, Y: cpu.Y,
		P:      cpu.GetStatusByte(),
		SP:     cpu.SP,
		PC:     cpu.PC,
		Cycles: cpu.cycles,
	}
}

// Step services a pending interrupt, if any, and then executes one
// instruction. It returns the number of cycles consumed.
func (cpu *CPU) Step() uint64 {
	return cpu.ServiceInterrupt() + cpu.Execute()
}

// ServiceInterrupt runs the NMI or IRQ entry sequence when one is due at
// this instruction boundary. It returns the cycles used, zero if nothing
// was taken. The IRQ line is the one latched by PollIRQ during the previous
// instruction, or the live line when nothing was latched.
func (cpu *CPU) ServiceInterrupt() uint64 {
	irq := cpu.irqLines != 0
	if cpu.irqPollValid {
		irq = cpu.irqPolled
		cpu.irqPollValid = false
	}

	switch {
	case cpu.nmiPending:
		cpu.nmiPending = false
		cpu.interrupt(nmiVector)
	case irq && !cpu.pollI:
		cpu.interrupt(irqVector)
	default:
		return 0
	}
	cpu.pollI = true
	return InterruptCycles
}

// PollIRQ samples the IRQ line. The machine calls it before the last cycle
// of each instruction, so a source asserted on that cycle is seen one
// instruction later.
func (cpu *CPU) PollIRQ() {
	cpu.irqPolled = cpu.irqLines != 0
	cpu.irqPollValid = true
}

func (cpu *CPU) interrupt(vector uint16) {
	cpu.read(cpu.PC)
	cpu.read(cpu.PC)
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.GetStatusByte() &^ bFlagMask)
	cpu.I = true
	cpu.PC = cpu.read16(vector)
	cpu.cycles += InterruptCycles
	cpu.jammed = false
}

// Execute runs the instruction at PC and returns the cycles it took.
func (cpu *CPU) Execute() uint64 {
	start := cpu.cycles
	opcode := cpu.read(cpu.PC)
	inst := &instructions[opcode]

	if inst.Op == OpJAM && !cpu.jammed {
		cpu.jammed = true
		logger.Logf(logger.TagCPU, "JAM opcode $%02X at $%04X executed as NOP", opcode, cpu.PC)
	}

	iBefore := cpu.I
	address, pageCrossed := cpu.operandAddress(inst)
	cpu.PC += uint16(inst.Bytes)
	cpu.cycles += uint64(inst.Cycles)
	if pageCrossed {
		cpu.cycles += uint64(inst.PageCycles)
	}

	cpu.execute(inst, address, pageCrossed)

	// CLI, SEI and PLP change I after the poll has happened
	switch inst.Op {
	case OpCLI, OpSEI, OpPLP:
		cpu.pollI = iBefore
	default:
		cpu.pollI = cpu.I
	}
	return cpu.cycles - start
}

// operandAddress resolves the effective address for the instruction at PC,
// performing the dummy reads the addressing mode makes along the way.
func (cpu *CPU) operandAddress(inst *Instruction) (uint16, bool) {
	pc := cpu.PC
	switch inst.Mode {
	case Implied, Accumulator:
		cpu.read(pc + 1)
		return 0, false
	case Immediate:
		return pc + 1, false
	case ZeroPage:
		return uint16(cpu.read(pc + 1)), false
	case ZeroPageX:
		base := cpu.read(pc + 1)
		cpu.read(uint16(base))
		return uint16(base + cpu.X), false
	case ZeroPageY:
		base := cpu.read(pc + 1)
		cpu.read(uint16(base))
		return uint16(base + cpu.Y), false
	case Relative:
		offset := cpu.read(pc + 1)
		next := pc + 2
		return next + uint16(int8(offset)), false
	case Absolute:
		return cpu.read16(pc + 1), false
	case AbsoluteX:
		return cpu.indexed(inst, cpu.read16(pc+1), cpu.X)
	case AbsoluteY:
		return cpu.indexed(inst, cpu.read16(pc+1), cpu.Y)
	case Indirect:
		return cpu.read16Wrapped(cpu.read16(pc + 1)), false
	case IndexedIndirect:
		pointer := cpu.read(pc + 1)
		cpu.read(uint16(pointer))
		return cpu.read16ZeroPage(pointer + cpu.X), false
	case IndirectIndexed:
		return cpu.indexed(inst, cpu.read16ZeroPage(cpu.read(pc+1)), cpu.Y)
	}
	return 0, false
}

// indexed adds an index to a base address. The low byte is added first, so
// the bus sees a read of the unfixed address whenever the carry has to be
// propagated, and always for stores and read-modify-write instructions.
func (cpu *CPU) indexed(inst *Instruction, base uint16, index uint8) (uint16, bool) {
	address := base + uint16(index)
	crossed := pagesDiffer(base, address)
	if crossed || inst.PageCycles == 0 {
		cpu.read(base&pageMask | address&0x00FF)
	}
	return address, crossed
}

func pagesDiffer(a, b uint16) bool {
	return a&pageMask != b&pageMask
}

func (cpu *CPU) read(address uint16) uint8 {
	return cpu.memory.Read(address)
}

func (cpu *CPU) write(address uint16, value uint8) {
	cpu.memory.Write(address, value)
}

func (cpu *CPU) read16(address uint16) uint16 {
	lo := uint16(cpu.read(address))
	hi := uint16(cpu.read(address + 1))
	return hi<<8 | lo
}

// read16Wrapped reproduces the JMP ($xxFF) bug: the high byte is fetched
// from the start of the same page.
func (cpu *CPU) read16Wrapped(address uint16) uint16 {
	lo := uint16(cpu.read(address))
	hi := uint16(cpu.read(address&pageMask | uint16(uint8(address)+1)))
	return hi<<8 | lo
}

func (cpu *CPU) read16ZeroPage(address uint8) uint16 {
	lo := uint16(cpu.read(uint16(address)))
	hi := uint16(cpu.read(uint16(address + 1)))
	return hi<<8 | lo
}

func (cpu *CPU) push(value uint8) {
	cpu.write(stackBase|uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.read(stackBase | uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value))
}

func (cpu *CPU) popWord() uint16 {
	lo := uint16(cpu.pop())
	hi := uint16(cpu.pop())
	return hi<<8 | lo
}

func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = value&0x80 != 0
}

// TriggerNMI latches an NMI; it is taken at the next instruction boundary.
func (cpu *CPU) TriggerNMI() {
	cpu.nmiPending = true
}

// ClearNMI withdraws an NMI that has not yet been taken.
func (cpu *CPU) ClearNMI() {
	cpu.nmiPending = false
}

// NMIPending reports whether an NMI is latched.
func (cpu *CPU) NMIPending() bool {
	return cpu.nmiPending
}

// SetIRQ asserts or releases one source of the level-triggered IRQ line.
func (cpu *CPU) SetIRQ(source IRQSource, asserted bool) {
	if asserted {
		cpu.irqLines |= source
	} else {
		cpu.irqLines &^= source
	}
}

// Jammed reports whether a JAM opcode has run since the last reset or
// interrupt.
func (cpu *CPU) Jammed() bool {
	return cpu.jammed
}

// IRQLine reports whether any IRQ source is asserted.
func (cpu *CPU) IRQLine() bool {
	return cpu.irqLines != 0
}

// GetStatusByte returns P as seen by software: bit 5 always set, B clear.
func (cpu *CPU) GetStatusByte() uint8 {
	status := uint8(unusedMask)
	if cpu.N {
		status |= nFlagMask
	}
	if cpu.V {
		status |= vFlagMask
	}
	if cpu.D {
		status |= dFlagMask
	}
	if cpu.I {
		status |= iFlagMask
	}
	if cpu.Z {
		status |= zFlagMask
	}
	if cpu.C {
		status |= cFlagMask
	}
	return status
}

// SetStatusByte loads the flags from a byte, ignoring bits 4 and 5.
func (cpu *CPU) SetStatusByte(status uint8) {
	cpu.N = status&nFlagMask != 0
	cpu.V = status&vFlagMask != 0
	cpu.D = status&dFlagMask != 0
	cpu.I = status&iFlagMask != 0
	cpu.Z = status&zFlagMask != 0
	cpu.C = status&cFlagMask != 0
}
