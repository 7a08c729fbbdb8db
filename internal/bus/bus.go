// Package bus implements the system bus for communication between NES
// components and the machine that steps them in lockstep.
package bus

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"nesemu/internal/apu"
	"nesemu/internal/cartridge"
	"nesemu/internal/cpu"
	"nesemu/internal/input"
	"nesemu/internal/logger"
	"nesemu/internal/memory"
	"nesemu/internal/ppu"
)

// Errors returned by New.
var (
	ErrNoCartridge        = errors.New("no cartridge inserted")
	ErrInvalidResetVector = errors.New("reset vector points into register space")
)

const (
	// PPU dots per CPU cycle (NTSC)
	dotsPerCycle = 3

	oamDMACycles = 513
	dmcDMACycles = 4
)

// Bus connects all NES components together
type Bus struct {
	// Core components
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState

	cart *cartridge.Cartridge
	vram *memory.PPUMemory

	// CPU cycles the PPU and APU have been clocked through
	cycles uint64

	// catch-up state for the instruction being executed
	executing bool
	accesses  uint64
	synced    uint64

	// DMA
	oamDMAPending bool
	oamDMAPage    uint8
	oamDMAActive  bool
	dmcStall      uint64

	breakpoints map[uint16]bool
	resume      bool

	trace io.Writer
}

// cpuPort is the CPU's view of the bus. It brings the PPU and APU up to
// the current cycle before any register access so that reads and writes
// land on the right dot.
type cpuPort struct {
	bus *Bus
}

func (p cpuPort) Read(address uint16) uint8 {
	p.bus.beforeAccess(address, false)
	value := p.bus.Memory.Read(address)
	if address == 0x4015 {
		// the read acknowledges the frame interrupt
		p.bus.updateIRQ()
	}
	return value
}

func (p cpuPort) Write(address uint16, value uint8) {
	p.bus.beforeAccess(address, true)
	if address >= 0x8000 {
		p.bus.cart.SetCPUCycle(p.bus.cycles)
	}
	p.bus.Memory.Write(address, value)
	if address >= 0x4000 {
		// APU and mapper writes can acknowledge or disable an interrupt
		p.bus.updateIRQ()
	}
}

// New creates a machine around a cartridge, powers it on and resets it.
func New(cart *cartridge.Cartridge) (*Bus, error) {
	if cart == nil {
		return nil, ErrNoCartridge
	}

	bus := &Bus{
		PPU:         ppu.New(),
		APU:         apu.New(),
		Input:       input.NewInputState(),
		cart:        cart,
		breakpoints: make(map[uint16]bool),
	}

	bus.Memory = memory.New(bus.PPU, bus.APU, cart)
	bus.Memory.SetInputSystem(bus.Input)
	bus.Memory.SetDMACallback(bus.requestOAMDMA)

	vector := uint16(bus.Memory.Peek(0xFFFC)) | uint16(bus.Memory.Peek(0xFFFD))<<8
	if vector >= 0x2000 && vector < 0x6000 {
		return nil, fmt.Errorf("%w: $%04X", ErrInvalidResetVector, vector)
	}

	bus.vram = memory.NewPPUMemory(cart)
	bus.PPU.SetMemory(bus.vram)
	bus.CPU = cpu.New(cpuPort{bus: bus})

	// Set up callbacks
	bus.PPU.SetNMICallback(bus.CPU.TriggerNMI)
	bus.PPU.SetNMICancelCallback(bus.CPU.ClearNMI)
	bus.PPU.SetA12Callback(cart.OnA12Rise)
	bus.APU.SetDMCReader(bus.dmcRead)

	bus.Reset()
	return bus, nil
}

// Reset resets all components to their post-reset state. Calling it twice
// in a row leaves the machine in the same state as calling it once.
func (b *Bus) Reset() {
	b.cart.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	b.CPU.Reset()

	b.cycles = 0
	b.executing = false
	b.oamDMAPending = false
	b.oamDMAActive = false
	b.dmcStall = 0
	b.resume = false

	// the reset sequence takes as long as an interrupt
	b.clock(cpu.InterruptCycles)
	logger.Logf(logger.TagBus, "reset, PC=$%04X", b.CPU.PC)
}

// StepInstruction services a pending interrupt or executes one instruction,
// then runs any DMA the instruction started. JAM opcodes run as two-cycle
// no-ops, so execution can always continue and the result is always true;
// CPU.Jammed reports that one was hit.
func (b *Bus) StepInstruction() bool {
	b.resume = false

	if cycles := b.CPU.ServiceInterrupt(); cycles > 0 {
		b.clock(cycles)
	}

	if b.trace != nil {
		b.writeTrace()
	}

	b.executing = true
	b.accesses = 0
	b.synced = 0
	cycles := b.CPU.Execute()
	b.executing = false
	if cycles > b.synced {
		// the IRQ line is sampled before the final cycle
		b.clock(cycles - b.synced - 1)
		b.CPU.PollIRQ()
		b.clock(1)
	}

	b.runDMA()
	return true
}

// StepFrame runs instructions until the PPU completes a frame, or the
// current scanline when singleScanline is set. It stops early, before
// executing it, at an instruction whose address is a breakpoint and
// returns true; the next call executes that instruction.
func (b *Bus) StepFrame(singleScanline bool) bool {
	frame := b.PPU.GetFrameCount()
	scanline := b.PPU.GetScanline()
	resume := b.resume

	for {
		if !resume && b.breakpoints[b.CPU.PC] {
			b.resume = true
			return true
		}
		resume = false

		b.StepInstruction()

		if b.PPU.GetFrameCount() != frame {
			return false
		}
		if singleScanline && b.PPU.GetScanline() != scanline {
			return false
		}
	}
}

// beforeAccess catches the PPU and APU up to the cycle of the CPU access
// about to happen. Every CPU cycle is one bus access. Only accesses that
// can observe or change PPU, APU or mapper state need the catch-up: RAM and
// cartridge reads are skipped, cartridge writes are not since they may
// reach mapper registers.
func (b *Bus) beforeAccess(address uint16, write bool) {
	if !b.executing {
		return
	}
	b.accesses++
	if address < 0x2000 || (address >= 0x4020 && !write) {
		return
	}
	if due := b.accesses - 1; due > b.synced {
		b.clock(due - b.synced)
		b.synced = due
	}
}

// clock advances the PPU and APU by a number of CPU cycles.
func (b *Bus) clock(cycles uint64) {
	for i := uint64(0); i < cycles; i++ {
		for d := 0; d < dotsPerCycle; d++ {
			b.PPU.Step()
		}
		b.APU.Step()
		b.cycles++
		b.updateIRQ()
	}
}

// updateIRQ copies the interrupt outputs of the APU and cartridge onto the
// CPU's IRQ line.
func (b *Bus) updateIRQ() {
	b.CPU.SetIRQ(cpu.IRQFrameCounter, b.APU.FrameIRQ())
	b.CPU.SetIRQ(cpu.IRQDMC, b.APU.DMCIRQ())
	b.CPU.SetIRQ(cpu.IRQMapper, b.cart.IRQ())
}

// stall clocks the PPU and APU while the CPU is halted.
func (b *Bus) stall(cycles uint64) {
	b.CPU.AddCycles(cycles)
	b.clock(cycles)
}

func (b *Bus) requestOAMDMA(page uint8) {
	b.oamDMAPending = true
	b.oamDMAPage = page
}

// runDMA performs an OAM transfer requested by the last instruction and
// any DMC fetch stalls, in the order they occur.
func (b *Bus) runDMA() {
	if b.oamDMAPending {
		b.oamDMAPending = false
		b.oamDMA(b.oamDMAPage)
	}
	for b.dmcStall > 0 {
		cycles := b.dmcStall
		b.dmcStall = 0
		b.stall(cycles)
	}
}

// oamDMA copies a page into OAM through $2004. It takes 513 cycles, plus
// one to align when it starts on an odd cycle.
func (b *Bus) oamDMA(page uint8) {
	b.oamDMAActive = true
	defer func() { b.oamDMAActive = false }()

	align := uint64(oamDMACycles - 512)
	if b.CPU.Cycles()%2 == 1 {
		align++
	}
	b.stall(align)

	base := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		value := b.Memory.Read(base + i)
		b.stall(1)
		b.PPU.WriteRegister(0x2004, value)
		b.stall(1)
	}
}

// dmcRead is the DMC's memory reader. The fetch halts the CPU for up to
// four cycles; fewer when it overlaps an OAM transfer.
func (b *Bus) dmcRead(address uint16) uint8 {
	switch {
	case b.oamDMAActive:
		b.dmcStall += 2
	case b.cycles%2 == 0:
		b.dmcStall += dmcDMACycles - 1
	default:
		b.dmcStall += dmcDMACycles
	}
	return b.Memory.Read(address)
}

// SetTraceWriter writes one trace line per executed instruction to w. A
// nil writer disables tracing.
func (b *Bus) SetTraceWriter(w io.Writer) {
	b.trace = w
}

func (b *Bus) writeTrace() {
	state := b.PPU.State()
	line := b.CPU.TraceLine(b.Memory.Peek)
	fmt.Fprintf(b.trace, "%s PPU:%3d,%3d CYC:%d\n", line, state.Scanline, state.Dot, b.CPU.Cycles())
}

// SetBreakpoint stops StepFrame before the instruction at address.
func (b *Bus) SetBreakpoint(address uint16) {
	b.breakpoints[address] = true
}

// ClearBreakpoint removes a breakpoint.
func (b *Bus) ClearBreakpoint(address uint16) {
	delete(b.breakpoints, address)
}

// Breakpoints returns the breakpoint addresses in ascending order.
func (b *Bus) Breakpoints() []uint16 {
	addresses := make([]uint16, 0, len(b.breakpoints))
	for address := range b.breakpoints {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i] < addresses[j] })
	return addresses
}

// SetControllerButtons sets all button states for the controller in port 1
// or 2, in the order A, B, Select, Start, Up, Down, Left, Right.
func (b *Bus) SetControllerButtons(port int, buttons [8]bool) {
	b.Input.SetButtons(port, buttons)
}

// FrameBuffer returns the last completed frame.
func (b *Bus) FrameBuffer() *ppu.FrameBuffer {
	return b.PPU.FrameBuffer()
}

// Samples returns and clears the audio produced since the last call.
func (b *Bus) Samples() []apu.Sample {
	return b.APU.Samples()
}

// SetSampleRate sets the target audio sample rate for the APU
func (b *Bus) SetSampleRate(rate int) {
	b.APU.SetSampleRate(rate)
}

// Frame returns the number of frames the PPU has completed.
func (b *Bus) Frame() uint64 {
	return b.PPU.GetFrameCount()
}

// CPUState returns a snapshot of the CPU registers.
func (b *Bus) CPUState() cpu.State {
	return b.CPU.State()
}

// PPUState returns a snapshot of the PPU registers and position.
func (b *Bus) PPUState() ppu.State {
	return b.PPU.State()
}

// Cartridge returns the inserted cartridge.
func (b *Bus) Cartridge() *cartridge.Cartridge {
	return b.cart
}
