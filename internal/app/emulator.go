// Package app provides emulator integration for the main application.
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"nesemu/internal/apu"
	"nesemu/internal/bus"
	"nesemu/internal/cpu"
	"nesemu/internal/logger"
	"nesemu/internal/ppu"
)

// ErrBreakpoint is returned by Update when a frame stopped at a breakpoint.
var ErrBreakpoint = errors.New("breakpoint")

// nominal NTSC frame period
const ntscFrameTime = time.Second * 89342 / 3 / 1789773

// Emulator runs the machine a frame at a time and keeps timing statistics.
type Emulator struct {
	bus    *bus.Bus
	config *Config

	// receives the samples of every completed frame
	sinks []func([]apu.Sample)

	isRunning  bool
	jammed     bool
	frameCount uint64
	startTime  time.Time

	lastFrameTime time.Duration
	frameTimes    *CircularTimingBuffer
}

// NewEmulator creates a new emulator instance
func NewEmulator(b *bus.Bus, config *Config) *Emulator {
	e := &Emulator{
		bus:        b,
		config:     config,
		frameTimes: NewCircularTimingBuffer(180),
	}
	e.Reset()
	return e
}

// Reset resets the machine and the statistics
func (e *Emulator) Reset() {
	e.bus.Reset()
	e.jammed = false
	e.frameCount = 0
	e.lastFrameTime = 0
	e.startTime = time.Now()
	e.frameTimes.Reset()
}

// Start starts the emulator
func (e *Emulator) Start() {
	e.isRunning = true
	e.startTime = time.Now()
}

// Stop stops the emulator
func (e *Emulator) Stop() {
	e.isRunning = false
}

// AddAudioSink registers a function that receives each frame's samples.
func (e *Emulator) AddAudioSink(sink func([]apu.Sample)) {
	e.sinks = append(e.sinks, sink)
}

// Update runs one frame while the emulator is running.
func (e *Emulator) Update() error {
	if !e.isRunning {
		return nil
	}
	return e.StepFrame()
}

// StepFrame runs one frame regardless of the running state. If a
// breakpoint stops the frame early it returns ErrBreakpoint; calling it
// again resumes from the breakpoint.
func (e *Emulator) StepFrame() error {
	start := time.Now()
	hit := e.bus.StepFrame(false)
	e.lastFrameTime = time.Since(start)
	e.frameTimes.Add(e.lastFrameTime)

	e.flushAudio()

	if hit {
		pc := e.bus.CPU.PC
		text, _ := cpu.Disassemble(pc, e.bus.Memory.Peek)
		logger.Logf(logger.TagApp, "breakpoint at $%04X: %s", pc, text)
		return fmt.Errorf("%w at $%04X", ErrBreakpoint, pc)
	}
	e.frameCount++

	if !e.jammed && e.bus.CPU.Jammed() {
		e.jammed = true
		logger.Logf(logger.TagCPU, "CPU jammed near $%04X", e.bus.CPU.PC)
	}
	return nil
}

// StepInstruction executes a single instruction. Execution always
// continues; IsJammed reports a JAM opcode.
func (e *Emulator) StepInstruction() {
	e.bus.StepInstruction()
	e.flushAudio()
	if !e.jammed && e.bus.CPU.Jammed() {
		e.jammed = true
		logger.Logf(logger.TagCPU, "CPU jammed near $%04X", e.bus.CPU.PC)
	}
}

// Disassemble returns the instruction at address and its length.
func (e *Emulator) Disassemble(address uint16) (string, int) {
	return cpu.Disassemble(address, e.bus.Memory.Peek)
}

// RunFrames runs n frames back to back, stopping early at a breakpoint.
func (e *Emulator) RunFrames(n int) error {
	for i := 0; i < n; i++ {
		if err := e.StepFrame(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emulator) flushAudio() {
	if len(e.sinks) == 0 {
		return
	}
	samples := e.bus.Samples()
	if len(samples) == 0 {
		return
	}
	for _, sink := range e.sinks {
		sink(samples)
	}
}

// GetFrameBuffer returns the last completed frame
func (e *Emulator) GetFrameBuffer() *ppu.FrameBuffer {
	return e.bus.FrameBuffer()
}

// GetFrameCount returns the frames run since the last reset
func (e *Emulator) GetFrameCount() uint64 {
	return e.frameCount
}

// GetCycleCount returns the CPU cycles run since power on
func (e *Emulator) GetCycleCount() uint64 {
	return e.bus.CPU.Cycles()
}

// IsJammed reports whether the CPU has executed a JAM opcode
func (e *Emulator) IsJammed() bool {
	return e.jammed
}

// IsRunning returns whether the emulator is running
func (e *Emulator) IsRunning() bool {
	return e.isRunning
}

// GetUptime returns the time since the emulator was started or reset
func (e *Emulator) GetUptime() time.Duration {
	return time.Since(e.startTime)
}

// GetActualFrameTime returns how long the last frame took to emulate
func (e *Emulator) GetActualFrameTime() time.Duration {
	return e.lastFrameTime
}

// GetAverageFrameTime returns the mean emulation time of recent frames
func (e *Emulator) GetAverageFrameTime() time.Duration {
	return e.frameTimes.GetAverage()
}

// GetEmulationSpeed returns how many times faster than real time the
// machine can be emulated, based on recent frames.
func (e *Emulator) GetEmulationSpeed() float64 {
	avg := e.GetAverageFrameTime()
	if avg == 0 {
		return 0
	}
	return float64(ntscFrameTime) / float64(avg)
}

// GetCPUState returns a snapshot of the CPU registers
func (e *Emulator) GetCPUState() cpu.State {
	return e.bus.CPUState()
}

// GetPPUState returns a snapshot of the PPU registers
func (e *Emulator) GetPPUState() ppu.State {
	return e.bus.PPUState()
}

// CircularTimingBuffer keeps the most recent durations.
type CircularTimingBuffer struct {
	mu       sync.RWMutex
	buffer   []time.Duration
	capacity int
	index    int
	size     int
}

// NewCircularTimingBuffer creates a new circular timing buffer
func NewCircularTimingBuffer(capacity int) *CircularTimingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &CircularTimingBuffer{
		buffer:   make([]time.Duration, capacity),
		capacity: capacity,
	}
}

// Add adds a timing measurement to the buffer
func (ctb *CircularTimingBuffer) Add(duration time.Duration) {
	ctb.mu.Lock()
	defer ctb.mu.Unlock()

	ctb.buffer[ctb.index] = duration
	ctb.index = (ctb.index + 1) % ctb.capacity
	if ctb.size < ctb.capacity {
		ctb.size++
	}
}

// GetAverage calculates the average of stored durations
func (ctb *CircularTimingBuffer) GetAverage() time.Duration {
	ctb.mu.RLock()
	defer ctb.mu.RUnlock()
	return ctb.average()
}

func (ctb *CircularTimingBuffer) average() time.Duration {
	if ctb.size == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < ctb.size; i++ {
		total += ctb.buffer[i]
	}
	return total / time.Duration(ctb.size)
}

// GetVariance calculates the variance of stored durations
func (ctb *CircularTimingBuffer) GetVariance() time.Duration {
	ctb.mu.RLock()
	defer ctb.mu.RUnlock()

	if ctb.size < 2 {
		return 0
	}

	avg := ctb.average()
	var variance int64
	for i := 0; i < ctb.size; i++ {
		diff := int64(ctb.buffer[i] - avg)
		variance += diff * diff
	}
	return time.Duration(variance / int64(ctb.size))
}

// Reset clears the buffer
func (ctb *CircularTimingBuffer) Reset() {
	ctb.mu.Lock()
	defer ctb.mu.Unlock()
	ctb.index = 0
	ctb.size = 0
}
