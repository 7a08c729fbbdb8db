// Package ppu implements the Picture Processing Unit (2C02) for the NES.
package ppu

import (
	"fmt"

	"nesemu/internal/memory"
)

const (
	// ScreenWidth and ScreenHeight give the framebuffer dimensions.
	ScreenWidth  = 256
	ScreenHeight = 240

	DotsPerScanline   = 341
	ScanlinesPerFrame = 262

	vblankScanline    = 241
	preRenderScanline = 261

	// PPUCTRL bits
	ctrlIncrement32  = 0x04
	ctrlSpriteTable  = 0x08
	ctrlBGTable      = 0x10
	ctrlSpriteSize16 = 0x20
	ctrlNMIEnable    = 0x80

	// PPUMASK bits
	maskGreyscale   = 0x01
	maskShowBGLeft  = 0x02
	maskShowSPLeft  = 0x04
	maskShowBG      = 0x08
	maskShowSprites = 0x10

	// PPUSTATUS bits
	statusOverflow   = 0x20
	statusSprite0Hit = 0x40
	statusVBlank     = 0x80

	// A12 must stay low this many dots before a rise is reported
	a12LowDots = 10
)

// FrameBuffer holds one frame of 0x00RRGGBB pixels in row-major order.
type FrameBuffer [ScreenWidth * ScreenHeight]uint32

// PPU represents the NES Picture Processing Unit (2C02)
type PPU struct {
	// CPU-visible registers
	ppuCtrl   uint8
	ppuMask   uint8
	ppuStatus uint8
	oamAddr   uint8
	ioLatch   uint8 // open bus for $2000-$2007

	// loopy registers
	v uint16
	t uint16
	x uint8
	w bool

	memory *memory.PPUMemory

	scanline   int
	cycle      int
	frameCount uint64
	oddFrame   bool
	cycleCount uint64
	readBuffer uint8

	suppressVBL bool
	nmiLine     bool

	// background pipeline
	ntLatch     uint8
	atLatch     uint8
	patLoLatch  uint8
	patHiLatch  uint8
	bgShiftLo   uint16
	bgShiftHi   uint16
	attrShiftLo uint16
	attrShiftHi uint16
	attrLatchLo uint8
	attrLatchHi uint8

	// sprites
	oam         [256]uint8
	spriteCount int
	sprites     [8]spriteSlot

	// address line A12 filter
	a12High  bool
	a12LowAt uint64

	front   *FrameBuffer
	back    *FrameBuffer
	buffers [2]FrameBuffer

	nmiCallback       func()
	nmiCancelCallback func()
	a12Callback       func()
}

// spriteSlot is one of the eight sprites selected for a scanline.
type spriteSlot struct {
	index uint8 // position in OAM, 0 for sprite zero
	y     uint8
	tile  uint8
	attr  uint8
	x     uint8
	patLo uint8
	patHi uint8
}

// State is a snapshot of the PPU for debuggers and trace output.
type State struct {
	Scanline    int
	Dot         int
	Frame       uint64
	Ctrl        uint8
	Mask        uint8
	Status      uint8
	OAMAddr     uint8
	V, T        uint16
	FineX       uint8
	W           bool
	SpriteCount int
}

func (s State) String() string {
	return fmt.Sprintf("PPU:%3d,%3d CTRL:%02X MASK:%02X STATUS:%02X V:%04X T:%04X X:%d",
		s.Scanline, s.Dot, s.Ctrl, s.Mask, s.Status, s.V, s.T, s.FineX)
}

// New creates a new PPU instance
func New() *PPU {
	p := &PPU{}
	p.front = &p.buffers[0]
	p.back = &p.buffers[1]
	p.Reset()
	return p
}

// Reset puts the PPU at the start of a frame with rendering disabled.
func (p *PPU) Reset() {
	p.ppuCtrl = 0
	p.ppuMask = 0
	p.ppuStatus = 0
	p.oamAddr = 0
	p.ioLatch = 0

	p.v, p.t, p.x, p.w = 0, 0, 0, false

	p.scanline = 0
	p.cycle = 0
	p.frameCount = 0
	p.oddFrame = false
	p.cycleCount = 0
	p.readBuffer = 0
	p.suppressVBL = false
	p.nmiLine = false

	p.bgShiftLo, p.bgShiftHi = 0, 0
	p.attrShiftLo, p.attrShiftHi = 0, 0
	p.spriteCount = 0
	p.a12High = false
	p.a12LowAt = 0

	if p.memory != nil {
		p.memory.Reset()
	}
}

// SetMemory sets the PPU memory interface
func (p *PPU) SetMemory(memory *memory.PPUMemory) {
	p.memory = memory
}

// SetNMICallback sets the function called on each rising edge of NMI.
func (p *PPU) SetNMICallback(callback func()) {
	p.nmiCallback = callback
}

// SetNMICancelCallback sets the function called when an NMI raised this
// VBlank must be withdrawn before the CPU takes it.
func (p *PPU) SetNMICancelCallback(callback func()) {
	p.nmiCancelCallback = callback
}

// SetA12Callback sets the function called on each filtered rising edge of
// PPU address line A12.
func (p *PPU) SetA12Callback(callback func()) {
	p.a12Callback = callback
}

// ReadRegister reads from a PPU register (CPU $2000-$2007)
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch 0x2000 + address&7 {
	case 0x2002:
		p.ioLatch = p.ppuStatus&0xE0 | p.ioLatch&0x1F
		if p.scanline == vblankScanline {
			switch p.cycle {
			case 0:
				// one dot early: the flag never rises this frame
				p.suppressVBL = true
			case 1, 2:
				p.cancelNMI()
			}
		}
		p.ppuStatus &^= statusVBlank
		p.w = false
		p.updateNMI()
	case 0x2004:
		p.ioLatch = p.oam[p.oamAddr]
	case 0x2007:
		p.ioLatch = p.readPPUData()
	}
	return p.ioLatch
}

// WriteRegister writes to a PPU register (CPU $2000-$2007)
func (p *PPU) WriteRegister(address uint16, value uint8) {
	p.ioLatch = value

	switch 0x2000 + address&7 {
	case 0x2000:
		wasEnabled := p.ppuCtrl&ctrlNMIEnable != 0
		p.ppuCtrl = value
		p.t = p.t&0xF3FF | uint16(value&0x03)<<10
		if wasEnabled && value&ctrlNMIEnable == 0 &&
			p.scanline == vblankScanline && p.cycle <= 2 {
			p.cancelNMI()
		}
		p.updateNMI()
	case 0x2001:
		p.ppuMask = value
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		p.WriteOAM(p.oamAddr, value)
		p.oamAddr++
	case 0x2005:
		p.writePPUScroll(value)
	case 0x2006:
		p.writePPUAddr(value)
	case 0x2007:
		p.writePPUData(value)
	}
}

// WriteOAM writes to OAM at the specified address (for DMA)
func (p *PPU) WriteOAM(address uint8, value uint8) {
	if address&3 == 2 {
		// attribute bits 2-4 do not exist
		value &= 0xE3
	}
	p.oam[address] = value
}

// ReadOAM returns one byte of sprite memory.
func (p *PPU) ReadOAM(address uint8) uint8 {
	return p.oam[address]
}

func (p *PPU) updateNMI() {
	line := p.ppuCtrl&ctrlNMIEnable != 0 && p.ppuStatus&statusVBlank != 0
	if line && !p.nmiLine && p.nmiCallback != nil {
		p.nmiCallback()
	}
	p.nmiLine = line
}

func (p *PPU) cancelNMI() {
	if p.nmiCancelCallback != nil {
		p.nmiCancelCallback()
	}
}

func (p *PPU) writePPUScroll(value uint8) {
	if !p.w {
		p.t = p.t&0xFFE0 | uint16(value)>>3
		p.x = value & 0x07
	} else {
		p.t = p.t&0x8FFF | uint16(value&0x07)<<12
		p.t = p.t&0xFC1F | uint16(value&0xF8)<<2
	}
	p.w = !p.w
}

func (p *PPU) writePPUAddr(value uint8) {
	if !p.w {
		p.t = p.t&0x80FF | uint16(value&0x3F)<<8
	} else {
		p.t = p.t&0xFF00 | uint16(value)
		p.v = p.t
		p.observeA12(p.v)
	}
	p.w = !p.w
}

func (p *PPU) readPPUData() uint8 {
	address := p.v & 0x3FFF
	var data uint8
	if address >= 0x3F00 {
		// palette reads bypass the buffer; the buffer sees the nametable underneath
		data = p.read(address)&0x3F | p.ioLatch&0xC0
		p.readBuffer = p.read(address & 0x2FFF)
	} else {
		data = p.readBuffer
		p.readBuffer = p.read(address)
	}
	p.incrementAddress()
	return data
}

func (p *PPU) writePPUData(value uint8) {
	p.write(p.v&0x3FFF, value)
	p.incrementAddress()
}

// incrementAddress advances v after a $2007 access. While rendering the
// access instead bumps both scroll counters.
func (p *PPU) incrementAddress() {
	if p.renderingEnabled() && (p.scanline < ScreenHeight || p.scanline == preRenderScanline) {
		p.incrementX()
		p.incrementY()
		return
	}
	if p.ppuCtrl&ctrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
	p.observeA12(p.v)
}

// read and write are the PPU's bus accesses; every one is seen by the A12
// edge filter.
func (p *PPU) read(address uint16) uint8 {
	p.observeA12(address)
	if p.memory == nil {
		return 0
	}
	return p.memory.Read(address)
}

func (p *PPU) write(address uint16, value uint8) {
	p.observeA12(address)
	if p.memory != nil {
		p.memory.Write(address, value)
	}
}

func (p *PPU) observeA12(address uint16) {
	high := address&0x1000 != 0
	switch {
	case high && !p.a12High:
		if p.cycleCount-p.a12LowAt >= a12LowDots && p.a12Callback != nil {
			p.a12Callback()
		}
	case !high && p.a12High:
		p.a12LowAt = p.cycleCount
	}
	p.a12High = high
}

func (p *PPU) renderingEnabled() bool {
	return p.ppuMask&(maskShowBG|maskShowSprites) != 0
}

// FrameBuffer returns the last completed frame. The buffer is swapped at
// the start of VBlank and must not be retained across frames.
func (p *PPU) FrameBuffer() *FrameBuffer {
	return p.front
}

// GetFrameCount returns the number of completed frames.
func (p *PPU) GetFrameCount() uint64 {
	return p.frameCount
}

// GetScanline returns the current scanline
func (p *PPU) GetScanline() int {
	return p.scanline
}

// IsVBlank returns true if the VBlank flag is set.
func (p *PPU) IsVBlank() bool {
	return p.ppuStatus&statusVBlank != 0
}

// State returns a register snapshot.
func (p *PPU) State() State {
	return State{
		Scanline:    p.scanline,
		Dot:         p.cycle,
		Frame:       p.frameCount,
		Ctrl:        p.ppuCtrl,
		Mask:        p.ppuMask,
		Status:      p.ppuStatus,
		OAMAddr:     p.oamAddr,
		V:           p.v,
		T:           p.t,
		FineX:       p.x,
		W:           p.w,
		SpriteCount: p.spriteCount,
	}
}
