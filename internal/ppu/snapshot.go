package ppu

import (
	"errors"
	"fmt"
)

// ErrSnapshot is returned by Restore for a snapshot that does not fit.
var ErrSnapshot = errors.New("invalid PPU snapshot")

// Snapshot is the complete internal state of the PPU, without the frame
// buffers and callbacks.
type Snapshot struct {
	Ctrl    uint8 `json:"ctrl"`
	Mask    uint8 `json:"mask"`
	Status  uint8 `json:"status"`
	OAMAddr uint8 `json:"oam_addr"`
	IOLatch uint8 `json:"io_latch"`

	V uint16 `json:"v"`
	T uint16 `json:"t"`
	X uint8  `json:"x"`
	W bool   `json:"w"`

	Scanline    int    `json:"scanline"`
	Dot         int    `json:"dot"`
	Frame       uint64 `json:"frame"`
	OddFrame    bool   `json:"odd_frame"`
	Dots        uint64 `json:"dots"`
	ReadBuffer  uint8  `json:"read_buffer"`
	SuppressVBL bool   `json:"suppress_vbl"`
	NMILine     bool   `json:"nmi_line"`

	NTLatch     uint8  `json:"nt_latch"`
	ATLatch     uint8  `json:"at_latch"`
	PatLoLatch  uint8  `json:"pat_lo_latch"`
	PatHiLatch  uint8  `json:"pat_hi_latch"`
	BGShiftLo   uint16 `json:"bg_shift_lo"`
	BGShiftHi   uint16 `json:"bg_shift_hi"`
	AttrShiftLo uint16 `json:"attr_shift_lo"`
	AttrShiftHi uint16 `json:"attr_shift_hi"`
	AttrLatchLo uint8  `json:"attr_latch_lo"`
	AttrLatchHi uint8  `json:"attr_latch_hi"`

	OAM         []uint8          `json:"oam"`
	SpriteCount int              `json:"sprite_count"`
	Sprites     []SpriteSnapshot `json:"sprites"`

	A12High  bool   `json:"a12_high"`
	A12LowAt uint64 `json:"a12_low_at"`
}

// SpriteSnapshot is one sprite selected for the current line.
type SpriteSnapshot struct {
	Index uint8 `json:"index"`
	Y     uint8 `json:"y"`
	Tile  uint8 `json:"tile"`
	Attr  uint8 `json:"attr"`
	X     uint8 `json:"x"`
	PatLo uint8 `json:"pat_lo"`
	PatHi uint8 `json:"pat_hi"`
}

// Snapshot captures the PPU state.
func (p *PPU) Snapshot() Snapshot {
	s := Snapshot{
		Ctrl: p.ppuCtrl, Mask: p.ppuMask, Status: p.ppuStatus,
		OAMAddr: p.oamAddr, IOLatch: p.ioLatch,
		V: p.v, T: p.t, X: p.x, W: p.w,
		Scanline:    p.scanline,
		Dot:         p.cycle,
		Frame:       p.frameCount,
		OddFrame:    p.oddFrame,
		Dots:        p.cycleCount,
		ReadBuffer:  p.readBuffer,
		SuppressVBL: p.suppressVBL,
		NMILine:     p.nmiLine,
		NTLatch:     p.ntLatch, ATLatch: p.atLatch,
		PatLoLatch: p.patLoLatch, PatHiLatch: p.patHiLatch,
		BGShiftLo: p.bgShiftLo, BGShiftHi: p.bgShiftHi,
		AttrShiftLo: p.attrShiftLo, AttrShiftHi: p.attrShiftHi,
		AttrLatchLo: p.attrLatchLo, AttrLatchHi: p.attrLatchHi,
		OAM:         append([]uint8(nil), p.oam[:]...),
		SpriteCount: p.spriteCount,
		A12High:     p.a12High,
		A12LowAt:    p.a12LowAt,
	}
	for _, slot := range p.sprites {
		s.Sprites = append(s.Sprites, SpriteSnapshot{
			Index: slot.index, Y: slot.y, Tile: slot.tile, Attr: slot.attr,
			X: slot.x, PatLo: slot.patLo, PatHi: slot.patHi,
		})
	}
	return s
}

// Restore loads a snapshot taken by Snapshot. Nothing is changed when the
// snapshot is malformed.
func (p *PPU) Restore(s Snapshot) error {
	switch {
	case len(s.OAM) != len(p.oam):
		return fmt.Errorf("%w: %d OAM bytes", ErrSnapshot, len(s.OAM))
	case len(s.Sprites) != len(p.sprites):
		return fmt.Errorf("%w: %d sprite slots", ErrSnapshot, len(s.Sprites))
	case s.SpriteCount < 0 || s.SpriteCount > len(p.sprites):
		return fmt.Errorf("%w: sprite count %d", ErrSnapshot, s.SpriteCount)
	case s.Scanline < 0 || s.Scanline >= ScanlinesPerFrame || s.Dot < 0 || s.Dot >= DotsPerScanline:
		return fmt.Errorf("%w: position %d,%d", ErrSnapshot, s.Scanline, s.Dot)
	}

	p.ppuCtrl, p.ppuMask, p.ppuStatus = s.Ctrl, s.Mask, s.Status
	p.oamAddr, p.ioLatch = s.OAMAddr, s.IOLatch
	p.v, p.t, p.x, p.w = s.V, s.T, s.X, s.W
	p.scanline, p.cycle = s.Scanline, s.Dot
	p.frameCount, p.oddFrame, p.cycleCount = s.Frame, s.OddFrame, s.Dots
	p.readBuffer = s.ReadBuffer
	p.suppressVBL, p.nmiLine = s.SuppressVBL, s.NMILine

	p.ntLatch, p.atLatch = s.NTLatch, s.ATLatch
	p.patLoLatch, p.patHiLatch = s.PatLoLatch, s.PatHiLatch
	p.bgShiftLo, p.bgShiftHi = s.BGShiftLo, s.BGShiftHi
	p.attrShiftLo, p.attrShiftHi = s.AttrShiftLo, s.AttrShiftHi
	p.attrLatchLo, p.attrLatchHi = s.AttrLatchLo, s.AttrLatchHi

	copy(p.oam[:], s.OAM)
	p.spriteCount = s.SpriteCount
	for i, slot := range s.Sprites {
		p.sprites[i] = spriteSlot{
			index: slot.Index, y: slot.Y, tile: slot.Tile, attr: slot.Attr,
			x: slot.X, patLo: slot.PatLo, patHi: slot.PatHi,
		}
	}
	p.a12High, p.a12LowAt = s.A12High, s.A12LowAt
	return nil
}
