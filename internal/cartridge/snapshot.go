package cartridge

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrSnapshot is returned when a snapshot does not match the cartridge.
var ErrSnapshot = errors.New("invalid cartridge snapshot")

// Snapshot is the writable state of a cartridge: PRG RAM, CHR RAM when the
// board has it, and the mapper's registers.
type Snapshot struct {
	Kind      MapperKind `json:"kind"`
	Registers []uint8    `json:"registers"`
	SRAM      []uint8    `json:"sram"`
	CHRRAM    []uint8    `json:"chr_ram,omitempty"`
}

// Checksum identifies the ROM contents, independent of the file name.
func (c *Cartridge) Checksum() string {
	h := sha256.New()
	h.Write(c.desc.PRG)
	h.Write(c.desc.CHR)
	return hex.EncodeToString(h.Sum(nil))
}

// Snapshot captures the cartridge state.
func (c *Cartridge) Snapshot() Snapshot {
	s := Snapshot{
		Kind:      c.mapper.Kind,
		Registers: c.mapper.registers(),
		SRAM:      c.SaveRAM(),
	}
	if c.hasCHRRAM {
		s.CHRRAM = append([]uint8(nil), c.chr...)
	}
	return s
}

// Restore loads a snapshot taken from a cartridge with the same board.
func (c *Cartridge) Restore(s Snapshot) error {
	if s.Kind != c.mapper.Kind {
		return fmt.Errorf("%w: mapper %v, cartridge has %v", ErrSnapshot, s.Kind, c.mapper.Kind)
	}
	if len(s.SRAM) != len(c.sram) {
		return fmt.Errorf("%w: %d PRG RAM bytes", ErrSnapshot, len(s.SRAM))
	}
	if c.hasCHRRAM && len(s.CHRRAM) != len(c.chr) {
		return fmt.Errorf("%w: %d CHR RAM bytes", ErrSnapshot, len(s.CHRRAM))
	}
	if err := c.mapper.setRegisters(s.Registers); err != nil {
		return err
	}
	copy(c.sram, s.SRAM)
	if c.hasCHRRAM {
		copy(c.chr, s.CHRRAM)
	}
	return nil
}

// registers dumps the active variant's registers in a fixed order.
func (m *Mapper) registers() []uint8 {
	switch m.Kind {
	case KindMMC1:
		r := &m.mmc1
		return []uint8{r.shift, r.control, r.chr0, r.chr1, r.prg}
	case KindUxROM:
		return []uint8{m.uxrom.bank}
	case KindCNROM:
		return []uint8{m.cnrom.chrBank}
	case KindMMC3:
		r := &m.mmc3
		regs := []uint8{r.selected, r.prgMode, r.chrMode, uint8(r.mirroring), r.latch, r.counter,
			boolByte(r.reloadPending), boolByte(r.irqEnabled), boolByte(r.irqPending)}
		return append(regs, r.registers[:]...)
	case KindAxROM:
		return []uint8{m.axrom.prgBank, m.axrom.screen}
	}
	return nil
}

func (m *Mapper) setRegisters(regs []uint8) error {
	if want := len(m.registers()); len(regs) != want {
		return fmt.Errorf("%w: %d %v registers, want %d", ErrSnapshot, len(regs), m.Kind, want)
	}
	switch m.Kind {
	case KindMMC1:
		m.mmc1 = mmc1{shift: regs[0], control: regs[1], chr0: regs[2], chr1: regs[3], prg: regs[4]}
	case KindUxROM:
		m.uxrom.bank = regs[0]
	case KindCNROM:
		m.cnrom.chrBank = regs[0]
	case KindMMC3:
		r := &m.mmc3
		r.selected, r.prgMode, r.chrMode = regs[0], regs[1], regs[2]
		r.mirroring = MirrorMode(regs[3])
		r.latch, r.counter = regs[4], regs[5]
		r.reloadPending, r.irqEnabled, r.irqPending = regs[6] != 0, regs[7] != 0, regs[8] != 0
		copy(r.registers[:], regs[9:])
	case KindAxROM:
		m.axrom.prgBank, m.axrom.screen = regs[0], regs[1]
	}
	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
