package memory

import (
	"errors"
	"fmt"
)

// ErrSnapshot is returned when a snapshot's buffers have the wrong size.
var ErrSnapshot = errors.New("invalid memory snapshot")

// Snapshot holds the CPU RAM and the last bus value.
type Snapshot struct {
	RAM     []uint8 `json:"ram"`
	OpenBus uint8   `json:"open_bus"`
}

// Snapshot captures RAM and the open bus latch.
func (m *Memory) Snapshot() Snapshot {
	return Snapshot{RAM: append([]uint8(nil), m.ram[:]...), OpenBus: m.openBus}
}

// Restore loads a snapshot taken by Snapshot.
func (m *Memory) Restore(s Snapshot) error {
	if len(s.RAM) != len(m.ram) {
		return fmt.Errorf("%w: %d RAM bytes", ErrSnapshot, len(s.RAM))
	}
	copy(m.ram[:], s.RAM)
	m.openBus = s.OpenBus
	return nil
}

// VRAMSnapshot holds nametable and palette RAM.
type VRAMSnapshot struct {
	VRAM    []uint8 `json:"vram"`
	Palette []uint8 `json:"palette"`
}

// Snapshot captures nametable and palette RAM.
func (m *PPUMemory) Snapshot() VRAMSnapshot {
	return VRAMSnapshot{
		VRAM:    append([]uint8(nil), m.vram[:]...),
		Palette: append([]uint8(nil), m.paletteRAM[:]...),
	}
}

// Restore loads a snapshot taken by Snapshot.
func (m *PPUMemory) Restore(s VRAMSnapshot) error {
	if len(s.VRAM) != len(m.vram) || len(s.Palette) != len(m.paletteRAM) {
		return fmt.Errorf("%w: %d VRAM and %d palette bytes", ErrSnapshot, len(s.VRAM), len(s.Palette))
	}
	copy(m.vram[:], s.VRAM)
	copy(m.paletteRAM[:], s.Palette)
	return nil
}
