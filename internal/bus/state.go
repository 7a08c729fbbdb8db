package bus

import (
	"nesemu/internal/apu"
	"nesemu/internal/cartridge"
	"nesemu/internal/cpu"
	"nesemu/internal/input"
	"nesemu/internal/memory"
	"nesemu/internal/ppu"
)

// State is a snapshot of the whole machine between two instructions.
type State struct {
	Cycles    uint64                `json:"cycles"`
	CPU       cpu.Snapshot          `json:"cpu"`
	PPU       ppu.Snapshot          `json:"ppu"`
	APU       apu.Snapshot          `json:"apu"`
	RAM       memory.Snapshot       `json:"ram"`
	VRAM      memory.VRAMSnapshot   `json:"vram"`
	Ports     [2]input.PortSnapshot `json:"ports"`
	Cartridge cartridge.Snapshot    `json:"cartridge"`
}

// SaveState captures the machine. It must be called between steps, where
// no DMA is in progress.
func (b *Bus) SaveState() State {
	return State{
		Cycles:    b.cycles,
		CPU:       b.CPU.Snapshot(),
		PPU:       b.PPU.Snapshot(),
		APU:       b.APU.Snapshot(),
		RAM:       b.Memory.Snapshot(),
		VRAM:      b.vram.Snapshot(),
		Ports:     b.Input.Snapshot(),
		Cartridge: b.cart.Snapshot(),
	}
}

// LoadState restores a state saved from a machine with the same cartridge.
// On error the machine is left as it was.
func (b *Bus) LoadState(s State) error {
	previous := b.SaveState()
	if err := b.restore(s); err != nil {
		b.restore(previous)
		return err
	}
	return nil
}

func (b *Bus) restore(s State) error {
	if err := b.cart.Restore(s.Cartridge); err != nil {
		return err
	}
	if err := b.PPU.Restore(s.PPU); err != nil {
		return err
	}
	if err := b.Memory.Restore(s.RAM); err != nil {
		return err
	}
	if err := b.vram.Restore(s.VRAM); err != nil {
		return err
	}
	b.CPU.Restore(s.CPU)
	b.APU.Restore(s.APU)
	b.Input.Restore(s.Ports)

	b.cycles = s.Cycles
	b.executing = false
	b.oamDMAPending = false
	b.oamDMAActive = false
	b.dmcStall = 0
	b.resume = false
	b.updateIRQ()
	return nil
}
