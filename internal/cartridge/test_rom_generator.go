package cartridge

import (
	"bytes"
	"fmt"
)

// TestROMConfig describes a generated ROM. Addresses are CPU addresses in
// $8000-$FFFF and are folded onto the PRG size, so with 16KB of PRG $8000
// and $C000 name the same byte.
type TestROMConfig struct {
	PRGSize     uint8 // in 16KB units
	CHRSize     uint8 // in 8KB units, zero for CHR RAM
	MapperID    uint8
	Mirroring   MirrorMode
	HasBattery  bool
	Program     []uint8
	ProgramAt   uint16
	Data        map[uint16]uint8
	ResetVector uint16
	NMIVector   uint16
	IRQVector   uint16
	CHRData     []uint8
}

// TestROMBuilder builds small ROM images for tests and tools.
type TestROMBuilder struct {
	config TestROMConfig
}

// NewTestROMBuilder returns a builder for a 16KB NROM image whose reset
// vector points at the program.
func NewTestROMBuilder() *TestROMBuilder {
	return &TestROMBuilder{
		config: TestROMConfig{
			PRGSize:     1,
			CHRSize:     1,
			Mirroring:   MirrorHorizontal,
			ProgramAt:   0x8000,
			Data:        make(map[uint16]uint8),
			ResetVector: 0x8000,
			NMIVector:   0x8000,
			IRQVector:   0x8000,
		},
	}
}

// WithPRGSize sets the PRG ROM size in 16KB units
func (b *TestROMBuilder) WithPRGSize(size uint8) *TestROMBuilder {
	b.config.PRGSize = size
	return b
}

// WithCHRSize sets the CHR ROM size in 8KB units (0 = CHR RAM)
func (b *TestROMBuilder) WithCHRSize(size uint8) *TestROMBuilder {
	b.config.CHRSize = size
	return b
}

// WithMapper sets the mapper ID
func (b *TestROMBuilder) WithMapper(mapperID uint8) *TestROMBuilder {
	b.config.MapperID = mapperID
	return b
}

// WithMirroring sets the nametable mirroring mode
func (b *TestROMBuilder) WithMirroring(mirroring MirrorMode) *TestROMBuilder {
	b.config.Mirroring = mirroring
	return b
}

// WithBattery marks PRG RAM as battery backed
func (b *TestROMBuilder) WithBattery() *TestROMBuilder {
	b.config.HasBattery = true
	return b
}

// WithProgram places code at address and points the reset vector at it.
func (b *TestROMBuilder) WithProgram(address uint16, code []uint8) *TestROMBuilder {
	b.config.Program = append([]uint8(nil), code...)
	b.config.ProgramAt = address
	b.config.ResetVector = address
	return b
}

// WithData sets bytes at a CPU address.
func (b *TestROMBuilder) WithData(address uint16, data []uint8) *TestROMBuilder {
	for i, value := range data {
		b.config.Data[address+uint16(i)] = value
	}
	return b
}

// WithResetVector sets the reset vector
func (b *TestROMBuilder) WithResetVector(address uint16) *TestROMBuilder {
	b.config.ResetVector = address
	return b
}

// WithNMIVector sets the NMI vector
func (b *TestROMBuilder) WithNMIVector(address uint16) *TestROMBuilder {
	b.config.NMIVector = address
	return b
}

// WithIRQVector sets the IRQ/BRK vector
func (b *TestROMBuilder) WithIRQVector(address uint16) *TestROMBuilder {
	b.config.IRQVector = address
	return b
}

// WithCHRData sets the start of CHR ROM
func (b *TestROMBuilder) WithCHRData(data []uint8) *TestROMBuilder {
	b.config.CHRData = append([]uint8(nil), data...)
	return b
}

// Descriptor returns the ROM as a descriptor.
func (b *TestROMBuilder) Descriptor() (Descriptor, error) {
	cfg := b.config
	if cfg.PRGSize == 0 {
		return Descriptor{}, ErrEmptyPRG
	}

	prg := make([]uint8, int(cfg.PRGSize)*prgBankSize)
	fold := func(address uint16) int {
		return int(address-0x8000) % len(prg)
	}

	if len(cfg.Program) > 0 {
		if cfg.ProgramAt < 0x8000 || len(cfg.Program) > len(prg) {
			return Descriptor{}, fmt.Errorf("program does not fit at $%04X", cfg.ProgramAt)
		}
		for i, v := range cfg.Program {
			prg[fold(cfg.ProgramAt+uint16(i))] = v
		}
	}
	for address, v := range cfg.Data {
		if address >= 0x8000 {
			prg[fold(address)] = v
		}
	}

	// vectors live at the end of the last bank
	end := len(prg)
	prg[end-6] = uint8(cfg.NMIVector)
	prg[end-5] = uint8(cfg.NMIVector >> 8)
	prg[end-4] = uint8(cfg.ResetVector)
	prg[end-3] = uint8(cfg.ResetVector >> 8)
	prg[end-2] = uint8(cfg.IRQVector)
	prg[end-1] = uint8(cfg.IRQVector >> 8)

	var chr []uint8
	if cfg.CHRSize > 0 {
		chr = make([]uint8, int(cfg.CHRSize)*chrBankSize)
		copy(chr, cfg.CHRData)
	}

	return Descriptor{
		PRG:      prg,
		CHR:      chr,
		MapperID: cfg.MapperID,
		Mirror:   cfg.Mirroring,
		Battery:  cfg.HasBattery,
	}, nil
}

// Build generates the ROM as an iNES image.
func (b *TestROMBuilder) Build() ([]byte, error) {
	desc, err := b.Descriptor()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := EncodeINES(&buf, desc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildCartridge generates the ROM and loads it through the iNES parser.
func (b *TestROMBuilder) BuildCartridge() (*Cartridge, error) {
	data, err := b.Build()
	if err != nil {
		return nil, err
	}
	return LoadFromReader(bytes.NewReader(data))
}
