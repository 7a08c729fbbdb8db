// Package cartridge implements the ROM descriptor, iNES loading and the
// mapper variants that bank-switch a cartridge's PRG and CHR memory.
package cartridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"nesemu/internal/logger"
)

// Load-time errors. A cartridge that fails with any of these is never
// constructed.
var (
	ErrInvalidHeader     = errors.New("invalid iNES header")
	ErrTruncatedImage    = errors.New("truncated ROM image")
	ErrEmptyPRG          = errors.New("PRG ROM size cannot be zero")
	ErrUnsupportedMapper = errors.New("unsupported mapper")
	ErrSaveRAMSize       = errors.New("save RAM size mismatch")
)

// MirrorMode represents nametable mirroring mode
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

func (m MirrorMode) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorSingleScreen0:
		return "single-screen A"
	case MirrorSingleScreen1:
		return "single-screen B"
	case MirrorFourScreen:
		return "four-screen"
	}
	return fmt.Sprintf("mirror(%d)", uint8(m))
}

const (
	prgBankSize = 0x4000
	chrBankSize = 0x2000
	prgRAMSize  = 0x2000
)

// Descriptor is the parsed form of a cartridge image. It is immutable once
// handed to New; the cartridge keeps references to PRG and CHR, it does not
// copy them.
type Descriptor struct {
	PRG        []uint8
	CHR        []uint8 // empty means 8KB of CHR RAM
	MapperID   uint8
	Mirror     MirrorMode
	Battery    bool
	PRGRAMSize int // zero means the default 8KB
}

// Cartridge represents a NES cartridge
type Cartridge struct {
	desc Descriptor

	prgROM []uint8
	chr    []uint8
	sram   []uint8

	hasCHRRAM bool

	mapper *Mapper
}

// New builds a cartridge from a descriptor. The mapper is chosen by
// MapperID; an unknown id is an error.
func New(desc Descriptor) (*Cartridge, error) {
	if len(desc.PRG) == 0 {
		return nil, ErrEmptyPRG
	}

	kind, ok := mapperKinds[desc.MapperID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, desc.MapperID)
	}

	cart := &Cartridge{
		desc:   desc,
		prgROM: desc.PRG,
		chr:    desc.CHR,
	}

	if len(cart.chr) == 0 {
		cart.chr = make([]uint8, chrBankSize)
		cart.hasCHRRAM = true
	}

	ramSize := desc.PRGRAMSize
	if ramSize <= 0 {
		ramSize = prgRAMSize
	}
	cart.sram = make([]uint8, ramSize)

	cart.mapper = newMapper(kind, cart)

	chrType := "ROM"
	if cart.hasCHRRAM {
		chrType = "RAM"
	}
	logger.Logf(logger.TagCart, "mapper %d (%s), PRG %dKB, CHR %s %dKB, %s mirroring",
		desc.MapperID, kind, len(cart.prgROM)/1024, chrType, len(cart.chr)/1024, desc.Mirror)

	return cart, nil
}

// iNES header structure
type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // in 16KB units
	CHRROMSize uint8 // in 8KB units
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8 // in 8KB units, zero means 8KB
	TVSystem1  uint8
	TVSystem2  uint8
	Padding    [5]uint8
}

// LoadFromFile loads a cartridge from an iNES file
func LoadFromFile(filename string) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cart, err := LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cart, nil
}

// LoadFromReader parses an iNES image into a Descriptor and builds the
// cartridge from it.
func LoadFromReader(r io.Reader) (*Cartridge, error) {
	desc, err := ParseINES(r)
	if err != nil {
		return nil, err
	}
	return New(desc)
}

// ParseINES reads an iNES image.
func ParseINES(r io.Reader) (Descriptor, error) {
	var header iNESHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	if string(header.Magic[:]) != "NES\x1A" {
		return Descriptor{}, ErrInvalidHeader
	}

	if header.PRGROMSize == 0 {
		return Descriptor{}, ErrEmptyPRG
	}

	desc := Descriptor{
		MapperID: (header.Flags6 >> 4) | (header.Flags7 & 0xF0),
		Battery:  (header.Flags6 & 0x02) != 0,
	}

	if header.PRGRAMSize > 0 {
		desc.PRGRAMSize = int(header.PRGRAMSize) * prgRAMSize
	}

	if (header.Flags6 & 0x08) != 0 {
		desc.Mirror = MirrorFourScreen
	} else if (header.Flags6 & 0x01) != 0 {
		desc.Mirror = MirrorVertical
	} else {
		desc.Mirror = MirrorHorizontal
	}

	// the trainer is not used by any supported mapper
	if (header.Flags6 & 0x04) != 0 {
		if _, err := io.CopyN(io.Discard, r, 512); err != nil {
			return Descriptor{}, fmt.Errorf("%w: trainer: %v", ErrTruncatedImage, err)
		}
	}

	desc.PRG = make([]uint8, int(header.PRGROMSize)*prgBankSize)
	if _, err := io.ReadFull(r, desc.PRG); err != nil {
		return Descriptor{}, fmt.Errorf("%w: PRG: %v", ErrTruncatedImage, err)
	}

	if header.CHRROMSize > 0 {
		desc.CHR = make([]uint8, int(header.CHRROMSize)*chrBankSize)
		if _, err := io.ReadFull(r, desc.CHR); err != nil {
			return Descriptor{}, fmt.Errorf("%w: CHR: %v", ErrTruncatedImage, err)
		}
	}

	return desc, nil
}

// EncodeINES writes a descriptor as an iNES image. PRG must be a multiple
// of 16KB and CHR a multiple of 8KB.
func EncodeINES(w io.Writer, desc Descriptor) error {
	if len(desc.PRG) == 0 || len(desc.PRG)%prgBankSize != 0 {
		return fmt.Errorf("%w: PRG size %d", ErrInvalidHeader, len(desc.PRG))
	}
	if len(desc.CHR)%chrBankSize != 0 {
		return fmt.Errorf("%w: CHR size %d", ErrInvalidHeader, len(desc.CHR))
	}

	header := iNESHeader{
		Magic:      [4]uint8{'N', 'E', 'S', 0x1A},
		PRGROMSize: uint8(len(desc.PRG) / prgBankSize),
		CHRROMSize: uint8(len(desc.CHR) / chrBankSize),
		Flags6:     (desc.MapperID & 0x0F) << 4,
		Flags7:     desc.MapperID & 0xF0,
		PRGRAMSize: uint8(desc.PRGRAMSize / prgRAMSize),
	}
	switch desc.Mirror {
	case MirrorVertical:
		header.Flags6 |= 0x01
	case MirrorFourScreen:
		header.Flags6 |= 0x08
	}
	if desc.Battery {
		header.Flags6 |= 0x02
	}

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	if _, err := w.Write(desc.PRG); err != nil {
		return err
	}
	_, err := w.Write(desc.CHR)
	return err
}

// Descriptor returns the descriptor the cartridge was built from.
func (c *Cartridge) Descriptor() Descriptor {
	return c.desc
}

// MapperID returns the iNES mapper number.
func (c *Cartridge) MapperID() uint8 {
	return c.desc.MapperID
}

// HasBattery reports whether PRG RAM is battery backed.
func (c *Cartridge) HasBattery() bool {
	return c.desc.Battery
}

// HasCHRRAM reports whether the pattern tables are writable RAM.
func (c *Cartridge) HasCHRRAM() bool {
	return c.hasCHRRAM
}

// ReadPRG reads CPU space $6000-$FFFF.
func (c *Cartridge) ReadPRG(address uint16) uint8 {
	return c.mapper.ReadPRG(address)
}

// WritePRG writes CPU space $6000-$FFFF.
func (c *Cartridge) WritePRG(address uint16, value uint8) {
	c.mapper.WritePRG(address, value)
}

// SetCPUCycle tells the mapper which CPU cycle the next register write
// happens on.
func (c *Cartridge) SetCPUCycle(cycle uint64) {
	c.mapper.cycle = cycle
}

// ReadCHR reads PPU space $0000-$1FFF.
func (c *Cartridge) ReadCHR(address uint16) uint8 {
	return c.mapper.ReadCHR(address)
}

// WriteCHR writes PPU space $0000-$1FFF.
func (c *Cartridge) WriteCHR(address uint16, value uint8) {
	c.mapper.WriteCHR(address, value)
}

// Mirroring returns the current nametable mirroring, which some mappers
// change at run time.
func (c *Cartridge) Mirroring() MirrorMode {
	return c.mapper.Mirroring()
}

// OnA12Rise is called by the PPU on each filtered rising edge of VRAM
// address line A12.
func (c *Cartridge) OnA12Rise() {
	c.mapper.OnA12Rise()
}

// IRQ reports whether the mapper is asserting the IRQ line.
func (c *Cartridge) IRQ() bool {
	return c.mapper.IRQ()
}

// Reset puts the mapper back into its power-on configuration. PRG RAM is
// left alone.
func (c *Cartridge) Reset() {
	c.mapper.Reset()
}

// Mapper returns the active mapper.
func (c *Cartridge) Mapper() *Mapper {
	return c.mapper
}

// SaveRAM returns a copy of PRG RAM for persisting battery saves.
func (c *Cartridge) SaveRAM() []uint8 {
	s := make([]uint8, len(c.sram))
	copy(s, c.sram)
	return s
}

// LoadRAM restores PRG RAM from a previous SaveRAM.
func (c *Cartridge) LoadRAM(data []uint8) error {
	if len(data) != len(c.sram) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSaveRAMSize, len(data), len(c.sram))
	}
	copy(c.sram, data)
	return nil
}
