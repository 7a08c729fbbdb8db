// Package memory implements the CPU and PPU address maps of the NES.
package memory

import (
	"nesemu/internal/cartridge"
)

// Memory represents the CPU memory map
type Memory struct {
	// Internal RAM (2KB, mirrored to 8KB)
	ram [0x800]uint8

	ppuRegisters PPUInterface
	apuRegisters APUInterface
	inputSystem  InputInterface
	cartridge    CartridgeInterface

	// called on a write to $4014
	dmaCallback func(uint8)

	// last value driven on the data bus, returned for unmapped reads
	openBus uint8
}

// PPUInterface defines the interface for PPU register access
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface defines the interface for APU register access
type APUInterface interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputInterface defines the interface for controller port access. Only
// the low five bits of Read are driven by the ports.
type InputInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CartridgeInterface defines the CPU side of the cartridge
type CartridgeInterface interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
}

// New creates a new Memory instance
func New(ppu PPUInterface, apu APUInterface, cart CartridgeInterface) *Memory {
	mem := &Memory{
		ppuRegisters: ppu,
		apuRegisters: apu,
		cartridge:    cart,
	}
	mem.initializePowerUpRAM()
	return mem
}

// SetInputSystem sets the input system for controller access
func (m *Memory) SetInputSystem(input InputInterface) {
	m.inputSystem = input
}

// SetDMACallback sets the OAM DMA callback function
func (m *Memory) SetDMACallback(callback func(uint8)) {
	m.dmaCallback = callback
}

// initializePowerUpRAM fills RAM with the $00/$FF pattern commonly seen on
// power up. It is deterministic so that runs are repeatable.
func (m *Memory) initializePowerUpRAM() {
	for i := range m.ram {
		if (i/4)%2 == 0 {
			m.ram[i] = 0x00
		} else {
			m.ram[i] = 0xFF
		}
	}
}

// OpenBus returns the current open bus value.
func (m *Memory) OpenBus() uint8 {
	return m.openBus
}

// Read reads a byte from the given address
func (m *Memory) Read(address uint16) uint8 {
	var value uint8

	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]

	case address < 0x4000:
		// PPU registers, mirrored every 8 bytes
		value = m.ppuRegisters.ReadRegister(0x2000 + (address & 0x0007))

	case address < 0x4020:
		switch address {
		case 0x4015:
			// bit 5 is not driven
			value = (m.apuRegisters.ReadStatus() & 0xDF) | (m.openBus & 0x20)
		case 0x4016, 0x4017:
			value = m.openBus & 0xE0
			if m.inputSystem != nil {
				value |= m.inputSystem.Read(address) & 0x1F
			}
		default:
			// write-only APU registers and the test registers
			value = m.openBus
		}

	case address < 0x6000:
		// expansion area, nothing connected
		value = m.openBus

	default:
		if m.cartridge != nil {
			value = m.cartridge.ReadPRG(address)
		} else {
			value = m.openBus
		}
	}

	m.openBus = value
	return value
}

// Peek reads a byte without side effects. Registers are not read; the open
// bus value is returned for them instead.
func (m *Memory) Peek(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return m.ram[address&0x07FF]
	case address < 0x6000:
		return m.openBus
	}
	if m.cartridge != nil {
		return m.cartridge.ReadPRG(address)
	}
	return m.openBus
}

// Write writes a byte to the given address
func (m *Memory) Write(address uint16, value uint8) {
	m.openBus = value

	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value

	case address < 0x4000:
		m.ppuRegisters.WriteRegister(0x2000+(address&0x0007), value)

	case address < 0x4020:
		switch {
		case address == 0x4014:
			if m.dmaCallback != nil {
				m.dmaCallback(value)
			} else {
				m.performOAMDMA(value)
			}
		case address == 0x4016:
			if m.inputSystem != nil {
				m.inputSystem.Write(address, value)
			}
		case address <= 0x4013, address == 0x4015, address == 0x4017:
			m.apuRegisters.WriteRegister(address, value)
		}
		// $4018-$401F test mode registers are ignored

	case address < 0x6000:
		// expansion area, writes ignored

	default:
		if m.cartridge != nil {
			m.cartridge.WritePRG(address, value)
		}
	}
}

// performOAMDMA copies a page to OAM immediately. Used only when no DMA
// callback is installed, so no cycles are stolen.
func (m *Memory) performOAMDMA(page uint8) {
	base := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		m.ppuRegisters.WriteRegister(0x2004, m.Read(base+i))
	}
}

// RAM returns the internal RAM for inspection.
func (m *Memory) RAM() *[0x800]uint8 {
	return &m.ram
}

// CHRInterface is the PPU side of the cartridge.
type CHRInterface interface {
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	Mirroring() cartridge.MirrorMode
}

// PPUMemory represents the PPU's address space
type PPUMemory struct {
	vram       [0x1000]uint8 // 2KB CIRAM plus 2KB for four-screen boards
	paletteRAM [32]uint8
	cartridge  CHRInterface
}

// NewPPUMemory creates a new PPU memory instance
func NewPPUMemory(cart CHRInterface) *PPUMemory {
	mem := &PPUMemory{
		cartridge: cart,
	}
	mem.Reset()
	return mem
}

// Reset sets the palette to its power-on contents. Nametable RAM is left
// alone, as on hardware.
func (pm *PPUMemory) Reset() {
	for i := range pm.paletteRAM {
		pm.paletteRAM[i] = 0
	}
	for i := 0; i < 32; i += 4 {
		pm.paletteRAM[i] = 0x0F
	}
}

// Read reads from PPU memory space ($0000-$3FFF)
func (pm *PPUMemory) Read(address uint16) uint8 {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		return pm.cartridge.ReadCHR(address)
	case address < 0x3F00:
		// $3000-$3EFF mirrors $2000-$2EFF
		return pm.vram[pm.nametableIndex(address)]
	default:
		return pm.paletteRAM[paletteIndex(address)]
	}
}

// Write writes to PPU memory space ($0000-$3FFF)
func (pm *PPUMemory) Write(address uint16, value uint8) {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		pm.cartridge.WriteCHR(address, value)
	case address < 0x3F00:
		pm.vram[pm.nametableIndex(address)] = value
	default:
		pm.paletteRAM[paletteIndex(address)] = value & 0x3F
	}
}

// ReadPalette reads a palette entry by index 0-31.
func (pm *PPUMemory) ReadPalette(index uint8) uint8 {
	return pm.paletteRAM[paletteIndex(uint16(index))]
}

// nametableIndex resolves a nametable address through the cartridge's
// current mirroring.
func (pm *PPUMemory) nametableIndex(address uint16) uint16 {
	address &= 0x0FFF
	table := (address >> 10) & 3
	offset := address & 0x3FF

	switch pm.cartridge.Mirroring() {
	case cartridge.MirrorHorizontal:
		return (table>>1)*0x400 + offset
	case cartridge.MirrorVertical:
		return (table&1)*0x400 + offset
	case cartridge.MirrorSingleScreen0:
		return offset
	case cartridge.MirrorSingleScreen1:
		return 0x400 + offset
	case cartridge.MirrorFourScreen:
		return table*0x400 + offset
	}
	return offset
}

// paletteIndex folds an address onto the 32 palette bytes; the sprite
// backdrop entries $10/$14/$18/$1C share storage with $00/$04/$08/$0C.
func paletteIndex(address uint16) uint16 {
	index := address & 0x1F
	if index >= 0x10 && index&0x03 == 0 {
		index -= 0x10
	}
	return index
}
