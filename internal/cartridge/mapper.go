package cartridge

import "fmt"

// MapperKind tags the banking behaviour of a Mapper.
type MapperKind uint8

const (
	KindNROM MapperKind = iota
	KindMMC1
	KindUxROM
	KindCNROM
	KindMMC3
	KindAxROM
)

func (k MapperKind) String() string {
	switch k {
	case KindNROM:
		return "NROM"
	case KindMMC1:
		return "MMC1"
	case KindUxROM:
		return "UxROM"
	case KindCNROM:
		return "CNROM"
	case KindMMC3:
		return "MMC3"
	case KindAxROM:
		return "AxROM"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// iNES mapper numbers of the supported variants.
var mapperKinds = map[uint8]MapperKind{
	0: KindNROM,
	1: KindMMC1,
	2: KindUxROM,
	3: KindCNROM,
	4: KindMMC3,
	7: KindAxROM,
}

// Mapper is the cartridge banking logic. It is a closed set of variants
// selected by Kind; each access switches on the kind once and hands off to
// the variant's state. Only the state of the active variant is used.
type Mapper struct {
	Kind MapperKind
	cart *Cartridge

	// CPU cycle of the access in progress
	cycle uint64

	nrom  nrom
	mmc1  mmc1
	uxrom uxrom
	cnrom cnrom
	mmc3  mmc3
	axrom axrom
}

func newMapper(kind MapperKind, cart *Cartridge) *Mapper {
	m := &Mapper{Kind: kind, cart: cart}
	m.Reset()
	return m
}

// Reset restores the variant's power-on bank configuration.
func (m *Mapper) Reset() {
	switch m.Kind {
	case KindNROM:
		m.nrom = nrom{}
	case KindMMC1:
		m.mmc1.reset()
	case KindUxROM:
		m.uxrom = uxrom{}
	case KindCNROM:
		m.cnrom = cnrom{}
	case KindMMC3:
		m.mmc3.reset(m.cart.desc.Mirror)
	case KindAxROM:
		m.axrom = axrom{}
	}
}

// ReadPRG reads CPU space $6000-$FFFF.
func (m *Mapper) ReadPRG(address uint16) uint8 {
	if address < 0x8000 {
		return m.readRAM(address)
	}
	c := m.cart
	var offset int
	switch m.Kind {
	case KindNROM:
		offset = m.nrom.prgOffset(c, address)
	case KindMMC1:
		offset = m.mmc1.prgOffset(c, address)
	case KindUxROM:
		offset = m.uxrom.prgOffset(c, address)
	case KindCNROM:
		offset = m.cnrom.prgOffset(c, address)
	case KindMMC3:
		offset = m.mmc3.prgOffset(c, address)
	case KindAxROM:
		offset = m.axrom.prgOffset(c, address)
	}
	return c.prgROM[offset%len(c.prgROM)]
}

// WritePRG writes CPU space $6000-$FFFF. Writes to $8000-$FFFF are
// register writes for every variant except NROM.
func (m *Mapper) WritePRG(address uint16, value uint8) {
	if address < 0x8000 {
		m.writeRAM(address, value)
		return
	}
	switch m.Kind {
	case KindMMC1:
		m.mmc1.write(address, value, m.cycle)
	case KindUxROM:
		m.uxrom.write(value)
	case KindCNROM:
		m.cnrom.write(value)
	case KindMMC3:
		m.mmc3.write(address, value)
	case KindAxROM:
		m.axrom.write(value)
	}
}

// ReadCHR reads PPU space $0000-$1FFF.
func (m *Mapper) ReadCHR(address uint16) uint8 {
	return m.cart.chr[m.chrOffset(address&0x1FFF)%len(m.cart.chr)]
}

// WriteCHR writes PPU space $0000-$1FFF. Only CHR RAM is writable.
func (m *Mapper) WriteCHR(address uint16, value uint8) {
	if !m.cart.hasCHRRAM {
		return
	}
	m.cart.chr[m.chrOffset(address&0x1FFF)%len(m.cart.chr)] = value
}

func (m *Mapper) chrOffset(address uint16) int {
	c := m.cart
	switch m.Kind {
	case KindMMC1:
		return m.mmc1.chrOffset(c, address)
	case KindCNROM:
		return m.cnrom.chrOffset(c, address)
	case KindMMC3:
		return m.mmc3.chrOffset(c, address)
	}
	return int(address)
}

// Mirroring returns the nametable arrangement currently selected.
func (m *Mapper) Mirroring() MirrorMode {
	fixed := m.cart.desc.Mirror
	if fixed == MirrorFourScreen {
		return fixed
	}
	switch m.Kind {
	case KindMMC1:
		return m.mmc1.mirroring()
	case KindMMC3:
		return m.mmc3.mirroring
	case KindAxROM:
		return m.axrom.mirroring()
	}
	return fixed
}

// OnA12Rise clocks the scanline counter of the variants that have one.
func (m *Mapper) OnA12Rise() {
	if m.Kind == KindMMC3 {
		m.mmc3.clockCounter()
	}
}

// IRQ reports whether the mapper is pulling the IRQ line low.
func (m *Mapper) IRQ() bool {
	if m.Kind == KindMMC3 {
		return m.mmc3.irqPending
	}
	return false
}

func (m *Mapper) readRAM(address uint16) uint8 {
	if address < 0x6000 {
		return 0
	}
	ram := m.cart.sram
	return ram[int(address-0x6000)%len(ram)]
}

func (m *Mapper) writeRAM(address uint16, value uint8) {
	if address < 0x6000 {
		return
	}
	ram := m.cart.sram
	ram[int(address-0x6000)%len(ram)] = value
}

// bank helpers. Bank numbers wrap around the available ROM and negative
// numbers count back from the last bank.

func prgBankOffset(c *Cartridge, bank int, size int) int {
	count := len(c.prgROM) / size
	if count == 0 {
		return 0
	}
	bank %= count
	if bank < 0 {
		bank += count
	}
	return bank * size
}

func chrBankOffset(c *Cartridge, bank int, size int) int {
	count := len(c.chr) / size
	if count == 0 {
		return 0
	}
	bank %= count
	if bank < 0 {
		bank += count
	}
	return bank * size
}
