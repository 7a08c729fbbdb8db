package cartridge

// mmc1 is mapper 1. Registers are loaded one bit at a time through a
// five bit shift register; the fifth write selects the target register by
// address.
type mmc1 struct {
	shift   uint8
	control uint8
	chr0    uint8
	chr1    uint8
	prg     uint8

	// CPU cycle of the last register write
	lastWrite uint64
	wrote     bool
}

func (m *mmc1) reset() {
	*m = mmc1{shift: 0x10, control: 0x0C}
}

// write loads the shift register. The serial port ignores a write on the
// cycle right after another one, which makes the double write of a
// read-modify-write instruction count once.
func (m *mmc1) write(address uint16, value uint8, cycle uint64) {
	consecutive := m.wrote && cycle == m.lastWrite+1
	m.lastWrite, m.wrote = cycle, true
	if consecutive {
		return
	}

	if value&0x80 != 0 {
		m.shift = 0x10
		m.control |= 0x0C
		return
	}

	full := m.shift&0x01 == 0x01
	m.shift >>= 1
	m.shift |= (value & 0x01) << 4
	if !full {
		return
	}

	v := m.shift
	m.shift = 0x10
	switch {
	case address <= 0x9FFF:
		m.control = v
	case address <= 0xBFFF:
		m.chr0 = v
	case address <= 0xDFFF:
		m.chr1 = v
	default:
		m.prg = v & 0x0F
	}
}

func (m *mmc1) prgOffset(c *Cartridge, address uint16) int {
	// 512KB boards use CHR bank bit 4 to select the outer 256KB half
	outer := 0
	if len(c.prgROM) > 0x40000 {
		outer = int(m.chr0&0x10) * prgBankSize
	}

	var offset int
	switch (m.control >> 2) & 0x03 {
	case 0, 1:
		offset = prgBankOffset(c, int(m.prg>>1), 0x8000) + int(address-0x8000)
	case 2:
		if address < 0xC000 {
			offset = int(address - 0x8000)
		} else {
			offset = prgBankOffset(c, int(m.prg), prgBankSize) + int(address-0xC000)
		}
	case 3:
		if address < 0xC000 {
			offset = prgBankOffset(c, int(m.prg), prgBankSize) + int(address-0x8000)
		} else {
			last := -1
			if len(c.prgROM) > 0x40000 {
				last = 0x0F
			}
			offset = prgBankOffset(c, last, prgBankSize) + int(address-0xC000)
		}
	}
	return outer + offset
}

func (m *mmc1) chrOffset(c *Cartridge, address uint16) int {
	if m.control&0x10 == 0 {
		return chrBankOffset(c, int(m.chr0>>1), chrBankSize) + int(address)
	}
	if address < 0x1000 {
		return chrBankOffset(c, int(m.chr0), 0x1000) + int(address)
	}
	return chrBankOffset(c, int(m.chr1), 0x1000) + int(address-0x1000)
}

func (m *mmc1) mirroring() MirrorMode {
	switch m.control & 0x03 {
	case 0:
		return MirrorSingleScreen0
	case 1:
		return MirrorSingleScreen1
	case 2:
		return MirrorVertical
	}
	return MirrorHorizontal
}
