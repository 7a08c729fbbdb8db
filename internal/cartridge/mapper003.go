package cartridge

// cnrom is mapper 3: NROM PRG with a switchable 8KB CHR bank.
type cnrom struct {
	chrBank uint8
}

func (m *cnrom) write(value uint8) {
	m.chrBank = value & 0x03
}

func (cnrom) prgOffset(c *Cartridge, address uint16) int {
	return int(address-0x8000) % len(c.prgROM)
}

func (m *cnrom) chrOffset(c *Cartridge, address uint16) int {
	return chrBankOffset(c, int(m.chrBank), chrBankSize) + int(address)
}
