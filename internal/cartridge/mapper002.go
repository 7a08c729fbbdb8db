package cartridge

// uxrom is mapper 2. $8000-$BFFF is a switchable 16KB bank and
// $C000-$FFFF is fixed to the last bank.
type uxrom struct {
	bank uint8
}

func (m *uxrom) write(value uint8) {
	m.bank = value
}

func (m *uxrom) prgOffset(c *Cartridge, address uint16) int {
	if address < 0xC000 {
		return prgBankOffset(c, int(m.bank), prgBankSize) + int(address-0x8000)
	}
	return prgBankOffset(c, -1, prgBankSize) + int(address-0xC000)
}
