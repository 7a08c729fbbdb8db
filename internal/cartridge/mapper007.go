package cartridge

// axrom is mapper 7: one switchable 32KB PRG bank and single-screen
// mirroring selected by bit 4 of the register.
type axrom struct {
	prgBank uint8
	screen  uint8
}

func (m *axrom) write(value uint8) {
	m.prgBank = value & 0x07
	m.screen = (value >> 4) & 0x01
}

func (m *axrom) prgOffset(c *Cartridge, address uint16) int {
	return prgBankOffset(c, int(m.prgBank), 0x8000) + int(address-0x8000)
}

func (m *axrom) mirroring() MirrorMode {
	if m.screen == 0 {
		return MirrorSingleScreen0
	}
	return MirrorSingleScreen1
}
