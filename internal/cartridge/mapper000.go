package cartridge

// nrom is mapper 0. 16KB of PRG is mirrored into both halves of
// $8000-$FFFF; there are no registers.
type nrom struct{}

func (nrom) prgOffset(c *Cartridge, address uint16) int {
	return int(address-0x8000) % len(c.prgROM)
}
