package cartridge

// mmc3 is mapper 4. Eight bank registers map 8KB PRG and 1KB/2KB CHR
// windows, and a scanline counter clocked by rising edges of PPU address
// line A12 raises IRQs.
type mmc3 struct {
	selected  uint8
	registers [8]uint8
	prgMode   uint8
	chrMode   uint8
	mirroring MirrorMode

	latch         uint8
	counter       uint8
	reloadPending bool
	irqEnabled    bool
	irqPending    bool
}

func (m *mmc3) reset(mirror MirrorMode) {
	*m = mmc3{
		registers: [8]uint8{0, 2, 4, 5, 6, 7, 0, 1},
		mirroring: mirror,
	}
}

func (m *mmc3) write(address uint16, value uint8) {
	even := address&0x01 == 0
	switch {
	case address <= 0x9FFF:
		if even {
			m.selected = value & 0x07
			m.prgMode = (value >> 6) & 0x01
			m.chrMode = (value >> 7) & 0x01
		} else {
			m.registers[m.selected] = value
		}
	case address <= 0xBFFF:
		// odd addresses are PRG RAM protect, which is not emulated
		if even {
			if value&0x01 == 0 {
				m.mirroring = MirrorVertical
			} else {
				m.mirroring = MirrorHorizontal
			}
		}
	case address <= 0xDFFF:
		if even {
			m.latch = value
		} else {
			m.counter = 0
			m.reloadPending = true
		}
	default:
		if even {
			m.irqEnabled = false
			m.irqPending = false
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *mmc3) prgOffset(c *Cartridge, address uint16) int {
	var bank int
	switch slot := (address - 0x8000) / 0x2000; slot {
	case 0:
		if m.prgMode == 0 {
			bank = int(m.registers[6])
		} else {
			bank = -2
		}
	case 1:
		bank = int(m.registers[7])
	case 2:
		if m.prgMode == 0 {
			bank = -2
		} else {
			bank = int(m.registers[6])
		}
	default:
		bank = -1
	}
	return prgBankOffset(c, bank, 0x2000) + int(address&0x1FFF)
}

func (m *mmc3) chrOffset(c *Cartridge, address uint16) int {
	slot := address / 0x0400
	if m.chrMode == 1 {
		slot ^= 0x04
	}

	var bank int
	switch slot {
	case 0:
		bank = int(m.registers[0] & 0xFE)
	case 1:
		bank = int(m.registers[0] | 0x01)
	case 2:
		bank = int(m.registers[1] & 0xFE)
	case 3:
		bank = int(m.registers[1] | 0x01)
	default:
		bank = int(m.registers[slot-2])
	}
	return chrBankOffset(c, bank, 0x0400) + int(address&0x03FF)
}

// clockCounter is called once per filtered A12 rising edge.
func (m *mmc3) clockCounter() {
	if m.counter == 0 || m.reloadPending {
		m.counter = m.latch
		m.reloadPending = false
	} else {
		m.counter--
	}
	if m.counter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}
