package cartridge

import (
	"testing"
)

// bankedCartridge builds a cartridge whose every PRG 8KB bank is filled with
// its bank number and every CHR 1KB bank likewise.
func bankedCartridge(t *testing.T, mapper uint8, prg16k, chr8k int) *Cartridge {
	t.Helper()
	desc := Descriptor{
		PRG:      make([]uint8, prg16k*prgBankSize),
		MapperID: mapper,
		Mirror:   MirrorHorizontal,
	}
	for i := range desc.PRG {
		desc.PRG[i] = uint8(i / 0x2000)
	}
	if chr8k > 0 {
		desc.CHR = make([]uint8, chr8k*chrBankSize)
		for i := range desc.CHR {
			desc.CHR[i] = uint8(i / 0x0400)
		}
	}
	cart, err := New(desc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return cart
}

func TestNROM_32KB(t *testing.T) {
	cart := bankedCartridge(t, 0, 2, 1)
	if cart.ReadPRG(0x8000) != 0 || cart.ReadPRG(0xE000) != 3 {
		t.Errorf("Expected 32KB linear mapping, got %d/%d", cart.ReadPRG(0x8000), cart.ReadPRG(0xE000))
	}
	// writes to ROM are ignored
	cart.WritePRG(0x8000, 0xFF)
	if cart.ReadPRG(0x8000) != 0 {
		t.Errorf("NROM PRG was modified")
	}
}

func TestUxROM(t *testing.T) {
	cart := bankedCartridge(t, 2, 8, 0)

	// last 16KB bank is fixed at $C000
	if got := cart.ReadPRG(0xC000); got != 14 {
		t.Errorf("Expected fixed last bank (8KB bank 14), got %d", got)
	}

	cart.WritePRG(0x8000, 3)
	if got := cart.ReadPRG(0x8000); got != 6 {
		t.Errorf("Expected 16KB bank 3 at $8000 (8KB bank 6), got %d", got)
	}
	if got := cart.ReadPRG(0xA000); got != 7 {
		t.Errorf("Expected 8KB bank 7 at $A000, got %d", got)
	}
	if got := cart.ReadPRG(0xC000); got != 14 {
		t.Errorf("Fixed bank moved, got %d", got)
	}
}

func TestCNROM(t *testing.T) {
	cart := bankedCartridge(t, 3, 2, 4)
	cart.WritePRG(0x8000, 2)
	if got := cart.ReadCHR(0x0000); got != 16 {
		t.Errorf("Expected CHR 8KB bank 2 (1KB bank 16), got %d", got)
	}
	if got := cart.ReadCHR(0x1C00); got != 23 {
		t.Errorf("Expected 1KB bank 23, got %d", got)
	}
}

func TestAxROM(t *testing.T) {
	cart := bankedCartridge(t, 7, 8, 0)
	if cart.Mirroring() != MirrorSingleScreen0 {
		t.Errorf("Expected single-screen A at power on, got %v", cart.Mirroring())
	}
	cart.WritePRG(0x8000, 0x12)
	if got := cart.ReadPRG(0x8000); got != 8 {
		t.Errorf("Expected 32KB bank 2 (8KB bank 8), got %d", got)
	}
	if cart.Mirroring() != MirrorSingleScreen1 {
		t.Errorf("Expected single-screen B, got %v", cart.Mirroring())
	}
}

func writeMMC1(cart *Cartridge, address uint16, value uint8) {
	for i := 0; i < 5; i++ {
		cart.WritePRG(address, (value>>i)&0x01)
	}
}

func TestMMC1(t *testing.T) {
	cart := bankedCartridge(t, 1, 8, 2)

	// power on: PRG mode 3, last bank fixed at $C000
	if got := cart.ReadPRG(0xC000); got != 14 {
		t.Errorf("Expected last bank at $C000, got %d", got)
	}

	writeMMC1(cart, 0xE000, 0x02)
	if got := cart.ReadPRG(0x8000); got != 4 {
		t.Errorf("Expected 16KB bank 2 at $8000, got %d", got)
	}

	// mode 2 fixes the first bank at $8000
	writeMMC1(cart, 0x8000, 0x08|0x02)
	if got := cart.ReadPRG(0x8000); got != 0 {
		t.Errorf("Expected first bank at $8000, got %d", got)
	}
	if got := cart.ReadPRG(0xC000); got != 4 {
		t.Errorf("Expected bank 2 at $C000, got %d", got)
	}
	if cart.Mirroring() != MirrorVertical {
		t.Errorf("Expected vertical mirroring, got %v", cart.Mirroring())
	}

	// 4KB CHR mode
	writeMMC1(cart, 0x8000, 0x10|0x0C|0x03)
	writeMMC1(cart, 0xA000, 1)
	writeMMC1(cart, 0xC000, 3)
	if got := cart.ReadCHR(0x0000); got != 4 {
		t.Errorf("Expected 4KB CHR bank 1 (1KB bank 4), got %d", got)
	}
	if got := cart.ReadCHR(0x1000); got != 12 {
		t.Errorf("Expected 4KB CHR bank 3 (1KB bank 12), got %d", got)
	}
	if cart.Mirroring() != MirrorHorizontal {
		t.Errorf("Expected horizontal mirroring, got %v", cart.Mirroring())
	}
}

func TestMMC1_ResetBit(t *testing.T) {
	cart := bankedCartridge(t, 1, 8, 1)

	// a partial write sequence is discarded by bit 7
	cart.WritePRG(0xE000, 1)
	cart.WritePRG(0xE000, 1)
	cart.WritePRG(0xE000, 0x80)
	writeMMC1(cart, 0xE000, 0x01)
	if got := cart.ReadPRG(0x8000); got != 2 {
		t.Errorf("Expected 16KB bank 1 at $8000 after reset sequence, got %d", got)
	}
}

func TestMMC1_IgnoresConsecutiveWrites(t *testing.T) {
	cart := bankedCartridge(t, 1, 8, 1)

	// a read-modify-write stores twice on back to back cycles
	cycle := uint64(100)
	for _, bit := range []uint8{1, 0, 0, 0, 0} {
		cart.SetCPUCycle(cycle)
		cart.WritePRG(0xE000, bit)
		cart.SetCPUCycle(cycle + 1)
		cart.WritePRG(0xE000, bit^1)
		cycle += 6
	}
	if got := cart.ReadPRG(0x8000); got != 2 {
		t.Errorf("Expected only the first of each write pair to load, got %d", got)
	}
}

func TestMMC3_Banking(t *testing.T) {
	cart := bankedCartridge(t, 4, 8, 8)

	// R6=4, R7=5
	cart.WritePRG(0x8000, 6)
	cart.WritePRG(0x8001, 4)
	cart.WritePRG(0x8000, 7)
	cart.WritePRG(0x8001, 5)

	if got := cart.ReadPRG(0x8000); got != 4 {
		t.Errorf("Expected R6 at $8000, got %d", got)
	}
	if got := cart.ReadPRG(0xA000); got != 5 {
		t.Errorf("Expected R7 at $A000, got %d", got)
	}
	if got := cart.ReadPRG(0xC000); got != 14 {
		t.Errorf("Expected second last bank at $C000, got %d", got)
	}
	if got := cart.ReadPRG(0xE000); got != 15 {
		t.Errorf("Expected last bank at $E000, got %d", got)
	}

	// PRG mode 1 swaps $8000 and $C000
	cart.WritePRG(0x8000, 0x40|6)
	if got := cart.ReadPRG(0x8000); got != 14 {
		t.Errorf("Expected second last bank at $8000, got %d", got)
	}
	if got := cart.ReadPRG(0xC000); got != 4 {
		t.Errorf("Expected R6 at $C000, got %d", got)
	}

	// R0 is a 2KB bank, low bit ignored
	cart.WritePRG(0x8000, 0)
	cart.WritePRG(0x8001, 9)
	if cart.ReadCHR(0x0000) != 8 || cart.ReadCHR(0x0400) != 9 {
		t.Errorf("Expected R0 2KB bank 8/9, got %d/%d", cart.ReadCHR(0x0000), cart.ReadCHR(0x0400))
	}
	// R2 is a 1KB bank at $1000
	cart.WritePRG(0x8000, 2)
	cart.WritePRG(0x8001, 33)
	if got := cart.ReadCHR(0x1000); got != 33 {
		t.Errorf("Expected R2 at $1000, got %d", got)
	}
	// CHR inversion moves R2 to $0000
	cart.WritePRG(0x8000, 0x80|2)
	if got := cart.ReadCHR(0x0000); got != 33 {
		t.Errorf("Expected R2 at $0000 with inversion, got %d", got)
	}

	cart.WritePRG(0xA000, 0)
	if cart.Mirroring() != MirrorVertical {
		t.Errorf("Expected vertical mirroring")
	}
	cart.WritePRG(0xA000, 1)
	if cart.Mirroring() != MirrorHorizontal {
		t.Errorf("Expected horizontal mirroring")
	}
}

func TestMMC3_IRQCounter(t *testing.T) {
	cart := bankedCartridge(t, 4, 2, 1)

	cart.WritePRG(0xC000, 3) // latch
	cart.WritePRG(0xC001, 0) // reload
	cart.WritePRG(0xE001, 0) // enable

	// first edge reloads to 3, then 2, 1, 0
	for i := 0; i < 3; i++ {
		cart.OnA12Rise()
		if cart.IRQ() {
			t.Fatalf("IRQ asserted early after %d edges", i+1)
		}
	}
	cart.OnA12Rise()
	if !cart.IRQ() {
		t.Fatalf("Expected IRQ after counter reached zero")
	}

	// acknowledge
	cart.WritePRG(0xE000, 0)
	if cart.IRQ() {
		t.Errorf("Expected $E000 to acknowledge the IRQ")
	}

	// counter reloads from latch on the next edge
	cart.WritePRG(0xE001, 0)
	cart.OnA12Rise()
	if cart.IRQ() {
		t.Errorf("IRQ asserted on reload with non-zero latch")
	}
}

func TestMMC3_LatchZero(t *testing.T) {
	cart := bankedCartridge(t, 4, 2, 1)
	cart.WritePRG(0xC000, 0)
	cart.WritePRG(0xE001, 0)

	// a zero latch fires on every edge
	for i := 0; i < 3; i++ {
		cart.OnA12Rise()
		if !cart.IRQ() {
			t.Errorf("Expected IRQ on edge %d with latch 0", i+1)
		}
		cart.WritePRG(0xE000, 0)
		cart.WritePRG(0xE001, 0)
	}
}

func TestMMC3_DisabledNoIRQ(t *testing.T) {
	cart := bankedCartridge(t, 4, 2, 1)
	cart.WritePRG(0xC000, 1)
	cart.WritePRG(0xC001, 0)
	for i := 0; i < 4; i++ {
		cart.OnA12Rise()
	}
	if cart.IRQ() {
		t.Errorf("IRQ asserted while disabled")
	}
}

func TestMapperReset(t *testing.T) {
	cart := bankedCartridge(t, 2, 4, 0)
	cart.WritePRG(0x8000, 2)
	cart.Reset()
	if got := cart.ReadPRG(0x8000); got != 0 {
		t.Errorf("Expected bank 0 after reset, got %d", got)
	}
}

func TestNonMMC3IgnoresA12(t *testing.T) {
	cart := bankedCartridge(t, 0, 1, 1)
	for i := 0; i < 10; i++ {
		cart.OnA12Rise()
	}
	if cart.IRQ() {
		t.Errorf("NROM asserted IRQ")
	}
}
