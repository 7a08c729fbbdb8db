package memory

import (
	"testing"

	"nesemu/internal/cartridge"
)

// MockPPU implements PPUInterface for testing
type MockPPU struct {
	registers  [8]uint8
	readCalls  []uint16
	writeCalls []RegisterWrite
}

type RegisterWrite struct {
	Address uint16
	Value   uint8
}

func (m *MockPPU) ReadRegister(address uint16) uint8 {
	m.readCalls = append(m.readCalls, address)
	return m.registers[address&0x7]
}

func (m *MockPPU) WriteRegister(address uint16, value uint8) {
	m.writeCalls = append(m.writeCalls, RegisterWrite{Address: address, Value: value})
	m.registers[address&0x7] = value
}

// MockAPU implements APUInterface for testing
type MockAPU struct {
	status     uint8
	writeCalls []RegisterWrite
}

func (m *MockAPU) WriteRegister(address uint16, value uint8) {
	m.writeCalls = append(m.writeCalls, RegisterWrite{Address: address, Value: value})
}

func (m *MockAPU) ReadStatus() uint8 {
	return m.status
}

// MockInput implements InputInterface for testing
type MockInput struct {
	value  uint8
	writes []RegisterWrite
}

func (m *MockInput) Read(address uint16) uint8 {
	return m.value
}

func (m *MockInput) Write(address uint16, value uint8) {
	m.writes = append(m.writes, RegisterWrite{Address: address, Value: value})
}

// MockCartridge implements CartridgeInterface and CHRInterface for testing
type MockCartridge struct {
	prgData   [0x10000]uint8
	chrData   [0x2000]uint8
	mirror    cartridge.MirrorMode
	prgWrites []RegisterWrite
}

func (m *MockCartridge) ReadPRG(address uint16) uint8 {
	return m.prgData[address]
}

func (m *MockCartridge) WritePRG(address uint16, value uint8) {
	m.prgWrites = append(m.prgWrites, RegisterWrite{Address: address, Value: value})
	if address < 0x8000 {
		m.prgData[address] = value
	}
}

func (m *MockCartridge) ReadCHR(address uint16) uint8 {
	return m.chrData[address&0x1FFF]
}

func (m *MockCartridge) WriteCHR(address uint16, value uint8) {
	m.chrData[address&0x1FFF] = value
}

func (m *MockCartridge) Mirroring() cartridge.MirrorMode {
	return m.mirror
}

func setupMemory() (*Memory, *MockPPU, *MockAPU, *MockCartridge) {
	ppu := &MockPPU{}
	apu := &MockAPU{}
	cart := &MockCartridge{}
	return New(ppu, apu, cart), ppu, apu, cart
}

func TestRAMMirroring(t *testing.T) {
	mem, _, _, _ := setupMemory()

	mem.Write(0x0123, 0x42)
	for _, addr := range []uint16{0x0123, 0x0923, 0x1123, 0x1923} {
		if got := mem.Read(addr); got != 0x42 {
			t.Errorf("Expected 0x42 at $%04X, got 0x%02X", addr, got)
		}
	}

	mem.Write(0x1FFF, 0x99)
	if got := mem.Read(0x07FF); got != 0x99 {
		t.Errorf("Expected write to $1FFF to land at $07FF, got 0x%02X", got)
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	mem, ppu, _, _ := setupMemory()

	mem.Write(0x3456, 0x12) // $3456 & 7 = 6
	if len(ppu.writeCalls) != 1 || ppu.writeCalls[0].Address != 0x2006 {
		t.Fatalf("Expected write to $2006, got %+v", ppu.writeCalls)
	}

	ppu.registers[2] = 0x80
	if got := mem.Read(0x2FFA); got != 0x80 {
		t.Errorf("Expected $2002 mirror to read 0x80, got 0x%02X", got)
	}
	if ppu.readCalls[0] != 0x2002 {
		t.Errorf("Expected read of $2002, got $%04X", ppu.readCalls[0])
	}
}

func TestAPURegisterWrites(t *testing.T) {
	mem, _, apu, _ := setupMemory()

	for _, addr := range []uint16{0x4000, 0x4013, 0x4015, 0x4017} {
		mem.Write(addr, 0x01)
	}
	// test registers are ignored
	mem.Write(0x4018, 0x01)
	mem.Write(0x401F, 0x01)

	if len(apu.writeCalls) != 4 {
		t.Errorf("Expected 4 APU writes, got %d", len(apu.writeCalls))
	}
}

func TestOpenBus(t *testing.T) {
	mem, _, _, cart := setupMemory()
	cart.prgData[0x8000] = 0x5A

	mem.Read(0x8000)
	tests := []struct {
		name    string
		address uint16
	}{
		{"write-only APU register", 0x4000},
		{"OAM DMA register", 0x4014},
		{"test register", 0x401A},
		{"expansion area", 0x5000},
	}
	for _, tt := range tests {
		if got := mem.Read(tt.address); got != 0x5A {
			t.Errorf("%s: Expected open bus 0x5A, got 0x%02X", tt.name, got)
		}
	}

	// writes drive the bus as well
	mem.Write(0x0000, 0xC3)
	if got := mem.Read(0x4001); got != 0xC3 {
		t.Errorf("Expected open bus 0xC3 after write, got 0x%02X", got)
	}
}

func TestAPUStatusOpenBusBit(t *testing.T) {
	mem, _, apu, _ := setupMemory()
	apu.status = 0xFF

	mem.Write(0x0000, 0x00)
	if got := mem.Read(0x4015); got != 0xDF {
		t.Errorf("Expected bit 5 from open bus (0xDF), got 0x%02X", got)
	}
}

func TestControllerPortBits(t *testing.T) {
	mem, _, _, _ := setupMemory()
	input := &MockInput{value: 0x01}
	mem.SetInputSystem(input)

	// high bits come from the bus, typically $40 from the address high byte
	mem.Write(0x0000, 0x40)
	if got := mem.Read(0x4016); got != 0x41 {
		t.Errorf("Expected 0x41, got 0x%02X", got)
	}

	mem.Write(0x4016, 0x01)
	if len(input.writes) != 1 || input.writes[0].Value != 0x01 {
		t.Errorf("Expected strobe write to reach input, got %+v", input.writes)
	}
}

func TestCartridgeSpace(t *testing.T) {
	mem, _, _, cart := setupMemory()

	mem.Write(0x6000, 0x11)
	if got := mem.Read(0x6000); got != 0x11 {
		t.Errorf("Expected PRG RAM 0x11, got 0x%02X", got)
	}

	mem.Write(0x8000, 0x22)
	if len(cart.prgWrites) != 2 || cart.prgWrites[1].Address != 0x8000 {
		t.Errorf("Expected register write to reach cartridge, got %+v", cart.prgWrites)
	}
}

func TestDMACallback(t *testing.T) {
	mem, ppu, _, _ := setupMemory()

	var page uint8
	called := false
	mem.SetDMACallback(func(p uint8) {
		called = true
		page = p
	})
	mem.Write(0x4014, 0x02)
	if !called || page != 0x02 {
		t.Errorf("Expected DMA callback with page 2")
	}
	if len(ppu.writeCalls) != 0 {
		t.Errorf("Expected no OAM writes when callback is installed")
	}
}

func TestImmediateDMAFallback(t *testing.T) {
	mem, ppu, _, _ := setupMemory()
	for i := 0; i < 256; i++ {
		mem.Write(0x0300+uint16(i), uint8(i))
	}
	mem.Write(0x4014, 0x03)

	if len(ppu.writeCalls) != 256 {
		t.Fatalf("Expected 256 OAM writes, got %d", len(ppu.writeCalls))
	}
	if ppu.writeCalls[255].Address != 0x2004 || ppu.writeCalls[255].Value != 0xFF {
		t.Errorf("Unexpected last OAM write %+v", ppu.writeCalls[255])
	}
}

func TestPeekHasNoSideEffects(t *testing.T) {
	mem, ppu, _, cart := setupMemory()
	cart.prgData[0xC000] = 0x77
	mem.Write(0x0010, 0x33)

	if got := mem.Peek(0x0010); got != 0x33 {
		t.Errorf("Expected RAM peek 0x33, got 0x%02X", got)
	}
	if got := mem.Peek(0xC000); got != 0x77 {
		t.Errorf("Expected PRG peek 0x77, got 0x%02X", got)
	}
	mem.Peek(0x2002)
	if len(ppu.readCalls) != 0 {
		t.Errorf("Peek read a PPU register")
	}
	if mem.OpenBus() != 0x33 {
		t.Errorf("Peek changed open bus")
	}
}

func TestNametableMirroring(t *testing.T) {
	tests := []struct {
		mode  cartridge.MirrorMode
		write uint16
		same  []uint16
		diff  []uint16
	}{
		{cartridge.MirrorHorizontal, 0x2000, []uint16{0x2400}, []uint16{0x2800, 0x2C00}},
		{cartridge.MirrorVertical, 0x2000, []uint16{0x2800}, []uint16{0x2400, 0x2C00}},
		{cartridge.MirrorSingleScreen0, 0x2000, []uint16{0x2400, 0x2800, 0x2C00}, nil},
		{cartridge.MirrorSingleScreen1, 0x2C00, []uint16{0x2000, 0x2400, 0x2800}, nil},
		{cartridge.MirrorFourScreen, 0x2000, nil, []uint16{0x2400, 0x2800, 0x2C00}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			cart := &MockCartridge{mirror: tt.mode}
			pm := NewPPUMemory(cart)
			pm.Write(tt.write+5, 0xAB)
			for _, addr := range tt.same {
				if got := pm.Read(addr + 5); got != 0xAB {
					t.Errorf("Expected $%04X to mirror $%04X, got 0x%02X", addr+5, tt.write+5, got)
				}
			}
			for _, addr := range tt.diff {
				if got := pm.Read(addr + 5); got == 0xAB {
					t.Errorf("Expected $%04X to be separate from $%04X", addr+5, tt.write+5)
				}
			}
			// $3000-$3EFF mirrors $2000-$2EFF
			if got := pm.Read(tt.write + 0x1000 + 5); got != 0xAB {
				t.Errorf("Expected $3xxx mirror, got 0x%02X", got)
			}
		})
	}
}

func TestPaletteMirroring(t *testing.T) {
	pm := NewPPUMemory(&MockCartridge{})

	pm.Write(0x3F10, 0x21)
	if got := pm.Read(0x3F00); got != 0x21 {
		t.Errorf("Expected $3F10 to mirror $3F00, got 0x%02X", got)
	}
	pm.Write(0x3F0C, 0x2C)
	if got := pm.Read(0x3F1C); got != 0x2C {
		t.Errorf("Expected $3F1C to mirror $3F0C, got 0x%02X", got)
	}
	pm.Write(0x3F11, 0x05)
	if got := pm.Read(0x3F01); got == 0x05 {
		t.Errorf("$3F11 must not mirror $3F01")
	}
	if got := pm.Read(0x3F31); got != 0x05 {
		t.Errorf("Expected $3F31 to mirror $3F11, got 0x%02X", got)
	}
	pm.Write(0x3F02, 0xFF)
	if got := pm.Read(0x3F02); got != 0x3F {
		t.Errorf("Expected palette entries to hold 6 bits, got 0x%02X", got)
	}
}

func TestPatternTableAccess(t *testing.T) {
	cart := &MockCartridge{}
	pm := NewPPUMemory(cart)
	pm.Write(0x1FFF, 0x42)
	if cart.chrData[0x1FFF] != 0x42 {
		t.Errorf("Expected CHR write to reach cartridge")
	}
	if got := pm.Read(0x5FFF); got != 0x42 {
		t.Errorf("Expected 14-bit address wrap, got 0x%02X", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	mem, _, _, _ := setupMemory()
	mem.Write(0x0123, 0x42)
	saved := mem.Snapshot()
	mem.Write(0x0123, 0x00)

	if err := mem.Restore(saved); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := mem.Read(0x0923); got != 0x42 {
		t.Errorf("Expected restored RAM through the mirror, got 0x%02X", got)
	}

	saved.RAM = saved.RAM[:100]
	if err := mem.Restore(saved); err == nil {
		t.Error("Expected a short RAM snapshot to be rejected")
	}
}

func TestVRAMSnapshotRoundTrip(t *testing.T) {
	pm := NewPPUMemory(&MockCartridge{})
	pm.Write(0x2005, 0x11)
	pm.Write(0x3F01, 0x22)
	saved := pm.Snapshot()
	pm.Write(0x2005, 0x00)
	pm.Write(0x3F01, 0x00)

	if err := pm.Restore(saved); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if pm.Read(0x2005) != 0x11 || pm.Read(0x3F01) != 0x22 {
		t.Errorf("Expected 11/22, got %02X/%02X", pm.Read(0x2005), pm.Read(0x3F01))
	}

	saved.Palette = nil
	if err := pm.Restore(saved); err == nil {
		t.Error("Expected a snapshot without palette RAM to be rejected")
	}
}
