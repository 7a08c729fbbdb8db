package ppu

import (
	"testing"

	"nesemu/internal/cartridge"
	"nesemu/internal/memory"
)

// MockCartridge implements memory.CHRInterface for testing
type MockCartridge struct {
	chrData   [0x2000]uint8
	mirroring cartridge.MirrorMode
	readCount map[uint16]int
}

func NewMockCartridge() *MockCartridge {
	return &MockCartridge{
		mirroring: cartridge.MirrorHorizontal,
		readCount: make(map[uint16]int),
	}
}

func (m *MockCartridge) ReadCHR(address uint16) uint8 {
	address &= 0x1FFF
	m.readCount[address]++
	return m.chrData[address]
}

func (m *MockCartridge) WriteCHR(address uint16, value uint8) {
	m.chrData[address&0x1FFF] = value
}

func (m *MockCartridge) Mirroring() cartridge.MirrorMode {
	return m.mirroring
}

// setSolidTile fills one tile's rows so every pixel has the given value.
func (m *MockCartridge) setSolidTile(table uint16, tile uint8, pixel uint8) {
	base := table + uint16(tile)*16
	for row := uint16(0); row < 8; row++ {
		lo, hi := uint8(0), uint8(0)
		if pixel&1 != 0 {
			lo = 0xFF
		}
		if pixel&2 != 0 {
			hi = 0xFF
		}
		m.chrData[base+row] = lo
		m.chrData[base+row+8] = hi
	}
}

type testPPU struct {
	*PPU
	cart      *MockCartridge
	mem       *memory.PPUMemory
	nmis      int
	cancelled int
	a12Rises  int
}

func newTestPPU() *testPPU {
	cart := NewMockCartridge()
	mem := memory.NewPPUMemory(cart)
	p := New()
	p.SetMemory(mem)

	tp := &testPPU{PPU: p, cart: cart, mem: mem}
	p.SetNMICallback(func() { tp.nmis++ })
	p.SetNMICancelCallback(func() { tp.cancelled++ })
	p.SetA12Callback(func() { tp.a12Rises++ })
	return tp
}

// stepTo advances until the given dot has just been processed.
func (tp *testPPU) stepTo(t *testing.T, scanline, dot int) {
	t.Helper()
	for i := 0; i < ScanlinesPerFrame*DotsPerScanline+1; i++ {
		if tp.scanline == scanline && tp.cycle == dot {
			return
		}
		tp.Step()
	}
	t.Fatalf("never reached scanline %d dot %d", scanline, dot)
}

func (tp *testPPU) stepFrames(n int) {
	target := tp.frameCount + uint64(n)
	for tp.frameCount < target {
		tp.Step()
	}
}

func (tp *testPPU) setAddress(address uint16) {
	tp.WriteRegister(0x2006, uint8(address>>8))
	tp.WriteRegister(0x2006, uint8(address))
}

func (tp *testPPU) fillNametable(tile uint8) {
	for i := uint16(0); i < 0x3C0; i++ {
		tp.mem.Write(0x2000+i, tile)
	}
}

func TestVBlankFlagTiming(t *testing.T) {
	tp := newTestPPU()
	tp.WriteRegister(0x2000, ctrlNMIEnable)

	tp.stepTo(t, 241, 0)
	if tp.IsVBlank() {
		t.Fatal("Expected VBlank clear before dot 1 of scanline 241")
	}
	tp.Step()
	if !tp.IsVBlank() {
		t.Fatal("Expected VBlank set at dot 1 of scanline 241")
	}
	if tp.nmis != 1 {
		t.Errorf("Expected one NMI, got %d", tp.nmis)
	}

	tp.stepTo(t, 261, 1)
	if tp.IsVBlank() {
		t.Error("Expected VBlank cleared at dot 1 of pre-render line")
	}
	if tp.nmis != 1 {
		t.Errorf("Expected no further NMI, got %d", tp.nmis)
	}
}

func TestStatusReadClearsVBlankAndLatch(t *testing.T) {
	tp := newTestPPU()
	tp.stepTo(t, 245, 0)

	tp.WriteRegister(0x2006, 0x21) // sets w
	status := tp.ReadRegister(0x2002)
	if status&statusVBlank == 0 {
		t.Errorf("Expected VBlank bit in status read, got 0x%02X", status)
	}
	if tp.IsVBlank() {
		t.Error("Expected VBlank cleared by the read")
	}
	if tp.w {
		t.Error("Expected write toggle reset by the read")
	}
	if status&0x1F != 0x01 {
		t.Errorf("Expected low bits from the I/O latch, got 0x%02X", status)
	}
}

func TestStatusReadBeforeVBlankSuppresses(t *testing.T) {
	tp := newTestPPU()
	tp.WriteRegister(0x2000, ctrlNMIEnable)
	tp.stepTo(t, 241, 0)

	if status := tp.ReadRegister(0x2002); status&statusVBlank != 0 {
		t.Errorf("Expected VBlank clear one dot early, got 0x%02X", status)
	}
	tp.stepTo(t, 241, 10)
	if tp.IsVBlank() {
		t.Error("Expected VBlank suppressed for this frame")
	}
	if tp.nmis != 0 {
		t.Errorf("Expected NMI suppressed, got %d", tp.nmis)
	}

	// the following frame is unaffected
	tp.stepTo(t, 241, 1)
	if !tp.IsVBlank() || tp.nmis != 1 {
		t.Errorf("Expected next VBlank to set normally (vblank=%v nmis=%d)", tp.IsVBlank(), tp.nmis)
	}
}

func TestStatusReadOnSetDotCancelsNMI(t *testing.T) {
	for _, dot := range []int{1, 2} {
		tp := newTestPPU()
		tp.WriteRegister(0x2000, ctrlNMIEnable)
		tp.stepTo(t, 241, dot)

		status := tp.ReadRegister(0x2002)
		if status&statusVBlank == 0 {
			t.Errorf("dot %d: Expected VBlank visible, got 0x%02X", dot, status)
		}
		if tp.cancelled != 1 {
			t.Errorf("dot %d: Expected NMI cancelled, got %d cancels", dot, tp.cancelled)
		}
	}

	tp := newTestPPU()
	tp.WriteRegister(0x2000, ctrlNMIEnable)
	tp.stepTo(t, 241, 3)
	tp.ReadRegister(0x2002)
	if tp.cancelled != 0 {
		t.Error("Expected a later read not to cancel the NMI")
	}
}

func TestNMIEnableDuringVBlank(t *testing.T) {
	tp := newTestPPU()
	tp.stepTo(t, 245, 0)
	if tp.nmis != 0 {
		t.Fatal("Expected no NMI while disabled")
	}

	tp.WriteRegister(0x2000, ctrlNMIEnable)
	if tp.nmis != 1 {
		t.Fatalf("Expected immediate NMI on enable, got %d", tp.nmis)
	}

	tp.WriteRegister(0x2000, ctrlNMIEnable)
	if tp.nmis != 1 {
		t.Errorf("Expected no new edge while already enabled, got %d", tp.nmis)
	}

	tp.WriteRegister(0x2000, 0x00)
	tp.WriteRegister(0x2000, ctrlNMIEnable)
	if tp.nmis != 2 {
		t.Errorf("Expected toggling to raise a second NMI, got %d", tp.nmis)
	}
}

func TestNMIDisableOnSetDotCancels(t *testing.T) {
	tp := newTestPPU()
	tp.WriteRegister(0x2000, ctrlNMIEnable)
	tp.stepTo(t, 241, 1)

	tp.WriteRegister(0x2000, 0x00)
	if tp.cancelled != 1 {
		t.Errorf("Expected NMI cancelled, got %d", tp.cancelled)
	}
}

func TestOddFrameSkipsDot(t *testing.T) {
	tp := newTestPPU()
	tp.WriteRegister(0x2001, maskShowBG)

	tp.stepFrames(1)
	lengths := make([]int, 2)
	for i := range lengths {
		start := tp.frameCount
		for tp.frameCount == start {
			tp.Step()
			lengths[i]++
		}
	}

	if lengths[0]+lengths[1] != 2*ScanlinesPerFrame*DotsPerScanline-1 {
		t.Errorf("Expected one dot skipped across two frames, got %v", lengths)
	}
}

func TestNoSkipWhenRenderingDisabled(t *testing.T) {
	tp := newTestPPU()
	tp.stepFrames(1)

	dots := 0
	start := tp.frameCount
	for tp.frameCount == start {
		tp.Step()
		dots++
	}
	if dots != ScanlinesPerFrame*DotsPerScanline {
		t.Errorf("Expected %d dots, got %d", ScanlinesPerFrame*DotsPerScanline, dots)
	}
}

func TestPPUDataBufferedRead(t *testing.T) {
	tp := newTestPPU()
	tp.setAddress(0x2000)
	tp.WriteRegister(0x2007, 0x55)
	tp.WriteRegister(0x2007, 0x66)

	tp.setAddress(0x2000)
	tp.ReadRegister(0x2007) // stale buffer
	if got := tp.ReadRegister(0x2007); got != 0x55 {
		t.Errorf("Expected 0x55, got 0x%02X", got)
	}
	if got := tp.ReadRegister(0x2007); got != 0x66 {
		t.Errorf("Expected 0x66, got 0x%02X", got)
	}
}

func TestPaletteReadNotBuffered(t *testing.T) {
	tp := newTestPPU()
	tp.setAddress(0x3F10)
	tp.WriteRegister(0x2007, 0x2A)

	tp.setAddress(0x3F00)
	if got := tp.ReadRegister(0x2007) & 0x3F; got != 0x2A {
		t.Errorf("Expected mirrored palette entry 0x2A, got 0x%02X", got)
	}
}

func TestAddressIncrement32(t *testing.T) {
	tp := newTestPPU()
	tp.WriteRegister(0x2000, ctrlIncrement32)
	tp.setAddress(0x2000)
	tp.WriteRegister(0x2007, 0x01)
	tp.WriteRegister(0x2007, 0x02)

	if tp.mem.Read(0x2020) != 0x02 {
		t.Errorf("Expected second write at $2020, got 0x%02X", tp.mem.Read(0x2020))
	}
}

func TestScrollRegisters(t *testing.T) {
	tp := newTestPPU()
	tp.WriteRegister(0x2000, 0x03)
	tp.WriteRegister(0x2005, 0x7D) // X: coarse 15, fine 5
	tp.WriteRegister(0x2005, 0x5E) // Y: coarse 11, fine 6

	if tp.x != 5 {
		t.Errorf("Expected fine X 5, got %d", tp.x)
	}
	expected := uint16(6<<12 | 3<<10 | 11<<5 | 15)
	if tp.t != expected {
		t.Errorf("Expected t=0x%04X, got 0x%04X", expected, tp.t)
	}
}

func TestWriteOnlyRegistersReturnLatch(t *testing.T) {
	tp := newTestPPU()
	tp.WriteRegister(0x2003, 0x5A)
	if got := tp.ReadRegister(0x2005); got != 0x5A {
		t.Errorf("Expected open bus 0x5A, got 0x%02X", got)
	}
	if got := tp.ReadRegister(0x200D); got != 0x5A {
		t.Errorf("Expected mirrored register to read latch, got 0x%02X", got)
	}
}

func TestOAMAttributeMask(t *testing.T) {
	tp := newTestPPU()
	tp.WriteRegister(0x2003, 0x02)
	tp.WriteRegister(0x2004, 0xFF)
	tp.WriteRegister(0x2003, 0x02)
	if got := tp.ReadRegister(0x2004); got != 0xE3 {
		t.Errorf("Expected unimplemented attribute bits read as zero, got 0x%02X", got)
	}
}
