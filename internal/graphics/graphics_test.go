package graphics

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"nesemu/internal/ppu"
)

func testFrame() *ppu.FrameBuffer {
	var fb ppu.FrameBuffer
	for i := range fb {
		fb[i] = uint32(i) & 0xFFFFFF
	}
	fb[0] = 0x123456
	return &fb
}

func TestCreateBackend(t *testing.T) {
	for _, tc := range []struct {
		backend BackendType
		name    string
	}{
		{BackendHeadless, "Headless"},
		{BackendTerminal, "Terminal"},
	} {
		b, err := CreateBackend(tc.backend)
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", tc.backend, err)
		}
		if b.GetName() != tc.name {
			t.Errorf("Expected %s, got %s", tc.name, b.GetName())
		}
		if !b.IsHeadless() {
			t.Errorf("Expected %s to be headless", tc.name)
		}
	}

	if _, err := CreateBackend("sdl2"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestHeadlessWindow(t *testing.T) {
	b := NewHeadlessBackend()
	if _, err := b.CreateWindow("x", 256, 240); err == nil {
		t.Error("Expected error creating window before Initialize")
	}
	if err := b.Initialize(Config{Headless: true}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := b.Initialize(Config{Headless: true}); err == nil {
		t.Error("Expected error on second Initialize")
	}

	w, err := b.CreateWindow("nesemu", 256, 240)
	if err != nil {
		t.Fatalf("CreateWindow failed: %v", err)
	}
	hw := w.(*HeadlessWindow)

	frame := testFrame()
	if err := w.RenderFrame(frame); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	frame[0] = 0
	if hw.LastFrame()[0] != 0x123456 {
		t.Errorf("Expected frame to be copied, got %06X", hw.LastFrame()[0])
	}
	if hw.GetFrameCount() != 1 {
		t.Errorf("Expected 1 frame, got %d", hw.GetFrameCount())
	}
	if w.PollEvents() != nil {
		t.Error("Expected no events")
	}

	w.Cleanup()
	if !w.ShouldClose() {
		t.Error("Expected window to close after Cleanup")
	}
}

func TestTerminalRender(t *testing.T) {
	var out bytes.Buffer
	w := &TerminalWindow{out: &out, running: true}

	if err := w.RenderFrame(testFrame()); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	first := out.Len()
	if first == 0 {
		t.Fatal("Expected output on first frame")
	}
	if !bytes.Contains(out.Bytes(), []byte("\033[38;2;18;52;86m")) {
		t.Error("Expected true colour escape for the first pixel")
	}
	rows := bytes.Count(out.Bytes(), []byte("\n"))
	if rows != ppu.ScreenHeight/terminalCellHeight {
		t.Errorf("Expected %d rows, got %d", ppu.ScreenHeight/terminalCellHeight, rows)
	}

	w.RenderFrame(testFrame())
	if out.Len() != first {
		t.Error("Expected no redraw on the second frame")
	}
}

func TestWritePPM(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePPM(&buf, testFrame()); err != nil {
		t.Fatalf("WritePPM failed: %v", err)
	}
	header := []byte("P6\n256 240\n255\n")
	if !bytes.HasPrefix(buf.Bytes(), header) {
		t.Fatalf("Unexpected header %q", buf.Bytes()[:len(header)])
	}
	if buf.Len() != len(header)+256*240*3 {
		t.Errorf("Expected %d bytes, got %d", len(header)+256*240*3, buf.Len())
	}
	pixel := buf.Bytes()[len(header) : len(header)+3]
	if !bytes.Equal(pixel, []byte{0x12, 0x34, 0x56}) {
		t.Errorf("Expected 123456, got %X", pixel)
	}
}

func TestSaveScreenshotPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shots", "frame.png")
	if err := SaveScreenshot(path, testFrame()); err != nil {
		t.Fatalf("SaveScreenshot failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 256 || img.Bounds().Dy() != 240 {
		t.Errorf("Expected 256x240, got %v", img.Bounds())
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 0x12 || g>>8 != 0x34 || b>>8 != 0x56 {
		t.Errorf("Expected 123456, got %02X%02X%02X", r>>8, g>>8, b>>8)
	}
}

func TestVideoProcessor(t *testing.T) {
	frame := testFrame()

	vp := NewVideoProcessor(1, 1, 1)
	if vp.ProcessFrame(frame) != frame {
		t.Error("Expected identity processor to return the input frame")
	}

	vp.SetBrightness(0)
	out := vp.ProcessFrame(frame)
	if out[0] != 0 {
		t.Errorf("Expected black at zero brightness, got %06X", out[0])
	}

	grey := &ppu.FrameBuffer{}
	grey[0] = 0x808080
	vp = NewVideoProcessor(1, 1, 0)
	if out := vp.ProcessFrame(grey); out[0] != 0x808080 {
		t.Errorf("Expected grey to survive desaturation, got %06X", out[0])
	}

	vp = NewVideoProcessor(1, 1, 0)
	red := &ppu.FrameBuffer{}
	red[0] = 0xFF0000
	out = vp.ProcessFrame(red)
	r, g, b := out[0]>>16&0xFF, out[0]>>8&0xFF, out[0]&0xFF
	if r != g || g != b {
		t.Errorf("Expected desaturated red to be grey, got %06X", out[0])
	}
}
