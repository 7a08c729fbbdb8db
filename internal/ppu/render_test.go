package ppu

import "testing"

const red = 0x16

func TestBackgroundSolidFrame(t *testing.T) {
	tp := newTestPPU()
	tp.cart.setSolidTile(0x0000, 1, 1)
	tp.fillNametable(1)
	tp.mem.Write(0x3F01, red)
	tp.WriteRegister(0x2001, maskShowBG|maskShowBGLeft)

	tp.stepFrames(2)

	want := NESColorToRGB(red)
	fb := tp.FrameBuffer()
	for i, got := range fb {
		if got != want {
			t.Fatalf("pixel (%d,%d): Expected 0x%06X, got 0x%06X", i%ScreenWidth, i/ScreenWidth, want, got)
		}
	}
}

func TestBackgroundFineScroll(t *testing.T) {
	tp := newTestPPU()
	tp.cart.setSolidTile(0x0000, 1, 1)
	for row := uint16(0); row < 30; row++ {
		for col := uint16(0); col < 32; col++ {
			tp.mem.Write(0x2000+row*32+col, uint8(col&1))
		}
	}
	tp.mem.Write(0x3F01, red)
	tp.WriteRegister(0x2005, 3)
	tp.WriteRegister(0x2005, 0)
	tp.WriteRegister(0x2001, maskShowBG|maskShowBGLeft)

	tp.stepFrames(2)

	fb := tp.FrameBuffer()
	for _, y := range []int{0, 117, 239} {
		for x := 0; x < ScreenWidth; x++ {
			want := NESColorToRGB(0x0F)
			if ((x+3)/8)%2 == 1 {
				want = NESColorToRGB(red)
			}
			if got := fb[y*ScreenWidth+x]; got != want {
				t.Fatalf("pixel (%d,%d): Expected 0x%06X, got 0x%06X", x, y, want, got)
			}
		}
	}
}

func TestLeftColumnClipping(t *testing.T) {
	tp := newTestPPU()
	tp.cart.setSolidTile(0x0000, 1, 1)
	tp.fillNametable(1)
	tp.mem.Write(0x3F01, red)
	tp.WriteRegister(0x2001, maskShowBG)

	tp.stepFrames(2)

	fb := tp.FrameBuffer()
	if fb[100*ScreenWidth+7] != NESColorToRGB(0x0F) {
		t.Error("Expected backdrop in clipped column")
	}
	if fb[100*ScreenWidth+8] != NESColorToRGB(red) {
		t.Error("Expected background right of clipped column")
	}
}

func TestRenderingDisabledShowsBackdrop(t *testing.T) {
	tp := newTestPPU()
	tp.mem.Write(0x3F00, 0x21)
	tp.stepFrames(1)

	if got := tp.FrameBuffer()[1000]; got != NESColorToRGB(0x21) {
		t.Errorf("Expected backdrop colour, got 0x%06X", got)
	}
}

func TestGreyscale(t *testing.T) {
	tp := newTestPPU()
	tp.mem.Write(0x3F00, 0x16)
	tp.WriteRegister(0x2001, maskGreyscale)
	tp.stepFrames(1)

	if got := tp.FrameBuffer()[0]; got != NESColorToRGB(0x10) {
		t.Errorf("Expected greyscale colour 0x10, got 0x%06X", got)
	}
}

func setupSpriteZero(tp *testPPU, x, attr uint8) {
	tp.cart.setSolidTile(0x0000, 1, 1)
	tp.cart.setSolidTile(0x0000, 2, 1)
	tp.fillNametable(1)
	for i := 0; i < 256; i++ {
		tp.WriteOAM(uint8(i), 0xFF)
	}
	tp.WriteOAM(0, 30)
	tp.WriteOAM(1, 2)
	tp.WriteOAM(2, attr)
	tp.WriteOAM(3, x)
}

func TestSpriteZeroHit(t *testing.T) {
	tests := []struct {
		name string
		attr uint8
	}{
		{"in front", 0x00},
		{"behind background", 0x20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := newTestPPU()
			setupSpriteZero(tp, 40, tt.attr)
			tp.WriteRegister(0x2001, maskShowBG|maskShowSprites|maskShowBGLeft|maskShowSPLeft)
			tp.stepFrames(1)

			tp.stepTo(t, 31, 40)
			if tp.ppuStatus&statusSprite0Hit != 0 {
				t.Fatal("Expected no hit before the sprite's first pixel")
			}
			tp.Step()
			if tp.ppuStatus&statusSprite0Hit == 0 {
				t.Fatal("Expected hit at the sprite's first opaque pixel")
			}

			tp.stepTo(t, 261, 1)
			if tp.ppuStatus&statusSprite0Hit != 0 {
				t.Error("Expected hit cleared on the pre-render line")
			}
		})
	}
}

func TestSpriteZeroHitNotAtLastColumn(t *testing.T) {
	tp := newTestPPU()
	setupSpriteZero(tp, 255, 0)
	tp.WriteRegister(0x2001, maskShowBG|maskShowSprites|maskShowBGLeft|maskShowSPLeft)
	tp.stepFrames(1)

	tp.stepTo(t, 240, 0)
	if tp.ppuStatus&statusSprite0Hit != 0 {
		t.Error("Expected no hit at x=255")
	}
}

func TestSpriteZeroHitClipped(t *testing.T) {
	tp := newTestPPU()
	setupSpriteZero(tp, 0, 0)
	tp.WriteRegister(0x2001, maskShowBG|maskShowSprites|maskShowBGLeft)
	tp.stepFrames(1)

	tp.stepTo(t, 240, 0)
	if tp.ppuStatus&statusSprite0Hit != 0 {
		t.Error("Expected no hit inside clipped left column")
	}
}

func TestSpritePriorityAndColour(t *testing.T) {
	tp := newTestPPU()
	setupSpriteZero(tp, 40, 0x01)
	tp.mem.Write(0x3F01, red)
	tp.mem.Write(0x3F15, 0x2A)
	tp.WriteRegister(0x2001, maskShowBG|maskShowSprites|maskShowBGLeft|maskShowSPLeft)

	tp.stepFrames(2)

	fb := tp.FrameBuffer()
	if got := fb[31*ScreenWidth+40]; got != NESColorToRGB(0x2A) {
		t.Errorf("Expected sprite colour at (40,31), got 0x%06X", got)
	}
	if got := fb[31*ScreenWidth+48]; got != NESColorToRGB(red) {
		t.Errorf("Expected background right of the sprite, got 0x%06X", got)
	}
	if got := fb[30*ScreenWidth+40]; got != NESColorToRGB(red) {
		t.Errorf("Expected sprite to start one line below its Y, got 0x%06X", got)
	}
}

func setupOverflowOAM(tp *testPPU) {
	for i := 0; i < 256; i++ {
		tp.WriteOAM(uint8(i), 0xFF)
	}
	for n := 0; n < 8; n++ {
		tp.WriteOAM(uint8(n*4), 10)
	}
}

func TestSpriteOverflow(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(tp *testPPU)
		overflow bool
	}{
		{
			name:     "eight sprites",
			setup:    func(tp *testPPU) {},
			overflow: false,
		},
		{
			name: "ninth sprite in range",
			setup: func(tp *testPPU) {
				tp.WriteOAM(8*4, 10)
			},
			overflow: true,
		},
		{
			// sprite 9's tile byte is compared as if it were a Y coordinate
			name: "false positive from tile byte",
			setup: func(tp *testPPU) {
				tp.WriteOAM(9*4+1, 10)
			},
			overflow: true,
		},
		{
			// the diagonal scan reads sprite 9's tile byte instead of its Y
			name: "false negative",
			setup: func(tp *testPPU) {
				tp.WriteOAM(9*4, 10)
			},
			overflow: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := newTestPPU()
			setupOverflowOAM(tp)
			tt.setup(tp)
			tp.WriteRegister(0x2001, maskShowBG|maskShowSprites)

			tp.stepTo(t, 10, 257)
			if tp.spriteCount != 8 {
				t.Errorf("Expected 8 sprites selected, got %d", tp.spriteCount)
			}
			if got := tp.ppuStatus&statusOverflow != 0; got != tt.overflow {
				t.Errorf("Expected overflow=%v, got %v", tt.overflow, got)
			}
		})
	}
}

func TestA12RisesOncePerRenderedLine(t *testing.T) {
	tp := newTestPPU()
	tp.WriteRegister(0x2000, ctrlSpriteTable)
	tp.WriteRegister(0x2001, maskShowBG|maskShowSprites)
	tp.stepFrames(1)

	tp.a12Rises = 0
	tp.stepFrames(1)
	if tp.a12Rises != ScreenHeight+1 {
		t.Errorf("Expected %d filtered A12 rises, got %d", ScreenHeight+1, tp.a12Rises)
	}
}

func TestA12IgnoredWhileRenderingDisabled(t *testing.T) {
	tp := newTestPPU()
	tp.WriteRegister(0x2000, ctrlSpriteTable)
	tp.stepFrames(1)

	if tp.a12Rises != 0 {
		t.Errorf("Expected no A12 activity without rendering, got %d", tp.a12Rises)
	}
}

func TestA12FromAddressRegister(t *testing.T) {
	tp := newTestPPU()
	for i := 0; i < 20; i++ {
		tp.Step()
	}

	tp.setAddress(0x1000)
	if tp.a12Rises != 1 {
		t.Fatalf("Expected rise from $2006, got %d", tp.a12Rises)
	}

	tp.setAddress(0x0000)
	tp.setAddress(0x1000)
	if tp.a12Rises != 1 {
		t.Fatalf("Expected short low pulse to be filtered, got %d", tp.a12Rises)
	}

	tp.setAddress(0x0000)
	for i := 0; i < a12LowDots; i++ {
		tp.Step()
	}
	tp.setAddress(0x1000)
	if tp.a12Rises != 2 {
		t.Errorf("Expected second rise after a long low period, got %d", tp.a12Rises)
	}
}
