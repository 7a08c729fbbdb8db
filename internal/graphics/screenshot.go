package graphics

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"nesemu/internal/ppu"
)

// FrameImage converts a frame into an RGBA image, reusing dst when it has
// the right size.
func FrameImage(frame *ppu.FrameBuffer, dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Rect.Dx() != ppu.ScreenWidth || dst.Rect.Dy() != ppu.ScreenHeight {
		dst = image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	}
	for i, pixel := range frame {
		o := i * 4
		dst.Pix[o] = uint8(pixel >> 16)
		dst.Pix[o+1] = uint8(pixel >> 8)
		dst.Pix[o+2] = uint8(pixel)
		dst.Pix[o+3] = 0xFF
	}
	return dst
}

// WritePPM writes a frame as a binary PPM image.
func WritePPM(w io.Writer, frame *ppu.FrameBuffer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P6\n%d %d\n255\n", ppu.ScreenWidth, ppu.ScreenHeight)
	for _, pixel := range frame {
		bw.WriteByte(uint8(pixel >> 16))
		bw.WriteByte(uint8(pixel >> 8))
		bw.WriteByte(uint8(pixel))
	}
	return bw.Flush()
}

// WritePNG writes a frame as a PNG image.
func WritePNG(w io.Writer, frame *ppu.FrameBuffer) error {
	return png.Encode(w, FrameImage(frame, nil))
}

// SaveScreenshot writes a frame to path. The format follows the extension:
// ".png" for PNG, anything else for PPM.
func SaveScreenshot(path string, frame *ppu.FrameBuffer) (rerr error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("screenshot: %w", err)
		}
	}()

	if strings.EqualFold(filepath.Ext(path), ".png") {
		err = WritePNG(f, frame)
	} else {
		err = WritePPM(f, frame)
	}
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	return nil
}
