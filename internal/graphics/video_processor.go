package graphics

import (
	"math"

	"nesemu/internal/ppu"
)

// VideoProcessor applies brightness, contrast and saturation to frames
// before they are presented.
type VideoProcessor struct {
	brightness float32
	contrast   float32
	saturation float32

	out ppu.FrameBuffer
}

// NewVideoProcessor creates a new video processor
func NewVideoProcessor(brightness, contrast, saturation float32) *VideoProcessor {
	return &VideoProcessor{
		brightness: brightness,
		contrast:   contrast,
		saturation: saturation,
	}
}

// Identity reports whether processing leaves frames unchanged.
func (vp *VideoProcessor) Identity() bool {
	return vp.brightness == 1 && vp.contrast == 1 && vp.saturation == 1
}

// ProcessFrame returns the adjusted frame. The result is owned by the
// processor and is overwritten by the next call; an identity processor
// returns frame itself.
func (vp *VideoProcessor) ProcessFrame(frame *ppu.FrameBuffer) *ppu.FrameBuffer {
	if vp.Identity() {
		return frame
	}

	for i, pixel := range frame {
		r := float32((pixel >> 16) & 0xFF)
		g := float32((pixel >> 8) & 0xFF)
		b := float32(pixel & 0xFF)

		r *= vp.brightness
		g *= vp.brightness
		b *= vp.brightness

		r = ((r/255.0-0.5)*vp.contrast + 0.5) * 255.0
		g = ((g/255.0-0.5)*vp.contrast + 0.5) * 255.0
		b = ((b/255.0-0.5)*vp.contrast + 0.5) * 255.0

		if vp.saturation != 1.0 {
			h, s, l := rgbToHSL(clamp(r, 0, 255)/255.0, clamp(g, 0, 255)/255.0, clamp(b, 0, 255)/255.0)
			s = clamp(s*vp.saturation, 0, 1)
			r, g, b = hslToRGB(h, s, l)
			r *= 255.0
			g *= 255.0
			b *= 255.0
		}

		r = clamp(r, 0, 255)
		g = clamp(g, 0, 255)
		b = clamp(b, 0, 255)

		vp.out[i] = (uint32(r+0.5) << 16) | (uint32(g+0.5) << 8) | uint32(b+0.5)
	}

	return &vp.out
}

func clamp(value, min, max float32) float32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func rgbToHSL(r, g, b float32) (h, s, l float32) {
	max := math.Max(float64(r), math.Max(float64(g), float64(b)))
	min := math.Min(float64(r), math.Min(float64(g), float64(b)))

	l = float32((max + min) / 2.0)
	if max == min {
		return 0, 0, l
	}

	d := float32(max - min)
	if l > 0.5 {
		s = d / float32(2.0-max-min)
	} else {
		s = d / float32(max+min)
	}

	switch max {
	case float64(r):
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case float64(g):
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h /= 6

	return h, s, l
}

func hslToRGB(h, s, l float32) (r, g, b float32) {
	if s == 0 {
		return l, l, l
	}

	var q float32
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return hueToRGB(p, q, h+1.0/3.0), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3.0)
}

func hueToRGB(p, q, t float32) float32 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

// SetBrightness updates the brightness value
func (vp *VideoProcessor) SetBrightness(brightness float32) {
	vp.brightness = brightness
}

// SetContrast updates the contrast value
func (vp *VideoProcessor) SetContrast(contrast float32) {
	vp.contrast = contrast
}

// SetSaturation updates the saturation value
func (vp *VideoProcessor) SetSaturation(saturation float32) {
	vp.saturation = saturation
}
