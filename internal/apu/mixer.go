package apu

import "math"

// Sample is one stereo output frame in [-1, 1].
type Sample struct {
	Left  float32
	Right float32
}

var pulseTable [31]float32

func init() {
	for i := 1; i < len(pulseTable); i++ {
		pulseTable[i] = float32(95.88 / (8128.0/float64(i) + 100))
	}
}

// mix applies the nonlinear DAC curves. The result lies in [0, 1).
func mix(p1, p2, t, n, d uint8) float32 {
	out := pulseTable[p1+p2]
	tnd := float64(t)/8227 + float64(n)/12241 + float64(d)/22638
	if tnd > 0 {
		out += float32(159.79 / (1/tnd + 100))
	}
	return out
}

// filter is a first-order IIR section.
type filter struct {
	b0, b1, a1   float32
	prevX, prevY float32
}

func (f *filter) step(x float32) float32 {
	y := f.b0*x + f.b1*f.prevX - f.a1*f.prevY
	f.prevX = x
	f.prevY = y
	return y
}

func highPass(sampleRate, cutoff float64) filter {
	c := sampleRate / math.Pi / cutoff
	a0i := 1 / (1 + c)
	return filter{b0: float32(c * a0i), b1: float32(-c * a0i), a1: float32((1 - c) * a0i)}
}

func lowPass(sampleRate, cutoff float64) filter {
	c := sampleRate / math.Pi / cutoff
	a0i := 1 / (1 + c)
	return filter{b0: float32(a0i), b1: float32(a0i), a1: float32((1 - c) * a0i)}
}

// filterChain approximates the console's analogue output stage.
type filterChain []filter

func newFilterChain(sampleRate int) filterChain {
	rate := float64(sampleRate)
	return filterChain{
		highPass(rate, 90),
		highPass(rate, 440),
		lowPass(rate, 14000),
	}
}

func (fc filterChain) step(x float32) float32 {
	for i := range fc {
		x = fc[i].step(x)
	}
	return x
}

func clamp(x float32) float32 {
	switch {
	case x > 1:
		return 1
	case x < -1:
		return -1
	}
	return x
}
