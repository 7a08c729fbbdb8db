// Package audio streams APU samples to the host sound device.
package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"nesemu/internal/apu"
)

// bytes per stereo frame of signed 16-bit samples
const frameBytes = 4

// Ring is a bounded FIFO of samples shared between the emulation loop,
// which pushes, and the audio device, which reads. When full the oldest
// samples are discarded so latency stays bounded.
type Ring struct {
	mu    sync.Mutex
	buf   []apu.Sample
	start int
	n     int

	dropped   uint64
	underruns uint64
}

// NewRing creates a ring holding up to capacity samples.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]apu.Sample, capacity)}
}

// Push appends samples, overwriting the oldest on overflow.
func (r *Ring) Push(samples []apu.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range samples {
		if r.n == len(r.buf) {
			r.start = (r.start + 1) % len(r.buf)
			r.n--
			r.dropped++
		}
		r.buf[(r.start+r.n)%len(r.buf)] = s
		r.n++
	}
}

// Len returns the number of buffered samples.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Stats returns how many samples were dropped on overflow and how many
// frames were padded with silence on underrun.
func (r *Ring) Stats() (dropped, underruns uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped, r.underruns
}

// Read implements io.Reader, producing little-endian signed 16-bit stereo
// frames. It never blocks: missing samples are read as silence.
func (r *Ring) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / frameBytes
	for i := 0; i < frames; i++ {
		var s apu.Sample
		if r.n > 0 {
			s = r.buf[r.start]
			r.start = (r.start + 1) % len(r.buf)
			r.n--
		} else {
			r.underruns++
		}
		binary.LittleEndian.PutUint16(p[i*frameBytes:], uint16(toInt16(s.Left)))
		binary.LittleEndian.PutUint16(p[i*frameBytes+2:], uint16(toInt16(s.Right)))
	}
	return frames * frameBytes, nil
}

func toInt16(v float32) int16 {
	return int16(math.Max(-1, math.Min(1, float64(v))) * math.MaxInt16)
}
