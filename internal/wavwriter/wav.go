// Package wavwriter records emulator audio to a WAV file. Samples are
// buffered in memory in their entirety and written when mixing ends, so it
// is meant for captures of limited length.
package wavwriter

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"nesemu/internal/apu"
	"nesemu/internal/logger"
)

const (
	bitDepth    = 16
	numChannels = 2

	// WAVE_FORMAT_PCM
	pcmFormat = 1
)

// WavWriter accumulates samples for a WAV file.
type WavWriter struct {
	filename   string
	sampleRate int
	buffer     []int
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string, sampleRate int) (*WavWriter, error) {
	if filename == "" {
		return nil, errors.New("wavwriter: no filename")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wavwriter: bad sample rate %d", sampleRate)
	}
	return &WavWriter{
		filename:   filename,
		sampleRate: sampleRate,
	}, nil
}

// SetAudio appends samples to the recording.
func (aw *WavWriter) SetAudio(samples []apu.Sample) {
	for _, s := range samples {
		aw.buffer = append(aw.buffer, toPCM(s.Left), toPCM(s.Right))
	}
}

// Frames returns the number of stereo frames recorded so far.
func (aw *WavWriter) Frames() int {
	return len(aw.buffer) / numChannels
}

// EndMixing writes the recording to disk.
func (aw *WavWriter) EndMixing() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	enc := wav.NewEncoder(f, aw.sampleRate, bitDepth, numChannels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChannels, SampleRate: aw.sampleRate},
		Data:           aw.buffer,
		SourceBitDepth: bitDepth,
	}

	logger.Logf(logger.TagAudio, "writing %d frames to %s", aw.Frames(), aw.filename)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	return nil
}

func toPCM(v float32) int {
	return int(math.Max(-1, math.Min(1, float64(v))) * math.MaxInt16)
}
