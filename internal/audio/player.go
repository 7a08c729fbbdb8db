//go:build !headless
// +build !headless

package audio

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"nesemu/internal/apu"
	"nesemu/internal/logger"
)

// Player plays samples pushed by the emulator through the ebiten audio
// context.
type Player struct {
	ring   *Ring
	player *audio.Player
}

// NewPlayer starts playback at sampleRate. latency sets the device buffer
// and the ring holds four times as much.
func NewPlayer(sampleRate int, latency time.Duration, volume float64) (*Player, error) {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	} else if ctx.SampleRate() != sampleRate {
		return nil, fmt.Errorf("audio: context already running at %d Hz", ctx.SampleRate())
	}

	capacity := int(time.Duration(sampleRate) * latency * 4 / time.Second)
	ring := NewRing(capacity)

	player, err := ctx.NewPlayer(ring)
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	player.SetBufferSize(latency)
	player.SetVolume(volume)
	player.Play()

	logger.Logf(logger.TagAudio, "playing at %d Hz, %v latency", sampleRate, latency)
	return &Player{ring: ring, player: player}, nil
}

// Push queues samples for playback.
func (p *Player) Push(samples []apu.Sample) {
	p.ring.Push(samples)
}

// Ring returns the player's sample queue.
func (p *Player) Ring() *Ring {
	return p.ring
}

// Close stops playback.
func (p *Player) Close() error {
	dropped, underruns := p.ring.Stats()
	logger.Logf(logger.TagAudio, "closed, %d samples dropped, %d underruns", dropped, underruns)
	return p.player.Close()
}
