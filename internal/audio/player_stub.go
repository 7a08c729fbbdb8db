//go:build headless
// +build headless

package audio

import (
	"errors"
	"time"

	"nesemu/internal/apu"
)

// Player is unavailable in headless builds.
type Player struct {
	ring *Ring
}

// NewPlayer always fails in headless builds.
func NewPlayer(sampleRate int, latency time.Duration, volume float64) (*Player, error) {
	return nil, errors.New("audio: not available in headless build")
}

func (p *Player) Push(samples []apu.Sample) {}
func (p *Player) Ring() *Ring             { return p.ring }
func (p *Player) Close() error            { return nil }
