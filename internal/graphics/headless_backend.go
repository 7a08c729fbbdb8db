package graphics

import (
	"fmt"

	"nesemu/internal/ppu"
)

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow keeps the most recent frame in memory instead of
// presenting it.
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int
	last       ppu.FrameBuffer
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}

	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates a headless "window"
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	return &HeadlessWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
	}, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents never has anything to report
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame records the frame
func (w *HeadlessWindow) RenderFrame(frame *ppu.FrameBuffer) error {
	w.frameCount++
	w.last = *frame
	return nil
}

func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// LastFrame returns the most recently rendered frame.
func (w *HeadlessWindow) LastFrame() *ppu.FrameBuffer {
	return &w.last
}

// GetFrameCount returns the number of frames rendered
func (w *HeadlessWindow) GetFrameCount() int {
	return w.frameCount
}
