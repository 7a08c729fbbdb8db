package graphics

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"nesemu/internal/ppu"
)

const (
	// source pixels per character cell
	terminalCellWidth  = 4
	terminalCellHeight = 8

	// frames between redraws
	terminalRefresh = 30
)

// TerminalBackend renders a coarse preview of the screen with ANSI colour
// escapes.
type TerminalBackend struct {
	initialized bool
	config      Config
	out         io.Writer
}

// TerminalWindow implements the Window interface for terminal rendering
type TerminalWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int
	out        io.Writer
}

// NewTerminalBackend creates a terminal backend writing to stdout
func NewTerminalBackend() Backend {
	return &TerminalBackend{out: os.Stdout}
}

// Initialize initializes the terminal backend
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}

	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates a terminal "window"
func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	return &TerminalWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
		out:     b.out,
	}, nil
}

// Cleanup releases all terminal resources
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true. The terminal has output but no input.
func (b *TerminalBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *TerminalBackend) GetName() string {
	return "Terminal"
}

// SetTitle sets the terminal title
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
	fmt.Fprintf(w.out, "\033]0;%s\007", title)
}

func (w *TerminalWindow) GetSize() (width, height int) {
	return w.width, w.height
}

func (w *TerminalWindow) ShouldClose() bool {
	return !w.running
}

func (w *TerminalWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame redraws the terminal every terminalRefresh frames. Each
// character cell samples one source pixel for its foreground and one for
// its background using the upper half block.
func (w *TerminalWindow) RenderFrame(frame *ppu.FrameBuffer) error {
	w.frameCount++
	if w.frameCount%terminalRefresh != 1 {
		return nil
	}

	bw := bufio.NewWriter(w.out)
	bw.WriteString("\033[H")
	for y := 0; y < ppu.ScreenHeight; y += terminalCellHeight {
		for x := 0; x < ppu.ScreenWidth; x += terminalCellWidth {
			top := frame[y*ppu.ScreenWidth+x]
			bottom := frame[(y+terminalCellHeight/2)*ppu.ScreenWidth+x]
			fmt.Fprintf(bw, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm▀",
				uint8(top>>16), uint8(top>>8), uint8(top),
				uint8(bottom>>16), uint8(bottom>>8), uint8(bottom))
		}
		bw.WriteString("\033[0m\n")
	}
	return bw.Flush()
}

func (w *TerminalWindow) Cleanup() error {
	w.running = false
	return nil
}
