// Package graphics provides an abstraction layer for different rendering backends
package graphics

import (
	"fmt"

	"nesemu/internal/ppu"
)

// Backend represents a graphics rendering backend
type Backend interface {
	// Initialize initializes the graphics backend
	Initialize(config Config) error

	// CreateWindow creates a window for rendering
	CreateWindow(title string, width, height int) (Window, error)

	// Cleanup releases all resources
	Cleanup() error

	// IsHeadless returns true if the backend has no visible window
	IsHeadless() bool

	// GetName returns the backend name for identification
	GetName() string
}

// Window represents a rendering window
type Window interface {
	// SetTitle sets the window title
	SetTitle(title string)

	// GetSize returns window dimensions
	GetSize() (width, height int)

	// ShouldClose returns true if window should close
	ShouldClose() bool

	// PollEvents returns the input events since the last call
	PollEvents() []InputEvent

	// RenderFrame presents a completed NES frame
	RenderFrame(frame *ppu.FrameBuffer) error

	// Cleanup releases window resources
	Cleanup() error
}

// Runner is implemented by windows that own the main loop. Run blocks
// until the window closes, calling update once per tick.
type Runner interface {
	Run(update func() error) error
}

// Config contains configuration for graphics backends
type Config struct {
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	Resizable    bool
	VSync        bool

	// "nearest" or "linear"
	Filter string

	// Ticks per second of the main loop
	TPS int

	// Key names per controller in the order A, B, Select, Start, Up, Down,
	// Left, Right
	Player1Keys [8]string
	Player2Keys [8]string

	Headless bool
}

// DefaultPlayer1Keys and DefaultPlayer2Keys are the default keyboard
// layouts for the two controllers.
var (
	DefaultPlayer1Keys = [8]string{"J", "K", "Space", "Enter", "W", "S", "A", "D"}
	DefaultPlayer2Keys = [8]string{"N", "M", "ControlRight", "ShiftRight", "ArrowUp", "ArrowDown", "ArrowLeft", "ArrowRight"}
)

// InputEvent represents an input event from the window
type InputEvent struct {
	Type      InputEventType
	Key       Key
	Button    Button
	Player    int
	Pressed   bool
	Modifiers ModifierKey
}

// InputEventType represents the type of input event
type InputEventType int

const (
	InputEventTypeKey InputEventType = iota
	InputEventTypeButton
	InputEventTypeQuit
)

// Key represents the emulator's function keys
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyPause
	KeyReset
	KeyScreenshot

	// save state slots 0 to 9
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
)

// ModifierKey is a set of modifier keys held with a key press.
type ModifierKey int

const (
	ModifierNone  ModifierKey = 0
	ModifierShift ModifierKey = 1 << iota
)

// Button is a controller line, numbered in the order the controller
// shifts them out.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

var buttonNames = [...]string{"A", "B", "Select", "Start", "Up", "Down", "Left", "Right"}

func (b Button) String() string {
	if b < 0 || int(b) >= len(buttonNames) {
		return fmt.Sprintf("Button(%d)", int(b))
	}
	return buttonNames[b]
}

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
	BackendTerminal   BackendType = "terminal"
)

// CreateBackend creates a graphics backend of the specified type
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine, "":
		return NewEbitengineBackend(), nil
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendTerminal:
		return NewTerminalBackend(), nil
	}
	return nil, fmt.Errorf("unknown graphics backend %q", backendType)
}
