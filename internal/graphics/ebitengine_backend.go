//go:build !headless
// +build !headless

package graphics

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"nesemu/internal/logger"
	"nesemu/internal/ppu"
)

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
	game        *EbitengineGame
}

// EbitengineWindow implements the Window and Runner interfaces
type EbitengineWindow struct {
	backend *EbitengineBackend
	title   string
	width   int
	height  int
	game    *EbitengineGame
	running bool
	events  []InputEvent
	update  func() error
}

// EbitengineGame implements ebiten.Game for the NES emulator
type EbitengineGame struct {
	window       *EbitengineWindow
	frameImage   *ebiten.Image
	imageBuffer  *image.RGBA
	windowWidth  int
	windowHeight int
	filter       ebiten.Filter

	// key bindings per controller, indexed by Button
	players [2][8]ebiten.Key
}

var functionKeys = map[ebiten.Key]Key{
	ebiten.KeyEscape: KeyEscape,
	ebiten.KeyP:      KeyPause,
	ebiten.KeyR:      KeyReset,
	ebiten.KeyF12:    KeyScreenshot,
	ebiten.KeyF1:     KeyF1,
	ebiten.KeyF2:     KeyF2,
	ebiten.KeyF3:     KeyF3,
	ebiten.KeyF4:     KeyF4,
	ebiten.KeyF5:     KeyF5,
	ebiten.KeyF6:     KeyF6,
	ebiten.KeyF7:     KeyF7,
	ebiten.KeyF8:     KeyF8,
	ebiten.KeyF9:     KeyF9,
	ebiten.KeyF10:    KeyF10,
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("Ebitengine backend already initialized")
	}
	if config.Headless {
		return fmt.Errorf("Ebitengine backend cannot run headless")
	}

	b.config = config
	b.initialized = true
	return nil
}

// parseKeys turns key names into ebiten keys. Empty names fall back to
// the defaults.
func parseKeys(names, defaults [8]string) ([8]ebiten.Key, error) {
	var keys [8]ebiten.Key
	for i, name := range names {
		if name == "" {
			name = defaults[i]
		}
		if err := keys[i].UnmarshalText([]byte(name)); err != nil {
			return keys, fmt.Errorf("key for %s: %w", Button(i), err)
		}
	}
	return keys, nil
}

// CreateWindow creates an Ebitengine window
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	p1, err := parseKeys(b.config.Player1Keys, DefaultPlayer1Keys)
	if err != nil {
		return nil, fmt.Errorf("player 1: %w", err)
	}
	p2, err := parseKeys(b.config.Player2Keys, DefaultPlayer2Keys)
	if err != nil {
		return nil, fmt.Errorf("player 2: %w", err)
	}

	game := &EbitengineGame{
		windowWidth:  width,
		windowHeight: height,
		frameImage:   ebiten.NewImage(ppu.ScreenWidth, ppu.ScreenHeight),
		imageBuffer:  image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight)),
		filter:       ebiten.FilterNearest,
		players:      [2][8]ebiten.Key{p1, p2},
	}
	if b.config.Filter == "linear" {
		game.filter = ebiten.FilterLinear
	}

	window := &EbitengineWindow{
		backend: b,
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		running: true,
	}

	game.window = window
	b.game = game

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	if b.config.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetVsyncEnabled(b.config.VSync)
	if b.config.TPS > 0 {
		ebiten.SetTPS(b.config.TPS)
	}
	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false
func (b *EbitengineBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns window dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns the events gathered since the last call
func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

// Focused reports whether the window has input focus
func (w *EbitengineWindow) Focused() bool {
	return ebiten.IsFocused()
}

// ActualTPS returns the measured ticks per second
func (w *EbitengineWindow) ActualTPS() float64 {
	return ebiten.ActualTPS()
}

// RenderFrame uploads a NES frame to the window's texture
func (w *EbitengineWindow) RenderFrame(frame *ppu.FrameBuffer) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	img := FrameImage(frame, w.game.imageBuffer)
	w.game.frameImage.WritePixels(img.Pix)
	return nil
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// Run starts the Ebitengine game loop. update is called once per tick
// after input has been gathered.
func (w *EbitengineWindow) Run(update func() error) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	w.update = update
	err := ebiten.RunGame(w.game)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	if g.window == nil {
		return nil
	}
	if !g.window.running {
		return ebiten.Termination
	}

	g.processInput()

	if g.window.update != nil {
		if err := g.window.update(); err != nil {
			return err
		}
	}
	if !g.window.running {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{A: 255})

	scaleX := float64(g.windowWidth) / ppu.ScreenWidth
	scaleY := float64(g.windowHeight) / ppu.ScreenHeight
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	offsetX := (float64(g.windowWidth) - ppu.ScreenWidth*scale) / 2
	offsetY := (float64(g.windowHeight) - ppu.ScreenHeight*scale) / 2

	op := &ebiten.DrawImageOptions{Filter: g.filter}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(g.frameImage, op)
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

// processInput turns key transitions into controller and function key
// events.
func (g *EbitengineGame) processInput() {
	var events []InputEvent

	if ebiten.IsWindowBeingClosed() {
		events = append(events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
	}

	var modifiers ModifierKey
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		modifiers |= ModifierShift
	}
	for ebitenKey, key := range functionKeys {
		if inpututil.IsKeyJustPressed(ebitenKey) {
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: true, Modifiers: modifiers})
		}
	}

	for player, keys := range g.players {
		for button, ebitenKey := range keys {
			pressed := inpututil.IsKeyJustPressed(ebitenKey)
			if !pressed && !inpututil.IsKeyJustReleased(ebitenKey) {
				continue
			}
			events = append(events, InputEvent{
				Type:    InputEventTypeButton,
				Button:  Button(button),
				Player:  player + 1,
				Pressed: pressed,
			})
		}
	}

	if len(events) > 0 {
		logger.Logf(logger.TagInput, "%d input events", len(events))
	}
	g.window.events = append(g.window.events, events...)
}
