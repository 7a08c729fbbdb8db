// Package app implements the main NES emulator application with GUI support.
package app

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"nesemu/internal/audio"
	"nesemu/internal/bus"
	"nesemu/internal/cartridge"
	"nesemu/internal/graphics"
	"nesemu/internal/logger"
	"nesemu/internal/version"
	"nesemu/internal/wavwriter"
)

// ApplicationError records which component and operation failed.
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

func wrap(component, operation string, err error) error {
	appErr := &ApplicationError{Component: component, Operation: operation, Err: err}
	logger.Log(logger.TagApp, appErr.Error())
	return appErr
}

// focusReporter is implemented by windows that know about input focus.
type focusReporter interface {
	Focused() bool
}

// tpsReporter is implemented by windows that measure their tick rate.
type tpsReporter interface {
	ActualTPS() float64
}

// Application represents the main NES emulator application
type Application struct {
	config   *Config
	headless bool

	graphicsBackend graphics.Backend
	window          graphics.Window
	videoProcessor  *graphics.VideoProcessor

	// set once a ROM is loaded
	bus       *bus.Bus
	cartridge *cartridge.Cartridge
	emulator  *Emulator
	romPath   string

	states    *StateManager
	player    *audio.Player
	wav       *wavwriter.WavWriter
	traceFile *os.File
	trace     *bufio.Writer

	// cleared by Stop, possibly from a signal handler
	running atomic.Bool
	paused  bool

	// controller state per port in shift order
	buttons [2][8]bool

	startTime   time.Time
	lastTitleAt time.Time
}

// NewApplicationWithMode loads the configuration at configPath and creates
// an application. headless forces a windowless backend.
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	config := NewConfig()
	if configPath != "" {
		if err := config.LoadFromFile(configPath); err != nil {
			return nil, wrap("config", "load", err)
		}
	}
	return NewApplication(config, headless)
}

// NewApplication creates an application from a configuration.
func NewApplication(config *Config, headless bool) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, wrap("config", "validate", err)
	}

	if headless && config.Video.Backend == string(graphics.BackendEbitengine) {
		config.Video.Backend = string(graphics.BackendHeadless)
	}

	if config.Debug.EnableLogging {
		logger.SetEcho(os.Stderr)
	}

	app := &Application{
		config:   config,
		headless: config.Video.Backend != string(graphics.BackendEbitengine),
		videoProcessor: graphics.NewVideoProcessor(
			config.Video.Brightness, config.Video.Contrast, config.Video.Saturation),
		states:    NewStateManager(config.Paths.SaveStates),
		startTime: time.Now(),
	}

	if err := app.initializeGraphicsBackend(); err != nil {
		return nil, err
	}

	logger.Logf(logger.TagApp, "nesemu %s, %s backend", version.GetVersion(), app.graphicsBackend.GetName())
	return app, nil
}

// initializeGraphicsBackend creates the configured backend, falling back
// to headless when a window cannot be opened.
func (app *Application) initializeGraphicsBackend() error {
	backend, err := graphics.CreateBackend(graphics.BackendType(app.config.Video.Backend))
	if err != nil {
		return wrap("graphics", "create backend", err)
	}

	gconfig := app.config.GraphicsConfig("nesemu")
	if err := backend.Initialize(gconfig); err != nil {
		if app.headless {
			return wrap("graphics", "initialize", err)
		}
		logger.Logf(logger.TagVideo, "%s unavailable (%v), falling back to headless", backend.GetName(), err)
		app.config.Video.Backend = string(graphics.BackendHeadless)
		app.headless = true
		return app.initializeGraphicsBackend()
	}

	window, err := backend.CreateWindow(gconfig.WindowTitle, gconfig.WindowWidth, gconfig.WindowHeight)
	if err != nil {
		backend.Cleanup()
		return wrap("graphics", "create window", err)
	}

	app.graphicsBackend = backend
	app.window = window
	return nil
}

// LoadROM loads a ROM, restores its battery RAM and prepares the machine.
func (app *Application) LoadROM(romPath string) error {
	cart, err := cartridge.LoadFromFile(romPath)
	if err != nil {
		return wrap("cartridge", "load", err)
	}

	b, err := bus.New(cart)
	if err != nil {
		return wrap("bus", "power on", err)
	}
	b.SetSampleRate(app.config.Audio.SampleRate)
	for _, address := range app.config.Debug.Breakpoints {
		b.SetBreakpoint(address)
	}

	app.closeROM()

	app.bus = b
	app.cartridge = cart
	app.romPath = romPath
	app.buttons = [2][8]bool{}

	if err := app.loadBattery(); err != nil {
		logger.Logf(logger.TagCart, "battery RAM not restored: %v", err)
	}

	if app.config.Debug.TraceFile != "" {
		if err := app.openTrace(app.config.Debug.TraceFile); err != nil {
			return err
		}
	}

	app.emulator = NewEmulator(b, app.config)
	app.emulator.Start()

	if app.config.Audio.Enabled && !app.headless {
		latency := time.Duration(app.config.Audio.Latency) * time.Millisecond
		player, err := audio.NewPlayer(app.config.Audio.SampleRate, latency, app.config.Audio.Volume)
		if err != nil {
			logger.Logf(logger.TagAudio, "audio disabled: %v", err)
		} else {
			app.player = player
			app.emulator.AddAudioSink(player.Push)
		}
	}
	if app.wav != nil {
		app.emulator.AddAudioSink(app.wav.SetAudio)
	}

	app.window.SetTitle(app.title())
	logger.Logf(logger.TagApp, "loaded %s (mapper %d)", filepath.Base(romPath), cart.MapperID())
	return nil
}

// closeROM saves and releases everything tied to the current ROM.
func (app *Application) closeROM() error {
	if app.bus == nil {
		return nil
	}

	var errs []error
	if err := app.saveBattery(); err != nil {
		errs = append(errs, err)
	}
	if app.player != nil {
		if err := app.player.Close(); err != nil {
			errs = append(errs, wrap("audio", "close", err))
		}
		app.player = nil
	}
	if err := app.closeTrace(); err != nil {
		errs = append(errs, err)
	}

	app.bus = nil
	app.cartridge = nil
	app.emulator = nil
	return errors.Join(errs...)
}

// EnableWAVCapture records all audio produced from now on to path. The
// file is written by Cleanup.
func (app *Application) EnableWAVCapture(path string) error {
	w, err := wavwriter.New(path, app.config.Audio.SampleRate)
	if err != nil {
		return wrap("wavwriter", "create", err)
	}
	app.wav = w
	if app.emulator != nil {
		app.emulator.AddAudioSink(w.SetAudio)
	}
	return nil
}

func (app *Application) openTrace(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return wrap("trace", "open", err)
	}
	app.traceFile = f
	app.trace = bufio.NewWriter(f)
	app.bus.SetTraceWriter(app.trace)
	return nil
}

func (app *Application) closeTrace() error {
	if app.traceFile == nil {
		return nil
	}
	if app.bus != nil {
		app.bus.SetTraceWriter(nil)
	}
	err := app.trace.Flush()
	if cerr := app.traceFile.Close(); err == nil {
		err = cerr
	}
	app.traceFile = nil
	app.trace = nil
	if err != nil {
		return wrap("trace", "close", err)
	}
	return nil
}

// batteryPath is where the battery RAM of the current ROM is kept.
func (app *Application) batteryPath() string {
	name := strings.TrimSuffix(filepath.Base(app.romPath), filepath.Ext(app.romPath)) + ".sav"
	if app.config.Paths.SaveData == "" {
		return filepath.Join(filepath.Dir(app.romPath), name)
	}
	return filepath.Join(app.config.Paths.SaveData, name)
}

func (app *Application) loadBattery() error {
	if !app.config.Emulation.SaveBattery || !app.cartridge.HasBattery() {
		return nil
	}
	data, err := os.ReadFile(app.batteryPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := app.cartridge.LoadRAM(data); err != nil {
		return err
	}
	logger.Logf(logger.TagCart, "battery RAM restored from %s", app.batteryPath())
	return nil
}

func (app *Application) saveBattery() error {
	if app.cartridge == nil || !app.config.Emulation.SaveBattery || !app.cartridge.HasBattery() {
		return nil
	}
	path := app.batteryPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return wrap("cartridge", "save battery", err)
	}
	if err := os.WriteFile(path, app.cartridge.SaveRAM(), 0644); err != nil {
		return wrap("cartridge", "save battery", err)
	}
	logger.Logf(logger.TagCart, "battery RAM saved to %s", path)
	return nil
}

// Run runs the main loop until the window closes or Stop is called.
func (app *Application) Run() error {
	if app.emulator == nil {
		return wrap("app", "run", errors.New("no ROM loaded"))
	}

	app.running.Store(true)
	if runner, ok := app.window.(graphics.Runner); ok {
		if err := runner.Run(app.tick); err != nil {
			return wrap("graphics", "run", err)
		}
		return nil
	}

	for app.running.Load() && !app.window.ShouldClose() {
		if err := app.tick(); err != nil {
			return err
		}
	}
	return nil
}

// RunFrames runs n frames without pacing, pausing early at a breakpoint.
// Input is not polled.
func (app *Application) RunFrames(n int) error {
	if app.emulator == nil {
		return wrap("app", "run", errors.New("no ROM loaded"))
	}
	for i := 0; i < n; i++ {
		err := app.emulator.StepFrame()
		if errors.Is(err, ErrBreakpoint) {
			app.paused = true
			break
		}
		if err := app.render(); err != nil {
			return err
		}
	}
	return nil
}

// tick handles one iteration of the main loop: input, one frame of
// emulation and presentation.
func (app *Application) tick() error {
	app.processInput()
	if !app.running.Load() {
		app.window.Cleanup()
		return nil
	}

	if !app.paused && app.hasFocus() {
		err := app.emulator.Update()
		if errors.Is(err, ErrBreakpoint) {
			app.paused = true
			app.window.SetTitle(app.title())
		} else if err != nil {
			return wrap("emulator", "update", err)
		}
	}

	if err := app.render(); err != nil {
		return err
	}

	if app.config.Debug.ShowFPS && time.Since(app.lastTitleAt) >= time.Second {
		app.lastTitleAt = time.Now()
		app.window.SetTitle(app.title())
	}
	return nil
}

func (app *Application) hasFocus() bool {
	if !app.config.Emulation.PauseOnFocusLoss {
		return true
	}
	if f, ok := app.window.(focusReporter); ok {
		return f.Focused()
	}
	return true
}

func (app *Application) title() string {
	s := "nesemu"
	if app.romPath != "" {
		s += " - " + filepath.Base(app.romPath)
	}
	if app.paused {
		s += " [paused]"
	}
	if app.config.Debug.ShowFPS {
		if t, ok := app.window.(tpsReporter); ok {
			s += fmt.Sprintf(" %.1f fps", t.ActualTPS())
		}
		if app.emulator != nil {
			s += fmt.Sprintf(" %.1fx", app.emulator.GetEmulationSpeed())
		}
	}
	return s
}

// processInput applies window events to the controllers and handles the
// function keys.
func (app *Application) processInput() {
	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()

		case graphics.InputEventTypeButton:
			if event.Player < 1 || event.Player > 2 {
				continue
			}
			port := event.Player - 1
			app.buttons[port][event.Button] = event.Pressed
			app.bus.SetControllerButtons(event.Player, app.buttons[port])

		case graphics.InputEventTypeKey:
			app.handleKey(event)
		}
	}
}

func (app *Application) handleKey(event graphics.InputEvent) {
	switch event.Key {
	case graphics.KeyEscape:
		app.Stop()
	case graphics.KeyPause:
		app.TogglePause()
	case graphics.KeyReset:
		app.Reset()
	case graphics.KeyScreenshot:
		name := fmt.Sprintf("nesemu-%s.png", time.Now().Format("20060102-150405"))
		if err := app.Screenshot(filepath.Join(app.config.Paths.Screenshots, name)); err != nil {
			logger.Log(logger.TagVideo, err.Error())
		}
	case graphics.KeyF1, graphics.KeyF2, graphics.KeyF3, graphics.KeyF4, graphics.KeyF5,
		graphics.KeyF6, graphics.KeyF7, graphics.KeyF8, graphics.KeyF9, graphics.KeyF10:
		// errors are logged by wrap
		slot := int(event.Key - graphics.KeyF1)
		if event.Modifiers&graphics.ModifierShift != 0 {
			app.LoadState(slot)
		} else {
			app.SaveState(slot)
		}
	}
}

// SaveState saves the machine to a slot.
func (app *Application) SaveState(slot int) error {
	if app.emulator == nil {
		return wrap("states", "save", errors.New("no ROM loaded"))
	}
	if err := app.states.SaveState(app.bus, slot, app.romPath); err != nil {
		return wrap("states", "save", err)
	}
	logger.Logf(logger.TagApp, "state saved to slot %d", slot)
	return nil
}

// LoadState restores the machine from a slot.
func (app *Application) LoadState(slot int) error {
	if app.emulator == nil {
		return wrap("states", "load", errors.New("no ROM loaded"))
	}
	if err := app.states.LoadState(app.bus, slot, app.romPath); err != nil {
		return wrap("states", "load", err)
	}
	logger.Logf(logger.TagApp, "state loaded from slot %d", slot)
	return nil
}

// GetStateManager returns the save state slots
func (app *Application) GetStateManager() *StateManager {
	return app.states
}

// render presents the last completed frame.
func (app *Application) render() error {
	frame := app.videoProcessor.ProcessFrame(app.emulator.GetFrameBuffer())
	if err := app.window.RenderFrame(frame); err != nil {
		return wrap("graphics", "render", err)
	}
	return nil
}

// Screenshot writes the last completed frame to path as PNG or PPM.
func (app *Application) Screenshot(path string) error {
	if app.emulator == nil {
		return wrap("video", "screenshot", errors.New("no ROM loaded"))
	}
	if err := graphics.SaveScreenshot(path, app.emulator.GetFrameBuffer()); err != nil {
		return wrap("video", "screenshot", err)
	}
	logger.Logf(logger.TagVideo, "screenshot saved to %s", path)
	return nil
}

// SetControllerButtons sets all buttons of the controller in port 1 or 2.
func (app *Application) SetControllerButtons(port int, buttons [8]bool) {
	if port < 1 || port > 2 || app.bus == nil {
		return
	}
	app.buttons[port-1] = buttons
	app.bus.SetControllerButtons(port, buttons)
}

// Stop ends the main loop
func (app *Application) Stop() {
	app.running.Store(false)
}

// Pause suspends emulation
func (app *Application) Pause() {
	app.paused = true
	app.window.SetTitle(app.title())
}

// Resume continues emulation
func (app *Application) Resume() {
	app.paused = false
	app.window.SetTitle(app.title())
}

// TogglePause switches between paused and running
func (app *Application) TogglePause() {
	if app.paused {
		app.Resume()
	} else {
		app.Pause()
	}
}

// Reset presses the console's reset button
func (app *Application) Reset() {
	if app.emulator == nil {
		return
	}
	app.emulator.Reset()
	logger.Log(logger.TagApp, "reset")
}

// IsRunning reports whether the main loop is running
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// IsPaused reports whether emulation is paused
func (app *Application) IsPaused() bool {
	return app.paused
}

// GetFrameCount returns the frames run since the last reset
func (app *Application) GetFrameCount() uint64 {
	if app.emulator == nil {
		return 0
	}
	return app.emulator.GetFrameCount()
}

// GetUptime returns the time since the application was created
func (app *Application) GetUptime() time.Duration {
	return time.Since(app.startTime)
}

// GetConfig returns the configuration in use
func (app *Application) GetConfig() *Config {
	return app.config
}

// GetBus returns the machine, or nil before a ROM is loaded
func (app *Application) GetBus() *bus.Bus {
	return app.bus
}

// GetEmulator returns the emulator, or nil before a ROM is loaded
func (app *Application) GetEmulator() *Emulator {
	return app.emulator
}

// GetWindow returns the window of the graphics backend
func (app *Application) GetWindow() graphics.Window {
	return app.window
}

// Cleanup saves battery RAM, finishes any recording and releases all
// resources.
func (app *Application) Cleanup() error {
	var errs []error

	if err := app.closeROM(); err != nil {
		errs = append(errs, err)
	}

	if app.wav != nil {
		if err := app.wav.EndMixing(); err != nil {
			errs = append(errs, wrap("wavwriter", "write", err))
		}
		app.wav = nil
	}

	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			errs = append(errs, wrap("graphics", "window cleanup", err))
		}
	}

	if app.graphicsBackend != nil {
		if err := app.graphicsBackend.Cleanup(); err != nil {
			errs = append(errs, wrap("graphics", "backend cleanup", err))
		}
	}

	return errors.Join(errs...)
}
