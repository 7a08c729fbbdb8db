// Package app provides configuration management for the NES emulator.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nesemu/internal/graphics"
)

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Audio     AudioConfig     `json:"audio"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Scale      int  `json:"scale"` // NES resolution multiplier
	Fullscreen bool `json:"fullscreen"`
	Resizable  bool `json:"resizable"`
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	Backend    string  `json:"backend"` // "ebitengine", "headless", "terminal"
	VSync      bool    `json:"vsync"`
	Filter     string  `json:"filter"` // "nearest", "linear"
	Brightness float32 `json:"brightness"`
	Contrast   float32 `json:"contrast"`
	Saturation float32 `json:"saturation"`
}

// AudioConfig contains audio configuration
type AudioConfig struct {
	Enabled    bool    `json:"enabled"`
	SampleRate int     `json:"sample_rate"`
	Volume     float64 `json:"volume"`
	Latency    int     `json:"latency"` // milliseconds
}

// InputConfig contains keyboard bindings
type InputConfig struct {
	Player1Keys KeyMapping `json:"player1_keys"`
	Player2Keys KeyMapping `json:"player2_keys"`
}

// KeyMapping represents keyboard key mappings for NES controller. Names
// are ebiten key names such as "W", "Enter" or "ArrowUp".
type KeyMapping struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Select string `json:"select"`
	Start  string `json:"start"`
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	FrameRate        int  `json:"frame_rate"`
	PauseOnFocusLoss bool `json:"pause_on_focus_loss"`
	SaveBattery      bool `json:"save_battery"` // persist battery RAM next to the ROM or in save_data
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	ShowFPS       bool     `json:"show_fps"`
	EnableLogging bool     `json:"enable_logging"`
	TraceFile     string   `json:"trace_file"`
	Breakpoints   []uint16 `json:"breakpoints"`
	StatsView     bool     `json:"statsview"`
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	SaveData    string `json:"save_data"`
	SaveStates  string `json:"save_states"`
	Screenshots string `json:"screenshots"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Scale:     3,
			Resizable: true,
		},
		Video: VideoConfig{
			Backend:    string(graphics.BackendEbitengine),
			VSync:      true,
			Filter:     "nearest",
			Brightness: 1.0,
			Contrast:   1.0,
			Saturation: 1.0,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Volume:     0.8,
			Latency:    50,
		},
		Input: InputConfig{
			Player1Keys: mappingFromKeys(graphics.DefaultPlayer1Keys),
			Player2Keys: mappingFromKeys(graphics.DefaultPlayer2Keys),
		},
		Emulation: EmulationConfig{
			FrameRate:        60,
			PauseOnFocusLoss: true,
			SaveBattery:      true,
		},
		Paths: PathsConfig{
			SaveData:    filepath.Join(defaultConfigDir(), "saves"),
			SaveStates:  filepath.Join(defaultConfigDir(), "states"),
			Screenshots: filepath.Join(defaultConfigDir(), "screenshots"),
		},
	}
}

func mappingFromKeys(keys [8]string) KeyMapping {
	return KeyMapping{
		A: keys[0], B: keys[1], Select: keys[2], Start: keys[3],
		Up: keys[4], Down: keys[5], Left: keys[6], Right: keys[7],
	}
}

// Keys returns the mapping in controller shift order.
func (m KeyMapping) Keys() [8]string {
	return [8]string{m.A, m.B, m.Select, m.Start, m.Up, m.Down, m.Left, m.Right}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the current values.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c.SaveToFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return err
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Validate rejects settings that cannot work and resets out-of-range
// values to their defaults.
func (c *Config) Validate() error {
	switch graphics.BackendType(c.Video.Backend) {
	case graphics.BackendEbitengine, graphics.BackendHeadless, graphics.BackendTerminal:
	default:
		return &ConfigError{Field: "video.backend", Value: c.Video.Backend, Err: ErrInvalidConfig}
	}

	switch c.Video.Filter {
	case "nearest", "linear":
	case "":
		c.Video.Filter = "nearest"
	default:
		return &ConfigError{Field: "video.filter", Value: c.Video.Filter, Err: ErrInvalidConfig}
	}

	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}

	if c.Video.Brightness < 0.1 || c.Video.Brightness > 3.0 {
		c.Video.Brightness = 1.0
	}
	if c.Video.Contrast < 0.1 || c.Video.Contrast > 3.0 {
		c.Video.Contrast = 1.0
	}
	if c.Video.Saturation < 0.0 || c.Video.Saturation > 3.0 {
		c.Video.Saturation = 1.0
	}

	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		c.Audio.SampleRate = 44100
	}
	if c.Audio.Volume < 0.0 || c.Audio.Volume > 1.0 {
		c.Audio.Volume = 0.8
	}
	if c.Audio.Latency <= 0 {
		c.Audio.Latency = 50
	}

	if c.Emulation.FrameRate <= 0 {
		c.Emulation.FrameRate = 60
	}

	return nil
}

// GetWindowResolution returns the window resolution based on scale
func (c *Config) GetWindowResolution() (int, int) {
	return 256 * c.Window.Scale, 240 * c.Window.Scale
}

// GraphicsConfig returns the settings the graphics backend needs.
func (c *Config) GraphicsConfig(title string) graphics.Config {
	width, height := c.GetWindowResolution()
	return graphics.Config{
		WindowTitle:  title,
		WindowWidth:  width,
		WindowHeight: height,
		Fullscreen:   c.Window.Fullscreen,
		Resizable:    c.Window.Resizable,
		VSync:        c.Video.VSync,
		Filter:       c.Video.Filter,
		TPS:          c.Emulation.FrameRate,
		Player1Keys:  c.Input.Player1Keys.Keys(),
		Player2Keys:  c.Input.Player2Keys.Keys(),
		Headless:     c.Video.Backend != string(graphics.BackendEbitengine),
	}
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	data, err := json.Marshal(c)
	if err != nil {
		return NewConfig()
	}

	clone := &Config{}
	if err := json.Unmarshal(data, clone); err != nil {
		return NewConfig()
	}

	clone.configPath = c.configPath
	clone.loaded = c.loaded
	return clone
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "config")
	}
	return filepath.Join(dir, "nesemu")
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
