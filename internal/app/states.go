package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nesemu/internal/bus"
	"nesemu/internal/version"
)

// save file format; files with another version are rejected
const stateVersion = "1"

var (
	ErrInvalidSlot   = errors.New("invalid save slot")
	ErrNoSaveState   = errors.New("save state not found")
	ErrStateMismatch = errors.New("save state does not match")
)

// StateManager keeps save states in numbered slots, one file per ROM and
// slot.
type StateManager struct {
	saveDirectory string
	maxSlots      int
}

// SaveState is the file format of a save state: metadata followed by the
// machine.
type SaveState struct {
	Version     string    `json:"version"`
	Emulator    string    `json:"emulator"`
	Timestamp   time.Time `json:"timestamp"`
	ROMName     string    `json:"rom_name"`
	ROMChecksum string    `json:"rom_checksum"`
	SlotNumber  int       `json:"slot_number"`
	Description string    `json:"description"`
	FrameCount  uint64    `json:"frame_count"`

	Machine bus.State `json:"machine"`
}

// StateSlotInfo describes one slot.
type StateSlotInfo struct {
	SlotNumber  int       `json:"slot_number"`
	Used        bool      `json:"used"`
	Timestamp   time.Time `json:"timestamp"`
	ROMName     string    `json:"rom_name"`
	Description string    `json:"description"`
	FilePath    string    `json:"file_path"`
	FileSize    int64     `json:"file_size"`
}

// NewStateManager creates a state manager with 10 slots. The directory is
// created on the first save.
func NewStateManager(saveDirectory string) *StateManager {
	return &StateManager{
		saveDirectory: saveDirectory,
		maxSlots:      10,
	}
}

// SaveState writes the machine to a slot, replacing what was there.
func (sm *StateManager) SaveState(b *bus.Bus, slot int, romPath string) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}

	now := time.Now()
	state := &SaveState{
		Version:     stateVersion,
		Emulator:    version.GetVersion(),
		Timestamp:   now,
		ROMName:     filepath.Base(romPath),
		ROMChecksum: b.Cartridge().Checksum(),
		SlotNumber:  slot,
		Description: fmt.Sprintf("Slot %d %s", slot, now.Format("2006-01-02 15:04:05")),
		FrameCount:  b.Frame(),
		Machine:     b.SaveState(),
	}

	if err := sm.saveToFile(state, sm.getSlotFilePath(slot, romPath)); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// LoadState restores the machine from a slot. The state must have been
// saved from the same ROM contents; the machine is unchanged on error.
func (sm *StateManager) LoadState(b *bus.Bus, slot int, romPath string) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}

	state, err := sm.loadFromFile(sm.getSlotFilePath(slot, romPath))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w in slot %d", ErrNoSaveState, slot)
	}
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	if err := sm.validateSaveState(state, b); err != nil {
		return err
	}
	if err := b.LoadState(state.Machine); err != nil {
		return fmt.Errorf("failed to restore state: %w", err)
	}
	return nil
}

func (sm *StateManager) checkSlot(slot int) error {
	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidSlot, slot, sm.maxSlots-1)
	}
	return nil
}

func (sm *StateManager) validateSaveState(state *SaveState, b *bus.Bus) error {
	if state.Version != stateVersion {
		return fmt.Errorf("%w: version %q", ErrStateMismatch, state.Version)
	}
	if state.ROMChecksum != b.Cartridge().Checksum() {
		return fmt.Errorf("%w: saved from %s, a different ROM", ErrStateMismatch, state.ROMName)
	}
	return nil
}

// saveToFile writes through a temporary file so that a failed write never
// leaves a truncated state behind.
func (sm *StateManager) saveToFile(state *SaveState, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

func (sm *StateManager) loadFromFile(filePath string) (*SaveState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var state SaveState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (sm *StateManager) getSlotFilePath(slot int, romPath string) string {
	name := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
	return filepath.Join(sm.saveDirectory, fmt.Sprintf("%s_slot_%d.save", name, slot))
}

// GetSlotInfo describes every slot of a ROM.
func (sm *StateManager) GetSlotInfo(romPath string) []StateSlotInfo {
	slots := make([]StateSlotInfo, sm.maxSlots)
	for i := range slots {
		info := StateSlotInfo{SlotNumber: i}

		filePath := sm.getSlotFilePath(i, romPath)
		if stat, err := os.Stat(filePath); err == nil {
			info.Used = true
			info.FilePath = filePath
			info.FileSize = stat.Size()
			info.Timestamp = stat.ModTime()

			if state, err := sm.loadFromFile(filePath); err == nil {
				info.ROMName = state.ROMName
				info.Description = state.Description
				info.Timestamp = state.Timestamp
			}
		}
		slots[i] = info
	}
	return slots
}

// DeleteState removes the state in a slot.
func (sm *StateManager) DeleteState(slot int, romPath string) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}
	err := os.Remove(sm.getSlotFilePath(slot, romPath))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w in slot %d", ErrNoSaveState, slot)
	}
	return err
}

// HasSaveState reports whether a slot holds a state.
func (sm *StateManager) HasSaveState(slot int, romPath string) bool {
	if sm.checkSlot(slot) != nil {
		return false
	}
	_, err := os.Stat(sm.getSlotFilePath(slot, romPath))
	return err == nil
}

// GetMaxSlots returns the number of slots.
func (sm *StateManager) GetMaxSlots() int {
	return sm.maxSlots
}

// GetSaveDirectory returns the directory the states are kept in.
func (sm *StateManager) GetSaveDirectory() string {
	return sm.saveDirectory
}
