package app

import (
	"errors"
	"testing"

	"nesemu/internal/bus"
	"nesemu/internal/cartridge"
	"nesemu/internal/graphics"
	"nesemu/internal/test"
)

// counterProgram counts in X and mirrors the count to $10.
var counterProgram = []uint8{
	0xE8,       // INX
	0x86, 0x10, // STX $10
	0x4C, 0x00, 0x80, // JMP $8000
}

func TestStateManagerSlots(t *testing.T) {
	cart, err := cartridge.NewTestROMBuilder().WithProgram(0x8000, counterProgram).BuildCartridge()
	test.DemandSuccess(t, err)
	b, err := bus.New(cart)
	test.DemandSuccess(t, err)

	sm := NewStateManager(t.TempDir())
	const rom = "/roms/counter.nes"

	if err := sm.SaveState(b, sm.GetMaxSlots(), rom); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("Expected ErrInvalidSlot, got %v", err)
	}
	if err := sm.LoadState(b, 2, rom); !errors.Is(err, ErrNoSaveState) {
		t.Errorf("Expected ErrNoSaveState, got %v", err)
	}

	for i := 0; i < 100; i++ {
		b.StepInstruction()
	}
	test.DemandSuccess(t, sm.SaveState(b, 2, rom))
	saved := b.CPUState()
	counter := b.Memory.Peek(0x10)

	for i := 0; i < 100; i++ {
		b.StepInstruction()
	}
	test.DemandSuccess(t, sm.LoadState(b, 2, rom))
	test.ExpectEquality(t, b.CPUState(), saved)
	test.ExpectEquality(t, b.Memory.Peek(0x10), counter)

	test.ExpectEquality(t, sm.HasSaveState(2, rom), true)
	test.ExpectEquality(t, sm.HasSaveState(3, rom), false)
	info := sm.GetSlotInfo(rom)
	test.ExpectEquality(t, len(info), 10)
	test.ExpectEquality(t, info[2].Used, true)
	test.ExpectEquality(t, info[2].ROMName, "counter.nes")
	test.ExpectEquality(t, info[3].Used, false)

	test.DemandSuccess(t, sm.DeleteState(2, rom))
	test.ExpectEquality(t, sm.HasSaveState(2, rom), false)
	if err := sm.DeleteState(2, rom); !errors.Is(err, ErrNoSaveState) {
		t.Errorf("Expected ErrNoSaveState, got %v", err)
	}
}

func TestStateManagerRejectsOtherROM(t *testing.T) {
	newBus := func(program []uint8) *bus.Bus {
		cart, err := cartridge.NewTestROMBuilder().WithProgram(0x8000, program).BuildCartridge()
		test.DemandSuccess(t, err)
		b, err := bus.New(cart)
		test.DemandSuccess(t, err)
		return b
	}

	sm := NewStateManager(t.TempDir())
	const rom = "game.nes"

	test.DemandSuccess(t, sm.SaveState(newBus(counterProgram), 0, rom))

	// same file name, different contents
	other := newBus(batteryProgram)
	before := other.CPUState()
	if err := sm.LoadState(other, 0, rom); !errors.Is(err, ErrStateMismatch) {
		t.Errorf("Expected ErrStateMismatch, got %v", err)
	}
	test.ExpectEquality(t, other.CPUState(), before)
}

func TestFunctionKeysSaveAndLoad(t *testing.T) {
	rom := writeROM(t, cartridge.NewTestROMBuilder().WithProgram(0x8000, counterProgram))
	app := newHeadlessApp(t, headlessConfig(t))
	defer app.Cleanup()

	test.DemandSuccess(t, app.LoadROM(rom))
	test.DemandSuccess(t, app.RunFrames(2))

	app.handleKey(graphics.InputEvent{Type: graphics.InputEventTypeKey, Key: graphics.KeyF3, Pressed: true})
	if !app.GetStateManager().HasSaveState(2, rom) {
		t.Fatal("Expected F3 to save slot 2")
	}
	saved := app.GetBus().CPUState()

	test.DemandSuccess(t, app.RunFrames(2))
	if app.GetBus().CPUState() == saved {
		t.Fatal("Expected the machine to move on")
	}

	app.handleKey(graphics.InputEvent{
		Type: graphics.InputEventTypeKey, Key: graphics.KeyF3, Pressed: true,
		Modifiers: graphics.ModifierShift,
	})
	test.ExpectEquality(t, app.GetBus().CPUState(), saved)
}
