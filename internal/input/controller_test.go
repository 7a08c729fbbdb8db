package input

import (
	"testing"
)

func readAll(c *Controller, n int) []uint8 {
	bits := make([]uint8, n)
	for i := range bits {
		bits[i] = c.Read()
	}
	return bits
}

func TestSetButton_ShouldUpdateButtonState(t *testing.T) {
	controller := New()

	buttons := []Button{
		ButtonA, ButtonB, ButtonSelect, ButtonStart,
		ButtonUp, ButtonDown, ButtonLeft, ButtonRight,
	}

	for _, button := range buttons {
		controller.SetButton(button, true)
		if !controller.IsPressed(button) {
			t.Errorf("Button %d should be pressed after SetButton(true)", button)
		}
		if controller.buttons != uint8(button) {
			t.Errorf("Expected buttons state %d, got %d", uint8(button), controller.buttons)
		}
		controller.SetButton(button, false)
		if controller.IsPressed(button) {
			t.Errorf("Button %d should not be pressed after SetButton(false)", button)
		}
	}
}

func TestReadOrder(t *testing.T) {
	controller := New()
	// A, Start, Right
	controller.SetButtons([8]bool{true, false, false, true, false, false, false, true})

	controller.Write(1)
	controller.Write(0)

	expected := []uint8{1, 0, 0, 1, 0, 0, 0, 1}
	got := readAll(controller, 8)
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Read %d: expected %d, got %d", i, expected[i], got[i])
		}
	}

	// official controllers report 1 after the eighth read
	for i, bit := range readAll(controller, 4) {
		if bit != 1 {
			t.Errorf("Extended read %d: expected 1, got %d", i, bit)
		}
	}
}

func TestStrobeHighReturnsA(t *testing.T) {
	controller := New()
	controller.Write(1)

	if controller.Read() != 0 {
		t.Errorf("Expected A released")
	}
	controller.SetButton(ButtonA, true)
	for i := 0; i < 3; i++ {
		if controller.Read() != 1 {
			t.Errorf("Expected continuous reload of A while strobe is high")
		}
	}
}

func TestButtonsLatchedOnStrobe(t *testing.T) {
	controller := New()
	controller.SetButton(ButtonB, true)
	controller.Write(1)
	controller.Write(0)

	// changes after the strobe fell are not seen until the next strobe
	controller.SetButton(ButtonB, false)
	bits := readAll(controller, 2)
	if bits[1] != 1 {
		t.Errorf("Expected latched B, got %v", bits)
	}
}

func TestInputState_Ports(t *testing.T) {
	is := NewInputState()
	is.SetButtons(1, [8]bool{true})
	is.SetButtons(2, [8]bool{false, true})

	is.Write(0x4016, 1)
	is.Write(0x4016, 0)

	if is.Read(0x4016) != 1 || is.Read(0x4016) != 0 {
		t.Errorf("Port 1 should report A then B released")
	}
	if is.Read(0x4017) != 0 || is.Read(0x4017) != 1 {
		t.Errorf("Port 2 should report A released then B")
	}
	if is.Read(0x4018) != 0 {
		t.Errorf("Unknown port should read 0")
	}
}

func TestReset_KeepsButtons(t *testing.T) {
	controller := New()
	controller.SetButton(ButtonUp, true)
	controller.Write(1)
	controller.Reset()

	if controller.strobe {
		t.Errorf("Expected strobe low after reset")
	}
	if !controller.IsPressed(ButtonUp) {
		t.Errorf("Reset should not release held buttons")
	}
}

func TestSnapshotKeepsShiftPosition(t *testing.T) {
	is := NewInputState()
	is.SetButtons(1, [8]bool{true, false, true})
	is.Write(0x4016, 1)
	is.Write(0x4016, 0)
	is.Read(0x4016) // A
	saved := is.Snapshot()

	is.Read(0x4016)
	is.Read(0x4016)
	is.Restore(saved)

	if got := is.Read(0x4016) & 1; got != 0 {
		t.Errorf("Expected B released, got %d", got)
	}
	if got := is.Read(0x4016) & 1; got != 1 {
		t.Errorf("Expected Select pressed, got %d", got)
	}
}
