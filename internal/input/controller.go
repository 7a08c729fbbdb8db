// Package input implements the standard NES controller and the two
// controller ports.
package input

import (
	"nesemu/internal/logger"
)

// Button represents NES controller buttons, in the order they are shifted
// out of the controller.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller is a standard controller: a parallel-in serial-out shift
// register latched by the strobe line.
type Controller struct {
	buttons       uint8
	shiftRegister uint8
	strobe        bool

	debugEnabled bool
}

// New creates a new Controller instance
func New() *Controller {
	return &Controller{}
}

// SetButton sets the state of a single button
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons sets all button states at once, indexed A, B, Select, Start,
// Up, Down, Left, Right.
func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = 0
	for i, pressed := range buttons {
		if pressed {
			c.buttons |= 1 << i
		}
	}
	if c.debugEnabled {
		logger.Logf(logger.TagInput, "buttons %08b", c.buttons)
	}
}

// IsPressed returns true if the button is currently pressed
func (c *Controller) IsPressed(button Button) bool {
	return (c.buttons & uint8(button)) != 0
}

// Write handles the strobe bit written to $4016
func (c *Controller) Write(value uint8) {
	c.strobe = (value & 1) != 0
	if c.strobe {
		c.shiftRegister = c.buttons
	}
}

// Read shifts out the next button. While strobe is high the register is
// continuously reloaded so the A button is returned. Once all eight
// buttons have been read an official controller returns 1.
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.shiftRegister = c.buttons
		return c.buttons & 1
	}
	bit := c.shiftRegister & 1
	c.shiftRegister = (c.shiftRegister >> 1) | 0x80
	return bit
}

// Reset clears the shift register and strobe. Held buttons are kept.
func (c *Controller) Reset() {
	c.shiftRegister = 0
	c.strobe = false
}

// EnableDebug enables debug logging for this controller
func (c *Controller) EnableDebug(enable bool) {
	c.debugEnabled = enable
}

// InputState represents the two controller ports
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates a new input state with two controllers
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

// Reset resets all input devices
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// EnableDebug enables debug logging for all controllers
func (is *InputState) EnableDebug(enable bool) {
	is.Controller1.EnableDebug(enable)
	is.Controller2.EnableDebug(enable)
}

// SetButtons sets the buttons of the controller in port 1 or 2.
func (is *InputState) SetButtons(port int, buttons [8]bool) {
	switch port {
	case 1:
		is.Controller1.SetButtons(buttons)
	case 2:
		is.Controller2.SetButtons(buttons)
	}
}

// Read reads the data line of a port. Only bit 0 is driven by a standard
// controller; the memory map supplies the open bus bits.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		return is.Controller2.Read()
	}
	return 0
}

// Write writes to controller ports. Both ports share the strobe line.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}

// PortSnapshot is the serial state of one controller. Held buttons are
// host input and are not part of it.
type PortSnapshot struct {
	Shift  uint8 `json:"shift"`
	Strobe bool  `json:"strobe"`
}

// Snapshot captures the serial state of both ports.
func (is *InputState) Snapshot() [2]PortSnapshot {
	return [2]PortSnapshot{
		{is.Controller1.shiftRegister, is.Controller1.strobe},
		{is.Controller2.shiftRegister, is.Controller2.strobe},
	}
}

// Restore loads a snapshot taken by Snapshot.
func (is *InputState) Restore(s [2]PortSnapshot) {
	is.Controller1.shiftRegister, is.Controller1.strobe = s[0].Shift, s[0].Strobe
	is.Controller2.shiftRegister, is.Controller2.strobe = s[1].Shift, s[1].Strobe
}
