package cpu

import (
	"strings"
	"testing"
)

func TestTraceLineLayout(t *testing.T) {
	h := NewCPUTestHelper()
	h.LoadProgram(0xC000, 0x4C, 0xF5, 0xC5) // JMP $C5F5

	expected := "C000  4C F5 C5  JMP $C5F5                       A:00 X:00 Y:00 P:24 SP:FD"
	if got := h.CPU.TraceLine(h.Memory.Peek); got != expected {
		t.Errorf("Expected trace\n%q\ngot\n%q", expected, got)
	}
}

func TestTraceLineIllegalMarker(t *testing.T) {
	h := NewCPUTestHelper()
	h.LoadProgram(0xC6BD, 0x04, 0xA9) // *NOP $A9
	h.CPU.A = 0xAA

	expected := "C6BD  04 A9    *NOP $A9 = 00                    A:AA X:00 Y:00 P:24 SP:FD"
	if got := h.CPU.TraceLine(h.Memory.Peek); got != expected {
		t.Errorf("Expected trace\n%q\ngot\n%q", expected, got)
	}
}

func TestTraceOperandAnnotations(t *testing.T) {
	tests := []struct {
		name     string
		code     []uint8
		setup    func(h *CPUTestHelper)
		expected string
	}{
		{
			name:     "immediate",
			code:     []uint8{0xA9, 0x00},
			expected: "LDA #$00",
		},
		{
			name:     "accumulator",
			code:     []uint8{0x4A},
			expected: "LSR A",
		},
		{
			name: "zero page,X",
			code: []uint8{0xB5, 0x33},
			setup: func(h *CPUTestHelper) {
				h.CPU.X = 0x00
				h.Memory.SetByte(0x33, 0xAA)
			},
			expected: "LDA $33,X @ 33 = AA",
		},
		{
			name: "absolute",
			code: []uint8{0x8D, 0x00, 0x02},
			setup: func(h *CPUTestHelper) {
				h.Memory.SetByte(0x0200, 0x7F)
			},
			expected: "STA $0200 = 7F",
		},
		{
			name: "absolute,Y",
			code: []uint8{0xB9, 0x00, 0x03},
			setup: func(h *CPUTestHelper) {
				h.CPU.Y = 0x10
				h.Memory.SetByte(0x0310, 0x89)
			},
			expected: "LDA $0300,Y @ 0310 = 89",
		},
		{
			name: "indexed indirect",
			code: []uint8{0xA1, 0x80},
			setup: func(h *CPUTestHelper) {
				h.Memory.SetBytes(0x0080, 0x00, 0x02)
				h.Memory.SetByte(0x0200, 0x5A)
			},
			expected: "LDA ($80,X) @ 80 = 0200 = 5A",
		},
		{
			name: "indirect indexed",
			code: []uint8{0xB1, 0x89},
			setup: func(h *CPUTestHelper) {
				h.Memory.SetBytes(0x0089, 0x00, 0x03)
				h.Memory.SetByte(0x0300, 0x89)
			},
			expected: "LDA ($89),Y = 0300 @ 0300 = 89",
		},
		{
			name: "indirect jump",
			code: []uint8{0x6C, 0x00, 0x02},
			setup: func(h *CPUTestHelper) {
				h.Memory.SetBytes(0x0200, 0x7E, 0xDB)
			},
			expected: "JMP ($0200) = DB7E",
		},
		{
			name:     "relative",
			code:     []uint8{0xB0, 0x04},
			expected: "BCS $8006",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCPUTestHelper()
			h.LoadProgram(0x8000, tt.code...)
			if tt.setup != nil {
				tt.setup(h)
			}

			line := h.CPU.TraceLine(h.Memory.Peek)
			if got := strings.TrimSpace(line[16:48]); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
			if line[48:50] != "A:" {
				t.Errorf("Expected registers at column 48, got %q", line)
			}
		})
	}
}

func TestTraceHasNoSideEffects(t *testing.T) {
	h := NewCPUTestHelper()
	h.LoadProgram(0x8000, 0xAD, 0x02, 0x20) // LDA $2002
	h.CPU.TraceLine(h.Memory.Peek)
	if h.Memory.GetReadCount(0x2002) != 0 {
		t.Error("Expected trace formatting not to read through the bus")
	}
}

func TestDisassemble(t *testing.T) {
	m := NewMockMemory()
	m.SetBytes(0x8000, 0x9D, 0x00, 0x02)
	text, size := Disassemble(0x8000, m.Peek)
	if text != "STA $0200,X" || size != 3 {
		t.Errorf("Expected STA $0200,X (3), got %s (%d)", text, size)
	}
}
