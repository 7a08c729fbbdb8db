package cpu

import (
	"fmt"
	"strings"
)

// PeekFunc reads memory without side effects.
type PeekFunc func(address uint16) uint8

// TraceLine formats the instruction at PC together with the register file,
// in the layout of the widely used nestest reference log:
//
//	C000  4C F5 C5  JMP $C5F5                       A:00 X:00 Y:00 P:24 SP:FD
//
// Memory operands show the value currently stored at the effective address.
func (cpu *CPU) TraceLine(peek PeekFunc) string {
	pc := cpu.PC
	inst := instructions[peek(pc)]

	raw := make([]string, inst.Bytes)
	for i := range raw {
		raw[i] = fmt.Sprintf("%02X", peek(pc+uint16(i)))
	}

	marker := ' '
	if inst.Illegal {
		marker = '*'
	}

	return fmt.Sprintf("%04X  %-8s %c%-31s A:%02X X:%02X Y:%02X P:%02X SP:%02X",
		pc, strings.Join(raw, " "), marker, cpu.disassemble(inst, peek),
		cpu.A, cpu.X, cpu.Y, cpu.GetStatusByte(), cpu.SP)
}

// Disassemble returns the mnemonic and operand of the instruction at
// address, without register-dependent annotations, and its length.
func Disassemble(address uint16, peek PeekFunc) (string, int) {
	inst := instructions[peek(address)]
	lo := peek(address + 1)
	word := uint16(peek(address+2))<<8 | uint16(lo)

	var operand string
	switch inst.Mode {
	case Accumulator:
		operand = " A"
	case Immediate:
		operand = fmt.Sprintf(" #$%02X", lo)
	case ZeroPage:
		operand = fmt.Sprintf(" $%02X", lo)
	case ZeroPageX:
		operand = fmt.Sprintf(" $%02X,X", lo)
	case ZeroPageY:
		operand = fmt.Sprintf(" $%02X,Y", lo)
	case Relative:
		operand = fmt.Sprintf(" $%04X", address+2+uint16(int8(lo)))
	case Absolute:
		operand = fmt.Sprintf(" $%04X", word)
	case AbsoluteX:
		operand = fmt.Sprintf(" $%04X,X", word)
	case AbsoluteY:
		operand = fmt.Sprintf(" $%04X,Y", word)
	case Indirect:
		operand = fmt.Sprintf(" ($%04X)", word)
	case IndexedIndirect:
		operand = fmt.Sprintf(" ($%02X,X)", lo)
	case IndirectIndexed:
		operand = fmt.Sprintf(" ($%02X),Y", lo)
	}
	return inst.Name + operand, int(inst.Bytes)
}

func (cpu *CPU) disassemble(inst Instruction, peek PeekFunc) string {
	pc := cpu.PC
	lo := peek(pc + 1)
	word := uint16(peek(pc+2))<<8 | uint16(lo)
	name := inst.Name

	read16ZeroPage := func(address uint8) uint16 {
		return uint16(peek(uint16(address+1)))<<8 | uint16(peek(uint16(address)))
	}

	switch inst.Mode {
	case Implied:
		return name
	case Accumulator:
		return name + " A"
	case Immediate:
		return fmt.Sprintf("%s #$%02X", name, lo)
	case ZeroPage:
		return fmt.Sprintf("%s $%02X = %02X", name, lo, peek(uint16(lo)))
	case ZeroPageX:
		address := lo + cpu.X
		return fmt.Sprintf("%s $%02X,X @ %02X = %02X", name, lo, address, peek(uint16(address)))
	case ZeroPageY:
		address := lo + cpu.Y
		return fmt.Sprintf("%s $%02X,Y @ %02X = %02X", name, lo, address, peek(uint16(address)))
	case Relative:
		return fmt.Sprintf("%s $%04X", name, pc+2+uint16(int8(lo)))
	case Absolute:
		if inst.Op == OpJMP || inst.Op == OpJSR {
			return fmt.Sprintf("%s $%04X", name, word)
		}
		return fmt.Sprintf("%s $%04X = %02X", name, word, peek(word))
	case AbsoluteX:
		address := word + uint16(cpu.X)
		return fmt.Sprintf("%s $%04X,X @ %04X = %02X", name, word, address, peek(address))
	case AbsoluteY:
		address := word + uint16(cpu.Y)
		return fmt.Sprintf("%s $%04X,Y @ %04X = %02X", name, word, address, peek(address))
	case Indirect:
		target := uint16(peek(word&pageMask|uint16(uint8(word)+1)))<<8 | uint16(peek(word))
		return fmt.Sprintf("%s ($%04X) = %04X", name, word, target)
	case IndexedIndirect:
		pointer := lo + cpu.X
		address := read16ZeroPage(pointer)
		return fmt.Sprintf("%s ($%02X,X) @ %02X = %04X = %02X", name, lo, pointer, address, peek(address))
	case IndirectIndexed:
		base := read16ZeroPage(lo)
		address := base + uint16(cpu.Y)
		return fmt.Sprintf("%s ($%02X),Y = %04X @ %04X = %02X", name, lo, base, address, peek(address))
	}
	return name
}
