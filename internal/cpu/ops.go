package cpu

// Magic constant ORed into A by XAA and LXA. The real value depends on the
// chip and temperature; $EE matches the common NMOS behaviour.
const unstableMagic = 0xEE

// execute performs the operation of an already-decoded instruction. PC has
// been advanced past the operand and the base cycles have been counted.
func (cpu *CPU) execute(inst *Instruction, address uint16, pageCrossed bool) {
	mode := inst.Mode

	switch inst.Op {
	// loads and stores
	case OpLDA:
		cpu.A = cpu.read(address)
		cpu.setZN(cpu.A)
	case OpLDX:
		cpu.X = cpu.read(address)
		cpu.setZN(cpu.X)
	case OpLDY:
		cpu.Y = cpu.read(address)
		cpu.setZN(cpu.Y)
	case OpSTA:
		cpu.write(address, cpu.A)
	case OpSTX:
		cpu.write(address, cpu.X)
	case OpSTY:
		cpu.write(address, cpu.Y)

	// arithmetic and logic
	case OpADC:
		cpu.adc(cpu.read(address))
	case OpSBC:
		cpu.adc(^cpu.read(address))
	case OpAND:
		cpu.A &= cpu.read(address)
		cpu.setZN(cpu.A)
	case OpORA:
		cpu.A |= cpu.read(address)
		cpu.setZN(cpu.A)
	case OpEOR:
		cpu.A ^= cpu.read(address)
		cpu.setZN(cpu.A)
	case OpBIT:
		value := cpu.read(address)
		cpu.Z = cpu.A&value == 0
		cpu.V = value&vFlagMask != 0
		cpu.N = value&nFlagMask != 0
	case OpCMP:
		cpu.compare(cpu.A, cpu.read(address))
	case OpCPX:
		cpu.compare(cpu.X, cpu.read(address))
	case OpCPY:
		cpu.compare(cpu.Y, cpu.read(address))

	// shifts and read-modify-write
	case OpASL:
		cpu.modify(mode, address, cpu.asl)
	case OpLSR:
		cpu.modify(mode, address, cpu.lsr)
	case OpROL:
		cpu.modify(mode, address, cpu.rol)
	case OpROR:
		cpu.modify(mode, address, cpu.ror)
	case OpINC:
		cpu.modify(mode, address, func(v uint8) uint8 {
			v++
			cpu.setZN(v)
			return v
		})
	case OpDEC:
		cpu.modify(mode, address, func(v uint8) uint8 {
			v--
			cpu.setZN(v)
			return v
		})

	// register transfers and counters
	case OpINX:
		cpu.X++
		cpu.setZN(cpu.X)
	case OpINY:
		cpu.Y++
		cpu.setZN(cpu.Y)
	case OpDEX:
		cpu.X--
		cpu.setZN(cpu.X)
	case OpDEY:
		cpu.Y--
		cpu.setZN(cpu.Y)
	case OpTAX:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case OpTAY:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case OpTXA:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case OpTYA:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)
	case OpTSX:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
	case OpTXS:
		cpu.SP = cpu.X

	// stack
	case OpPHA:
		cpu.push(cpu.A)
	case OpPHP:
		cpu.push(cpu.GetStatusByte() | bFlagMask)
	case OpPLA:
		cpu.peekStack()
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
	case OpPLP:
		cpu.peekStack()
		cpu.SetStatusByte(cpu.pop())

	// flags
	case OpCLC:
		cpu.C = false
	case OpSEC:
		cpu.C = true
	case OpCLI:
		cpu.I = false
	case OpSEI:
		cpu.I = true
	case OpCLV:
		cpu.V = false
	case OpCLD:
		cpu.D = false
	case OpSED:
		cpu.D = true

	// control flow
	case OpJMP:
		cpu.PC = address
	case OpJSR:
		cpu.peekStack()
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = address
	case OpRTS:
		cpu.peekStack()
		cpu.PC = cpu.popWord()
		cpu.read(cpu.PC)
		cpu.PC++
	case OpRTI:
		cpu.peekStack()
		cpu.SetStatusByte(cpu.pop())
		cpu.PC = cpu.popWord()
	case OpBRK:
		cpu.brk()
	case OpBCC:
		cpu.branch(!cpu.C, address)
	case OpBCS:
		cpu.branch(cpu.C, address)
	case OpBNE:
		cpu.branch(!cpu.Z, address)
	case OpBEQ:
		cpu.branch(cpu.Z, address)
	case OpBPL:
		cpu.branch(!cpu.N, address)
	case OpBMI:
		cpu.branch(cpu.N, address)
	case OpBVC:
		cpu.branch(!cpu.V, address)
	case OpBVS:
		cpu.branch(cpu.V, address)

	case OpNOP, OpJAM:
		// operand-carrying NOPs still perform their read
		if mode != Implied && mode != Accumulator {
			cpu.read(address)
		}

	// undocumented
	case OpLAX:
		cpu.A = cpu.read(address)
		cpu.X = cpu.A
		cpu.setZN(cpu.A)
	case OpSAX:
		cpu.write(address, cpu.A&cpu.X)
	case OpDCP:
		cpu.modify(mode, address, func(v uint8) uint8 {
			v--
			cpu.compare(cpu.A, v)
			return v
		})
	case OpISB:
		cpu.modify(mode, address, func(v uint8) uint8 {
			v++
			cpu.adc(^v)
			return v
		})
	case OpSLO:
		cpu.modify(mode, address, func(v uint8) uint8 {
			v = cpu.asl(v)
			cpu.A |= v
			cpu.setZN(cpu.A)
			return v
		})
	case OpRLA:
		cpu.modify(mode, address, func(v uint8) uint8 {
			v = cpu.rol(v)
			cpu.A &= v
			cpu.setZN(cpu.A)
			return v
		})
	case OpSRE:
		cpu.modify(mode, address, func(v uint8) uint8 {
			v = cpu.lsr(v)
			cpu.A ^= v
			cpu.setZN(cpu.A)
			return v
		})
	case OpRRA:
		cpu.modify(mode, address, func(v uint8) uint8 {
			v = cpu.ror(v)
			cpu.adc(v)
			return v
		})
	case OpANC:
		cpu.A &= cpu.read(address)
		cpu.setZN(cpu.A)
		cpu.C = cpu.N
	case OpALR:
		cpu.A &= cpu.read(address)
		cpu.C = cpu.A&0x01 != 0
		cpu.A >>= 1
		cpu.setZN(cpu.A)
	case OpARR:
		cpu.A &= cpu.read(address)
		cpu.A >>= 1
		if cpu.C {
			cpu.A |= 0x80
		}
		cpu.setZN(cpu.A)
		cpu.C = cpu.A&0x40 != 0
		cpu.V = (cpu.A>>6^cpu.A>>5)&0x01 != 0
	case OpAXS:
		value := cpu.read(address)
		ax := cpu.A & cpu.X
		cpu.C = ax >= value
		cpu.X = ax - value
		cpu.setZN(cpu.X)
	case OpXAA:
		cpu.A = (cpu.A | unstableMagic) & cpu.X & cpu.read(address)
		cpu.setZN(cpu.A)
	case OpLXA:
		cpu.A = (cpu.A | unstableMagic) & cpu.read(address)
		cpu.X = cpu.A
		cpu.setZN(cpu.A)
	case OpLAS:
		value := cpu.read(address) & cpu.SP
		cpu.A, cpu.X, cpu.SP = value, value, value
		cpu.setZN(value)
	case OpSHA:
		cpu.storeHigh(mode, address, pageCrossed, cpu.A&cpu.X)
	case OpSHX:
		cpu.storeHigh(mode, address, pageCrossed, cpu.X)
	case OpSHY:
		cpu.storeHigh(mode, address, pageCrossed, cpu.Y)
	case OpTAS:
		cpu.SP = cpu.A & cpu.X
		cpu.storeHigh(mode, address, pageCrossed, cpu.SP)
	}
}

func (cpu *CPU) adc(value uint8) {
	a := cpu.A
	sum := uint16(a) + uint16(value)
	if cpu.C {
		sum++
	}
	result := uint8(sum)
	cpu.C = sum > 0xFF
	cpu.V = (a^result)&(value^result)&0x80 != 0
	cpu.A = result
	cpu.setZN(result)
}

func (cpu *CPU) compare(register, value uint8) {
	cpu.C = register >= value
	cpu.setZN(register - value)
}

func (cpu *CPU) asl(value uint8) uint8 {
	cpu.C = value&0x80 != 0
	value <<= 1
	cpu.setZN(value)
	return value
}

func (cpu *CPU) lsr(value uint8) uint8 {
	cpu.C = value&0x01 != 0
	value >>= 1
	cpu.setZN(value)
	return value
}

func (cpu *CPU) rol(value uint8) uint8 {
	carry := value&0x80 != 0
	value <<= 1
	if cpu.C {
		value |= 0x01
	}
	cpu.C = carry
	cpu.setZN(value)
	return value
}

func (cpu *CPU) ror(value uint8) uint8 {
	carry := value&0x01 != 0
	value >>= 1
	if cpu.C {
		value |= 0x80
	}
	cpu.C = carry
	cpu.setZN(value)
	return value
}

// modify applies f to the accumulator or to memory. Memory operands are
// written twice, first with the unmodified value.
func (cpu *CPU) modify(mode AddressingMode, address uint16, f func(uint8) uint8) {
	if mode == Accumulator {
		cpu.A = f(cpu.A)
		return
	}
	value := cpu.read(address)
	cpu.write(address, value)
	cpu.write(address, f(value))
}

func (cpu *CPU) branch(taken bool, target uint16) {
	if !taken {
		return
	}
	cpu.read(cpu.PC)
	cpu.cycles++
	if pagesDiffer(cpu.PC, target) {
		cpu.read(cpu.PC&pageMask | target&0x00FF)
		cpu.cycles++
	}
	cpu.PC = target
}

// peekStack is the read of the current stack slot that stack instructions
// make before they push or pop.
func (cpu *CPU) peekStack() {
	cpu.read(stackBase | uint16(cpu.SP))
}

// brk pushes the address of the byte after its padding byte. A pending
// NMI hijacks the vector fetch.
func (cpu *CPU) brk() {
	cpu.pushWord(cpu.PC + 1)
	cpu.push(cpu.GetStatusByte() | bFlagMask)
	cpu.I = true
	vector := uint16(irqVector)
	if cpu.nmiPending {
		cpu.nmiPending = false
		vector = nmiVector
	}
	cpu.PC = cpu.read16(vector)
}

// storeHigh implements SHA, SHX, SHY and TAS: the value is ANDed with the
// high byte of the base address plus one, and a page crossing replaces the
// target's high byte with the stored value.
func (cpu *CPU) storeHigh(mode AddressingMode, address uint16, pageCrossed bool, value uint8) {
	index := cpu.Y
	if mode == AbsoluteX {
		index = cpu.X
	}
	high := uint8((address - uint16(index)) >> 8)
	value &= high + 1
	if pageCrossed {
		address = uint16(value)<<8 | address&0x00FF
	}
	cpu.write(address, value)
}
