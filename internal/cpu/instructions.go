package cpu

// AddressingMode selects how an instruction forms its effective address.
type AddressingMode uint8

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

// Operation identifies the behaviour of an opcode independent of its
// addressing mode.
type Operation uint8

// Documented operations.
const (
	OpADC Operation = iota
	OpAND
	OpASL
	OpBCC
	OpBCS
	OpBEQ
	OpBIT
	OpBMI
	OpBNE
	OpBPL
	OpBRK
	OpBVC
	OpBVS
	OpCLC
	OpCLD
	OpCLI
	OpCLV
	OpCMP
	OpCPX
	OpCPY
	OpDEC
	OpDEX
	OpDEY
	OpEOR
	OpINC
	OpINX
	OpINY
	OpJMP
	OpJSR
	OpLDA
	OpLDX
	OpLDY
	OpLSR
	OpNOP
	OpORA
	OpPHA
	OpPHP
	OpPLA
	OpPLP
	OpROL
	OpROR
	OpRTI
	OpRTS
	OpSBC
	OpSEC
	OpSED
	OpSEI
	OpSTA
	OpSTX
	OpSTY
	OpTAX
	OpTAY
	OpTSX
	OpTXA
	OpTXS
	OpTYA

	// undocumented
	OpALR
	OpANC
	OpARR
	OpAXS
	OpDCP
	OpISB
	OpJAM
	OpLAS
	OpLAX
	OpLXA
	OpRLA
	OpRRA
	OpSAX
	OpSHA
	OpSHX
	OpSHY
	OpSLO
	OpSRE
	OpTAS
	OpXAA
)

// Instruction describes one opcode.
type Instruction struct {
	Name       string
	Op         Operation
	Mode       AddressingMode
	Bytes      uint8
	Cycles     uint8
	PageCycles uint8 // added when an indexed read crosses a page
	Illegal    bool
}

// instructions is indexed by opcode and never modified after init.
var instructions = [256]Instruction{
	{"BRK", OpBRK, Implied, 1, 7, 0, false},         // $00
	{"ORA", OpORA, IndexedIndirect, 2, 6, 0, false}, // $01
	{"JAM", OpJAM, Implied, 1, 2, 0, true},          // $02
	{"SLO", OpSLO, IndexedIndirect, 2, 8, 0, true},  // $03
	{"NOP", OpNOP, ZeroPage, 2, 3, 0, true},         // $04
	{"ORA", OpORA, ZeroPage, 2, 3, 0, false},        // $05
	{"ASL", OpASL, ZeroPage, 2, 5, 0, false},        // $06
	{"SLO", OpSLO, ZeroPage, 2, 5, 0, true},         // $07
	{"PHP", OpPHP, Implied, 1, 3, 0, false},         // $08
	{"ORA", OpORA, Immediate, 2, 2, 0, false},       // $09
	{"ASL", OpASL, Accumulator, 1, 2, 0, false},     // $0A
	{"ANC", OpANC, Immediate, 2, 2, 0, true},        // $0B
	{"NOP", OpNOP, Absolute, 3, 4, 0, true},         // $0C
	{"ORA", OpORA, Absolute, 3, 4, 0, false},        // $0D
	{"ASL", OpASL, Absolute, 3, 6, 0, false},        // $0E
	{"SLO", OpSLO, Absolute, 3, 6, 0, true},         // $0F
	{"BPL", OpBPL, Relative, 2, 2, 0, false},        // $10
	{"ORA", OpORA, IndirectIndexed, 2, 5, 1, false}, // $11
	{"JAM", OpJAM, Implied, 1, 2, 0, true},          // $12
	{"SLO", OpSLO, IndirectIndexed, 2, 8, 0, true},  // $13
	{"NOP", OpNOP, ZeroPageX, 2, 4, 0, true},        // $14
	{"ORA", OpORA, ZeroPageX, 2, 4, 0, false},       // $15
	{"ASL", OpASL, ZeroPageX, 2, 6, 0, false},       // $16
	{"SLO", OpSLO, ZeroPageX, 2, 6, 0, true},        // $17
	{"CLC", OpCLC, Implied, 1, 2, 0, false},         // $18
	{"ORA", OpORA, AbsoluteY, 3, 4, 1, false},       // $19
	{"NOP", OpNOP, Implied, 1, 2, 0, true},          // $1A
	{"SLO", OpSLO, AbsoluteY, 3, 7, 0, true},        // $1B
	{"NOP", OpNOP, AbsoluteX, 3, 4, 1, true},        // $1C
	{"ORA", OpORA, AbsoluteX, 3, 4, 1, false},       // $1D
	{"ASL", OpASL, AbsoluteX, 3, 7, 0, false},       // $1E
	{"SLO", OpSLO, AbsoluteX, 3, 7, 0, true},        // $1F
	{"JSR", OpJSR, Absolute, 3, 6, 0, false},        // $20
	{"AND", OpAND, IndexedIndirect, 2, 6, 0, false}, // $21
	{"JAM", OpJAM, Implied, 1, 2, 0, true},          // $22
	{"RLA", OpRLA, IndexedIndirect, 2, 8, 0, true},  // $23
	{"BIT", OpBIT, ZeroPage, 2, 3, 0, false},        // $24
	{"AND", OpAND, ZeroPage, 2, 3, 0, false},        // $25
	{"ROL", OpROL, ZeroPage, 2, 5, 0, false},        // $26
	{"RLA", OpRLA, ZeroPage, 2, 5, 0, true},         // $27
	{"PLP", OpPLP, Implied, 1, 4, 0, false},         // $28
	{"AND", OpAND, Immediate, 2, 2, 0, false},       // $29
	{"ROL", OpROL, Accumulator, 1, 2, 0, false},     // $2A
	{"ANC", OpANC, Immediate, 2, 2, 0, true},        // $2B
	{"BIT", OpBIT, Absolute, 3, 4, 0, false},        // $2C
	{"AND", OpAND, Absolute, 3, 4, 0, false},        // $2D
	{"ROL", OpROL, Absolute, 3, 6, 0, false},        // $2E
	{"RLA", OpRLA, Absolute, 3, 6, 0, true},         // $2F
	{"BMI", OpBMI, Relative, 2, 2, 0, false},        // $30
	{"AND", OpAND, IndirectIndexed, 2, 5, 1, false}, // $31
	{"JAM", OpJAM, Implied, 1, 2, 0, true},          // $32
	{"RLA", OpRLA, IndirectIndexed, 2, 8, 0, true},  // $33
	{"NOP", OpNOP, ZeroPageX, 2, 4, 0, true},        // $34
	{"AND", OpAND, ZeroPageX, 2, 4, 0, false},       // $35
	{"ROL", OpROL, ZeroPageX, 2, 6, 0, false},       // $36
	{"RLA", OpRLA, ZeroPageX, 2, 6, 0, true},        // $37
	{"SEC", OpSEC, Implied, 1, 2, 0, false},         // $38
	{"AND", OpAND, AbsoluteY, 3, 4, 1, false},       // $39
	{"NOP", OpNOP, Implied, 1, 2, 0, true},          // $3A
	{"RLA", OpRLA, AbsoluteY, 3, 7, 0, true},        // $3B
	{"NOP", OpNOP, AbsoluteX, 3, 4, 1, true},        // $3C
	{"AND", OpAND, AbsoluteX, 3, 4, 1, false},       // $3D
	{"ROL", OpROL, AbsoluteX, 3, 7, 0, false},       // $3E
	{"RLA", OpRLA, AbsoluteX, 3, 7, 0, true},        // $3F
	{"RTI", OpRTI, Implied, 1, 6, 0, false},         // $40
	{"EOR", OpEOR, IndexedIndirect, 2, 6, 0, false}, // $41
	{"JAM", OpJAM, Implied, 1, 2, 0, true},          // $42
	{"SRE", OpSRE, IndexedIndirect, 2, 8, 0, true},  // $43
	{"NOP", OpNOP, ZeroPage, 2, 3, 0, true},         // $44
	{"EOR", OpEOR, ZeroPage, 2, 3, 0, false},        // $45
	{"LSR", OpLSR, ZeroPage, 2, 5, 0, false},        // $46
	{"SRE", OpSRE, ZeroPage, 2, 5, 0, true},         // $47
	{"PHA", OpPHA, Implied, 1, 3, 0, false},         // $48
	{"EOR", OpEOR, Immediate, 2, 2, 0, false},       // $49
	{"LSR", OpLSR, Accumulator, 1, 2, 0, false},     // $4A
	{"ALR", OpALR, Immediate, 2, 2, 0, true},        // $4B
	{"JMP", OpJMP, Absolute, 3, 3, 0, false},        // $4C
	{"EOR", OpEOR, Absolute, 3, 4, 0, false},        // $4D
	{"LSR", OpLSR, Absolute, 3, 6, 0, false},        // $4E
	{"SRE", OpSRE, Absolute, 3, 6, 0, true},         // $4F
	{"BVC", OpBVC, Relative, 2, 2, 0, false},        // $50
	{"EOR", OpEOR, IndirectIndexed, 2, 5, 1, false}, // $51
	{"JAM", OpJAM, Implied, 1, 2, 0, true},          // $52
	{"SRE", OpSRE, IndirectIndexed, 2, 8, 0, true},  // $53
	{"NOP", OpNOP, ZeroPageX, 2, 4, 0, true},        // $54
	{"EOR", OpEOR, ZeroPageX, 2, 4, 0, false},       // $55
	{"LSR", OpLSR, ZeroPageX, 2, 6, 0, false},       // $56
	{"SRE", OpSRE, ZeroPageX, 2, 6, 0, true},        // $57
	{"CLI", OpCLI, Implied, 1, 2, 0, false},         // $58
	{"EOR", OpEOR, AbsoluteY, 3, 4, 1, false},       // $59
	{"NOP", OpNOP, Implied, 1, 2, 0, true},          // $5A
	{"SRE", OpSRE, AbsoluteY, 3, 7, 0, true},        // $5B
	{"NOP", OpNOP, AbsoluteX, 3, 4, 1, true},        // $5C
	{"EOR", OpEOR, AbsoluteX, 3, 4, 1, false},       // $5D
	{"LSR", OpLSR, AbsoluteX, 3, 7, 0, false},       // $5E
	{"SRE", OpSRE, AbsoluteX, 3, 7, 0, true},        // $5F
	{"RTS", OpRTS, Implied, 1, 6, 0, false},         // $60
	{"ADC", OpADC, IndexedIndirect, 2, 6, 0, false}, // $61
	{"JAM", OpJAM, Implied, 1, 2, 0, true},          // $62
	{"RRA", OpRRA, IndexedIndirect, 2, 8, 0, true},  // $63
	{"NOP", OpNOP, ZeroPage, 2, 3, 0, true},         // $64
	{"ADC", OpADC, ZeroPage, 2, 3, 0, false},        // $65
	{"ROR", OpROR, ZeroPage, 2, 5, 0, false},        // $66
	{"RRA", OpRRA, ZeroPage, 2, 5, 0, true},         // $67
	{"PLA", OpPLA, Implied, 1, 4, 0, false},         // $68
	{"ADC", OpADC, Immediate, 2, 2, 0, false},       // $69
	{"ROR", OpROR, Accumulator, 1, 2, 0, false},     // $6A
	{"ARR", OpARR, Immediate, 2, 2, 0, true},        // $6B
	{"JMP", OpJMP, Indirect, 3, 5, 0, false},        // $6C
	{"ADC", OpADC, Absolute, 3, 4, 0, false},        // $6D
	{"ROR", OpROR, Absolute, 3, 6, 0, false},        // $6E
	{"RRA", OpRRA, Absolute, 3, 6, 0, true},         // $6F
	{"BVS", OpBVS, Relative, 2, 2, 0, false},        // $70
	{"ADC", OpADC, IndirectIndexed, 2, 5, 1, false}, // $71
	{"JAM", OpJAM, Implied, 1, 2, 0, true},          // $72
	{"RRA", OpRRA, IndirectIndexed, 2, 8, 0, true},  // $73
	{"NOP", OpNOP, ZeroPageX, 2, 4, 0, true},        // $74
	{"ADC", OpADC, ZeroPageX, 2, 4, 0, false},       // $75
	{"ROR", OpROR, ZeroPageX, 2, 6, 0, false},       // $76
	{"RRA", OpRRA, ZeroPageX, 2, 6, 0, true},        // $77
	{"SEI", OpSEI, Implied, 1, 2, 0, false},         // $78
	{"ADC", OpADC, AbsoluteY, 3, 4, 1, false},       // $79
	{"NOP", OpNOP, Implied, 1, 2, 0, true},          // $7A
	{"RRA", OpRRA, AbsoluteY, 3, 7, 0, true},        // $7B
	{"NOP", OpNOP, AbsoluteX, 3, 4, 1, true},        // $7C
	{"ADC", OpADC, AbsoluteX, 3, 4, 1, false},       // $7D
	{"ROR", OpROR, AbsoluteX, 3, 7, 0, false},       // $7E
	{"RRA", OpRRA, AbsoluteX, 3, 7, 0, true},        // $7F
	{"NOP", OpNOP, Immediate, 2, 2, 0, true},        // $80
	{"STA", OpSTA, IndexedIndirect, 2, 6, 0, false}, // $81
	{"NOP", OpNOP, Immediate, 2, 2, 0, true},        // $82
	{"SAX", OpSAX, IndexedIndirect, 2, 6, 0, true},  // $83
	{"STY", OpSTY, ZeroPage, 2, 3, 0, false},        // $84
	{"STA", OpSTA, ZeroPage, 2, 3, 0, false},        // $85
	{"STX", OpSTX, ZeroPage, 2, 3, 0, false},        // $86
	{"SAX", OpSAX, ZeroPage, 2, 3, 0, true},         // $87
	{"DEY", OpDEY, Implied, 1, 2, 0, false},         // $88
	{"NOP", OpNOP, Immediate, 2, 2, 0, true},        // $89
	{"TXA", OpTXA, Implied, 1, 2, 0, false},         // $8A
	{"XAA", OpXAA, Immediate, 2, 2, 0, true},        // $8B
	{"STY", OpSTY, Absolute, 3, 4, 0, false},        // $8C
	{"STA", OpSTA, Absolute, 3, 4, 0, false},        // $8D
	{"STX", OpSTX, Absolute, 3, 4, 0, false},        // $8E
	{"SAX", OpSAX, Absolute, 3, 4, 0, true},         // $8F
	{"BCC", OpBCC, Relative, 2, 2, 0, false},        // $90
	{"STA", OpSTA, IndirectIndexed, 2, 6, 0, false}, // $91
	{"JAM", OpJAM, Implied, 1, 2, 0, true},          // $92
	{"SHA", OpSHA, IndirectIndexed, 2, 6, 0, true},  // $93
	{"STY", OpSTY, ZeroPageX, 2, 4, 0, false},       // $94
	{"STA", OpSTA, ZeroPageX, 2, 4, 0, false},       // $95
	{"STX", OpSTX, ZeroPageY, 2, 4, 0, false},       // $96
	{"SAX", OpSAX, ZeroPageY, 2, 4, 0, true},        // $97
	{"TYA", OpTYA, Implied, 1, 2, 0, false},         // $98
	{"STA", OpSTA, AbsoluteY, 3, 5, 0, false},       // $99
	{"TXS", OpTXS, Implied, 1, 2, 0, false},         // $9A
	{"TAS", OpTAS, AbsoluteY, 3, 5, 0, true},        // $9B
	{"SHY", OpSHY, AbsoluteX, 3, 5, 0, true},        // $9C
	{"STA", OpSTA, AbsoluteX, 3, 5, 0, false},       // $9D
	{"SHX", OpSHX, AbsoluteY, 3, 5, 0, true},        // $9E
	{"SHA", OpSHA, AbsoluteY, 3, 5, 0, true},        // $9F
	{"LDY", OpLDY, Immediate, 2, 2, 0, false},       // $A0
	{"LDA", OpLDA, IndexedIndirect, 2, 6, 0, false}, // $A1
	{"LDX", OpLDX, Immediate, 2, 2, 0, false},       // $A2
	{"LAX", OpLAX, IndexedIndirect, 2, 6, 0, true},  // $A3
	{"LDY", OpLDY, ZeroPage, 2, 3, 0, false},        // $A4
	{"LDA", OpLDA, ZeroPage, 2, 3, 0, false},        // $A5
	{"LDX", OpLDX, ZeroPage, 2, 3, 0, false},        // $A6
	{"LAX", OpLAX, ZeroPage, 2, 3, 0, true},         // $A7
	{"TAY", OpTAY, Implied, 1, 2, 0, false},         // $A8
	{"LDA", OpLDA, Immediate, 2, 2, 0, false},       // $A9
	{"TAX", OpTAX, Implied, 1, 2, 0, false},         // $AA
	{"LXA", OpLXA, Immediate, 2, 2, 0, true},        // $AB
	{"LDY", OpLDY, Absolute, 3, 4, 0, false},        // $AC
	{"LDA", OpLDA, Absolute, 3, 4, 0, false},        // $AD
	{"LDX", OpLDX, Absolute, 3, 4, 0, false},        // $AE
	{"LAX", OpLAX, Absolute, 3, 4, 0, true},         // $AF
	{"BCS", OpBCS, Relative, 2, 2, 0, false},        // $B0
	{"LDA", OpLDA, IndirectIndexed, 2, 5, 1, false}, // $B1
	{"JAM", OpJAM, Implied, 1, 2, 0, true},          // $B2
	{"LAX", OpLAX, IndirectIndexed, 2, 5, 1, true},  // $B3
	{"LDY", OpLDY, ZeroPageX, 2, 4, 0, false},       // $B4
	{"LDA", OpLDA, ZeroPageX, 2, 4, 0, false},       // $B5
	{"LDX", OpLDX, ZeroPageY, 2, 4, 0, false},       // $B6
	{"LAX", OpLAX, ZeroPageY, 2, 4, 0, true},        // $B7
	{"CLV", OpCLV, Implied, 1, 2, 0, false},         // $B8
	{"LDA", OpLDA, AbsoluteY, 3, 4, 1, false},       // $B9
	{"TSX", OpTSX, Implied, 1, 2, 0, false},         // $BA
	{"LAS", OpLAS, AbsoluteY, 3, 4, 1, true},        // $BB
	{"LDY", OpLDY, AbsoluteX, 3, 4, 1, false},       // $BC
	{"LDA", OpLDA, AbsoluteX, 3, 4, 1, false},       // $BD
	{"LDX", OpLDX, AbsoluteY, 3, 4, 1, false},       // $BE
	{"LAX", OpLAX, AbsoluteY, 3, 4, 1, true},        // $BF
	{"CPY", OpCPY, Immediate, 2, 2, 0, false},       // $C0
	{"CMP", OpCMP, IndexedIndirect, 2, 6, 0, false}, // $C1
	{"NOP", OpNOP, Immediate, 2, 2, 0, true},        // $C2
	{"DCP", OpDCP, IndexedIndirect, 2, 8, 0, true},  // $C3
	{"CPY", OpCPY, ZeroPage, 2, 3, 0, false},        // $C4
	{"CMP", OpCMP, ZeroPage, 2, 3, 0, false},        // $C5
	{"DEC", OpDEC, ZeroPage, 2, 5, 0, false},        // $C6
	{"DCP", OpDCP, ZeroPage, 2, 5, 0, true},         // $C7
	{"INY", OpINY, Implied, 1, 2, 0, false},         // $C8
	{"CMP", OpCMP, Immediate, 2, 2, 0, false},       // $C9
	{"DEX", OpDEX, Implied, 1, 2, 0, false},         // $CA
	{"AXS", OpAXS, Immediate, 2, 2, 0, true},        // $CB
	{"CPY", OpCPY, Absolute, 3, 4, 0, false},        // $CC
	{"CMP", OpCMP, Absolute, 3, 4, 0, false},        // $CD
	{"DEC", OpDEC, Absolute, 3, 6, 0, false},        // $CE
	{"DCP", OpDCP, Absolute, 3, 6, 0, true},         // $CF
	{"BNE", OpBNE, Relative, 2, 2, 0, false},        // $D0
	{"CMP", OpCMP, IndirectIndexed, 2, 5, 1, false}, // $D1
	{"JAM", OpJAM, Implied, 1, 2, 0, true},          // $D2
	{"DCP", OpDCP, IndirectIndexed, 2, 8, 0, true},  // $D3
	{"NOP", OpNOP, ZeroPageX, 2, 4, 0, true},        // $D4
	{"CMP", OpCMP, ZeroPageX, 2, 4, 0, false},       // $D5
	{"DEC", OpDEC, ZeroPageX, 2, 6, 0, false},       // $D6
	{"DCP", OpDCP, ZeroPageX, 2, 6, 0, true},        // $D7
	{"CLD", OpCLD, Implied, 1, 2, 0, false},         // $D8
	{"CMP", OpCMP, AbsoluteY, 3, 4, 1, false},       // $D9
	{"NOP", OpNOP, Implied, 1, 2, 0, true},          // $DA
	{"DCP", OpDCP, AbsoluteY, 3, 7, 0, true},        // $DB
	{"NOP", OpNOP, AbsoluteX, 3, 4, 1, true},        // $DC
	{"CMP", OpCMP, AbsoluteX, 3, 4, 1, false},       // $DD
	{"DEC", OpDEC, AbsoluteX, 3, 7, 0, false},       // $DE
	{"DCP", OpDCP, AbsoluteX, 3, 7, 0, true},        // $DF
	{"CPX", OpCPX, Immediate, 2, 2, 0, false},       // $E0
	{"SBC", OpSBC, IndexedIndirect, 2, 6, 0, false}, // $E1
	{"NOP", OpNOP, Immediate, 2, 2, 0, true},        // $E2
	{"ISB", OpISB, IndexedIndirect, 2, 8, 0, true},  // $E3
	{"CPX", OpCPX, ZeroPage, 2, 3, 0, false},        // $E4
	{"SBC", OpSBC, ZeroPage, 2, 3, 0, false},        // $E5
	{"INC", OpINC, ZeroPage, 2, 5, 0, false},        // $E6
	{"ISB", OpISB, ZeroPage, 2, 5, 0, true},         // $E7
	{"INX", OpINX, Implied, 1, 2, 0, false},         // $E8
	{"SBC", OpSBC, Immediate, 2, 2, 0, false},       // $E9
	{"NOP", OpNOP, Implied, 1, 2, 0, false},         // $EA
	{"SBC", OpSBC, Immediate, 2, 2, 0, true},        // $EB
	{"CPX", OpCPX, Absolute, 3, 4, 0, false},        // $EC
	{"SBC", OpSBC, Absolute, 3, 4, 0, false},        // $ED
	{"INC", OpINC, Absolute, 3, 6, 0, false},        // $EE
	{"ISB", OpISB, Absolute, 3, 6, 0, true},         // $EF
	{"BEQ", OpBEQ, Relative, 2, 2, 0, false},        // $F0
	{"SBC", OpSBC, IndirectIndexed, 2, 5, 1, false}, // $F1
	{"JAM", OpJAM, Implied, 1, 2, 0, true},          // $F2
	{"ISB", OpISB, IndirectIndexed, 2, 8, 0, true},  // $F3
	{"NOP", OpNOP, ZeroPageX, 2, 4, 0, true},        // $F4
	{"SBC", OpSBC, ZeroPageX, 2, 4, 0, false},       // $F5
	{"INC", OpINC, ZeroPageX, 2, 6, 0, false},       // $F6
	{"ISB", OpISB, ZeroPageX, 2, 6, 0, true},        // $F7
	{"SED", OpSED, Implied, 1, 2, 0, false},         // $F8
	{"SBC", OpSBC, AbsoluteY, 3, 4, 1, false},       // $F9
	{"NOP", OpNOP, Implied, 1, 2, 0, true},          // $FA
	{"ISB", OpISB, AbsoluteY, 3, 7, 0, true},        // $FB
	{"NOP", OpNOP, AbsoluteX, 3, 4, 1, true},        // $FC
	{"SBC", OpSBC, AbsoluteX, 3, 4, 1, false},       // $FD
	{"INC", OpINC, AbsoluteX, 3, 7, 0, false},       // $FE
	{"ISB", OpISB, AbsoluteX, 3, 7, 0, true},        // $FF
}
