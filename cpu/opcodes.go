package cpu

const (
	HALT = "HALT"
	LOAD = "LOAD"
	STOR = "STOR"
	ADD  = "ADD"
	SSR  = "SSR"
	SUB  = "SUB"
	CMP  = "CMP"
	BREQ = "BREQ"
	BRNE = "BRNE"
	BRLT = "BRLT"
	BRGE = "BRGE"
	JMP  = "JMP"
	AND  = "AND"
	BIT  = "BIT"
	OR   = "OR"
	XOR  = "XOR"
	LSL  = "LSL"
	LSR  = "LSR"
	ROL  = "ROL"
	ROR  = "ROR"
	ZERO = "ZERO"
	INC  = "INC"
	DEC  = "DEC"
	AWI  = "AWI"
	BEAT = "BEAT"
	NOOP = "NOOP"
)

// Generate builds the opcode -> mnemonic table. Every mnemonic except AWI
// owns an even opcode (immediate) and the odd one after it (absolute).
func Generate() map[uint8]string {
	opcodeTable := map[uint8]string{
		0x00: HALT,
		0x10: LOAD,
		0x12: STOR,
		0x20: ADD,
		0x22: SSR,
		0x24: SUB,
		0x26: CMP,
		0x30: BREQ,
		0x32: BRNE,
		0x34: BRLT,
		0x36: BRGE,
		0x40: JMP,
		0x50: AND,
		0x52: BIT,
		0x54: OR,
		0x56: XOR,
		0x58: LSL,
		0x5A: LSR,
		0x5C: ROL,
		0x5E: ROR,
		0x60: ZERO,
		0x62: INC,
		0x64: DEC,
		0xF0: BEAT,
		0xF2: NOOP,
	}
	for opcode, mnemonic := range opcodeTable {
		opcodeTable[opcode|1] = mnemonic
	}

	// 0xA0 - 0xAF immediate, 0xB0 - 0xBF absolute, the low nibble selects
	// the sound register
	for opcode := 0xA0; opcode <= 0xBF; opcode++ {
		opcodeTable[uint8(opcode)] = AWI
	}
	return opcodeTable
}
