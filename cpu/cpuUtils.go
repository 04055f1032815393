package cpu

import (
	"fmt"
	"vsasakiv/sixfive/memory"
)

const immediate uint8 = 0
const absolute uint8 = 1

// The last bit of the opcode selects the addressing mode, except for
// 0xA0 - 0xAF which are always immediate and 0xB0 - 0xBF which are always
// absolute, so the low nibble can name the sound register.
func addressingMode(instruction uint8) uint8 {
	switch instruction & 0xF0 {
	case 0xA0:
		return immediate
	case 0xB0:
		return absolute
	}
	return instruction & 0b1
}

// Returns the decoded operand and the literal byte following the opcode,
// which memory instructions use as their target address.
func (cpu *Cpu) getOperand(instruction uint8) (uint8, uint8, error) {
	literal, err := cpu.Read(cpu.Ip + 1)
	if err != nil {
		return 0, 0, err
	}
	if addressingMode(instruction) == immediate {
		return literal, literal, nil
	}
	operand, err := cpu.Read(literal)
	if err != nil {
		return 0, 0, err
	}
	return operand, literal, nil
}

func (cpu *Cpu) setStatus(value uint8) {
	cpu.Zero = value == 0
	cpu.Negative = value&0b1000_0000 != 0
}

func (cpu *Cpu) branchIf(condition bool, target uint8) {
	if condition {
		cpu.Ip = target
	}
}

// Mnemonic returns the instruction name of an opcode, or "" if the opcode
// is not implemented.
func (cpu *Cpu) Mnemonic(instruction uint8) string {
	return cpu.opcodeTable[instruction]
}

// TraceStatus formats the instruction at the current instruction pointer
// together with the registers, without executing it.
func (cpu *Cpu) TraceStatus() string {
	instruction, err := cpu.Read(cpu.Ip)
	if err != nil {
		return fmt.Sprintf("%02X  ?? ??  %-20s %s", cpu.Ip, "", cpu.getRegisters())
	}
	literal, err := cpu.Read(cpu.Ip + 1)
	if err != nil {
		return fmt.Sprintf("%02X  %02X ??  %-20s %s", cpu.Ip, instruction, "", cpu.getRegisters())
	}

	disassembly := formatInstruction(cpu.opcodeTable, instruction, literal)
	return fmt.Sprintf("%02X  %02X %02X  %-20s %s", cpu.Ip, instruction, literal, disassembly, cpu.getRegisters())
}

func (cpu *Cpu) getRegisters() string {
	return fmt.Sprintf("A:%02X Z:%d N:%d W:%02X", cpu.Acc, boolToBit(cpu.Zero), boolToBit(cpu.Negative), cpu.CyclesWaiting)
}

// Disassemble lists the 64 words of a ROM bank, one instruction per line.
func Disassemble(rom memory.Rom) []string {
	opcodeTable := Generate()
	lines := make([]string, 0, 64)
	for addr := 0; addr < int(memory.RamStart); addr += 2 {
		instruction := rom.Read(uint8(addr))
		literal := rom.Read(uint8(addr + 1))
		lines = append(lines, fmt.Sprintf("%02X: %02X%02X  %s",
			addr, instruction, literal, formatInstruction(opcodeTable, instruction, literal)))
	}
	return lines
}

func formatInstruction(opcodeTable map[uint8]string, instruction uint8, literal uint8) string {
	mnemonic, ok := opcodeTable[instruction]
	if !ok {
		return fmt.Sprintf(".word $%02X%02X", instruction, literal)
	}

	switch mnemonic {
	case HALT:
		return mnemonic
	case AWI:
		mnemonic = fmt.Sprintf("AWI%X", instruction&0x0F)
	}

	var operand string
	if addressingMode(instruction) == immediate {
		operand = fmt.Sprintf("#$%02X", literal)
	} else {
		operand = fmt.Sprintf("$%02X", literal)
	}
	return mnemonic + " " + operand
}

func boolToBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
