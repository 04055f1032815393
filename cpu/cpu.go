package cpu

import (
	"fmt"
	"log"
	"math/bits"
	"vsasakiv/sixfive/memory"
)

// UnimplementedOpcodeError is returned when the fetched byte is not in the
// opcode table.
type UnimplementedOpcodeError struct {
	Opcode  uint8
	Address uint8
}

func (e *UnimplementedOpcodeError) Error() string {
	return fmt.Sprintf("unimplemented opcode %02X at $%02X", e.Opcode, e.Address)
}

// ShiftOverflowError is returned by LSL and LSR when asked to shift an
// 8 bit accumulator by 8 or more.
type ShiftOverflowError struct {
	Opcode uint8
	Count  uint8
}

func (e *ShiftOverflowError) Error() string {
	return fmt.Sprintf("shift count %d out of range for opcode %02X", e.Count, e.Opcode)
}

type Cpu struct {
	Acc            uint8
	Ip             uint8
	Zero, Negative bool

	ClockRunning  bool
	BeatsWaiting  uint8
	CyclesWaiting uint8

	// set when the running program faulted, cleared on reset
	Fault error

	Bus         *memory.Bus
	Logger      *log.Logger
	opcodeTable map[uint8]string
}

func NewCpu(bus *memory.Bus) *Cpu {
	var cpu Cpu
	cpu.Bus = bus
	cpu.Logger = log.Default()
	cpu.opcodeTable = Generate()
	return &cpu
}

// Reset clears registers, RAM and the sound chip. The clock state is left to
// the host.
func (cpu *Cpu) Reset() {
	cpu.Acc = 0
	cpu.Ip = 0
	cpu.Zero = false
	cpu.Negative = false
	cpu.BeatsWaiting = 0
	cpu.CyclesWaiting = 0
	cpu.Fault = nil
	cpu.Bus.Reset()
}

func (cpu *Cpu) Read(addr uint8) (uint8, error) {
	return cpu.Bus.MemRead(addr)
}

func (cpu *Cpu) Write(addr uint8, val uint8) error {
	return cpu.Bus.MemWrite(addr, val)
}

// Execute runs one instruction, or burns one wait cycle. A fault halts the
// clock and is returned.
func (cpu *Cpu) Execute() error {
	if cpu.CyclesWaiting > 0 {
		cpu.CyclesWaiting--
		return nil
	}

	if err := cpu.executeNext(); err != nil {
		cpu.ClockRunning = false
		cpu.Fault = err
		cpu.Logger.Printf("cpu halted: %v", err)
		return err
	}
	return nil
}

func (cpu *Cpu) executeNext() error {
	instructionAddress := cpu.Ip
	instruction, err := cpu.Read(instructionAddress)
	if err != nil {
		return err
	}

	operand, address, err := cpu.getOperand(instruction)
	if err != nil {
		return err
	}

	// advance now so jumps and branches can overwrite it
	cpu.Ip += 2

	opcode, ok := cpu.opcodeTable[instruction]
	if !ok {
		return &UnimplementedOpcodeError{Opcode: instruction, Address: instructionAddress}
	}

	switch opcode {
	case HALT:
		cpu.ClockRunning = false

	// loading and storing
	case LOAD:
		cpu.Acc = operand
		cpu.setStatus(cpu.Acc)
	case STOR:
		if err := cpu.Write(address, cpu.Acc); err != nil {
			return err
		}
		cpu.setStatus(cpu.Acc)

	// arithmetic
	case ADD:
		cpu.Acc += operand
		cpu.setStatus(cpu.Acc)
	case SSR:
		cpu.setStatus(operand)
	case SUB:
		// only refreshes the status, the accumulator is left untouched
		cpu.setStatus(cpu.Acc)
	case CMP:
		cpu.setStatus(cpu.Acc - operand)

	// branching and jumping
	case BREQ:
		cpu.branchIf(cpu.Zero, operand)
	case BRNE:
		cpu.branchIf(!cpu.Zero, operand)
	case BRLT:
		cpu.branchIf(cpu.Negative, operand)
	case BRGE:
		cpu.branchIf(!cpu.Negative, operand)
	case JMP:
		cpu.Ip = operand

	// bitwise
	case AND:
		cpu.Acc &= operand
		cpu.setStatus(cpu.Acc)
	case BIT:
		cpu.setStatus(cpu.Acc & operand)
	case OR:
		cpu.Acc |= operand
		cpu.setStatus(cpu.Acc)
	case XOR:
		cpu.Acc ^= operand
		cpu.setStatus(cpu.Acc)
	case LSL:
		if operand >= 8 {
			return &ShiftOverflowError{Opcode: instruction, Count: operand}
		}
		cpu.Acc <<= operand
		cpu.setStatus(cpu.Acc)
	case LSR:
		if operand >= 8 {
			return &ShiftOverflowError{Opcode: instruction, Count: operand}
		}
		cpu.Acc >>= operand
		cpu.setStatus(cpu.Acc)
	case ROL:
		cpu.Acc = bits.RotateLeft8(cpu.Acc, int(operand%8))
		cpu.setStatus(cpu.Acc)
	case ROR:
		cpu.Acc = bits.RotateLeft8(cpu.Acc, -int(operand%8))
		cpu.setStatus(cpu.Acc)

	// operations directly on memory
	case ZERO:
		if err := cpu.Write(address, 0); err != nil {
			return err
		}
		cpu.setStatus(0)
	case INC:
		value, err := cpu.Read(address)
		if err != nil {
			return err
		}
		value++
		if err := cpu.Write(address, value); err != nil {
			return err
		}
		cpu.setStatus(value)
	case DEC:
		value, err := cpu.Read(address)
		if err != nil {
			return err
		}
		value--
		if err := cpu.Write(address, value); err != nil {
			return err
		}
		cpu.setStatus(value)

	// audio register writes, both bands target the same 16 registers
	case AWI:
		if err := cpu.Write(memory.SoundStart|instruction&0x0F, operand); err != nil {
			return err
		}

	// waits
	case BEAT:
		// nothing consumes beats yet
		cpu.BeatsWaiting = operand
	case NOOP:
		cpu.CyclesWaiting = operand
	}
	return nil
}
