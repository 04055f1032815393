package engine

import (
	"fmt"
	"strings"
	"vsasakiv/sixfive/apu"
	"vsasakiv/sixfive/cartridge"
	"vsasakiv/sixfive/controller"
	"vsasakiv/sixfive/memory"
)

// Snapshot is a copy of the machine state for display. Changing it has no
// effect on the engine.
type Snapshot struct {
	Accumulator        uint8
	InstructionPointer uint8
	Zero, Negative     bool
	ClockRunning       bool
	BeatsWaiting       uint8
	CyclesWaiting      uint8

	Ram            [memory.RamSize]uint8
	SoundRegisters [apu.RegisterCount]uint8

	Bank       int
	Vectors    [controller.VectorCount]bool
	Voices     [apu.VoiceCount]bool
	ClockSpeed int

	// last fault, nil while the program is healthy
	Fault error
}

func (engine *Engine) Snapshot() Snapshot {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	snapshot := Snapshot{
		Accumulator:        engine.cpu.Acc,
		InstructionPointer: engine.cpu.Ip,
		Zero:               engine.cpu.Zero,
		Negative:           engine.cpu.Negative,
		ClockRunning:       engine.cpu.ClockRunning,
		BeatsWaiting:       engine.cpu.BeatsWaiting,
		CyclesWaiting:      engine.cpu.CyclesWaiting,
		Ram:                engine.cpu.Bus.Ram,
		SoundRegisters:     engine.cpu.Bus.SoundRegisters(),
		Bank:               engine.mapper.Bank(),
		ClockSpeed:         engine.clockSpeed,
		Fault:              engine.cpu.Fault,
	}
	for i := range snapshot.Vectors {
		snapshot.Vectors[i] = engine.vectors.Get(i)
	}
	for i := range snapshot.Voices {
		snapshot.Voices[i] = engine.sound.VoiceEnabled(i)
	}
	return snapshot
}

// String formats the snapshot as a single status line.
func (snapshot Snapshot) String() string {
	var sb strings.Builder

	state := "stopped"
	if snapshot.ClockRunning {
		state = "running"
	}
	fmt.Fprintf(&sb, "%s IP:%02X A:%02X Z:%d N:%d", state, snapshot.InstructionPointer,
		snapshot.Accumulator, boolToBit(snapshot.Zero), boolToBit(snapshot.Negative))
	fmt.Fprintf(&sb, " bank:%s", cartridge.BankName(snapshot.Bank))

	sb.WriteString(" vectors:")
	for i, set := range snapshot.Vectors {
		if set {
			sb.WriteByte(byte('A' + i))
		} else {
			sb.WriteByte('-')
		}
	}
	sb.WriteString(" voices:")
	for _, enabled := range snapshot.Voices {
		sb.WriteByte('0' + boolToBit(enabled))
	}
	fmt.Fprintf(&sb, " clock:%dHz", snapshot.ClockSpeed)

	if snapshot.Fault != nil {
		fmt.Fprintf(&sb, " fault: %v", snapshot.Fault)
	}
	return sb.String()
}

// RamDump formats RAM as two rows of 16 bytes, prefixed by their address.
func (snapshot Snapshot) RamDump() []string {
	rows := make([]string, 0, memory.RamSize/16)
	for row := 0; row < memory.RamSize; row += 16 {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%02X:", int(memory.RamStart)+row)
		for _, val := range snapshot.Ram[row : row+16] {
			fmt.Fprintf(&sb, " %02X", val)
		}
		rows = append(rows, sb.String())
	}
	return rows
}

func boolToBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
