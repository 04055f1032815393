package engine

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"vsasakiv/sixfive/cartridge"
	"vsasakiv/sixfive/controller"
	"vsasakiv/sixfive/memory"
)

// loadProgram puts words at the start of bank A.
func loadProgram(words ...uint16) *cartridge.Cartridge {
	var rom cartridge.Cartridge
	copy(rom.Banks[0][:], words)
	return &rom
}

func newTestEngine(t *testing.T, sampleRate int, clockSpeed int, words ...uint16) *Engine {
	t.Helper()
	engine, err := New(loadProgram(words...), nil, sampleRate)
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.SetClockSpeed(clockSpeed); err != nil {
		t.Fatal(err)
	}
	engine.SetLogger(log.New(io.Discard, "", 0))
	return engine
}

func TestNewValidates(t *testing.T) {
	if _, err := New(nil, nil, 0); err == nil {
		t.Error("expected error for sample rate 0")
	}
	engine, err := New(nil, nil, DefaultSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	snapshot := engine.Snapshot()
	if snapshot.ClockRunning || snapshot.ClockSpeed != DefaultClockSpeed || snapshot.Bank != 0 {
		t.Errorf("unexpected initial state %s", snapshot)
	}
	for i, enabled := range snapshot.Voices {
		if !enabled {
			t.Errorf("voice %d disabled by default", i)
		}
	}
}

func TestClockSpeedRange(t *testing.T) {
	engine := newTestEngine(t, 100, 10)
	for _, hz := range []int{0, -1, MaxClockSpeed + 1} {
		if err := engine.SetClockSpeed(hz); err == nil {
			t.Errorf("SetClockSpeed(%d): expected error", hz)
		}
	}
	for _, hz := range []int{MinClockSpeed, MaxClockSpeed} {
		if err := engine.SetClockSpeed(hz); err != nil {
			t.Errorf("SetClockSpeed(%d): %v", hz, err)
		}
	}
}

func TestClockGating(t *testing.T) {
	// 100 samples per second, 10 instructions per second: one every 10 samples
	engine := newTestEngine(t, 100, 10, 0x1001, 0x2001, 0x4000)
	engine.Start()

	engine.Tick()
	if ip := engine.Snapshot().InstructionPointer; ip != 2 {
		t.Fatalf("first sample should execute, ip=%02X", ip)
	}

	buf := make([]float32, 9)
	engine.Process(buf)
	if ip := engine.Snapshot().InstructionPointer; ip != 2 {
		t.Fatalf("executed early, ip=%02X", ip)
	}

	engine.Tick()
	if ip := engine.Snapshot().InstructionPointer; ip != 4 {
		t.Fatalf("expected second instruction at sample 11, ip=%02X", ip)
	}
}

func TestClockFasterThanSampleRate(t *testing.T) {
	// at most one instruction per sample
	engine := newTestEngine(t, 100, 1000, 0x2001, 0x2001, 0x2001, 0x2001)
	engine.Start()
	engine.Process(make([]float32, 3))
	if acc := engine.Snapshot().Accumulator; acc != 3 {
		t.Errorf("expected 3 instructions, A=%02X", acc)
	}
}

func TestSlowerClockTakesEffectImmediately(t *testing.T) {
	// ADD #$01, JMP #$00
	engine := newTestEngine(t, 100, MaxClockSpeed, 0x2001, 0x4000)
	engine.Start()
	engine.Process(make([]float32, 1000))

	if err := engine.SetClockSpeed(10); err != nil {
		t.Fatal(err)
	}
	var trace bytes.Buffer
	engine.SetTrace(&trace)
	engine.Process(make([]float32, 10))

	executed := strings.Count(trace.String(), "\n")
	if executed != 1 {
		t.Errorf("expected one instruction in 10 samples at 10Hz, got %d:\n%s", executed, trace.String())
	}
}

func TestPausedClockDoesNotExecute(t *testing.T) {
	engine := newTestEngine(t, 100, 10, 0x1001)
	engine.Process(make([]float32, 50))
	if engine.Snapshot().Accumulator != 0 {
		t.Error("stopped engine executed")
	}

	engine.Start()
	engine.Process(make([]float32, 5))
	engine.Pause()
	engine.Process(make([]float32, 50))
	if engine.samplesUntilExecute != 0 {
		t.Errorf("gating counter not reset while stopped: %f", engine.samplesUntilExecute)
	}

	// restarting executes on the next sample
	engine.JumpTo(0)
	engine.Tick()
	if ip := engine.Snapshot().InstructionPointer; ip != 2 {
		t.Errorf("expected immediate execution after restart, ip=%02X", ip)
	}
}

func TestTransport(t *testing.T) {
	engine := newTestEngine(t, 100, 100, 0x1005, 0x1290)
	engine.Start()
	engine.Process(make([]float32, 2))

	engine.Reset()
	snapshot := engine.Snapshot()
	if snapshot.Accumulator != 0 || snapshot.InstructionPointer != 0 || snapshot.Ram[0x10] != 0 {
		t.Errorf("reset did not clear state: %s", snapshot)
	}
	if !snapshot.ClockRunning {
		t.Error("reset stopped the clock")
	}

	engine.Process(make([]float32, 2))
	engine.Stop()
	snapshot = engine.Snapshot()
	if snapshot.ClockRunning || snapshot.InstructionPointer != 0 || snapshot.Ram[0x10] != 0 {
		t.Errorf("stop should reset and halt: %s", snapshot)
	}

	engine.JumpTo(0x02)
	snapshot = engine.Snapshot()
	if !snapshot.ClockRunning || snapshot.InstructionPointer != 0x02 {
		t.Errorf("jump should move ip and start: %s", snapshot)
	}

	engine.TogglePlay()
	if engine.Snapshot().ClockRunning {
		t.Error("toggle did not pause")
	}
}

func TestFaultHaltsAndIsReported(t *testing.T) {
	// STOR $05 writes to rom
	engine := newTestEngine(t, 100, 100, 0x1205)
	engine.Start()
	engine.Process(make([]float32, 10))

	snapshot := engine.Snapshot()
	if snapshot.ClockRunning {
		t.Error("fault did not halt the clock")
	}
	var fault *memory.MemoryFault
	if !errors.As(snapshot.Fault, &fault) {
		t.Fatalf("expected MemoryFault, got %v", snapshot.Fault)
	}
	if !strings.Contains(snapshot.String(), "fault:") {
		t.Errorf("status line does not show the fault: %s", snapshot)
	}

	engine.Start()
	engine.TogglePlay()
	engine.JumpTo(0x10)
	if engine.Snapshot().ClockRunning {
		t.Error("faulted program restarted without a reset")
	}

	engine.Reset()
	if engine.Snapshot().Fault != nil {
		t.Error("reset did not clear the fault")
	}
	engine.Start()
	if !engine.Snapshot().ClockRunning {
		t.Error("clock did not start after reset")
	}
}

func TestTrampolineAndBankSelect(t *testing.T) {
	rom := loadProgram(0x11FC) // LOAD $FC
	rom.Banks[1][0] = 0x1077   // LOAD #$77
	vectors := controller.NewVectors()
	engine, err := New(rom, vectors, 100)
	if err != nil {
		t.Fatal(err)
	}
	engine.SetClockSpeed(100)

	engine.ToggleVector(controller.A)
	engine.JumpTo(0)
	engine.Tick()
	if acc := engine.Snapshot().Accumulator; acc != 1 {
		t.Errorf("vector A set: expected A=01, got %02X", acc)
	}

	if err := engine.SelectBank(1); err != nil {
		t.Fatal(err)
	}
	engine.JumpTo(0)
	engine.Tick()
	if acc := engine.Snapshot().Accumulator; acc != 0x77 {
		t.Errorf("bank B: expected A=77, got %02X", acc)
	}
	if err := engine.SelectBank(7); err == nil {
		t.Error("expected error for bank 7")
	}

	engine.SetWord(1, 0, 0x1033)
	engine.JumpTo(0)
	engine.Tick()
	if acc := engine.Snapshot().Accumulator; acc != 0x33 {
		t.Errorf("edited word: expected A=33, got %02X", acc)
	}
}

// AWI0 #$8F, AWI2 #$FF, AWI3 #$F9, HALT
var squareProgram = []uint16{0xA08F, 0xA2FF, 0xA3F9, 0x0000}

func peak(samples []float32) float32 {
	var max float32
	for _, s := range samples {
		if s > max {
			max = s
		}
	}
	return max
}

func TestProgramDrivesSound(t *testing.T) {
	engine := newTestEngine(t, 8000, 8000, squareProgram...)
	engine.Start()

	buf := make([]float32, 800)
	engine.Process(buf)
	if peak(buf) == 0 {
		t.Fatal("square program produced silence")
	}
	if engine.Snapshot().SoundRegisters[0] != 0x8F {
		t.Errorf("register 0: expected 8F, got %02X", engine.Snapshot().SoundRegisters[0])
	}

	// halted cpu, the note keeps sounding
	if engine.Snapshot().ClockRunning {
		t.Error("HALT did not stop the clock")
	}

	engine.ToggleVoice(0)
	engine.Process(buf)
	if peak(buf) != 0 {
		t.Error("muted pulse 1 is still audible")
	}
	if engine.Snapshot().Voices[0] {
		t.Error("voice 0 still enabled in snapshot")
	}
}

func TestTrace(t *testing.T) {
	engine := newTestEngine(t, 100, 100, 0x1001, 0xF201, 0x2001)
	var trace bytes.Buffer
	engine.SetTrace(&trace)
	engine.Start()
	engine.Process(make([]float32, 4))

	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 trace lines (no line for the wait), got %d:\n%s", len(lines), trace.String())
	}
	if !strings.HasPrefix(lines[0], "00  10 01  LOAD #$01") {
		t.Errorf("unexpected trace line %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "04  20 01  ADD #$01") {
		t.Errorf("unexpected trace line %q", lines[2])
	}
}

func TestDisassembleBank(t *testing.T) {
	engine := newTestEngine(t, 100, 10, 0x4002)
	lines, err := engine.Disassemble(0)
	if err != nil {
		t.Fatal(err)
	}
	if lines[0] != "00: 4002  JMP #$02" {
		t.Errorf("unexpected line %q", lines[0])
	}
	if _, err := engine.Disassemble(4); err == nil {
		t.Error("expected error for bank 4")
	}
}

func TestSnapshotFormatting(t *testing.T) {
	engine := newTestEngine(t, 100, 10, 0x108F, 0x1290)
	engine.SetVector(controller.C, true)
	engine.SetVoiceEnabled(1, false)
	engine.Start()
	engine.Process(make([]float32, 20))

	snapshot := engine.Snapshot()
	want := "running IP:04 A:8F Z:0 N:1 bank:A vectors:--C- voices:1011 clock:10Hz"
	if snapshot.String() != want {
		t.Errorf("expected %q, got %q", want, snapshot.String())
	}

	rows := snapshot.RamDump()
	if len(rows) != 2 || rows[1] != "90: 8F 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00" {
		t.Errorf("unexpected RAM dump %q", rows)
	}

	// a snapshot is a copy
	snapshot.Ram[0x10] = 0
	if engine.Snapshot().Ram[0x10] != 0x8F {
		t.Error("snapshot shares RAM with the engine")
	}
}

func TestHexDump(t *testing.T) {
	// STOR $90, AWI1 #$42, HALT
	engine := newTestEngine(t, 100, 100, 0x1290, 0xA142, 0x0000)
	engine.Start()
	engine.Process(make([]float32, 5))

	filename := filepath.Join(t.TempDir(), "dump.txt")
	if err := engine.HexDump(filename); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if want := "90 : 00\na1 : 42\n"; string(content) != want {
		t.Errorf("expected dump %q, got %q", want, string(content))
	}

	if err := engine.HexDump(filepath.Join(t.TempDir(), "missing", "dump.txt")); err == nil {
		t.Error("expected error for a missing directory")
	}
	// the lock is released on the error path
	engine.Snapshot()
}

func TestConcurrentSnapshot(t *testing.T) {
	engine := newTestEngine(t, 44100, 1000, 0x1001, 0x2001, 0x4002)
	engine.Start()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		buf := make([]float32, 512)
		for i := 0; i < 50; i++ {
			engine.Process(buf)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			engine.Snapshot()
			engine.ToggleVector(controller.B)
		}
	}()
	wg.Wait()

	if !engine.Snapshot().ClockRunning {
		t.Error("counting loop stopped")
	}
}
