package engine

import (
	"fmt"
	"io"
	"log"
	"sync"
	"vsasakiv/sixfive/apu"
	"vsasakiv/sixfive/cartridge"
	"vsasakiv/sixfive/controller"
	"vsasakiv/sixfive/cpu"
	"vsasakiv/sixfive/mappers"
	"vsasakiv/sixfive/memory"
)

const DefaultSampleRate = 44100

// instructions per second
const (
	DefaultClockSpeed = 10
	MinClockSpeed     = 1
	MaxClockSpeed     = 1_000_000
)

// Engine owns the cpu, sound chip, rom banks and trampoline vectors, and
// drives them once per output sample. Every exported method takes the same
// lock, so the audio callback and a control surface can share an Engine.
type Engine struct {
	mu sync.Mutex

	cpu     *cpu.Cpu
	sound   *apu.SoundChip
	mapper  *mappers.BankMapper
	vectors *controller.Vectors

	sampleRate          float64
	clockSpeed          int
	samplesUntilExecute float64

	trace io.Writer
}

// New builds a stopped engine with bank A selected.
func New(rom *cartridge.Cartridge, vectors *controller.Vectors, sampleRate int) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if rom == nil {
		rom = &cartridge.Cartridge{}
	}
	if vectors == nil {
		vectors = controller.NewVectors()
	}

	sound := apu.NewSoundChip()
	mapper := mappers.NewMapper(rom)
	engine := &Engine{
		cpu:        cpu.NewCpu(memory.NewBus(mapper, vectors, sound)),
		sound:      sound,
		mapper:     mapper,
		vectors:    vectors,
		sampleRate: float64(sampleRate),
		clockSpeed: DefaultClockSpeed,
	}
	return engine, nil
}

func (engine *Engine) SetLogger(logger *log.Logger) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.cpu.Logger = logger
}

// SetTrace writes one line per executed instruction to w, nil disables it.
func (engine *Engine) SetTrace(w io.Writer) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.trace = w
}

// SetClockSpeed changes the instruction rate, effective from the next
// executed instruction.
func (engine *Engine) SetClockSpeed(hz int) error {
	if hz < MinClockSpeed || hz > MaxClockSpeed {
		return fmt.Errorf("clock speed %d out of range %d - %d", hz, MinClockSpeed, MaxClockSpeed)
	}
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.clockSpeed = hz
	return nil
}

func (engine *Engine) SampleRate() int {
	return int(engine.sampleRate)
}

// tick runs one output sample. The caller holds the lock.
func (engine *Engine) tick() float32 {
	if engine.cpu.ClockRunning {
		if engine.samplesUntilExecute <= 0 {
			if engine.trace != nil && engine.cpu.CyclesWaiting == 0 {
				fmt.Fprintln(engine.trace, engine.cpu.TraceStatus())
			}
			// a fault halts the clock and is kept in the cpu for the snapshot
			engine.cpu.Execute()

			// drop debt left by a faster clock so a slower one takes effect
			// on the next instruction
			engine.samplesUntilExecute = max(engine.samplesUntilExecute, -1)
			engine.samplesUntilExecute += engine.sampleRate / float64(engine.clockSpeed)
		}
		engine.samplesUntilExecute--
	} else {
		engine.samplesUntilExecute = 0
	}

	return engine.sound.Generate(engine.sampleRate)
}

// Tick produces one mono sample.
func (engine *Engine) Tick() float32 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.tick()
}

// Process fills out with consecutive mono samples, holding the lock for the
// whole buffer.
func (engine *Engine) Process(out []float32) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	for i := range out {
		out[i] = engine.tick()
	}
}

// transport

// startClock runs the clock unless the program faulted, a fault only clears
// on reset.
func (engine *Engine) startClock() {
	if engine.cpu.Fault != nil {
		return
	}
	engine.cpu.ClockRunning = true
}

func (engine *Engine) Start() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.startClock()
}

func (engine *Engine) Pause() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.cpu.ClockRunning = false
}

func (engine *Engine) TogglePlay() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.cpu.ClockRunning {
		engine.cpu.ClockRunning = false
		return
	}
	engine.startClock()
}

// Stop resets the machine and halts the clock.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.cpu.Reset()
	engine.cpu.ClockRunning = false
}

// Reset clears registers, RAM and the sound chip without touching the clock.
func (engine *Engine) Reset() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.cpu.Reset()
}

// JumpTo moves the instruction pointer and starts the clock.
func (engine *Engine) JumpTo(address uint8) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.cpu.Ip = address
	engine.cpu.CyclesWaiting = 0
	engine.startClock()
}

// host controls

func (engine *Engine) SetVector(vector int, val bool) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.vectors.Set(vector, val)
}

func (engine *Engine) ToggleVector(vector int) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.vectors.Toggle(vector)
}

func (engine *Engine) SelectBank(bank int) error {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.mapper.SelectBank(bank)
}

func (engine *Engine) SetWord(bank int, index int, word uint16) error {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.mapper.SetWord(bank, index, word)
}

func (engine *Engine) SetVoiceEnabled(voice int, enabled bool) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.sound.SetVoiceEnabled(voice, enabled)
}

func (engine *Engine) ToggleVoice(voice int) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.sound.SetVoiceEnabled(voice, !engine.sound.VoiceEnabled(voice))
}

// HexDump writes the addresses the program wrote since the last reset. The
// file is written after the lock is released so audio keeps running.
func (engine *Engine) HexDump(filename string) error {
	engine.mu.Lock()
	content, err := engine.cpu.Bus.DumpText()
	engine.mu.Unlock()
	if err != nil {
		return err
	}
	return memory.WriteHexDump(filename, content)
}

// Disassemble lists the given bank.
func (engine *Engine) Disassemble(bank int) ([]string, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if bank < 0 || bank >= cartridge.BankCount {
		return nil, fmt.Errorf("bank %d out of range", bank)
	}
	rom := mappers.NewMapper(engine.mapper.Cartridge())
	rom.SelectBank(bank)
	return cpu.Disassemble(rom), nil
}

func (engine *Engine) Status() string {
	return engine.Snapshot().String()
}
