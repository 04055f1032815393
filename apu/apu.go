package apu

import "errors"

// ErrInvalidRegister is returned for register indices outside the chip.
var ErrInvalidRegister = errors.New("invalid sound register")

// RegisterCount is the number of addressable sound registers.
const RegisterCount = 16

const registersPerChannel = 4

// Linear approximation of the NES mixer. The * 16 is because the channels
// output 0.0 - 1.0 instead of 0 - 15.
const (
	pulseMix    = 0.00376 * 16.0
	triangleMix = 0.00851 * 16.0
	noiseMix    = 0.00494 * 16.0
)

type WaveKind uint8

const (
	Square WaveKind = iota
	Triangle
	Noise
)

func (kind WaveKind) String() string {
	switch kind {
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Noise:
		return "noise"
	}
	return "unknown"
}

// Voice indices, also the channel order in the register map.
const (
	Pulse1 = iota
	Pulse2
	TriangleVoice
	NoiseVoice
	VoiceCount
)

// Channel couples one register block to its wave generator.
type Channel struct {
	Registers ChannelRegisters
	kind      WaveKind

	// only used by the noise generator
	shiftRegister uint16
}

func newChannel(kind WaveKind) Channel {
	return Channel{kind: kind, shiftRegister: noiseSeed}
}

func (channel *Channel) Kind() WaveKind {
	return channel.kind
}

func (channel *Channel) ShiftRegister() uint16 {
	return channel.shiftRegister
}

// Generate advances the channel time by one sample and evaluates the generator.
func (channel *Channel) Generate(sampleRate float64) float32 {
	channel.Registers.tick(sampleRate)
	switch channel.kind {
	case Square:
		return squareSample(&channel.Registers)
	case Triangle:
		return triangleSample(&channel.Registers)
	case Noise:
		return noiseSample(&channel.Registers, &channel.shiftRegister)
	}
	return 0
}

type SoundChip struct {
	Channels [VoiceCount]Channel
	enabled  [VoiceCount]bool
}

func NewSoundChip() *SoundChip {
	var chip SoundChip
	chip.enabled = [VoiceCount]bool{true, true, true, true}
	chip.Reset()
	return &chip
}

// Reset puts every channel back to power on state. Voice enables are host
// settings and survive a reset.
func (chip *SoundChip) Reset() {
	chip.Channels = [VoiceCount]Channel{
		newChannel(Square),
		newChannel(Square),
		newChannel(Triangle),
		newChannel(Noise),
	}
}

// Read returns sound register index (0x0 - 0xF).
func (chip *SoundChip) Read(index uint8) (uint8, error) {
	if index >= RegisterCount {
		return 0, ErrInvalidRegister
	}
	return chip.Channels[index/registersPerChannel].Registers.Read(index % registersPerChannel)
}

// Write sets sound register index (0x0 - 0xF).
func (chip *SoundChip) Write(index uint8, value uint8) error {
	if index >= RegisterCount {
		return ErrInvalidRegister
	}
	return chip.Channels[index/registersPerChannel].Registers.Write(index%registersPerChannel, value)
}

// SetVoiceEnabled mutes or unmutes a voice. A muted voice keeps running.
func (chip *SoundChip) SetVoiceEnabled(voice int, enabled bool) {
	if voice < 0 || voice >= VoiceCount {
		return
	}
	chip.enabled[voice] = enabled
}

func (chip *SoundChip) VoiceEnabled(voice int) bool {
	if voice < 0 || voice >= VoiceCount {
		return false
	}
	return chip.enabled[voice]
}

// Generate produces one mono sample from the four channels.
func (chip *SoundChip) Generate(sampleRate float64) float32 {
	var out [VoiceCount]float32
	for i := range chip.Channels {
		sample := chip.Channels[i].Generate(sampleRate)
		if chip.enabled[i] {
			out[i] = sample
		}
	}

	return pulseMix*out[Pulse1] +
		pulseMix*out[Pulse2] +
		triangleMix*out[TriangleVoice] +
		noiseMix*out[NoiseVoice]
}
