package apu

import "math"

// ==================================================================== //
// ||                                                                   ||
// ||                        CHANNEL REGISTERS                          ||
// ||                                                                   ||
// ==================================================================== //
//

// ntsc cpu clock the pulse timer formula is based on
const cpuFrequency = 1789773.0

const channelMaxVolume = 15.0

// seconds per unit of the note length field
const noteLengthUnit = 1.0 / 60.0

// seconds per unit of the envelope cycle field
const envelopeLengthUnit = 1.0 / 15.0

// seconds between two sweep adjustments
const sweepStepSeconds = 60.0 * 2.0

// NotePeriodToSeconds converts an 11 bit timer period to the length of one
// waveform cycle: fCPU / (16 * (t + 1))
func NotePeriodToSeconds(period uint16) float64 {
	frequency := cpuFrequency / (16.0 * (float64(period) + 1.0))
	return 1.0 / frequency
}

func NoteLengthToSeconds(length uint8) float64 {
	return float64(length) * noteLengthUnit
}

func EnvelopeLengthToSeconds(length uint8) float64 {
	return float64(length) * envelopeLengthUnit
}

// SecondsToShiftSteps returns how many sweep adjustments have happened after
// the given time. One step every two minutes.
func SecondsToShiftSteps(seconds float64) uint16 {
	return uint16(seconds / sweepStepSeconds)
}

type ChannelRegisters struct {
	// register 0 = DDLE VVVV
	DutyCycle        uint8
	Looping          bool
	Envelope         bool
	EnvelopeOrVolume uint8

	// register 1 = EPPP RSSS
	ShiftEnabled bool
	ShiftShift   uint8
	ShiftReverse bool
	ShiftSpeed   uint8

	// register 2 = PPPP PPPP (period low)
	// register 3 = LLLL LPPP (note length, period high)
	Period     uint16
	NoteLength uint8

	// internals, reset by every write to register 3
	timeSinceNote float64
}

// Read packs the register fields back into the byte the cpu sees.
func (regs *ChannelRegisters) Read(register uint8) (uint8, error) {
	var value uint8
	switch register {
	case 0x00:
		value |= (regs.DutyCycle & 0b11) << 6
		value |= boolToBit(regs.Looping) << 5
		value |= boolToBit(regs.Envelope) << 4
		value |= regs.EnvelopeOrVolume & 0b1111
	case 0x01:
		value |= boolToBit(regs.ShiftEnabled) << 7
		value |= (regs.ShiftShift & 0b111) << 4
		value |= boolToBit(regs.ShiftReverse) << 3
		value |= regs.ShiftSpeed & 0b111
	case 0x02:
		value = uint8(regs.Period)
	case 0x03:
		value |= uint8(regs.Period>>8) & 0b111
		value |= (regs.NoteLength & 0b1_1111) << 3
	default:
		return 0, ErrInvalidRegister
	}
	return value, nil
}

// Write unpacks a register byte into the channel fields. Writing register 3
// restarts the note.
func (regs *ChannelRegisters) Write(register uint8, value uint8) error {
	switch register {
	case 0x00:
		// val = DDLE VVVV
		// DD -> duty cycle
		// L -> looping
		// E -> envelope enabled
		// VVVV -> envelope length if E = 1 or constant volume if E = 0
		regs.DutyCycle = (value >> 6) & 0b11
		regs.Looping = (value>>5)&0b1 == 1
		regs.Envelope = (value>>4)&0b1 == 1
		regs.EnvelopeOrVolume = value & 0b1111
	case 0x01:
		// val = EPPP RSSS
		// E -> sweep enabled
		// PPP -> shift amount
		// R -> reverse, 0 = lengthen period, 1 = shorten period
		// SSS -> speed
		regs.ShiftEnabled = (value>>7)&0b1 == 1
		regs.ShiftShift = (value >> 4) & 0b111
		regs.ShiftReverse = (value>>3)&0b1 == 1
		regs.ShiftSpeed = value & 0b111
	case 0x02:
		regs.Period = (regs.Period & 0b111_0000_0000) | uint16(value)
	case 0x03:
		regs.Period = (regs.Period & 0b000_1111_1111) | uint16(value&0b111)<<8
		regs.NoteLength = (value >> 3) & 0b1_1111
		regs.timeSinceNote = 0
	default:
		return ErrInvalidRegister
	}
	return nil
}

func (regs *ChannelRegisters) tick(sampleRate float64) {
	regs.timeSinceNote += 1.0 / sampleRate
}

// TimeSinceNote is the time elapsed since the last write to register 3.
func (regs *ChannelRegisters) TimeSinceNote() float64 {
	return regs.timeSinceNote
}

// EffectiveVolume returns the current volume in [0, 1].
func (regs *ChannelRegisters) EffectiveVolume() float32 {
	// outside of the note
	if regs.timeSinceNote > NoteLengthToSeconds(regs.NoteLength) {
		return 0
	}

	if regs.Envelope {
		total := EnvelopeLengthToSeconds(regs.EnvelopeOrVolume)
		// a zero length envelope never rises
		if total == 0 {
			return 0
		}
		relative := math.Mod(regs.timeSinceNote, total) / total
		return float32(1.0 - relative)
	}

	return float32(regs.EnvelopeOrVolume) / channelMaxVolume
}

// EffectivePeriod applies the sweep unit to the written period.
func (regs *ChannelRegisters) EffectivePeriod() uint16 {
	period := regs.Period
	if !regs.ShiftEnabled {
		return period
	}
	steps := SecondsToShiftSteps(regs.timeSinceNote)
	for i := uint16(0); i < steps; i++ {
		change := period >> regs.ShiftShift
		if regs.ShiftReverse {
			period -= change
		} else {
			period += change
		}
	}
	return period
}

// phase returns the position in [0, 1) inside the current waveform cycle.
func (regs *ChannelRegisters) phase() float64 {
	period := NotePeriodToSeconds(regs.EffectivePeriod())
	return math.Mod(regs.timeSinceNote, period) / period
}

func boolToBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
