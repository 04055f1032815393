package apu

// ==================================================================== //
// ||                                                                   ||
// ||                        APU NOISE CHANNEL                          ||
// ||                                                                   ||
// ==================================================================== //

// the shift register must never be 0, it would stay there forever
const noiseSeed uint16 = 1

// clockShiftRegister advances the 15 bit LFSR once and returns the feedback bit.
func clockShiftRegister(shiftRegister *uint16) uint16 {
	feedback := *shiftRegister&0b1 ^ (*shiftRegister>>1)&0b1
	*shiftRegister >>= 1
	*shiftRegister |= feedback << 14
	return feedback
}

// the LFSR is clocked once per sample, independent of the period register
func noiseSample(regs *ChannelRegisters, shiftRegister *uint16) float32 {
	if clockShiftRegister(shiftRegister) == 0 {
		return regs.EffectiveVolume()
	}
	return 0
}
