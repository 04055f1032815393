package apu

// ==================================================================== //
// ||                                                                   ||
// ||                      APU SQUARE PULSES                            ||
// ||                                                                   ||
// ==================================================================== //
//

// fraction of the cycle spent low for each duty cycle setting
var dutyCycleLookUpTable = [4]float64{0.125, 0.25, 0.5, 0.75}

// square output is 0 during the first part of the cycle and 1 after it
func squareSample(regs *ChannelRegisters) float32 {
	if regs.phase() < dutyCycleLookUpTable[regs.DutyCycle&0b11] {
		return 0
	}
	return regs.EffectiveVolume()
}
