package apu

// ==================================================================== //
// ||                                                                   ||
// ||                      APU TRIANGLE PULSES                          ||
// ||                                                                   ||
// ==================================================================== //
//

// rises from 0 to 1 on the first half of the cycle, falls back on the second
func triangleSample(regs *ChannelRegisters) float32 {
	relative := regs.phase()

	var value float32
	if relative < 0.5 {
		value = float32(relative * 2.0)
	} else {
		value = float32((1.0 - relative) * 2.0)
	}
	return value * regs.EffectiveVolume()
}
