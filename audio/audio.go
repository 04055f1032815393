package audio

import (
	"context"
	"encoding/binary"
	"math"
)

// Source produces consecutive mono samples, the engine in practice.
type Source interface {
	Process(out []float32)
}

// Player streams a Source to an audio device until ctx is done.
type Player interface {
	Play(ctx context.Context) error
	Close() error
}

const channelCount = 2

// bytes per stereo float32 frame
const floatFrameSize = 4 * channelCount

// InterleaveFloat32 writes each mono sample to both channels as little
// endian float32. dst must hold 8 bytes per sample.
func InterleaveFloat32(dst []byte, mono []float32) {
	for i, sample := range mono {
		bits := math.Float32bits(sample)
		binary.LittleEndian.PutUint32(dst[i*floatFrameSize:], bits)
		binary.LittleEndian.PutUint32(dst[i*floatFrameSize+4:], bits)
	}
}

// toPCM16 clamps a sample to [-1, 1] and scales it to a signed 16 bit value.
func toPCM16(sample float32) int16 {
	switch {
	case sample > 1:
		sample = 1
	case sample < -1:
		sample = -1
	}
	return int16(sample * math.MaxInt16)
}
