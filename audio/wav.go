package audio

import (
	"fmt"
	"os"

	"github.com/arl/blip/wave"
)

// samples per write to the wave writer
const wavChunkSize = 512

// WriteWav renders frames samples from source into file as 16 bit mono PCM.
// The wave header is completed when the writer is closed.
func WriteWav(file *os.File, source Source, sampleRate int, frames int) error {
	if sampleRate <= 0 || frames < 0 {
		return fmt.Errorf("invalid wav parameters: rate %d, frames %d", sampleRate, frames)
	}

	wv := wave.NewWriter(file, sampleRate)
	defer wv.Close()

	samples := make([]float32, wavChunkSize)
	pcm := make([]int16, wavChunkSize)
	for remaining := frames; remaining > 0; {
		chunk := samples[:min(remaining, len(samples))]
		source.Process(chunk)
		for i, sample := range chunk {
			pcm[i] = toPCM16(sample)
		}
		wv.Write(pcm[:len(chunk)])
		remaining -= len(chunk)
	}
	return nil
}

// RenderWav renders the given duration of source to a file.
func RenderWav(filename string, source Source, sampleRate int, seconds float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating wav file: %w", err)
	}

	frames := int(seconds * float64(sampleRate))
	if err := WriteWav(file, source, sampleRate, frames); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writing wav file: %w", err)
	}
	return nil
}
