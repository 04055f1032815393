//go:build sdl

package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

const (
	// frames per queue refill
	sdlFramesPerBuffer = 512
	// stay this many frames ahead of the device
	sdlQueueTarget = 4 * sdlFramesPerBuffer
)

// SDLPlayer pushes samples into an SDL2 audio queue from its own loop.
type SDLPlayer struct {
	device    sdl.AudioDeviceID
	source    Source
	sampleBuf []float32
	byteBuf   []byte
}

func NewSDLPlayer(source Source, sampleRate int) (*SDLPlayer, error) {
	if err := sdl.Init(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("initializing sdl audio: %w", err)
	}

	spec := sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_F32LSB,
		Channels: channelCount,
		Samples:  sdlFramesPerBuffer,
	}
	device, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("opening sdl audio device: %w", err)
	}

	return &SDLPlayer{
		device:    device,
		source:    source,
		sampleBuf: make([]float32, sdlFramesPerBuffer),
		byteBuf:   make([]byte, sdlFramesPerBuffer*floatFrameSize),
	}, nil
}

func (sp *SDLPlayer) Play(ctx context.Context) error {
	sdl.PauseAudioDevice(sp.device, false)
	defer sdl.PauseAudioDevice(sp.device, true)

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		queued := sdl.GetQueuedAudioSize(sp.device) / floatFrameSize
		for queued < sdlQueueTarget {
			sp.source.Process(sp.sampleBuf)
			InterleaveFloat32(sp.byteBuf, sp.sampleBuf)
			if err := sdl.QueueAudio(sp.device, sp.byteBuf); err != nil {
				return fmt.Errorf("queueing sdl audio: %w", err)
			}
			queued += sdlFramesPerBuffer
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (sp *SDLPlayer) Close() error {
	sdl.CloseAudioDevice(sp.device)
	sdl.Quit()
	return nil
}
