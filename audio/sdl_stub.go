//go:build !sdl

package audio

import (
	"context"
	"errors"
)

// ErrSDLUnavailable is returned when the binary was built without the sdl
// tag.
var ErrSDLUnavailable = errors.New("sdl backend not built in, rebuild with -tags sdl")

type SDLPlayer struct{}

func NewSDLPlayer(source Source, sampleRate int) (*SDLPlayer, error) {
	return nil, ErrSDLUnavailable
}

func (sp *SDLPlayer) Play(ctx context.Context) error {
	return ErrSDLUnavailable
}

func (sp *SDLPlayer) Close() error {
	return nil
}
