package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer pulls samples from a Source on oto's audio thread.
type OtoPlayer struct {
	ctx    *oto.Context
	player *oto.Player
	source Source

	// reused between reads
	sampleBuf []float32
	mutex     sync.Mutex
}

func NewOtoPlayer(source Source, sampleRate int) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatFloat32LE,
		BufferSize:   50 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating oto context: %w", err)
	}
	<-ready

	player := &OtoPlayer{
		ctx:       ctx,
		source:    source,
		sampleBuf: make([]float32, 1024),
	}
	player.player = ctx.NewPlayer(player)
	return player, nil
}

// Read implements io.Reader for oto, one stereo float32 frame per sample.
func (op *OtoPlayer) Read(p []byte) (int, error) {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	numSamples := len(p) / floatFrameSize
	if len(op.sampleBuf) < numSamples {
		op.sampleBuf = make([]float32, numSamples)
	}
	samples := op.sampleBuf[:numSamples]

	op.source.Process(samples)
	InterleaveFloat32(p, samples)
	return numSamples * floatFrameSize, nil
}

func (op *OtoPlayer) Play(ctx context.Context) error {
	op.player.Play()
	<-ctx.Done()
	op.player.Pause()
	if err := op.player.Err(); err != nil {
		return fmt.Errorf("oto player: %w", err)
	}
	return nil
}

func (op *OtoPlayer) Close() error {
	return op.player.Close()
}
