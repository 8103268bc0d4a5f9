package speech

import (
	"context"
	"time"
)

// Request asks for one utterance. A request with a Pause and no Text
// produces silence of that length.
type Request struct {
	Text     string
	Language string // BCP-47 code, e.g. "en-US" or "zh-TW"
	Voice    string // optional voice name; empty picks the voice configured for Language
	Speed    float64
	Pause    time.Duration
}

// Synthesizer turns text into MP3 audio
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

// Mute is a Synthesizer that produces no audio. It backs carousel runs with sound turned off.
type Mute struct{}

// Synthesize returns no audio
func (Mute) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	return nil, ctx.Err()
}
