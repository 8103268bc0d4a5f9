package playback

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/wordbook/internal/speech"
	"github.com/example/wordbook/pkg/models"
)

// Asset is a single audio file covering a review set for offline listening
type Asset struct {
	Audio    []byte
	Items    int
	Duration time.Duration
}

// Compile renders set into one MP3: for each item an "Item N" preamble, then
// every token of order separated by pauses. Only the first MaxCompileItems
// words are used, in the order given. An empty order speaks headwords only.
func (s *Sequencer) Compile(ctx context.Context, set []models.WordRecord, order []models.PlaybackToken) (*Asset, error) {
	if len(set) == 0 {
		return nil, models.ErrNoMaterial
	}
	if len(order) == 0 {
		order = []models.PlaybackToken{models.TokenHeadword}
	}
	items := set
	if limit := s.opts.MaxCompileItems; limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	var audio bytes.Buffer
	for i, w := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, req := range s.script(i+1, w, order) {
			chunk, err := s.speaker.Synthesize(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("failed to synthesize item %d (%s): %w", i+1, w.Headword, err)
			}
			audio.Write(chunk)
		}
	}

	asset := &Asset{Audio: audio.Bytes(), Items: len(items)}
	dur, err := speech.Duration(asset.Audio)
	if err != nil {
		log.Printf("Could not measure compiled audio: %v", err)
	}
	asset.Duration = dur
	return asset, nil
}

// script lists the synthesis requests for one item of a compiled asset
func (s *Sequencer) script(item int, w models.WordRecord, order []models.PlaybackToken) []speech.Request {
	reqs := []speech.Request{
		{Text: fmt.Sprintf("Item %d", item), Language: s.opts.HeadwordLanguage, Speed: s.opts.Speed},
		s.pause(s.opts.TokenPause),
	}
	for i, token := range order {
		step := s.step(0, item, w, token)
		if step.Text == "" {
			continue
		}
		reqs = append(reqs, speech.Request{Text: step.Text, Language: step.Language, Speed: s.opts.Speed})
		if i < len(order)-1 {
			reqs = append(reqs, s.pause(s.opts.TokenPause))
		}
	}
	return append(reqs, s.pause(s.opts.ItemPause))
}

func (s *Sequencer) pause(d time.Duration) speech.Request {
	return speech.Request{Language: s.opts.HeadwordLanguage, Pause: d}
}
