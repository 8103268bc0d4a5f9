package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/example/wordbook/internal/excel"
	"github.com/example/wordbook/internal/playback"
	"github.com/example/wordbook/internal/speech"
	"github.com/example/wordbook/internal/vocab"
	"github.com/example/wordbook/pkg/models"
)

// ErrPublishingDisabled is returned by PublishAudio without a configured publisher
var ErrPublishingDisabled = errors.New("audio publishing is not configured")

// ImportSummary reports the outcome of a file import
type ImportSummary struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"` // already present
	Errors  []string `json:"errors,omitempty"`
}

// PlaybackOrder returns the carousel token order
func (s *Session) PlaybackOrder() []models.PlaybackToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PlaybackToken(nil), s.order...)
}

// SetPlaybackOrder replaces the carousel token order. An empty order is
// accepted; starting a carousel with it fails.
func (s *Session) SetPlaybackOrder(order []models.PlaybackToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append([]models.PlaybackToken(nil), order...)
}

// PlayCarousel plays the filtered words and blocks until the run ends or
// StopCarousel is called. Other operations stay available meanwhile.
func (s *Session) PlayCarousel(ctx context.Context, f vocab.Filter) (playback.Report, error) {
	s.mu.Lock()
	set := s.store.Query(s.owner, f)
	order := append([]models.PlaybackToken(nil), s.order...)
	s.mu.Unlock()

	return s.sequencer.Start(ctx, set, order)
}

// StopCarousel interrupts a running carousel after its current step
func (s *Session) StopCarousel() {
	s.sequencer.Stop()
}

// CarouselRunning reports whether a carousel is playing
func (s *Session) CarouselRunning() bool {
	return s.sequencer.Running()
}

// CompileAudio renders the filtered words into one MP3 for offline listening
func (s *Session) CompileAudio(ctx context.Context, f vocab.Filter) (*playback.Asset, error) {
	s.mu.Lock()
	set := s.store.Query(s.owner, f)
	order := append([]models.PlaybackToken(nil), s.order...)
	s.mu.Unlock()

	return s.sequencer.Compile(ctx, set, order)
}

// PublishAudio compiles the filtered words and uploads the result. It
// returns the public URL of the upload.
func (s *Session) PublishAudio(ctx context.Context, f vocab.Filter) (string, *playback.Asset, error) {
	if s.publisher == nil {
		return "", nil, ErrPublishingDisabled
	}
	asset, err := s.CompileAudio(ctx, f)
	if err != nil {
		return "", nil, err
	}

	name := f.Notebook()
	if f.IsAll() {
		name = s.owner
	}
	url, err := s.publisher.Publish(speech.ObjectName(name, s.now()), asset.Audio)
	if err != nil {
		return "", asset, err
	}
	return url, asset, nil
}

// Speak pronounces a single text, e.g. a headword tapped in the list
func (s *Session) Speak(ctx context.Context, text, language string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("nothing to speak")
	}
	if language == "" {
		language = "en-US"
	}
	return s.speaker.Synthesize(ctx, speech.Request{Text: text, Language: language, Speed: s.cfg.SpeechSpeed})
}

// Import adds the words of an XLSX or CSV file. Rows naming a notebook go
// there, the rest go to notebookName. Words already present are skipped.
func (s *Session) Import(ctx context.Context, r io.Reader, ext, notebookName string) (ImportSummary, error) {
	result, err := excel.Import(r, ext, excel.DefaultImportConfig())
	if err != nil {
		return ImportSummary{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summary := ImportSummary{Errors: result.Errors}
	fallback := s.notebookOrDefault(notebookName)
	for _, w := range result.Words {
		target := w.Notebook
		if target == "" {
			target = fallback
		}
		if _, err := s.store.Add(s.owner, target, w.Headword, w.Translation, w.Phonetic); err != nil {
			if vocab.IsDuplicate(err) {
				summary.Skipped++
				continue
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", w.Headword, err))
			continue
		}
		summary.Added++
	}

	if summary.Added == 0 {
		return summary, nil
	}
	return summary, s.persist(ctx)
}

// Export writes the filtered words to w
func (s *Session) Export(w io.Writer, format excel.Format, f vocab.Filter) error {
	return excel.Export(w, format, s.Words(f))
}

// ExportFileName suggests a download name for an export of f
func (s *Session) ExportFileName(format excel.Format, f vocab.Filter) string {
	name := f.Notebook()
	if f.IsAll() {
		name = "vocabulary"
	}
	return excel.FileName(name, format, s.now())
}
