// Package playback drives the carousel: it walks a review set and, for each
// word, shows and speaks the tokens of a user-defined playback order.
package playback

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/example/wordbook/internal/speech"
	"github.com/example/wordbook/pkg/models"
)

var (
	// ErrNoPlaybackOrder is returned when starting with an empty playback order
	ErrNoPlaybackOrder = errors.New("no playback order configured")
	// ErrAlreadyRunning is returned when starting while a run is in progress
	ErrAlreadyRunning = errors.New("playback already running")
)

// Step is one word × token unit of a run
type Step struct {
	Index    int // 1-based position in the run
	Item     int // 1-based position of the word
	Word     models.WordRecord
	Token    models.PlaybackToken
	Text     string
	Language string
}

// Output receives the display update and the audio of every step
type Output interface {
	Show(step Step)
	Speak(step Step, audio []byte)
}

// Options configures a Sequencer
type Options struct {
	Dwell               time.Duration // pause after each step
	HeadwordLanguage    string
	TranslationLanguage string
	Speed               float64

	MaxCompileItems int           // cap for Compile
	TokenPause      time.Duration // silence between tokens, and for steps without text
	ItemPause       time.Duration // silence between items in compiled audio
}

// DefaultOptions mirrors the classic carousel timing
func DefaultOptions() Options {
	return Options{
		Dwell:               3500 * time.Millisecond,
		HeadwordLanguage:    "en-US",
		TranslationLanguage: "zh-TW",
		Speed:               0.8,
		MaxCompileItems:     50,
		TokenPause:          800 * time.Millisecond,
		ItemPause:           1500 * time.Millisecond,
	}
}

// Report summarizes a finished or interrupted run
type Report struct {
	Steps       int  `json:"steps"`
	Words       int  `json:"words"` // words whose every token was played
	Interrupted bool `json:"interrupted"`
}

// Sequencer plays review sets. One run at a time; Stop may be called from
// any goroutine.
type Sequencer struct {
	speaker speech.Synthesizer
	out     Output
	opts    Options
	rnd     *rand.Rand

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

// NewSequencer creates a sequencer speaking through speaker and reporting to out
func NewSequencer(speaker speech.Synthesizer, out Output, opts Options, rnd *rand.Rand) *Sequencer {
	return &Sequencer{speaker: speaker, out: out, opts: opts, rnd: rnd}
}

// Start plays set in a freshly shuffled order and blocks until the run ends.
// A Stop or a cancelled ctx ends the run after the step in flight; a new run
// needs another Start.
func (s *Sequencer) Start(ctx context.Context, set []models.WordRecord, order []models.PlaybackToken) (Report, error) {
	if len(order) == 0 {
		return Report{}, ErrNoPlaybackOrder
	}
	if len(set) == 0 {
		return Report{}, models.ErrNoMaterial
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return Report{}, ErrAlreadyRunning
	}
	stop := make(chan struct{})
	s.running = true
	s.stop = stop
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.stop = nil
		s.mu.Unlock()
	}()

	words := make([]models.WordRecord, len(set))
	copy(words, set)
	s.rnd.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})

	var rep Report
	total := len(words) * len(order)
	for i, w := range words {
		for _, token := range order {
			if interrupted(ctx, stop) {
				rep.Interrupted = true
				return rep, nil
			}

			rep.Steps++
			step := s.step(rep.Steps, i+1, w, token)
			s.out.Show(step)
			s.speak(ctx, step)

			if rep.Steps < total && !s.wait(ctx, stop) {
				rep.Interrupted = true
				return rep, nil
			}
		}
		rep.Words++
	}
	return rep, nil
}

// Stop interrupts the current run, if any
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// Running reports whether a run is in progress
func (s *Sequencer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sequencer) step(index, item int, w models.WordRecord, token models.PlaybackToken) Step {
	step := Step{Index: index, Item: item, Word: w, Token: token}
	switch token {
	case models.TokenTranslation:
		step.Text = w.Translation
		step.Language = s.opts.TranslationLanguage
	default:
		step.Text = w.Headword
		step.Language = s.opts.HeadwordLanguage
	}
	return step
}

// speak issues one synthesis request per step. A step without text, such
// as a word with no translation yet, is spoken as a short silence.
func (s *Sequencer) speak(ctx context.Context, step Step) {
	req := speech.Request{
		Text:     step.Text,
		Language: step.Language,
		Speed:    s.opts.Speed,
	}
	if req.Text == "" {
		req.Pause = s.opts.TokenPause
		if req.Pause <= 0 {
			req.Pause = 500 * time.Millisecond
		}
	}
	audio, err := s.speaker.Synthesize(ctx, req)
	if err != nil {
		log.Printf("Speech synthesis for step %d (%s) failed: %v", step.Index, step.Word.Headword, err)
		return
	}
	s.out.Speak(step, audio)
}

// wait sleeps for the dwell time and reports false if the run was interrupted meanwhile
func (s *Sequencer) wait(ctx context.Context, stop <-chan struct{}) bool {
	if s.opts.Dwell <= 0 {
		return !interrupted(ctx, stop)
	}
	timer := time.NewTimer(s.opts.Dwell)
	defer timer.Stop()
	select {
	case <-timer.C:
		return !interrupted(ctx, stop)
	case <-stop:
		return false
	case <-ctx.Done():
		return false
	}
}

func interrupted(ctx context.Context, stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
