// Package session binds one signed-in user to the vocabulary engine. Every
// operation the interface offers goes through a Session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/example/wordbook/internal/config"
	"github.com/example/wordbook/internal/notebook"
	"github.com/example/wordbook/internal/playback"
	"github.com/example/wordbook/internal/remote"
	"github.com/example/wordbook/internal/review"
	"github.com/example/wordbook/internal/speech"
	"github.com/example/wordbook/internal/vocab"
	"github.com/example/wordbook/pkg/models"
	"github.com/google/uuid"
)

// ErrNoOwner is returned when opening a session without a username
var ErrNoOwner = errors.New("a username is required")

// AudioPublisher stores compiled audio and returns where it can be fetched
type AudioPublisher interface {
	Publish(objectPath string, audio []byte) (string, error)
}

// Services are the collaborators a session works with. Only Sheet is required.
type Services struct {
	Sheet     remote.Sheet
	Enricher  vocab.Enricher     // translation and phonetic lookups
	Speaker   speech.Synthesizer // nil plays carousels silently
	Output    playback.Output    // receives carousel steps
	Publisher AudioPublisher     // nil disables publishing of compiled audio
	Rand      *rand.Rand
	Now       func() time.Time
}

// Session holds one user's view of the shared vocabulary table
type Session struct {
	ID    string
	owner string
	cfg   *config.Config

	mu        sync.Mutex
	store     *vocab.Store
	adapter   *remote.Adapter
	registry  *notebook.Registry
	quiz      *review.Quiz
	speller   *review.Speller
	deck      *review.Deck
	sequencer *playback.Sequencer
	order     []models.PlaybackToken

	enricher  vocab.Enricher
	speaker   speech.Synthesizer
	publisher AudioPublisher
	now       func() time.Time
}

// Stats summarizes the table for the signed-in user
type Stats struct {
	CloudTotal    int  `json:"cloud_total"`    // rows in the whole table, every user included
	OwnedTotal    int  `json:"owned_total"`    // rows owned by the user
	NotebookCount int  `json:"notebook_count"` // rows in the selected notebook
	Notebooks     int  `json:"notebooks"`
	Mistakes      int  `json:"mistakes"`
	Pending       bool `json:"pending"` // local changes not yet saved
}

// Open signs owner in and loads the table. When the remote table cannot be
// read the session starts from an empty table and the returned error is a
// *remote.UnavailableError; the session is still usable.
func Open(ctx context.Context, owner string, cfg *config.Config, svc Services) (*Session, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, ErrNoOwner
	}
	if svc.Sheet == nil {
		return nil, fmt.Errorf("no remote sheet configured")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if svc.Rand == nil {
		svc.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if svc.Now == nil {
		svc.Now = time.Now
	}
	if svc.Speaker == nil {
		svc.Speaker = speech.Mute{}
	}
	if svc.Output == nil {
		svc.Output = discard{}
	}

	store := vocab.NewStore(nil)
	store.SetClock(svc.Now)
	promoter := review.NewPromoter(store, cfg.MistakeNotebook)

	opts := playback.DefaultOptions()
	opts.Dwell = cfg.CarouselDwell
	opts.TranslationLanguage = cfg.TranslateTarget
	opts.Speed = cfg.SpeechSpeed

	s := &Session{
		ID:    uuid.NewString(),
		owner: owner,
		cfg:   cfg,
		store: store,
		adapter: remote.NewAdapter(svc.Sheet, remote.Options{
			CacheTTL: cfg.CacheTTL,
			Timeout:  cfg.RemoteTimeout,
		}),
		registry: notebook.NewRegistry(store, cfg.DefaultNotebook, cfg.MistakeNotebook),
		quiz:     review.NewQuiz(owner, promoter, cfg.FallbackTranslations, svc.Rand),
		speller:  review.NewSpeller(owner, promoter, svc.Rand),
		// the carousel runs outside the session lock and gets its own source
		sequencer: playback.NewSequencer(svc.Speaker, svc.Output, opts, rand.New(rand.NewSource(svc.Rand.Int63()))),
		order:     []models.PlaybackToken{models.TokenHeadword, models.TokenTranslation},
		enricher:  svc.Enricher,
		speaker:   svc.Speaker,
		publisher: svc.Publisher,
		now:       svc.Now,
	}

	records, err := s.adapter.Load(ctx)
	store.Replace(records)
	if err != nil {
		log.Printf("Session %s: starting with an empty table: %v", s.ID, err)
		return s, err
	}
	log.Printf("Session %s opened for %q with %d rows", s.ID, owner, store.Len())
	return s, nil
}

// Owner returns the signed-in username
func (s *Session) Owner() string { return s.owner }

// Reload fetches the table again. Pending changes are saved first so they are not lost.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Dirty() {
		if err := s.persist(ctx); err != nil {
			return err
		}
	}
	s.adapter.Invalidate()
	records, err := s.adapter.Load(ctx)
	if err != nil {
		return err
	}
	s.store.Replace(records)
	return nil
}

// AddWord adds one word. A missing translation is looked up; if that lookup
// fails the word is not added and a *vocab.EnrichmentError is returned so the
// caller can retry or supply the translation. A failed phonetic lookup only
// leaves the transcription empty.
func (s *Session) AddWord(ctx context.Context, notebookName, headword, translation string) (models.WordRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notebookName = s.notebookOrDefault(notebookName)
	headword = strings.TrimSpace(headword)
	if headword == "" {
		return models.WordRecord{}, vocab.ErrInvalidRecord
	}
	if s.store.Contains(s.owner, notebookName, headword) {
		return models.WordRecord{}, &vocab.DuplicateError{Owner: s.owner, Notebook: notebookName, Headword: headword}
	}

	translation = strings.TrimSpace(translation)
	if translation == "" {
		if s.enricher == nil {
			return models.WordRecord{}, &vocab.EnrichmentError{Field: "translation", Headword: headword, Err: errors.New("no translation service configured")}
		}
		t, err := s.enricher.Translate(ctx, headword, s.cfg.TranslateTarget)
		if err != nil {
			return models.WordRecord{}, &vocab.EnrichmentError{Field: "translation", Headword: headword, Err: err}
		}
		translation = t
	}

	var phonetic string
	if s.enricher != nil {
		p, err := s.enricher.Transcribe(ctx, headword)
		if err != nil {
			log.Printf("Phonetic lookup for %q failed: %v", headword, err)
		}
		phonetic = p
	}

	rec, err := s.store.Add(s.owner, notebookName, headword, translation, phonetic)
	if err != nil {
		return models.WordRecord{}, err
	}
	return rec, s.persist(ctx)
}

// BatchAdd adds every word of a comma or newline separated list
func (s *Session) BatchAdd(ctx context.Context, notebookName, raw string) (vocab.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.store.BatchAdd(ctx, s.owner, s.notebookOrDefault(notebookName), raw, vocab.BatchOptions{
		Enricher:       s.enricher,
		TargetLanguage: s.cfg.TranslateTarget,
		Workers:        s.cfg.LookupWorkers,
	})
	if result.Added == 0 {
		return result, nil
	}
	return result, s.persist(ctx)
}

// DeleteWord removes a word from a notebook
func (s *Session) DeleteWord(ctx context.Context, notebookName, headword string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.store.Delete(s.owner, s.notebookOrDefault(notebookName), headword)
	if n == 0 {
		return 0, nil
	}
	return n, s.persist(ctx)
}

// DeleteNotebook removes a notebook and all its words
func (s *Session) DeleteNotebook(ctx context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.registry.Delete(s.owner, name)
	if err != nil || n == 0 {
		return n, err
	}
	return n, s.persist(ctx)
}

// RenameNotebook moves every word of oldName to newName
func (s *Session) RenameNotebook(ctx context.Context, oldName, newName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.registry.Rename(s.owner, oldName, newName)
	if err != nil || n == 0 {
		return n, err
	}
	return n, s.persist(ctx)
}

// Words lists the user's words, newest first
func (s *Session) Words(f vocab.Filter) []models.WordRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Query(s.owner, f)
}

// Notebooks lists the user's notebooks
func (s *Session) Notebooks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.List(s.owner)
}

// DefaultNotebook returns the notebook used when none is named
func (s *Session) DefaultNotebook() string { return s.registry.Default() }

// MistakeNotebook returns the name of the auto-collected mistake notebook
func (s *Session) MistakeNotebook() string { return s.registry.Mistakes() }

// Stats reports table and notebook counts
func (s *Session) Stats(notebookName string) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		CloudTotal:    s.store.Len(),
		OwnedTotal:    len(s.store.Query(s.owner, vocab.All())),
		NotebookCount: len(s.store.Query(s.owner, vocab.In(s.notebookOrDefault(notebookName)))),
		Notebooks:     len(s.registry.List(s.owner)),
		Mistakes:      len(s.store.Query(s.owner, vocab.In(s.registry.Mistakes()))),
		Pending:       s.store.Dirty(),
	}
}

// Pending reports whether local changes have not reached the remote table
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Dirty()
}

// Flush saves pending changes
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.Dirty() {
		return nil
	}
	return s.persist(ctx)
}

// persist overwrites the remote table with the local one. On failure the
// local change stays in place and the store stays dirty.
func (s *Session) persist(ctx context.Context) error {
	if err := s.adapter.Save(ctx, s.store.Records()); err != nil {
		log.Printf("Session %s: save failed, %d rows kept locally: %v", s.ID, s.store.Len(), err)
		return err
	}
	s.store.MarkClean()
	return nil
}

func (s *Session) notebookOrDefault(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return s.registry.Default()
}

type discard struct{}

func (discard) Show(playback.Step)          {}
func (discard) Speak(playback.Step, []byte) {}
