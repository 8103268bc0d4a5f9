package session

import (
	"context"

	"github.com/example/wordbook/internal/review"
	"github.com/example/wordbook/internal/vocab"
	"github.com/example/wordbook/pkg/models"
)

// NextQuestion poses a multiple choice question over the filtered words
func (s *Session) NextQuestion(f vocab.Filter) (*models.QuizQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz.Next(s.store.Query(s.owner, f))
}

// Answer checks a quiz answer. A miss is recorded in the mistake notebook
// and saved; the result is returned even when that save fails.
func (s *Session) Answer(ctx context.Context, choice string) (review.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.quiz.Answer(choice)
	if err != nil || !res.Promoted {
		return res, err
	}
	return res, s.persist(ctx)
}

// QuizScore returns the running quiz score
func (s *Session) QuizScore() models.Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz.Score()
}

// NextSpelling poses a spelling challenge over the filtered words
func (s *Session) NextSpelling(f vocab.Filter) (*models.SpellingChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speller.Next(s.store.Query(s.owner, f))
}

// CheckSpelling checks typed input against the current challenge
func (s *Session) CheckSpelling(ctx context.Context, input string) (review.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.speller.Check(input)
	if err != nil || !res.Promoted {
		return res, err
	}
	return res, s.persist(ctx)
}

// SpellingScore returns the running spelling score
func (s *Session) SpellingScore() models.Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speller.Score()
}

// ResetScores clears both scores and any question in play
func (s *Session) ResetScores() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quiz.Reset()
	s.speller.Reset()
}

// OpenCards starts flashcard review over the filtered words and returns the first card
func (s *Session) OpenCards(f vocab.Filter) (models.WordRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deck = review.NewDeck(s.store.Query(s.owner, f))
	return s.deck.Current()
}

// NextCard moves to the next flashcard, wrapping around at the end
func (s *Session) NextCard() (models.WordRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deck == nil {
		return models.WordRecord{}, models.ErrNoMaterial
	}
	return s.deck.Next()
}

// PrevCard moves to the previous flashcard, wrapping around at the start
func (s *Session) PrevCard() (models.WordRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deck == nil {
		return models.WordRecord{}, models.ErrNoMaterial
	}
	return s.deck.Prev()
}

// CardPosition reports the one-based position of the current flashcard and
// the deck size, or zeros before OpenCards.
func (s *Session) CardPosition() (pos, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deck == nil || s.deck.Len() == 0 {
		return 0, 0
	}
	return s.deck.Position() + 1, s.deck.Len()
}
