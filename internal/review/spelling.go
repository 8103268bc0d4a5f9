package review

import (
	"math/rand"
	"strings"

	"github.com/example/wordbook/pkg/models"
)

// Speller runs spelling rounds: the user sees the translation and types the headword
type Speller struct {
	owner    string
	mistakes MistakeRecorder
	rnd      *rand.Rand

	state   State
	current models.SpellingChallenge
	score   models.Score
}

// NewSpeller creates a spelling checker for owner
func NewSpeller(owner string, mistakes MistakeRecorder, rnd *rand.Rand) *Speller {
	return &Speller{owner: owner, mistakes: mistakes, rnd: rnd}
}

// Next picks a new target from set
func (s *Speller) Next(set []models.WordRecord) (*models.SpellingChallenge, error) {
	if len(set) == 0 {
		s.state = StateIdle
		return nil, models.ErrNoMaterial
	}
	s.current = models.SpellingChallenge{Target: set[s.rnd.Intn(len(set))]}
	s.state = StatePosed

	challenge := s.current
	return &challenge, nil
}

// Check compares input with the target headword, ignoring case and
// surrounding whitespace. A miss sends the target to the mistake notebook.
func (s *Speller) Check(input string) (Result, error) {
	switch s.state {
	case StateIdle:
		return Result{}, ErrNotPosed
	case StateAnswered:
		return Result{}, ErrAlreadyAnswered
	}

	target := s.current.Target
	res := Result{
		Correct:  SpellingMatches(target.Headword, input),
		Expected: target.Headword,
	}
	s.current.UserInput = input
	s.current.Checked = true
	s.current.Correct = res.Correct
	s.state = StateAnswered

	s.score.Answered++
	if res.Correct {
		s.score.Correct++
	} else if s.mistakes != nil {
		res.Promoted = s.mistakes.Promote(target, s.owner)
	}
	return res, nil
}

// SpellingMatches reports whether input spells headword. No partial credit.
func SpellingMatches(headword, input string) bool {
	return normalize(headword) == normalize(input)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Current returns the challenge in play, if any
func (s *Speller) Current() (models.SpellingChallenge, bool) {
	if s.state == StateIdle {
		return models.SpellingChallenge{}, false
	}
	return s.current, true
}

// Score returns the running totals
func (s *Speller) Score() models.Score { return s.score }

// Reset clears the score and discards the current challenge
func (s *Speller) Reset() {
	s.score = models.Score{}
	s.current = models.SpellingChallenge{}
	s.state = StateIdle
}
