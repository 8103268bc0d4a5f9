package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoMaterial is returned when a review mode is started on an empty review set
var ErrNoMaterial = errors.New("no material available")

// QuizQuestion is a single multiple choice question
type QuizQuestion struct {
	Target   WordRecord `json:"target"`
	Options  []string   `json:"options"` // Exactly four distinct translations, target's included once
	Answered bool       `json:"answered"`
	Correct  bool       `json:"correct"`
}

// SpellingChallenge asks the user to type the target headword
type SpellingChallenge struct {
	Target    WordRecord `json:"target"`
	UserInput string     `json:"user_input"`
	Checked   bool       `json:"checked"`
	Correct   bool       `json:"correct"`
}

// Score tracks answers given during a session
type Score struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// Wrong returns the number of incorrect answers
func (s Score) Wrong() int {
	return s.Answered - s.Correct
}

// Accuracy returns the share of correct answers in the range 0..1
func (s Score) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered)
}

// PlaybackToken is one entry of a playback order
type PlaybackToken string

const (
	// TokenHeadword speaks and shows the English headword
	TokenHeadword PlaybackToken = "HEADWORD"
	// TokenTranslation speaks and shows the translation
	TokenTranslation PlaybackToken = "TRANSLATION"
)

// ParsePlaybackOrder parses a comma separated list such as "HEADWORD,TRANSLATION".
// An empty string yields an empty order.
func ParsePlaybackOrder(s string) ([]PlaybackToken, error) {
	var order []PlaybackToken
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		switch PlaybackToken(part) {
		case TokenHeadword, TokenTranslation:
			order = append(order, PlaybackToken(part))
		default:
			return nil, fmt.Errorf("unknown playback token %q", part)
		}
	}
	return order, nil
}
