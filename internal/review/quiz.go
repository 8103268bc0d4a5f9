package review

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/example/wordbook/pkg/models"
)

// OptionCount is the number of choices in every quiz question
const OptionCount = 4

// UnknownOption pads a question when neither the review set nor the
// fallback pool has enough distinct translations
const UnknownOption = "unknown"

var (
	// ErrNotPosed is returned when answering before a question was posed
	ErrNotPosed = errors.New("no question has been posed")
	// ErrAlreadyAnswered is returned when answering the same question twice
	ErrAlreadyAnswered = errors.New("question already answered")
)

// State is the position of a quiz or spelling round
type State int

const (
	StateIdle State = iota
	StatePosed
	StateAnswered
)

func (s State) String() string {
	switch s {
	case StatePosed:
		return "posed"
	case StateAnswered:
		return "answered"
	default:
		return "idle"
	}
}

// Result is the outcome of an answer
type Result struct {
	Correct  bool   `json:"correct"`
	Expected string `json:"expected"`
	Promoted bool   `json:"promoted"` // the word was newly added to the mistake notebook
}

// Quiz poses multiple choice questions over a review set
type Quiz struct {
	owner    string
	mistakes MistakeRecorder
	fallback []string
	rnd      *rand.Rand

	state   State
	current models.QuizQuestion
	score   models.Score
}

// NewQuiz creates a quiz for owner. fallback holds generic translations used
// when the review set has fewer than three distinct distractors.
func NewQuiz(owner string, mistakes MistakeRecorder, fallback []string, rnd *rand.Rand) *Quiz {
	return &Quiz{
		owner:    owner,
		mistakes: mistakes,
		fallback: fallback,
		rnd:      rnd,
	}
}

// Next picks a target at random from set and builds its options. Any
// previous question is discarded.
func (q *Quiz) Next(set []models.WordRecord) (*models.QuizQuestion, error) {
	if len(set) == 0 {
		q.state = StateIdle
		return nil, models.ErrNoMaterial
	}

	targetIdx := q.rnd.Intn(len(set))
	target := set[targetIdx]

	q.current = models.QuizQuestion{
		Target:  target,
		Options: buildOptions(q.rnd, set, targetIdx, q.fallback),
	}
	q.state = StatePosed

	question := q.current
	return &question, nil
}

// Answer checks choice against the current question. A wrong answer sends
// the target to the mistake notebook.
func (q *Quiz) Answer(choice string) (Result, error) {
	switch q.state {
	case StateIdle:
		return Result{}, ErrNotPosed
	case StateAnswered:
		return Result{}, ErrAlreadyAnswered
	}

	target := q.current.Target
	res := Result{
		Correct:  choice == target.Translation,
		Expected: target.Translation,
	}
	q.current.Answered = true
	q.current.Correct = res.Correct
	q.state = StateAnswered

	q.score.Answered++
	if res.Correct {
		q.score.Correct++
	} else if q.mistakes != nil {
		res.Promoted = q.mistakes.Promote(target, q.owner)
	}
	return res, nil
}

// Current returns the question in play, if any
func (q *Quiz) Current() (models.QuizQuestion, bool) {
	if q.state == StateIdle {
		return models.QuizQuestion{}, false
	}
	return q.current, true
}

// State returns the current state
func (q *Quiz) State() State { return q.state }

// Score returns the running totals
func (q *Quiz) Score() models.Score { return q.score }

// Reset clears the score and discards the current question
func (q *Quiz) Reset() {
	q.score = models.Score{}
	q.current = models.QuizQuestion{}
	q.state = StateIdle
}

// buildOptions returns OptionCount distinct translations including the
// target's exactly once. Distractors come from other records of the set
// first, then from the fallback pool, then numbered "unknown" placeholders.
func buildOptions(rnd *rand.Rand, set []models.WordRecord, targetIdx int, fallback []string) []string {
	correct := set[targetIdx].Translation
	options := make([]string, 0, OptionCount)
	options = append(options, correct)
	used := map[string]bool{correct: true}

	add := func(option string) {
		if len(options) < OptionCount && option != "" && !used[option] {
			used[option] = true
			options = append(options, option)
		}
	}

	for _, i := range rnd.Perm(len(set)) {
		if i != targetIdx {
			add(set[i].Translation)
		}
	}
	for _, i := range rnd.Perm(len(fallback)) {
		add(fallback[i])
	}
	for n := 1; len(options) < OptionCount; n++ {
		if n == 1 {
			add(UnknownOption)
		} else {
			add(fmt.Sprintf("%s %d", UnknownOption, n))
		}
	}

	rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
