// Package quiz scores runs through a StudyPackage question set.
package quiz

import (
	"errors"
	"fmt"

	"github.com/snarg/lectern/internal/studypack"
)

// State is the attempt lifecycle: Unanswered → AllAnswered → Scored.
type State string

const (
	StateUnanswered  State = "unanswered"
	StateAllAnswered State = "all_answered"
	StateScored      State = "scored"
)

var (
	// ErrIncomplete rejects submission while any question is unanswered. The
	// attempt state does not change.
	ErrIncomplete = errors.New("all questions must be answered before submitting")
	// ErrScored rejects mutation of a submitted attempt.
	ErrScored = errors.New("attempt already scored")
)

// Result is an immutable scored attempt. Superseded, not mutated, on retake.
type Result struct {
	Score      int
	Total      int
	Percent    float64
	Selections []string
	Questions  []studypack.QuizQuestion
}

// Attempt tracks selections for one run through a question set.
type Attempt struct {
	questions []studypack.QuizQuestion
	selected  []string
	answered  []bool
	result    *Result
}

// NewAttempt starts an attempt with empty selections.
func NewAttempt(questions []studypack.QuizQuestion) *Attempt {
	return &Attempt{
		questions: questions,
		selected:  make([]string, len(questions)),
		answered:  make([]bool, len(questions)),
	}
}

// State reports where the attempt is in its lifecycle.
func (a *Attempt) State() State {
	if a.result != nil {
		return StateScored
	}
	for _, ok := range a.answered {
		if !ok {
			return StateUnanswered
		}
	}
	if len(a.questions) == 0 {
		return StateUnanswered
	}
	return StateAllAnswered
}

// Questions returns the question set.
func (a *Attempt) Questions() []studypack.QuizQuestion { return a.questions }

// Select records the chosen option for one question. The option must be one
// of the question's options verbatim; scoring never normalizes.
func (a *Attempt) Select(index int, option string) error {
	if a.result != nil {
		return ErrScored
	}
	if index < 0 || index >= len(a.questions) {
		return fmt.Errorf("question index %d out of range", index)
	}
	valid := false
	for _, opt := range a.questions[index].Options {
		if opt == option {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("option %q is not one of question %d's options", option, index)
	}
	a.selected[index] = option
	a.answered[index] = true
	return nil
}

// Submit scores the attempt. Rejected without a state change while any
// question is unanswered. Scoring is exact string equality against each
// question's answer; the result is terminal and immutable.
func (a *Attempt) Submit() (*Result, error) {
	if a.result != nil {
		return nil, ErrScored
	}
	if a.State() != StateAllAnswered {
		return nil, ErrIncomplete
	}

	score := 0
	for i, q := range a.questions {
		if a.selected[i] == q.Answer {
			score++
		}
	}
	total := len(a.questions)

	selections := make([]string, total)
	copy(selections, a.selected)

	a.result = &Result{
		Score:      score,
		Total:      total,
		Percent:    float64(score) / float64(total) * 100,
		Selections: selections,
		Questions:  a.questions,
	}
	return a.result, nil
}

// Result returns the scored result, or nil before submission.
func (a *Attempt) Result() *Result { return a.result }

// Retake returns a fresh attempt over the same questions with empty
// selections. The caller appends the previous result to history before
// discarding this attempt.
func (a *Attempt) Retake() *Attempt {
	return NewAttempt(a.questions)
}
