// Package studypack turns a lecture transcript into structured study
// materials (notes, flashcards, quiz) via a single generative-model call.
package studypack

import (
	"context"
	"errors"
)

// MaxQuizQuestions is the fixed quiz length. Extra entries in a model
// response are dropped.
const MaxQuizQuestions = 5

// OptionsPerQuestion is the fixed choice count per quiz question.
const OptionsPerQuestion = 4

var (
	// ErrTransport marks a network or API failure calling the generative
	// service. Terminal for the invocation; never retried.
	ErrTransport = errors.New("generation transport failed")
	// ErrMalformed marks a response that is not the required JSON schema
	// after fence stripping. Terminal; callers may display the raw text as a
	// degraded fallback.
	ErrMalformed = errors.New("malformed generation response")
)

// Flashcard is one question/answer pair. Immutable once created.
type Flashcard struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// QuizQuestion is one multiple-choice item. Answer is string-identical to one
// of the options; scoring downstream relies on exact equality.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// StudyPackage is the parsed model response. Replaces any prior package for
// the session.
type StudyPackage struct {
	Notes      string         `json:"notes"`
	Flashcards []Flashcard    `json:"flashcards"`
	Quiz       []QuizQuestion `json:"quiz"`
}

// Requester generates a StudyPackage from transcript text. The SDK-mediated
// and raw-API implementations are interchangeable; callers never depend on
// which is in use.
type Requester interface {
	Generate(ctx context.Context, transcript string) (*StudyPackage, error)
	Mode() string // "sdk" or "rest", for logs
}
