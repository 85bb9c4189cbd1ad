package studypack

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripWrapper removes the markdown wrapping models habitually put around
// JSON output: a fenced code block and an optional "json" language tag. A
// fence counts as a wrapper only when it opens the payload (at most prose
// before it); fences inside bare JSON, such as code blocks in the notes, are
// content and stay untouched. The remainder is returned as-is for strict
// parsing; this stage never repairs content.
func StripWrapper(raw string) string {
	s := strings.TrimSpace(raw)

	i := strings.Index(s, "```")
	if i < 0 {
		return s
	}
	// If the payload already started before the fence, the response is bare
	// JSON and the fence belongs to it.
	if strings.ContainsAny(s[:i], "{[") {
		return s
	}

	s = s[i+3:]
	// The closing fence is the last one, so wrapped payloads may themselves
	// contain fenced blocks.
	if j := strings.LastIndex(s, "```"); j >= 0 {
		s = s[:j]
	}
	s = strings.TrimSpace(s)

	// Language tag immediately after the opening fence ("json" or "JSON").
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		rest := s[4:]
		if rest == "" || rest[0] == '\n' || rest[0] == '\r' || rest[0] == ' ' || rest[0] == '{' || rest[0] == '[' {
			s = strings.TrimSpace(rest)
		}
	}

	return s
}

// rawPackage distinguishes missing keys from empty values.
type rawPackage struct {
	Notes      *string         `json:"notes"`
	Flashcards *[]Flashcard    `json:"flashcards"`
	Quiz       *[]QuizQuestion `json:"quiz"`
}

// Parse strict-parses a model response into a StudyPackage after wrapper
// stripping. Any schema violation is ErrMalformed; there is no repair and no
// retry. The quiz is clipped to MaxQuizQuestions; flashcard count and notes
// length are accepted as-is.
func Parse(raw string) (*StudyPackage, error) {
	stripped := StripWrapper(raw)

	var rp rawPackage
	if err := json.Unmarshal([]byte(stripped), &rp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if rp.Notes == nil {
		return nil, fmt.Errorf(`%w: missing "notes" key`, ErrMalformed)
	}
	if rp.Flashcards == nil {
		return nil, fmt.Errorf(`%w: missing "flashcards" key`, ErrMalformed)
	}
	if rp.Quiz == nil {
		return nil, fmt.Errorf(`%w: missing "quiz" key`, ErrMalformed)
	}

	quiz := *rp.Quiz
	if len(quiz) > MaxQuizQuestions {
		quiz = quiz[:MaxQuizQuestions]
	}
	for i, q := range quiz {
		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("%w: quiz[%d]: %v", ErrMalformed, i, err)
		}
	}

	return &StudyPackage{
		Notes:      *rp.Notes,
		Flashcards: *rp.Flashcards,
		Quiz:       quiz,
	}, nil
}

// validateQuestion enforces the quiz-question invariant: 4 distinct options,
// answer string-identical to one of them. Scoring compares by exact equality,
// so a violation here would make a question unanswerable.
func validateQuestion(q QuizQuestion) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("empty question text")
	}
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("got %d options, want %d", len(q.Options), OptionsPerQuestion)
	}
	seen := make(map[string]bool, OptionsPerQuestion)
	match := false
	for _, opt := range q.Options {
		if seen[opt] {
			return fmt.Errorf("duplicate option %q", opt)
		}
		seen[opt] = true
		if opt == q.Answer {
			match = true
		}
	}
	if !match {
		return fmt.Errorf("answer %q is not one of the options", q.Answer)
	}
	return nil
}
