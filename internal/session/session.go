package session

import (
	"errors"
	"sync"
	"time"

	"github.com/snarg/lectern/internal/quiz"
	"github.com/snarg/lectern/internal/studypack"
	"github.com/snarg/lectern/internal/transcribe"
)

var (
	// ErrBusy means a transcription/generation pipeline is already running
	// for this session. Only one may be in flight at a time.
	ErrBusy = errors.New("a lecture is already being processed for this session")
	// ErrNoQuiz means quiz operations were attempted before materials exist.
	ErrNoQuiz = errors.New("no study package has been generated yet")
)

// Session is the per-login context passed to each operation. Created on
// login/signup, mutated by uploads and quiz submissions, destroyed on logout.
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time

	store *Store

	mu         sync.Mutex
	busy       bool
	transcript *transcribe.Result
	pkg        *studypack.StudyPackage
	attempt    *quiz.Attempt
}

// Acquire claims the session's single pipeline slot. Returns ErrBusy if an
// upload is already being processed; callers must Release on success.
func (s *Session) Acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

// Release frees the pipeline slot.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

// SetMaterials installs a new transcript and study package, replacing any
// prior package and starting a fresh quiz attempt.
func (s *Session) SetMaterials(tr *transcribe.Result, pkg *studypack.StudyPackage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = tr
	s.pkg = pkg
	s.attempt = quiz.NewAttempt(pkg.Quiz)
}

// Materials returns the current transcript and package, nil before the first
// successful generation.
func (s *Session) Materials() (*transcribe.Result, *studypack.StudyPackage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript, s.pkg
}

// SubmitQuiz applies the selections and scores the attempt. On success the
// result is appended to the user's history before it is returned; a later
// retake can then safely discard it.
func (s *Session) SubmitQuiz(selections []string) (*quiz.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == nil {
		return nil, ErrNoQuiz
	}
	if len(selections) != len(s.attempt.Questions()) {
		return nil, quiz.ErrIncomplete
	}
	// Reject incomplete submissions before recording anything, so a failed
	// submit leaves the attempt exactly as it was.
	for _, sel := range selections {
		if sel == "" {
			return nil, quiz.ErrIncomplete
		}
	}
	for i, sel := range selections {
		if err := s.attempt.Select(i, sel); err != nil {
			return nil, err
		}
	}

	res, err := s.attempt.Submit()
	if err != nil {
		return nil, err
	}

	s.store.appendHistory(s.Username, HistoryEntry{
		Time:       time.Now(),
		Notes:      s.pkg.Notes,
		Flashcards: s.pkg.Flashcards,
		Score:      res.Score,
		Total:      res.Total,
		Percent:    res.Percent,
	})
	return res, nil
}

// Retake resets the quiz to an unanswered state over the same questions. The
// previous scored attempt was already appended to history on submission.
func (s *Session) Retake() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == nil {
		return ErrNoQuiz
	}
	s.attempt = s.attempt.Retake()
	return nil
}

// QuizState reports the current attempt's lifecycle state.
func (s *Session) QuizState() (quiz.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == nil {
		return "", ErrNoQuiz
	}
	return s.attempt.State(), nil
}
