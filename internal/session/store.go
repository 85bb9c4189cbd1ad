// Package session holds per-user accounts, live sessions, and the append-only
// study history. Everything is process-memory; nothing survives a restart.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/snarg/lectern/internal/studypack"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// HistoryEntry is one completed study run: generated materials plus the quiz
// outcome. Appended on quiz submission, never mutated.
type HistoryEntry struct {
	Time       time.Time             `json:"time"`
	Notes      string                `json:"notes"`
	Flashcards []studypack.Flashcard `json:"flashcards"`
	Score      int                   `json:"score"`
	Total      int                   `json:"total"`
	Percent    float64               `json:"percent"`
}

// Stats aggregates a user's quiz record.
type Stats struct {
	TotalQuizzes   int     `json:"total_quizzes"`
	TotalScore     int     `json:"total_score"`
	AveragePercent float64 `json:"average_percent"`
}

// user is an account record. History is append-only and mutated only through
// the owning session's submissions.
type user struct {
	name         string
	passwordHash []byte
	history      []HistoryEntry
	totalQuizzes int
	totalScore   int
}

// Store is the in-memory account and session registry.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*user
	sessions map[string]*Session
	log      zerolog.Logger
}

// NewStore creates an empty store.
func NewStore(log zerolog.Logger) *Store {
	return &Store{
		users:    make(map[string]*user),
		sessions: make(map[string]*Session),
		log:      log,
	}
}

// Signup creates an account and an initial session. Passwords are stored as
// bcrypt hashes only.
func (s *Store) Signup(username, password string) (*Session, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return nil, ErrUserExists
	}
	s.users[username] = &user{name: username, passwordHash: hash}
	sess := s.newSessionLocked(username)
	s.log.Info().Str("user", username).Msg("account created")
	return sess, nil
}

// Login verifies credentials and creates a session. Unknown user and wrong
// password are indistinguishable to the caller.
func (s *Store) Login(username, password string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	sess := s.newSessionLocked(username)
	s.log.Info().Str("user", username).Msg("logged in")
	return sess, nil
}

// Logout destroys a session. Unknown tokens are ignored.
func (s *Store) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Get resolves a session token.
func (s *Store) Get(token string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	return sess, ok
}

// History returns the user's entries newest-first.
func (s *Store) History(username string) []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil
	}
	out := make([]HistoryEntry, len(u.history))
	for i, e := range u.history {
		out[len(u.history)-1-i] = e
	}
	return out
}

// UserStats returns the user's aggregate quiz record. Average is over the
// fixed quiz length, matching the per-run percent scale.
func (s *Store) UserStats(username string) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return Stats{}
	}
	st := Stats{TotalQuizzes: u.totalQuizzes, TotalScore: u.totalScore}
	if u.totalQuizzes > 0 {
		st.AveragePercent = float64(u.totalScore) / float64(u.totalQuizzes*studypack.MaxQuizQuestions) * 100
	}
	return st
}

func (s *Store) newSessionLocked(username string) *Session {
	sess := &Session{
		Token:     uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now(),
		store:     s,
	}
	s.sessions[sess.Token] = sess
	return sess
}

// appendHistory records a completed quiz run for the session's user.
func (s *Store) appendHistory(username string, e HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return
	}
	u.history = append(u.history, e)
	u.totalQuizzes++
	u.totalScore += e.Score
}
