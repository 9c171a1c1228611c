package memory

import (
	"context"
	"sync"

	"quizcraft-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore. The
// mutex makes the one-active-per-quiz check atomic in-process, mirroring
// the partial unique index the Postgres store relies on.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session)}
}

func (s *SessionStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sessions {
		if existing.QuizID == session.QuizID && existing.Active {
			return &domain.ActiveSessionError{SessionID: existing.ID}
		}
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) ByID(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) ActiveByQuiz(_ context.Context, quizID string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.QuizID == quizID && session.Active {
			return session, nil
		}
	}
	return domain.Session{}, domain.ErrSessionNotFound
}

func (s *SessionStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Active = active
	s.sessions[id] = session
	return nil
}
