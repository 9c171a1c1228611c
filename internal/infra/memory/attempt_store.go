package memory

import (
	"context"
	"sync"

	"quizcraft-service/internal/domain"
)

// AttemptStore is an in-memory, append-only implementation of
// app.AttemptStore. Record counts and inserts under one lock, so the
// attempt cap holds even under concurrent submissions.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts []domain.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{}
}

func (s *AttemptStore) Record(_ context.Context, attempt *domain.Attempt, maxAttempts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity := domain.Identity{ID: attempt.UserID, Name: attempt.Name}
	if s.countLocked(attempt.SessionID, identity) >= maxAttempts {
		return domain.ErrAttemptLimit
	}
	s.attempts = append(s.attempts, *attempt)
	return nil
}

func (s *AttemptStore) CountForIdentity(_ context.Context, sessionID string, identity domain.Identity) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked(sessionID, identity), nil
}

func (s *AttemptStore) BySession(_ context.Context, sessionID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Attempt, 0)
	for _, a := range s.attempts {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

// countLocked matches by authenticated user id when present, otherwise by
// display name.
func (s *AttemptStore) countLocked(sessionID string, identity domain.Identity) int {
	count := 0
	for _, a := range s.attempts {
		if a.SessionID != sessionID {
			continue
		}
		if identity.Anonymous() {
			if a.UserID == "" && a.Name == identity.Name {
				count++
			}
		} else if a.UserID == identity.ID {
			count++
		}
	}
	return count
}
