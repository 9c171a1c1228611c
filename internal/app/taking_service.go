package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quizcraft-service/internal/domain"
)

// TakingService is the taker side: the attempt-eligibility gate and the
// scoring engine.
type TakingService struct {
	sessions    SessionStore
	attempts    AttemptStore
	keys        AnswerKeyLoader
	maxAttempts int
	now         func() time.Time
}

func NewTakingService(sessions SessionStore, attempts AttemptStore, keys AnswerKeyLoader, maxAttempts int) *TakingService {
	return &TakingService{
		sessions:    sessions,
		attempts:    attempts,
		keys:        keys,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// NewTakingServiceWithClock is test-only for deterministic time-window checks.
func NewTakingServiceWithClock(sessions SessionStore, attempts AttemptStore, keys AnswerKeyLoader, maxAttempts int, now func() time.Time) *TakingService {
	s := NewTakingService(sessions, attempts, keys, maxAttempts)
	s.now = now
	return s
}

// CheckEligibility decides whether an identity may attempt the session
// right now, based purely on the attempt count. Time-window gating happens
// at submission; both predicates must pass independently.
func (s *TakingService) CheckEligibility(ctx context.Context, sessionID string, identity domain.Identity) (domain.Eligibility, error) {
	session, err := s.sessions.ByID(ctx, sessionID)
	if err != nil {
		return domain.Eligibility{}, err
	}
	if !session.Active {
		return domain.Eligibility{}, domain.ErrSessionNotFound
	}

	count, err := s.attempts.CountForIdentity(ctx, sessionID, identity)
	if err != nil {
		return domain.Eligibility{}, err
	}
	if count >= s.maxAttempts {
		return domain.Eligibility{Allowed: false, Message: "Maximum attempts exceeded"}, nil
	}
	return domain.Eligibility{Allowed: true, AttemptsMade: count, MaxAttempts: s.maxAttempts}, nil
}

// Submit evaluates a submission and appends the scored attempt to the
// ledger. Each call creates a new attempt; the per-identity cap is enforced
// by the ledger's conditional insert, not re-checked here.
func (s *TakingService) Submit(ctx context.Context, sessionID string, identity domain.Identity, answers map[string]domain.AnswerValue) (domain.Attempt, error) {
	session, err := s.sessions.ByID(ctx, sessionID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if !session.Active {
		return domain.Attempt{}, domain.ErrSessionInactive
	}

	// The answer key is read from the live quiz on every submission, so a
	// missing quiz is a data-integrity failure even though the snapshot
	// still exists.
	key, err := s.keys.AnswerKey(ctx, session.QuizID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if session.AnswerKey != nil {
		key = session.AnswerKey
	}

	now := s.now()
	if session.StartTime != nil && now.Before(*session.StartTime) {
		return domain.Attempt{}, domain.ErrSessionNotStarted
	}
	if session.EndTime != nil && now.After(*session.EndTime) {
		return domain.Attempt{}, domain.ErrSessionEnded
	}

	details, correctCount := evaluate(session.Questions, key, answers)

	attempt := domain.Attempt{
		ID:           uuid.NewString(),
		SessionID:    session.ID,
		QuizID:       session.QuizID,
		UserID:       identity.ID,
		Name:         identity.Name,
		Answers:      answers,
		Score:        correctCount,
		Total:        len(session.Questions),
		CorrectCount: correctCount,
		Details:      details,
		CreatedAt:    now,
	}
	if err := s.attempts.Record(ctx, &attempt, s.maxAttempts); err != nil {
		return domain.Attempt{}, err
	}
	return attempt, nil
}
