package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"quizcraft-service/internal/domain"
)

// HostOverrides carries the optional host-time fields. Empty/nil values
// fall back to the quiz document.
type HostOverrides struct {
	Title       string
	Description string
	TimeLimit   *int
	StartTime   *time.Time
	EndTime     *time.Time
}

// HostingService converts quizzes into immutable hosted sessions and
// manages their lifecycle.
type HostingService struct {
	quizzes   QuizStore
	sessions  SessionStore
	attempts  AttemptStore
	views     ViewInvalidator
	frozenKey bool
	now       func() time.Time
}

func NewHostingService(quizzes QuizStore, sessions SessionStore, attempts AttemptStore) *HostingService {
	return &HostingService{
		quizzes:  quizzes,
		sessions: sessions,
		attempts: attempts,
		now:      time.Now,
	}
}

// NewHostingServiceWithClock is test-only for deterministic timestamps.
func NewHostingServiceWithClock(quizzes QuizStore, sessions SessionStore, attempts AttemptStore, now func() time.Time) *HostingService {
	s := NewHostingService(quizzes, sessions, attempts)
	s.now = now
	return s
}

// SetViewInvalidator wires the taker-view cache so Stop can drop stale entries.
func (s *HostingService) SetViewInvalidator(v ViewInvalidator) { s.views = v }

// FreezeAnswerKey makes Host capture the current answer key into the
// session row, pinning scoring to host-time answers instead of live reads.
func (s *HostingService) FreezeAnswerKey(frozen bool) { s.frozenKey = frozen }

// Host snapshots the quiz into a new active session. The snapshot copies
// id/text/type/options/multiple only; answers and explanations stay behind
// so takers can never inspect them client-side.
func (s *HostingService) Host(ctx context.Context, quizID string, host domain.Identity, overrides HostOverrides) (domain.Session, error) {
	quiz, err := s.quizzes.ByID(ctx, quizID)
	if err != nil {
		return domain.Session{}, err
	}
	if quiz.OwnerID != host.ID {
		return domain.Session{}, domain.ErrForbidden
	}

	if existing, err := s.sessions.ActiveByQuiz(ctx, quizID); err == nil {
		return domain.Session{}, &domain.ActiveSessionError{SessionID: existing.ID}
	} else if !errors.Is(err, domain.ErrSessionNotFound) {
		return domain.Session{}, err
	}

	session := domain.Session{
		ID:          uuid.NewString(),
		QuizID:      quizID,
		HostID:      host.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   snapshotQuestions(quiz.Questions),
		TimeLimit:   overrides.TimeLimit,
		StartTime:   overrides.StartTime,
		EndTime:     overrides.EndTime,
		Active:      true,
		CreatedAt:   s.now(),
	}
	if overrides.Title != "" {
		session.Title = overrides.Title
	}
	if overrides.Description != "" {
		session.Description = overrides.Description
	}
	if s.frozenKey {
		session.AnswerKey = answerKeyOf(quiz)
	}

	// The store enforces one-active-per-quiz with a uniqueness constraint;
	// the check above only exists to surface the existing session id early.
	if err := s.sessions.Create(ctx, &session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// GetActive returns the quiz's active session for its owner.
func (s *HostingService) GetActive(ctx context.Context, quizID string, requester domain.Identity) (domain.Session, error) {
	quiz, err := s.quizzes.ByID(ctx, quizID)
	if err != nil {
		return domain.Session{}, err
	}
	if quiz.OwnerID != requester.ID {
		return domain.Session{}, domain.ErrForbidden
	}
	return s.sessions.ActiveByQuiz(ctx, quizID)
}

// Stop deactivates a session. Stopping an already-inactive session is a
// silent no-op; sessions are never physically deleted.
func (s *HostingService) Stop(ctx context.Context, sessionID string, requester domain.Identity) error {
	session, err := s.sessions.ByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.HostID != requester.ID {
		return domain.ErrForbidden
	}
	if session.Active {
		if err := s.sessions.SetActive(ctx, sessionID, false); err != nil {
			return err
		}
	}
	if s.views != nil {
		s.views.Forget(ctx, sessionID)
	}
	return nil
}

// LoadTakeView builds the public taker view of an active session. Inactive
// or missing sessions are indistinguishable to takers.
func (s *HostingService) LoadTakeView(ctx context.Context, sessionID string) (domain.TakeView, error) {
	session, err := s.sessions.ByID(ctx, sessionID)
	if err != nil {
		return domain.TakeView{}, err
	}
	if !session.Active {
		return domain.TakeView{}, domain.ErrSessionNotFound
	}
	return domain.TakeView{
		SessionID: session.ID,
		Title:     session.Title,
		Questions: session.Questions,
		TimeLimit: session.TimeLimit,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
	}, nil
}

// GetView lets the service satisfy TakeViewSource when no cache is wired.
func (s *HostingService) GetView(ctx context.Context, sessionID string) (domain.TakeView, error) {
	return s.LoadTakeView(ctx, sessionID)
}

// Results projects the session's ledger for its host: percentage score per
// attempt, best first, earlier submissions winning ties.
func (s *HostingService) Results(ctx context.Context, sessionID string, requester domain.Identity) ([]domain.SessionResult, error) {
	session, err := s.sessions.ByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != requester.ID {
		return nil, domain.ErrForbidden
	}

	attempts, err := s.attempts.BySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SessionResult, 0, len(attempts))
	for _, a := range attempts {
		pct := 0.0
		if a.Total > 0 {
			pct = float64(a.CorrectCount) / float64(a.Total) * 100
		}
		results = append(results, domain.SessionResult{
			AttemptID:   a.ID,
			Name:        a.Name,
			Score:       a.Score,
			Total:       a.Total,
			Percentage:  pct,
			SubmittedAt: a.CreatedAt,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Percentage != results[j].Percentage {
			return results[i].Percentage > results[j].Percentage
		}
		if !results[i].SubmittedAt.Equal(results[j].SubmittedAt) {
			return results[i].SubmittedAt.Before(results[j].SubmittedAt)
		}
		return results[i].Name < results[j].Name
	})
	return results, nil
}

func snapshotQuestions(questions []domain.Question) []domain.SnapshotQuestion {
	snapshot := make([]domain.SnapshotQuestion, 0, len(questions))
	for _, q := range questions {
		options := q.Options
		if options == nil {
			options = []string{}
		}
		snapshot = append(snapshot, domain.SnapshotQuestion{
			ID:       q.ID,
			Text:     q.Text,
			Type:     q.Type,
			Options:  options,
			Multiple: q.Type.Multi(),
		})
	}
	return snapshot
}

func answerKeyOf(quiz domain.Quiz) map[string]domain.AnswerValue {
	key := make(map[string]domain.AnswerValue, len(quiz.Questions))
	for _, q := range quiz.Questions {
		key[q.ID] = q.Answer
	}
	return key
}
