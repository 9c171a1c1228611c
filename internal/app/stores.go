package app

import (
	"context"

	"quizcraft-service/internal/domain"
)

// QuizStore persists authoring documents (in-memory, Postgres, etc).
type QuizStore interface {
	ByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error)
	ByID(ctx context.Context, id string) (domain.Quiz, error)
	Create(ctx context.Context, quiz *domain.Quiz) error
	Update(ctx context.Context, quiz *domain.Quiz) error
	Delete(ctx context.Context, id string) error
}

// SessionStore persists hosted sessions. Create must enforce the
// one-active-session-per-quiz invariant at the storage layer and return
// *domain.ActiveSessionError when it is violated.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) error
	ByID(ctx context.Context, id string) (domain.Session, error)
	ActiveByQuiz(ctx context.Context, quizID string) (domain.Session, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// AttemptStore is the append-only attempt ledger. Record performs a
// conditional insert: when the identity already holds maxAttempts attempts
// for the session it fails with domain.ErrAttemptLimit without writing.
type AttemptStore interface {
	Record(ctx context.Context, attempt *domain.Attempt, maxAttempts int) error
	CountForIdentity(ctx context.Context, sessionID string, identity domain.Identity) (int, error)
	BySession(ctx context.Context, sessionID string) ([]domain.Attempt, error)
}

// AnswerKeyLoader reads the current answer key of a quiz. Scoring reads
// through this on every submission so that quiz edits are always visible.
type AnswerKeyLoader interface {
	AnswerKey(ctx context.Context, quizID string) (map[string]domain.AnswerValue, error)
}

// TakeViewSource serves taker-facing session views, possibly through a cache.
type TakeViewSource interface {
	GetView(ctx context.Context, sessionID string) (domain.TakeView, error)
}

// ViewInvalidator drops a cached taker view, e.g. when a session stops.
type ViewInvalidator interface {
	Forget(ctx context.Context, sessionID string)
}
