package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"quizcraft-service/internal/domain"
)

const pgUniqueViolation = "23505"

// QuizStore persists authoring documents in the quizzes table.
type QuizStore struct {
	db *bun.DB
}

func NewQuizStore(db *bun.DB) *QuizStore {
	return &QuizStore{db: db}
}

func (s *QuizStore) ByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error) {
	var rows []quizRow
	err := s.db.NewSelect().Model(&rows).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]domain.Quiz, 0, len(rows))
	for i := range rows {
		quiz, err := rowToQuiz(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, quiz)
	}
	return out, nil
}

func (s *QuizStore) ByID(ctx context.Context, id string) (domain.Quiz, error) {
	row := new(quizRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return rowToQuiz(row)
}

func (s *QuizStore) Create(ctx context.Context, quiz *domain.Quiz) error {
	row, err := quizToRow(quiz)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) Update(ctx context.Context, quiz *domain.Quiz) error {
	row, err := quizToRow(quiz)
	if err != nil {
		return err
	}
	res, err := s.db.NewUpdate().Model(row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*quizRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// SessionStore persists hosted sessions. The partial unique index
// sessions_one_active_per_quiz closes the concurrent-host race; a losing
// insert maps back to ActiveSessionError with the winner's id.
type SessionStore struct {
	db *bun.DB
}

func NewSessionStore(db *bun.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	row, err := sessionToRow(session)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation {
			if existing, lookupErr := s.ActiveByQuiz(ctx, session.QuizID); lookupErr == nil {
				return &domain.ActiveSessionError{SessionID: existing.ID}
			}
			return &domain.ActiveSessionError{}
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SessionStore) ByID(ctx context.Context, id string) (domain.Session, error) {
	row := new(sessionRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	return rowToSession(row)
}

func (s *SessionStore) ActiveByQuiz(ctx context.Context, quizID string) (domain.Session, error) {
	row := new(sessionRow)
	err := s.db.NewSelect().Model(row).
		Where("quiz_id = ?", quizID).
		Where("active").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load active session: %w", err)
	}
	return rowToSession(row)
}

func (s *SessionStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.NewUpdate().Model((*sessionRow)(nil)).
		Set("active = ?", active).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// AttemptStore is the append-only ledger over the attempts table.
type AttemptStore struct {
	db *bun.DB
}

func NewAttemptStore(db *bun.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

// Record inserts the attempt only while the identity is under the cap. The
// guard runs inside the INSERT statement, so two concurrent submissions
// cannot both slip past the count.
func (s *AttemptStore) Record(ctx context.Context, attempt *domain.Attempt, maxAttempts int) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	details, err := json.Marshal(attempt.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (id, session_id, quiz_id, user_id, name, answers, score, total, correct_count, details, created_at)
		SELECT ?, ?, ?, ?, ?, ?::jsonb, ?, ?, ?, ?::jsonb, ?
		WHERE (
			SELECT count(*) FROM attempts
			WHERE session_id = ?
			  AND ((?::text <> '' AND user_id = ?) OR (?::text = '' AND user_id = '' AND name = ?))
		) < ?`,
		attempt.ID, attempt.SessionID, attempt.QuizID, attempt.UserID, attempt.Name,
		string(answers), attempt.Score, attempt.Total, attempt.CorrectCount, string(details), attempt.CreatedAt,
		attempt.SessionID,
		attempt.UserID, attempt.UserID, attempt.UserID, attempt.Name,
		maxAttempts,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAttemptLimit
	}
	return nil
}

func (s *AttemptStore) CountForIdentity(ctx context.Context, sessionID string, identity domain.Identity) (int, error) {
	q := s.db.NewSelect().Model((*attemptRow)(nil)).Where("session_id = ?", sessionID)
	if identity.Anonymous() {
		q = q.Where("user_id = ''").Where("name = ?", identity.Name)
	} else {
		q = q.Where("user_id = ?", identity.ID)
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return count, nil
}

func (s *AttemptStore) BySession(ctx context.Context, sessionID string) ([]domain.Attempt, error) {
	var rows []attemptRow
	err := s.db.NewSelect().Model(&rows).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]domain.Attempt, 0, len(rows))
	for i := range rows {
		attempt, err := rowToAttempt(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, attempt)
	}
	return out, nil
}
