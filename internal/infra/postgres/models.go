package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quizcraft-service/internal/domain"
)

// Rows keep document-shaped fields (questions, answers, details) as raw
// JSONB, matching how the quiz content is consumed: whole-document reads
// keyed by id.

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID          string          `bun:"id,pk"`
	OwnerID     string          `bun:"owner_id,notnull"`
	Title       string          `bun:"title,notnull"`
	Description string          `bun:"description,notnull,default:''"`
	Questions   json.RawMessage `bun:"questions,type:jsonb"`
	CreatedAt   time.Time       `bun:"created_at,notnull"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull"`
}

type sessionRow struct {
	bun.BaseModel `bun:"table:sessions"`

	ID          string          `bun:"id,pk"`
	QuizID      string          `bun:"quiz_id,notnull"`
	HostID      string          `bun:"host_id,notnull"`
	Title       string          `bun:"title,notnull"`
	Description string          `bun:"description,notnull,default:''"`
	Questions   json.RawMessage `bun:"questions,type:jsonb"`
	AnswerKey   json.RawMessage `bun:"answer_key,type:jsonb,nullzero"`
	TimeLimit   *int            `bun:"time_limit"`
	StartTime   *time.Time      `bun:"start_time"`
	EndTime     *time.Time      `bun:"end_time"`
	Active      bool            `bun:"active,notnull"`
	CreatedAt   time.Time       `bun:"created_at,notnull"`
}

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts"`

	ID           string          `bun:"id,pk"`
	SessionID    string          `bun:"session_id,notnull"`
	QuizID       string          `bun:"quiz_id,notnull"`
	UserID       string          `bun:"user_id,notnull,default:''"`
	Name         string          `bun:"name,notnull"`
	Answers      json.RawMessage `bun:"answers,type:jsonb"`
	Score        int             `bun:"score,notnull"`
	Total        int             `bun:"total,notnull"`
	CorrectCount int             `bun:"correct_count,notnull"`
	Details      json.RawMessage `bun:"details,type:jsonb"`
	CreatedAt    time.Time       `bun:"created_at,notnull"`
}

func quizToRow(quiz *domain.Quiz) (*quizRow, error) {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return nil, fmt.Errorf("marshal questions: %w", err)
	}
	return &quizRow{
		ID:          quiz.ID,
		OwnerID:     quiz.OwnerID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   questions,
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
	}, nil
}

func rowToQuiz(row *quizRow) (domain.Quiz, error) {
	quiz := domain.Quiz{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Title:       row.Title,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.Questions) > 0 {
		if err := json.Unmarshal(row.Questions, &quiz.Questions); err != nil {
			return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	return quiz, nil
}

func sessionToRow(session *domain.Session) (*sessionRow, error) {
	questions, err := json.Marshal(session.Questions)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	row := &sessionRow{
		ID:          session.ID,
		QuizID:      session.QuizID,
		HostID:      session.HostID,
		Title:       session.Title,
		Description: session.Description,
		Questions:   questions,
		TimeLimit:   session.TimeLimit,
		StartTime:   session.StartTime,
		EndTime:     session.EndTime,
		Active:      session.Active,
		CreatedAt:   session.CreatedAt,
	}
	if session.AnswerKey != nil {
		key, err := json.Marshal(session.AnswerKey)
		if err != nil {
			return nil, fmt.Errorf("marshal answer key: %w", err)
		}
		row.AnswerKey = key
	}
	return row, nil
}

func rowToSession(row *sessionRow) (domain.Session, error) {
	session := domain.Session{
		ID:          row.ID,
		QuizID:      row.QuizID,
		HostID:      row.HostID,
		Title:       row.Title,
		Description: row.Description,
		TimeLimit:   row.TimeLimit,
		StartTime:   row.StartTime,
		EndTime:     row.EndTime,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
	}
	if len(row.Questions) > 0 {
		if err := json.Unmarshal(row.Questions, &session.Questions); err != nil {
			return domain.Session{}, fmt.Errorf("unmarshal snapshot: %w", err)
		}
	}
	if len(row.AnswerKey) > 0 {
		if err := json.Unmarshal(row.AnswerKey, &session.AnswerKey); err != nil {
			return domain.Session{}, fmt.Errorf("unmarshal answer key: %w", err)
		}
	}
	return session, nil
}

func rowToAttempt(row *attemptRow) (domain.Attempt, error) {
	attempt := domain.Attempt{
		ID:           row.ID,
		SessionID:    row.SessionID,
		QuizID:       row.QuizID,
		UserID:       row.UserID,
		Name:         row.Name,
		Score:        row.Score,
		Total:        row.Total,
		CorrectCount: row.CorrectCount,
		CreatedAt:    row.CreatedAt,
	}
	if len(row.Answers) > 0 {
		if err := json.Unmarshal(row.Answers, &attempt.Answers); err != nil {
			return domain.Attempt{}, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	if len(row.Details) > 0 {
		if err := json.Unmarshal(row.Details, &attempt.Details); err != nil {
			return domain.Attempt{}, fmt.Errorf("unmarshal details: %w", err)
		}
	}
	return attempt, nil
}
