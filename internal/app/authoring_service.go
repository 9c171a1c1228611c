package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quizcraft-service/internal/domain"
)

// AuthoringService contains the quiz CRUD use cases. Every read-for-edit
// and mutation requires the requester to own the quiz.
type AuthoringService struct {
	quizzes QuizStore
	now     func() time.Time
}

func NewAuthoringService(quizzes QuizStore) *AuthoringService {
	return &AuthoringService{quizzes: quizzes, now: time.Now}
}

// NewAuthoringServiceWithClock is test-only for deterministic timestamps.
func NewAuthoringServiceWithClock(quizzes QuizStore, now func() time.Time) *AuthoringService {
	return &AuthoringService{quizzes: quizzes, now: now}
}

// List returns the owner's quizzes, newest first.
func (s *AuthoringService) List(ctx context.Context, owner domain.Identity) ([]domain.Quiz, error) {
	return s.quizzes.ByOwner(ctx, owner.ID)
}

// Get returns the full quiz, answer keys included, for its owner.
func (s *AuthoringService) Get(ctx context.Context, id string, requester domain.Identity) (domain.Quiz, error) {
	quiz, err := s.quizzes.ByID(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.OwnerID != requester.ID {
		return domain.Quiz{}, domain.ErrForbidden
	}
	return quiz, nil
}

// QuizDraft is the authoring input for create and update.
type QuizDraft struct {
	Title       *string
	Description *string
	Questions   *[]domain.Question
}

// Create persists a new quiz for the owner. Question ids are assigned when
// blank so they stay stable across later edits and session snapshots.
func (s *AuthoringService) Create(ctx context.Context, owner domain.Identity, draft QuizDraft) (domain.Quiz, error) {
	if draft.Title == nil || *draft.Title == "" {
		return domain.Quiz{}, domain.Validationf("title is required")
	}
	var questions []domain.Question
	if draft.Questions != nil {
		questions = *draft.Questions
	}
	if err := prepareQuestions(questions); err != nil {
		return domain.Quiz{}, err
	}

	now := s.now()
	quiz := domain.Quiz{
		ID:        uuid.NewString(),
		OwnerID:   owner.ID,
		Title:     *draft.Title,
		Questions: questions,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if draft.Description != nil {
		quiz.Description = *draft.Description
	}
	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Update applies a partial edit to an owned quiz.
func (s *AuthoringService) Update(ctx context.Context, id string, requester domain.Identity, draft QuizDraft) (domain.Quiz, error) {
	quiz, err := s.quizzes.ByID(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.OwnerID != requester.ID {
		return domain.Quiz{}, domain.ErrForbidden
	}

	if draft.Title != nil {
		quiz.Title = *draft.Title
	}
	if draft.Description != nil {
		quiz.Description = *draft.Description
	}
	if draft.Questions != nil {
		if err := prepareQuestions(*draft.Questions); err != nil {
			return domain.Quiz{}, err
		}
		quiz.Questions = *draft.Questions
	}
	quiz.UpdatedAt = s.now()

	if err := s.quizzes.Update(ctx, &quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Delete removes an owned quiz. Hosted sessions derived from it are
// retained; scoring against them will fail NotFound once the quiz is gone.
func (s *AuthoringService) Delete(ctx context.Context, id string, requester domain.Identity) error {
	quiz, err := s.quizzes.ByID(ctx, id)
	if err != nil {
		return err
	}
	if quiz.OwnerID != requester.ID {
		return domain.ErrForbidden
	}
	return s.quizzes.Delete(ctx, id)
}

// prepareQuestions assigns missing ids and validates each question in place.
func prepareQuestions(questions []domain.Question) error {
	for i := range questions {
		q := &questions[i]
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if !q.Type.Valid() {
			return domain.Validationf("question %q: unknown type %q", q.Text, q.Type)
		}
		if q.Text == "" {
			return domain.Validationf("question text is required")
		}
		if q.Type.Choice() {
			if len(q.Options) == 0 {
				return domain.Validationf("question %q: options are required for choice types", q.Text)
			}
			options := make(map[string]struct{}, len(q.Options))
			for _, opt := range q.Options {
				options[opt] = struct{}{}
			}
			for _, v := range q.Answer.Values() {
				if _, ok := options[v]; !ok {
					return domain.Validationf("question %q: answer %q is not among the options", q.Text, v)
				}
			}
		}
	}
	return nil
}
