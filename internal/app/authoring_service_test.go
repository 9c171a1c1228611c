package app_test

import (
	"context"
	"errors"
	"testing"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
	"quizcraft-service/internal/infra/memory"
)

func strptr(s string) *string { return &s }

func TestCreateQuizAssignsIDs(t *testing.T) {
	ctx := context.Background()
	svc := app.NewAuthoringService(memory.NewQuizStore())

	questions := []domain.Question{
		{
			Type:    domain.SingleChoice,
			Text:    "Pick one",
			Options: []string{"a", "b"},
			Answer:  domain.SingleAnswer("a"),
		},
	}
	quiz, err := svc.Create(ctx, alice, app.QuizDraft{
		Title:     strptr("Basics"),
		Questions: &questions,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if quiz.ID == "" || quiz.Questions[0].ID == "" {
		t.Fatalf("expected generated ids, got %+v", quiz)
	}
	if quiz.OwnerID != alice.ID {
		t.Fatalf("expected owner %q, got %q", alice.ID, quiz.OwnerID)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	ctx := context.Background()
	svc := app.NewAuthoringService(memory.NewQuizStore())

	var verr *domain.ValidationError

	if _, err := svc.Create(ctx, alice, app.QuizDraft{}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for missing title, got %v", err)
	}

	bad := [][]domain.Question{
		{{Type: "essay", Text: "?"}},
		{{Type: domain.SingleChoice, Text: ""}},
		{{Type: domain.SingleChoice, Text: "no options", Answer: domain.SingleAnswer("a")}},
		{{Type: domain.SingleChoice, Text: "?", Options: []string{"a", "b"}, Answer: domain.SingleAnswer("c")}},
		{{Type: domain.MultiChoice, Text: "?", Options: []string{"a", "b"}, Answer: domain.SetAnswer("a", "z")}},
	}
	for i, questions := range bad {
		qs := questions
		_, err := svc.Create(ctx, alice, app.QuizDraft{Title: strptr("t"), Questions: &qs})
		if !errors.As(err, &verr) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestUpdateQuizIsPartial(t *testing.T) {
	ctx := context.Background()
	svc := app.NewAuthoringService(memory.NewQuizStore())

	questions := []domain.Question{
		{Type: domain.ShortAnswer, Text: "2+2?", Answer: domain.SingleAnswer("4")},
	}
	quiz, err := svc.Create(ctx, alice, app.QuizDraft{
		Title:       strptr("Math"),
		Description: strptr("numbers"),
		Questions:   &questions,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(ctx, quiz.ID, alice, app.QuizDraft{Title: strptr("Math II")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "Math II" {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}
	if updated.Description != "numbers" || len(updated.Questions) != 1 {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestAuthoringOwnershipChecks(t *testing.T) {
	ctx := context.Background()
	svc := app.NewAuthoringService(memory.NewQuizStore())

	quiz, err := svc.Create(ctx, alice, app.QuizDraft{Title: strptr("Mine")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Get(ctx, quiz.ID, bob); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden get, got %v", err)
	}
	if _, err := svc.Update(ctx, quiz.ID, bob, app.QuizDraft{Title: strptr("Stolen")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden update, got %v", err)
	}
	if err := svc.Delete(ctx, quiz.ID, bob); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
	if _, err := svc.Get(ctx, "missing", alice); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListReturnsOwnQuizzesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore()
	svc := app.NewAuthoringService(store)

	for _, title := range []string{"first", "second"} {
		if _, err := svc.Create(ctx, alice, app.QuizDraft{Title: strptr(title)}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if _, err := svc.Create(ctx, bob, app.QuizDraft{Title: strptr("other")}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	quizzes, err := svc.List(ctx, alice)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(quizzes) != 2 {
		t.Fatalf("expected 2 quizzes for Alice, got %d", len(quizzes))
	}
	for _, q := range quizzes {
		if q.OwnerID != alice.ID {
			t.Fatalf("listed someone else's quiz: %+v", q)
		}
	}
}

func TestDeleteQuizKeepsSessions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := app.NewAuthoringService(env.quizzes)

	session := hostSession(t, env, app.HostOverrides{})

	if err := svc.Delete(ctx, env.quiz.ID, alice); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := env.sessions.ByID(ctx, session.ID); err != nil {
		t.Fatalf("session should survive quiz deletion, got %v", err)
	}
}
