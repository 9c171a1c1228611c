package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"quizcraft-service/internal/domain"
)

func TestSessionStoreOneActivePerQuiz(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	first := domain.Session{ID: "s1", QuizID: "q1", Active: true}
	if err := store.Create(ctx, &first); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	second := domain.Session{ID: "s2", QuizID: "q1", Active: true}
	err := store.Create(ctx, &second)
	var conflict *domain.ActiveSessionError
	if !errors.As(err, &conflict) || conflict.SessionID != "s1" {
		t.Fatalf("expected conflict with s1, got %v", err)
	}

	// Other quizzes and inactive sessions are unaffected.
	if err := store.Create(ctx, &domain.Session{ID: "s3", QuizID: "q2", Active: true}); err != nil {
		t.Fatalf("create for other quiz failed: %v", err)
	}
	if err := store.SetActive(ctx, "s1", false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if err := store.Create(ctx, &second); err != nil {
		t.Fatalf("create after deactivation failed: %v", err)
	}
}

func TestSessionStoreActiveByQuiz(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if err := store.Create(ctx, &domain.Session{ID: "s1", QuizID: "q1", Active: true}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	got, err := store.ActiveByQuiz(ctx, "q1")
	if err != nil || got.ID != "s1" {
		t.Fatalf("expected s1, got %+v err=%v", got, err)
	}
	if err := store.SetActive(ctx, "s1", false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if _, err := store.ActiveByQuiz(ctx, "q1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAttemptStoreEnforcesCapUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	const workers = 20
	const maxAttempts = 3

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			attempt := domain.Attempt{ID: "a", SessionID: "s1", Name: "Carol"}
			errs <- store.Record(ctx, &attempt, maxAttempts)
		}(i)
	}
	wg.Wait()
	close(errs)

	recorded := 0
	for err := range errs {
		if err == nil {
			recorded++
		} else if !errors.Is(err, domain.ErrAttemptLimit) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if recorded != maxAttempts {
		t.Fatalf("expected exactly %d recorded attempts, got %d", maxAttempts, recorded)
	}
}

func TestAttemptStoreCountsByIdentity(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	seed := []domain.Attempt{
		{ID: "a1", SessionID: "s1", UserID: "u1", Name: "Carol"},
		{ID: "a2", SessionID: "s1", Name: "Carol"},
		{ID: "a3", SessionID: "s1", Name: "Carol"},
		{ID: "a4", SessionID: "s2", Name: "Carol"},
	}
	for i := range seed {
		if err := store.Record(ctx, &seed[i], 10); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	// Authenticated identity matches user id only, never the display name.
	count, err := store.CountForIdentity(ctx, "s1", domain.Identity{ID: "u1", Name: "Carol"})
	if err != nil || count != 1 {
		t.Fatalf("expected 1 for u1, got %d err=%v", count, err)
	}

	// Anonymous identity matches anonymous attempts with the same name,
	// scoped to the session.
	count, err = store.CountForIdentity(ctx, "s1", domain.Identity{Name: "Carol"})
	if err != nil || count != 2 {
		t.Fatalf("expected 2 for anonymous Carol, got %d err=%v", count, err)
	}
}

func TestQuizStoreAnswerKeyTracksEdits(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	quiz := domain.Quiz{
		ID:      "q1",
		OwnerID: "u1",
		Title:   "t",
		Questions: []domain.Question{
			{ID: "x", Type: domain.ShortAnswer, Text: "?", Answer: domain.SingleAnswer("before")},
		},
	}
	if err := store.Create(ctx, &quiz); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	key, err := store.AnswerKey(ctx, "q1")
	if err != nil || key["x"].Single != "before" {
		t.Fatalf("expected key before, got %+v err=%v", key, err)
	}

	quiz.Questions = []domain.Question{
		{ID: "x", Type: domain.ShortAnswer, Text: "?", Answer: domain.SingleAnswer("after")},
	}
	if err := store.Update(ctx, &quiz); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	key, err = store.AnswerKey(ctx, "q1")
	if err != nil || key["x"].Single != "after" {
		t.Fatalf("expected key after, got %+v err=%v", key, err)
	}

	if _, err := store.AnswerKey(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
