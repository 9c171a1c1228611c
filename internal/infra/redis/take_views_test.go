package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizcraft-service/internal/domain"
)

type countingLoader struct {
	calls int
	err   error
}

func (l *countingLoader) LoadTakeView(_ context.Context, sessionID string) (domain.TakeView, error) {
	l.calls++
	if l.err != nil {
		return domain.TakeView{}, l.err
	}
	return domain.TakeView{
		SessionID: sessionID,
		Title:     "Geography",
		Questions: []domain.SnapshotQuestion{
			{ID: "q1", Text: "What is the capital of France?", Type: domain.SingleChoice, Options: []string{"Paris", "London"}},
		},
	}, nil
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func TestTakeViewsCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{}
	cache := NewTakeViews(newClient(mr), loader, time.Minute)

	view, err := cache.GetView(context.Background(), "s1")
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if view.SessionID != "s1" || len(view.Questions) != 1 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("session:view:s1") {
		t.Fatalf("expected cached key in redis")
	}

	// Second call should hit cache, loader not incremented.
	_, _ = cache.GetView(context.Background(), "s1")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestTakeViewsForgetDeletesKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{}
	cache := NewTakeViews(newClient(mr), loader, time.Minute)

	if _, err := cache.GetView(context.Background(), "s1"); err != nil {
		t.Fatalf("get view: %v", err)
	}
	cache.Forget(context.Background(), "s1")
	if mr.Exists("session:view:s1") {
		t.Fatalf("expected key removed after forget")
	}

	if _, err := cache.GetView(context.Background(), "s1"); err != nil {
		t.Fatalf("get view after forget: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after forget, got %d calls", loader.calls)
	}
}

func TestTakeViewsDoesNotCacheErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{err: domain.ErrSessionNotFound}
	cache := NewTakeViews(newClient(mr), loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.GetView(context.Background(), "s1"); err != domain.ErrSessionNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected errors to pass through uncached, got %d calls", loader.calls)
	}
	if mr.Exists("session:view:s1") {
		t.Fatalf("error result must not be cached")
	}
}
