package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
	"quizcraft-service/internal/infra/postgres"
	pgmigrations "quizcraft-service/internal/infra/postgres/migrations"
	infraredis "quizcraft-service/internal/infra/redis"
)

func TestQuizLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openBun(t, ctx, pgURL)
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	quizzes := postgres.NewQuizStore(db)
	sessions := postgres.NewSessionStore(db)
	attempts := postgres.NewAttemptStore(db)
	keys := postgres.NewAnswerKeyLoader(pool)

	authoring := app.NewAuthoringService(quizzes)
	hosting := app.NewHostingService(quizzes, sessions, attempts)
	views := infraredis.NewTakeViews(redisClient, hosting, 5*time.Minute)
	hosting.SetViewInvalidator(views)
	taking := app.NewTakingService(sessions, attempts, keys, 3)

	alice := domain.Identity{ID: "u1", Name: "Alice"}

	title := "Geography"
	questions := []domain.Question{
		{
			Type:    domain.SingleChoice,
			Text:    "What is the capital of France?",
			Options: []string{"Paris", "London", "Berlin"},
			Answer:  domain.SingleAnswer("Paris"),
		},
		{
			Type:    domain.MultiChoice,
			Text:    "Pick the vowels",
			Options: []string{"A", "B", "E"},
			Answer:  domain.SetAnswer("A", "E"),
		},
	}
	quiz, err := authoring.Create(ctx, alice, app.QuizDraft{Title: &title, Questions: &questions})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	session, err := hosting.Host(ctx, quiz.ID, alice, app.HostOverrides{})
	if err != nil {
		t.Fatalf("host: %v", err)
	}

	// The partial unique index rejects a second active session and the
	// store surfaces the winner's id.
	_, err = hosting.Host(ctx, quiz.ID, alice, app.HostOverrides{})
	var conflict *domain.ActiveSessionError
	if !errors.As(err, &conflict) || conflict.SessionID != session.ID {
		t.Fatalf("expected conflict with %q, got %v", session.ID, err)
	}

	// Taker view comes through the Redis cache.
	view, err := views.GetView(ctx, session.ID)
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if len(view.Questions) != 2 {
		t.Fatalf("expected 2 questions in view, got %d", len(view.Questions))
	}

	carol := domain.Identity{Name: "Carol"}
	attempt, err := taking.Submit(ctx, session.ID, carol, map[string]domain.AnswerValue{
		quiz.Questions[0].ID: domain.SingleAnswer(" paris "),
		quiz.Questions[1].ID: domain.SetAnswer("E", "A"),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if attempt.CorrectCount != 2 || attempt.Total != 2 {
		t.Fatalf("expected perfect score, got %+v", attempt)
	}

	// Live answer key: an edit changes scoring for subsequent submissions.
	quiz.Questions[0].Answer = domain.SingleAnswer("London")
	if _, err := authoring.Update(ctx, quiz.ID, alice, app.QuizDraft{Questions: &quiz.Questions}); err != nil {
		t.Fatalf("update quiz: %v", err)
	}
	attempt, err = taking.Submit(ctx, session.ID, carol, map[string]domain.AnswerValue{
		quiz.Questions[0].ID: domain.SingleAnswer("Paris"),
	})
	if err != nil {
		t.Fatalf("submit after edit: %v", err)
	}
	if attempt.CorrectCount != 0 {
		t.Fatalf("expected edited key to mark Paris wrong, got %d", attempt.CorrectCount)
	}

	// Third attempt exhausts the cap; the fourth is rejected by the
	// conditional insert.
	if _, err := taking.Submit(ctx, session.ID, carol, map[string]domain.AnswerValue{}); err != nil {
		t.Fatalf("third submit: %v", err)
	}
	if _, err := taking.Submit(ctx, session.ID, carol, map[string]domain.AnswerValue{}); !errors.Is(err, domain.ErrAttemptLimit) {
		t.Fatalf("expected attempt limit, got %v", err)
	}
	elig, err := taking.CheckEligibility(ctx, session.ID, carol)
	if err != nil || elig.Allowed {
		t.Fatalf("expected Carol blocked, got %+v err=%v", elig, err)
	}

	// Host reads the board, then stops the session; the cached view is
	// dropped with it.
	results, err := hosting.Results(ctx, session.ID, alice)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 attempts on the board, got %d", len(results))
	}
	if err := hosting.Stop(ctx, session.ID, alice); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := views.GetView(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected view gone after stop, got %v", err)
	}

	// A stopped quiz can be hosted again.
	if _, err := hosting.Host(ctx, quiz.ID, alice, app.HostOverrides{}); err != nil {
		t.Fatalf("re-host: %v", err)
	}
}

func openBun(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
