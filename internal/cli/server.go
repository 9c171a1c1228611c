package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/config"
	"quizcraft-service/internal/infra/gemini"
	"quizcraft-service/internal/infra/memory"
	"quizcraft-service/internal/infra/postgres"
	redisviews "quizcraft-service/internal/infra/redis"
	transport "quizcraft-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var (
		quizzes  app.QuizStore
		sessions app.SessionStore
		attempts app.AttemptStore
		keys     app.AnswerKeyLoader
	)
	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		quizzes = postgres.NewQuizStore(db)
		sessions = postgres.NewSessionStore(db)
		attempts = postgres.NewAttemptStore(db)
		keys = postgres.NewAnswerKeyLoader(pool)
	} else {
		log.Printf("postgres not configured, using in-memory stores")
		quizStore := memory.NewQuizStore()
		quizzes = quizStore
		sessions = memory.NewSessionStore()
		attempts = memory.NewAttemptStore()
		keys = quizStore
	}

	authoring := app.NewAuthoringService(quizzes)
	hosting := app.NewHostingService(quizzes, sessions, attempts)
	hosting.FreezeAnswerKey(cfg.Quiz.FrozenAnswerKey)
	taking := app.NewTakingService(sessions, attempts, keys, cfg.MaxAttempts())

	viewTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	var views app.TakeViewSource
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache := redisviews.NewTakeViews(redisClient, hosting, viewTTL)
		hosting.SetViewInvalidator(cache)
		views = cache
	} else {
		cache := memory.NewTakeViews(hosting, viewTTL)
		hosting.SetViewInvalidator(cache)
		views = cache
	}

	var generator *app.GenerationService
	aiTimeout := config.TTLDuration(cfg.AI.Timeout, 30*time.Second)
	llm := gemini.NewClient(cfg.AIKey(), cfg.AI.BaseURL, cfg.AI.Model, aiTimeout)
	if llm.Enabled() {
		generator = app.NewGenerationService(llm)
	} else {
		log.Printf("gemini api key not configured, generation disabled")
	}

	router := transport.NewRouter(&transport.Container{
		Auth:      transport.NewAuth(cfg.JWTSecret()),
		Authoring: authoring,
		Hosting:   hosting,
		Taking:    taking,
		Generator: generator,
		Views:     views,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
