package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"grid-quiz-service/internal/app"
	"grid-quiz-service/internal/config"
	"grid-quiz-service/internal/infra/memory"
	"grid-quiz-service/internal/infra/postgres"
	redisinfra "grid-quiz-service/internal/infra/redis"
	transport "grid-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz grid server",
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Without Postgres everything lives in process memory; quizzes are
	// then lost on restart, which is fine for local development.
	var repo app.GridRepository = memory.NewQuizRepository()
	if pool != nil {
		repo = postgres.NewQuizRepository(pool)
	}

	gridTTL := config.TTLDuration(cfg.Grid.TTL, 10*time.Minute)
	var cache app.GridCache
	if redisClient != nil {
		cache = redisinfra.NewGridCache(redisClient, repo, gridTTL)
	} else {
		cache = memory.NewGridCache(repo, gridTTL)
	}

	sessionTTL := config.TTLDuration(cfg.Session.TTL, 24*time.Hour)
	var sessions app.SessionStore
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	quizzes := app.NewQuizService(repo, cache)
	play := app.NewPlayService(cache, sessions)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(quizzes, play),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: play sessions hold their websocket open.
	}

	go func() {
		log.Printf("starting quiz grid service on :%s", finalPort)
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
