package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"footy-quiz-service/internal/app"
	"footy-quiz-service/internal/config"
	"footy-quiz-service/internal/domain"
	"footy-quiz-service/internal/infra/memory"
	pgstore "footy-quiz-service/internal/infra/postgres"
	redisstore "footy-quiz-service/internal/infra/redis"
	"footy-quiz-service/internal/token"
	transport "footy-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var store app.QuizStore
	var loader memory.QuizLoader
	if pool != nil {
		pg := pgstore.NewQuizStore(pool)
		store, loader = pg, pg
	} else {
		mem := memory.NewQuizStoreWith(sampleQuiz())
		store, loader = mem, mem
		log.Warn("postgres not configured, using in-memory quiz store with sample data")
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var quizzes app.QuizRepository
	var invalidator app.QuizInvalidator
	var profiles app.ProfileRepository
	var leaderboard app.LeaderboardReader
	if redisClient != nil {
		cache := redisstore.NewQuizCache(redisClient, loader, cfg.App.ID, quizTTL)
		profileStore := redisstore.NewProfileStore(redisClient, cfg.App.ID)
		quizzes, invalidator = cache, cache
		profiles, leaderboard = profileStore, profileStore
	} else {
		cache := memory.NewQuizCache(loader, quizTTL)
		profileStore := memory.NewProfileStore()
		quizzes, invalidator = cache, cache
		profiles, leaderboard = profileStore, profileStore
		log.Warn("redis not configured, profiles are in-memory and volatile")
	}

	minter := token.NewMinter(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, time.Hour))
	broadcaster := app.NewLeaderboardBroadcaster()
	authService := app.NewAuthService(cfg.Telegram.BotToken, minter, profiles, log)
	quizService := app.NewQuizService(quizzes, store, invalidator, profiles, leaderboard, broadcaster, log)

	handler := transport.NewHandler(authService, quizService, minter, cfg.Admin.UserID, log)
	stream := transport.NewStreamHandler(quizService, broadcaster, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(handler, stream, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuiz seeds the in-memory store so the service is usable without
// Postgres; production runs load quizzes from the database.
func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		QuizID: "quiz-1",
		Title:  "Matchday Warmup",
		Questions: []domain.Question{
			{
				QuestionID:    "q1",
				Prompt:        "How many players does a team field?",
				Options:       []string{"9", "10", "11"},
				CorrectAnswer: "11",
			},
			{
				QuestionID:    "q2",
				Prompt:        "How long is a half?",
				Options:       []string{"40", "45", "50"},
				CorrectAnswer: "45",
			},
		},
		ExpiresAt: time.Now().Add(24 * time.Hour).UnixMilli(),
	}
}
