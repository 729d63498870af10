package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"eduplay-service/internal/app"
	"eduplay-service/internal/auth"
	"eduplay-service/internal/config"
	"eduplay-service/internal/infra/memory"
	"eduplay-service/internal/infra/postgres"
	redisinfra "eduplay-service/internal/infra/redis"
	"eduplay-service/internal/infra/store"
	"eduplay-service/internal/platform/logger"
	transport "eduplay-service/internal/transport/http"
)

const devSecret = "dev-only-secret-change-me"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the eduplay API server",
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

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if strings.EqualFold(cfg.Log.Mode, "prod") || strings.EqualFold(cfg.Log.Mode, "production") {
		gin.SetMode(gin.ReleaseMode)
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		return err
	}
	s := store.New(db)
	if err := s.SeedGames(ctx, defaultGames()); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, running without it", "addr", cfg.Redis.Addr, "err", err)
			redisClient = nil
		}
	}

	// Catalog reads come from the store itself under SQLite and from a
	// pgx pool under Postgres, cached in redis when available and
	// in-process otherwise.
	var loader memory.CatalogLoader = s
	if cfg.Database.URL != "" {
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = postgres.NewCatalogLoader(pool)
	}
	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalog app.Catalog
	if redisClient != nil {
		catalog = redisinfra.NewCatalogCache(redisClient, loader, catalogTTL)
	} else {
		catalog = memory.NewCatalogCache(loader, catalogTTL)
	}

	var boards app.Boards
	if redisClient != nil {
		board := redisinfra.NewLeaderboardCache(redisClient)
		if entries, err := s.AllEntries(ctx); err != nil {
			log.Warn("board warm-up skipped", "err", err)
		} else if err := board.Rebuild(ctx, entries); err != nil {
			log.Warn("board rebuild failed", "err", err)
		}
		boards = board
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		log.Warn("auth.secret not configured, using the dev default")
		secret = devSecret
	}
	tokens := auth.NewTokenManager(secret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))

	feed := app.NewFeed()
	progress := app.NewProgressService(s, log)
	streaks := app.NewStreakService(s)
	leaderboard := app.NewLeaderboardService(s, boards, feed, cfg.LeaderboardSize(), log)
	activity := app.NewActivityService(s, progress, streaks, leaderboard, log)
	accounts := app.NewAccountService(s, auth.NewHasher(), tokens, activity, log)
	games := app.NewGameService(s, catalog, activity)
	ranking := app.NewRankingService(s, boards, log)
	quizzes := app.NewQuizService(s, catalog)
	grading := app.NewGradingService(s, catalog, activity)
	assignments := app.NewAssignmentService(s)
	students := app.NewStudentService(accounts, streaks, progress, games, leaderboard, ranking)

	router := transport.NewRouter(transport.RouterConfig{
		Log:         log,
		Auth:        transport.NewAuthMiddleware(tokens),
		Accounts:    transport.NewAuthHandler(accounts),
		Games:       transport.NewGameHandler(accounts, games, ranking),
		Students:    transport.NewStudentHandler(students, progress, games),
		Leaderboard: transport.NewLeaderboardHandler(leaderboard, ranking, cfg.LeaderboardSize()),
		Quizzes:     transport.NewQuizHandler(accounts, quizzes, grading),
		Assignments: transport.NewAssignmentHandler(accounts, assignments),
		Feed:        transport.NewFeedHandler(leaderboard, log),
	})

	// Give feed subscribers a board to show before the first activity.
	leaderboard.Prime(ctx)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting eduplay service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "err", err)
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
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	// Let in-flight progress/streak/leaderboard chains finish before the
	// store closes.
	activity.Flush()
	return nil
}
