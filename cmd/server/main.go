package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ootopi/heroku/internal/app"
	"github.com/Ootopi/heroku/internal/config"
	"github.com/Ootopi/heroku/internal/database"
	"github.com/Ootopi/heroku/internal/domain"
	"github.com/Ootopi/heroku/internal/logging"
	"github.com/Ootopi/heroku/internal/redis"
	"github.com/Ootopi/heroku/internal/server"
	"github.com/Ootopi/heroku/internal/twitch"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

func setupConfig() *config.Config {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupPostgres(cfg *config.Config, clock clockwork.Clock) (*pgxpool.Pool, domain.ProfileRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool, database.NewProfileRepo(pool, clock)
}

func setupRedis(cfg *config.Config, clock clockwork.Clock) (*goredis.Client, domain.ProfileRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	return client, redis.NewProfileRepo(client, clock)
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "store", cfg.StoreBackend)

	var (
		pool        *pgxpool.Pool
		redisClient *goredis.Client
		profiles    domain.ProfileRepository
	)
	switch cfg.StoreBackend {
	case config.StoreRedis:
		redisClient, profiles = setupRedis(cfg, clock)
		defer func() { _ = redisClient.Close() }()
	default:
		pool, profiles = setupPostgres(cfg, clock)
		defer pool.Close()
	}

	tokens := twitch.NewAppTokenSource(cfg.TwitchClientID, cfg.TwitchClientSecret, cfg.TokenCacheEnabled, clock)
	fetcher := twitch.NewUserClient(cfg.TwitchClientID, tokens)

	svc := app.NewService(profiles, fetcher, cfg.CacheTTL)

	srv := server.NewServer(cfg, svc, pool, redisClient)
	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
