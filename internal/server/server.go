package server

import (
	"context"
	"fmt"
	"time"

	"github.com/Ootopi/heroku/internal/config"
	"github.com/Ootopi/heroku/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
)

const (
	requestsPerSecond = 20
	requestBurst      = 40
)

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	profiles domain.ProfileService
	// storeCheck pings whichever store backend is active; readiness
	// reports unhealthy when it fails.
	storeCheck func(ctx context.Context) error
	startTime  time.Time
}

// NewServer wires the HTTP layer. Exactly one of db and redisClient is
// non-nil, matching the configured store backend.
func NewServer(cfg *config.Config, profiles domain.ProfileService, db *pgxpool.Pool, redisClient *goredis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(newRateLimiter(requestsPerSecond, requestBurst))

	srv := &Server{
		echo:      e,
		config:    cfg,
		profiles:  profiles,
		startTime: time.Now(),
	}

	switch {
	case db != nil:
		srv.storeCheck = db.Ping
	case redisClient != nil:
		srv.storeCheck = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	default:
		srv.storeCheck = func(ctx context.Context) error { return fmt.Errorf("no store configured") }
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
