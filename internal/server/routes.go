package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Profile lookups (cache-aside)
	s.echo.GET("/twitch/user/:user", s.handleUser)
	s.echo.GET("/twitch/user/:user/description", s.handleDescription)

	// Forced refreshes (always hit Twitch, overwrite the cache)
	s.echo.GET("/twitch/user/:user/force_update", s.handleForceUpdate)
	s.echo.GET("/twitch/user/:user/broadcaster_type", s.handleBroadcasterType)
	s.echo.GET("/twitch/user/:user/drunk_description", s.handleDrunkDescription)
	s.echo.GET("/twitch/user/:user/drunk_description/:factor", s.handleDrunkDescription)
}
