package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Ootopi/heroku/internal/domain"
	"github.com/Ootopi/heroku/internal/drunken"
	"github.com/labstack/echo/v4"
)

// profileError maps resolution failures onto the public surface: unknown
// users are 404, everything else (token exchange, upstream outage) is a
// 502 with no internal detail leaked.
func profileError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrProfileNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}
	slog.Error("Profile lookup failed", "user", c.Param("user"), "error", err)
	return c.JSON(http.StatusBadGateway, map[string]string{"error": "upstream lookup failed"})
}

func (s *Server) handleUser(c echo.Context) error {
	profile, err := s.profiles.Resolve(c.Request().Context(), c.Param("user"))
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) handleDescription(c echo.Context) error {
	profile, err := s.profiles.Resolve(c.Request().Context(), c.Param("user"))
	if err != nil {
		return profileError(c, err)
	}
	return c.String(http.StatusOK, profile.Description)
}

func (s *Server) handleForceUpdate(c echo.Context) error {
	profile, err := s.profiles.ForceRefresh(c.Request().Context(), c.Param("user"))
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) handleBroadcasterType(c echo.Context) error {
	profile, err := s.profiles.ForceRefresh(c.Request().Context(), c.Param("user"))
	if err != nil {
		return profileError(c, err)
	}
	return c.String(http.StatusOK, profile.BroadcasterType)
}

func (s *Server) handleDrunkDescription(c echo.Context) error {
	factor := s.config.DrunkFactor
	if raw := c.Param("factor"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 || f > 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "factor must be a number between 0 and 1"})
		}
		factor = f
	}

	profile, err := s.profiles.ForceRefresh(c.Request().Context(), c.Param("user"))
	if err != nil {
		return profileError(c, err)
	}
	return c.String(http.StatusOK, drunken.Drunkenify(profile.Description, factor))
}
