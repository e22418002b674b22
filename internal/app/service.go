package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Ootopi/heroku/internal/domain"
	"github.com/Ootopi/heroku/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// Service implements cache-aside profile resolution: consult the store,
// on a miss fetch from Twitch and write the result back. It holds no
// per-lookup state, so concurrent resolutions only meet inside the store
// and the singleflight group.
type Service struct {
	profiles domain.ProfileRepository
	fetcher  domain.UserFetcher
	// ttl is stamped onto every cache write; zero stores without expiry.
	ttl        time.Duration
	fetchGroup singleflight.Group
}

var _ domain.ProfileService = (*Service)(nil)

// NewService creates the resolution service.
func NewService(profiles domain.ProfileRepository, fetcher domain.UserFetcher, ttl time.Duration) *Service {
	return &Service{
		profiles: profiles,
		fetcher:  fetcher,
		ttl:      ttl,
	}
}

// Resolve returns the profile for a login, preferring the cache. The
// store decides freshness; any entry it returns is served as-is. A store
// read failure degrades to a cache miss rather than failing the lookup.
func (s *Service) Resolve(ctx context.Context, login string) (*domain.Profile, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, domain.ErrProfileNotFound
	}

	profile, err := s.profiles.GetByLogin(ctx, login)
	if err == nil {
		metrics.CacheHits.Inc()
		return profile, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		// Fail open: an unreachable store reads as a miss.
		slog.Warn("Profile cache read failed", "login", login, "error", err)
	}
	metrics.CacheMisses.Inc()

	return s.refresh(ctx, login)
}

// ForceRefresh always consults Twitch and overwrites the cache, skipping
// the cache read entirely. Callers that need freshness opt in here.
func (s *Service) ForceRefresh(ctx context.Context, login string) (*domain.Profile, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, domain.ErrProfileNotFound
	}
	return s.refresh(ctx, login)
}

// refresh fetches from upstream and writes the result back. Concurrent
// refreshes for the same casefolded login share one upstream call. The
// write-back is best-effort: a failed store write is logged and counted,
// but the freshly fetched profile is still returned.
func (s *Service) refresh(ctx context.Context, login string) (*domain.Profile, error) {
	v, err, _ := s.fetchGroup.Do(strings.ToLower(login), func() (any, error) {
		profile, err := s.fetcher.FetchUserByLogin(ctx, login)
		if err != nil {
			return nil, err
		}

		stored, err := s.profiles.Upsert(ctx, profile, s.ttl)
		if err != nil {
			metrics.StoreWriteFailures.Inc()
			slog.Error("Profile cache write failed", "login", login, "error", err)
			return profile, nil
		}
		return stored, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Profile), nil
}
