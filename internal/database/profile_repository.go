package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ootopi/heroku/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
)

// profileColumns must match the Scan order in scanProfile.
const profileColumns = `twitch_id, login, description, broadcaster_type, cached_at, expires_at`

// ProfileRepo implements domain.ProfileRepository backed by PostgreSQL.
// Expiry is passive: reads filter out rows past expires_at instead of a
// background job deleting them, so a stale row simply reads as absent
// until the next upsert overwrites it.
type ProfileRepo struct {
	pool  *pgxpool.Pool
	clock clockwork.Clock
}

// NewProfileRepo creates a ProfileRepo on the shared pool.
func NewProfileRepo(pool *pgxpool.Pool, clock clockwork.Clock) *ProfileRepo {
	return &ProfileRepo{pool: pool, clock: clock}
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var profile domain.Profile
	var expiresAt *time.Time
	err := row.Scan(
		&profile.ID, &profile.Login, &profile.Description,
		&profile.BroadcasterType, &profile.CachedAt, &expiresAt,
	)
	if err != nil {
		return nil, err
	}
	if expiresAt != nil {
		profile.ExpiresAt = *expiresAt
	}
	return &profile, nil
}

// GetByLogin returns the cached profile for a login, matched
// case-insensitively. Expired rows are treated as absent.
func (r *ProfileRepo) GetByLogin(ctx context.Context, login string) (*domain.Profile, error) {
	profile, err := scanProfile(r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE LOWER(login) = LOWER($1)
		  AND (expires_at IS NULL OR expires_at > $2)
	`, login, r.clock.Now()))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile by login: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return profile, nil
}

// Upsert stores a profile keyed by Twitch ID, replacing any previous row
// wholesale. A nil profile is a no-op; a zero ttl stores without expiry.
func (r *ProfileRepo) Upsert(ctx context.Context, profile *domain.Profile, ttl time.Duration) (*domain.Profile, error) {
	if profile == nil {
		return nil, nil
	}

	now := r.clock.Now()
	var expiresAt *time.Time
	if ttl > 0 {
		t := now.Add(ttl)
		expiresAt = &t
	}

	stored, err := scanProfile(r.pool.QueryRow(ctx, `
		INSERT INTO profiles (twitch_id, login, description, broadcaster_type, cached_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (twitch_id) DO UPDATE SET
			login = EXCLUDED.login,
			description = EXCLUDED.description,
			broadcaster_type = EXCLUDED.broadcaster_type,
			cached_at = EXCLUDED.cached_at,
			expires_at = EXCLUDED.expires_at
		RETURNING `+profileColumns+`
	`, profile.ID, profile.Login, profile.Description, profile.BroadcasterType, now, expiresAt))

	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return stored, nil
}
