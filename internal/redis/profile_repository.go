package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ootopi/heroku/internal/domain"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

// Key layout: the value lives under the stable Twitch ID, a secondary
// index key maps the case-folded login to that ID. Both carry the same
// TTL so Redis expiry doubles as the staleness filter.
const (
	profileKeyPrefix = "profile:id:"
	loginKeyPrefix   = "profile:login:"
)

func profileKey(id string) string  { return profileKeyPrefix + id }
func loginKey(login string) string { return loginKeyPrefix + casefold(login) }
func casefold(login string) string { return strings.ToLower(login) }

// ProfileRepo implements domain.ProfileRepository backed by Redis.
type ProfileRepo struct {
	rdb   *goredis.Client
	clock clockwork.Clock
}

// NewProfileRepo creates a ProfileRepo on the shared client.
func NewProfileRepo(rdb *goredis.Client, clock clockwork.Clock) *ProfileRepo {
	return &ProfileRepo{rdb: rdb, clock: clock}
}

// GetByLogin resolves the login index, then loads the profile value.
// Either key missing (never stored, or expired) reads as absent.
func (r *ProfileRepo) GetByLogin(ctx context.Context, login string) (*domain.Profile, error) {
	id, err := r.rdb.Get(ctx, loginKey(login)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read login index: %v: %w", err, domain.ErrStoreUnavailable)
	}

	raw, err := r.rdb.Get(ctx, profileKey(id)).Result()
	if errors.Is(err, goredis.Nil) {
		// The index key can outlive the value by a moment around expiry.
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %v: %w", err, domain.ErrStoreUnavailable)
	}

	var profile domain.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return &profile, nil
}

// Upsert writes the profile value and login index in one pipeline, both
// with the given TTL. A nil profile is a no-op; a zero ttl stores without
// expiry.
func (r *ProfileRepo) Upsert(ctx context.Context, profile *domain.Profile, ttl time.Duration) (*domain.Profile, error) {
	if profile == nil {
		return nil, nil
	}

	stored := *profile
	stored.CachedAt = r.clock.Now()
	stored.ExpiresAt = time.Time{}
	if ttl > 0 {
		stored.ExpiresAt = stored.CachedAt.Add(ttl)
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	pipe := r.rdb.Pipeline()
	pipe.Set(ctx, profileKey(stored.ID), data, ttl)
	pipe.Set(ctx, loginKey(stored.Login), stored.ID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to store profile: %v: %w", err, domain.ErrStoreUnavailable)
	}

	return &stored, nil
}
