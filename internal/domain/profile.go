package domain

import (
	"context"
	"time"
)

// Profile is the subset of a Twitch user record this service cares about.
// ID is the stable Twitch-assigned identifier and the storage key; Login is
// the lookup key and is matched case-insensitively.
type Profile struct {
	ID              string `json:"id"`
	Login           string `json:"login"`
	Description     string `json:"description"`
	BroadcasterType string `json:"broadcaster_type"`
	// CachedAt and ExpiresAt are set by the repository on write and are
	// zero on profiles fresh from the upstream API.
	CachedAt  time.Time `json:"cached_at,omitzero"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// ProfileRepository persists cached profiles. Implementations must treat
// entries past their TTL as absent; callers never check freshness
// themselves.
type ProfileRepository interface {
	// GetByLogin looks up a profile by case-folded login. Returns
	// ErrProfileNotFound for missing or expired entries.
	GetByLogin(ctx context.Context, login string) (*Profile, error)
	// Upsert stores a profile keyed by its Twitch ID, overwriting any
	// previous entry. A zero ttl stores the profile without expiry.
	Upsert(ctx context.Context, profile *Profile, ttl time.Duration) (*Profile, error)
}

// UserFetcher retrieves a profile from the upstream Twitch API.
type UserFetcher interface {
	// FetchUserByLogin queries the users endpoint for an exact login.
	// Returns ErrProfileNotFound when the upstream has no such user.
	FetchUserByLogin(ctx context.Context, login string) (*Profile, error)
}

// ProfileService is the lookup surface consumed by HTTP handlers.
type ProfileService interface {
	Resolve(ctx context.Context, login string) (*Profile, error)
	ForceRefresh(ctx context.Context, login string) (*Profile, error)
}
