package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backend selectors for Config.StoreBackend.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	AppEnv             string
	Port               string
	TwitchClientID     string
	TwitchClientSecret string
	StoreBackend       string
	DatabaseURL        string
	RedisURL           string
	// CacheTTL bounds how long a stored profile is served before the next
	// lookup goes back to Twitch. Zero disables expiry entirely; both
	// behaviors exist in deployments of this service.
	CacheTTL time.Duration
	// TokenCacheEnabled reuses the app access token until shortly before
	// its reported expiry instead of exchanging credentials on every
	// upstream fetch.
	TokenCacheEnabled bool
	// DrunkFactor is the default pass-through probability for the
	// drunk_description endpoint when no factor is given in the URL.
	DrunkFactor float64
	LogLevel    string
	LogFormat   string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8000"),
		TwitchClientID:     getEnv("TWITCH_CLIENT_ID", ""),
		TwitchClientSecret: getEnv("TWITCH_CLIENT_SECRET", ""),
		StoreBackend:       getEnv("STORE_BACKEND", StorePostgres),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	if cfg.TwitchClientID == "" {
		return nil, fmt.Errorf("TWITCH_CLIENT_ID is required")
	}
	if cfg.TwitchClientSecret == "" {
		return nil, fmt.Errorf("TWITCH_CLIENT_SECRET is required")
	}

	switch cfg.StoreBackend {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_BACKEND is postgres")
		}
	case StoreRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORE_BACKEND is redis")
		}
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StorePostgres, StoreRedis, cfg.StoreBackend)
	}

	ttl, err := parseDuration("CACHE_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	if ttl < 0 {
		return nil, fmt.Errorf("CACHE_TTL must not be negative")
	}
	cfg.CacheTTL = ttl

	cfg.TokenCacheEnabled, err = parseBool("TOKEN_CACHE_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg.DrunkFactor, err = parseFloat("DRUNK_FACTOR", 0.9)
	if err != nil {
		return nil, err
	}
	if cfg.DrunkFactor < 0 || cfg.DrunkFactor > 1 {
		return nil, fmt.Errorf("DRUNK_FACTOR must be between 0 and 1, got %v", cfg.DrunkFactor)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 1h or 30m: %w", key, err)
	}
	return d, nil
}

func parseBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func parseFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}
