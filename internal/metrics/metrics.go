// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Profile cache metrics
var (
	// CacheHits tracks lookups answered from the profile store.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_cache_hits_total",
			Help: "Total profile lookups served from the cache",
		},
	)

	// CacheMisses tracks lookups that had to go upstream.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_cache_misses_total",
			Help: "Total profile lookups that missed the cache",
		},
	)

	// StoreWriteFailures tracks failed write-backs after an upstream fetch.
	// Writes are best-effort and never fail the user-facing response.
	StoreWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_store_write_failures_total",
			Help: "Total failed profile cache writes",
		},
	)
)

// Upstream Twitch API metrics
var (
	// UpstreamFetches tracks users-endpoint calls by outcome
	// (success, not_found, error).
	UpstreamFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_fetches_total",
			Help: "Total upstream user fetches by outcome",
		},
		[]string{"outcome"},
	)

	// UpstreamFetchDuration tracks users-endpoint latency in seconds.
	UpstreamFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upstream_fetch_duration_seconds",
			Help:    "Upstream user fetch duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// TokenExchanges tracks client-credentials exchanges by outcome.
	TokenExchanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_exchanges_total",
			Help: "Total OAuth client-credentials exchanges by outcome",
		},
		[]string{"outcome"},
	)

	// CircuitBreakerStateChanges tracks breaker transitions on the
	// upstream client.
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current breaker state
	// (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Redis metrics (only populated when the redis store backend is active)
var (
	// RedisOpsTotal tracks Redis commands by operation and status.
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis command latency in seconds.
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks Redis connection errors.
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)
)
