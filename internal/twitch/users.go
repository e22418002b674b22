package twitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Ootopi/heroku/internal/domain"
	"github.com/Ootopi/heroku/internal/metrics"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"golang.org/x/time/rate"
)

const (
	defaultUsersURL = "https://api.twitch.tv/helix/users"
	fetchTimeout    = 10 * time.Second

	// Helix app rate limit is 800 points per minute; stay comfortably
	// below it.
	upstreamRatePerSecond = 10
	upstreamBurst         = 20
)

// tokenSource provides bearer tokens for upstream calls.
type tokenSource interface {
	Token(ctx context.Context) (string, error)
}

// UserClient fetches user profiles from the Twitch users endpoint.
// Calls are rate limited and guarded by a circuit breaker so a broken
// upstream sheds load quickly instead of tying up every lookup.
type UserClient struct {
	clientID   string
	tokens     tokenSource
	usersURL   string // users endpoint URL (configurable for testing)
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    circuitbreaker.CircuitBreaker[any]
}

// NewUserClient creates a users-endpoint client authorized by tokens.
func NewUserClient(clientID string, tokens tokenSource) *UserClient {
	return &UserClient{
		clientID:   clientID,
		tokens:     tokens,
		usersURL:   defaultUsersURL,
		httpClient: &http.Client{Timeout: fetchTimeout},
		limiter:    rate.NewLimiter(rate.Limit(upstreamRatePerSecond), upstreamBurst),
		breaker:    newUpstreamBreaker(),
	}
}

// newUpstreamBreaker builds the circuit breaker guarding users-endpoint
// calls: trip at a 60% failure rate over min 5 requests in a 10s window,
// wait 30s before half-open, close again after 1 success.
func newUpstreamBreaker() circuitbreaker.CircuitBreaker[any] {
	return circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "twitch",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			metrics.CircuitBreakerStateChanges.WithLabelValues("twitch", e.NewState.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues("twitch").Set(breakerStateToFloat(e.NewState))
		}).
		Build()
}

func breakerStateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

// FetchUserByLogin queries the users endpoint for an exact login match.
// Zero results map to domain.ErrProfileNotFound; anything else that goes
// wrong is an upstream failure.
func (c *UserClient) FetchUserByLogin(ctx context.Context, login string) (*domain.Profile, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	if !c.breaker.TryAcquirePermit() {
		metrics.UpstreamFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("upstream circuit open: %w", domain.ErrUpstreamUnavailable)
	}

	start := time.Now()
	profile, err := c.fetch(ctx, token, login)
	metrics.UpstreamFetchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		c.breaker.RecordSuccess()
		metrics.UpstreamFetches.WithLabelValues("success").Inc()
		return profile, nil
	case errors.Is(err, domain.ErrProfileNotFound):
		// An empty result is a valid upstream answer, not a failure.
		c.breaker.RecordSuccess()
		metrics.UpstreamFetches.WithLabelValues("not_found").Inc()
		return nil, err
	default:
		c.breaker.RecordError(err)
		metrics.UpstreamFetches.WithLabelValues("error").Inc()
		return nil, err
	}
}

func (c *UserClient) fetch(ctx context.Context, token, login string) (*domain.Profile, error) {
	params := url.Values{}
	params.Set("login", login)

	req, err := http.NewRequestWithContext(ctx, "GET", c.usersURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create users request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Client-Id", c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("users request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("users endpoint returned status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	var result struct {
		Data []struct {
			ID              string `json:"id"`
			Login           string `json:"login"`
			Description     string `json:"description"`
			BroadcasterType string `json:"broadcaster_type"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode users response: %w", err)
	}

	if len(result.Data) == 0 {
		return nil, domain.ErrProfileNotFound
	}
	if len(result.Data) > 1 {
		// An exact login query should match at most one user. Take the
		// first entry but make the anomaly visible.
		slog.Warn("Upstream returned multiple users for exact login query",
			"login", login,
			"count", len(result.Data),
		)
	}

	u := result.Data[0]
	return &domain.Profile{
		ID:              u.ID,
		Login:           u.Login,
		Description:     u.Description,
		BroadcasterType: u.BroadcasterType,
	}, nil
}
