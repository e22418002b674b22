package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Ootopi/heroku/internal/domain"
	"github.com/Ootopi/heroku/internal/metrics"
	"github.com/jonboulle/clockwork"
)

const (
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"
	tokenTimeout    = 10 * time.Second
	// tokenRefreshMargin forces a new exchange when a cached token has
	// less than this long to live.
	tokenRefreshMargin = 60 * time.Second
)

// TokenExchangeError reports a failed client-credentials exchange.
type TokenExchangeError struct {
	StatusCode int
	Err        error
}

func (e *TokenExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token exchange failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, domain.ErrTokenExchange) match.
func (e *TokenExchangeError) Is(target error) bool { return target == domain.ErrTokenExchange }

// AppTokenSource obtains app access tokens via the OAuth2
// client-credentials flow. By default every Token call performs a fresh
// exchange; with caching enabled the token is reused until shortly before
// the expiry Twitch reports.
type AppTokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string // OAuth token endpoint URL (configurable for testing)
	httpClient   *http.Client
	clock        clockwork.Clock

	cacheEnabled bool
	mu           sync.Mutex
	token        string
	expiry       time.Time
}

// NewAppTokenSource creates a token source for the given app credentials.
func NewAppTokenSource(clientID, clientSecret string, cacheEnabled bool, clock clockwork.Clock) *AppTokenSource {
	return &AppTokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     defaultTokenURL,
		httpClient:   &http.Client{Timeout: tokenTimeout},
		clock:        clock,
		cacheEnabled: cacheEnabled,
	}
}

// Token returns a bearer token usable against the Twitch API.
func (s *AppTokenSource) Token(ctx context.Context) (string, error) {
	if !s.cacheEnabled {
		token, _, err := s.exchange(ctx)
		return token, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.clock.Now().Add(tokenRefreshMargin).Before(s.expiry) {
		return s.token, nil
	}

	token, expiresIn, err := s.exchange(ctx)
	if err != nil {
		return "", err
	}

	s.token = token
	s.expiry = s.clock.Now().Add(time.Duration(expiresIn) * time.Second)
	return token, nil
}

func (s *AppTokenSource) exchange(ctx context.Context) (token string, expiresIn int, err error) {
	data := url.Values{}
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, "POST", s.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", 0, &TokenExchangeError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.TokenExchanges.WithLabelValues("error").Inc()
		return "", 0, &TokenExchangeError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.TokenExchanges.WithLabelValues("error").Inc()
		return "", 0, &TokenExchangeError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		metrics.TokenExchanges.WithLabelValues("error").Inc()
		return "", 0, &TokenExchangeError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", string(body)),
		}
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		metrics.TokenExchanges.WithLabelValues("error").Inc()
		return "", 0, &TokenExchangeError{Err: err}
	}
	if result.AccessToken == "" {
		metrics.TokenExchanges.WithLabelValues("error").Inc()
		return "", 0, &TokenExchangeError{Err: fmt.Errorf("response contained no access_token")}
	}

	metrics.TokenExchanges.WithLabelValues("success").Inc()
	return result.AccessToken, result.ExpiresIn, nil
}
