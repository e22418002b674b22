package twitch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ootopi/heroku/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestTokenSource(srv *httptest.Server, cacheEnabled bool, clock clockwork.Clock) *AppTokenSource {
	s := NewAppTokenSource("test-client-id", "test-secret", cacheEnabled, clock)
	s.tokenURL = srv.URL
	return s
}

func TestToken_SendsClientCredentialsForm(t *testing.T) {
	var gotMethod, gotContentType string
	var gotForm map[string]string

	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"client_id":     r.PostFormValue("client_id"),
			"client_secret": r.PostFormValue("client_secret"),
			"grant_type":    r.PostFormValue("grant_type"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"abc123","expires_in":3600}`))
	})

	source := newTestTokenSource(srv, false, clockwork.NewRealClock())
	token, err := source.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, map[string]string{
		"client_id":     "test-client-id",
		"client_secret": "test-secret",
		"grant_type":    "client_credentials",
	}, gotForm)
}

func TestToken_RejectedCredentials(t *testing.T) {
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"status":403,"message":"invalid client secret"}`))
	})

	source := newTestTokenSource(srv, false, clockwork.NewRealClock())
	token, err := source.Token(context.Background())

	assert.Empty(t, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTokenExchange)

	var exchangeErr *TokenExchangeError
	require.ErrorAs(t, err, &exchangeErr)
	assert.Equal(t, http.StatusForbidden, exchangeErr.StatusCode)
}

func TestToken_MissingAccessToken(t *testing.T) {
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"expires_in":3600}`))
	})

	source := newTestTokenSource(srv, false, clockwork.NewRealClock())
	_, err := source.Token(context.Background())

	assert.ErrorIs(t, err, domain.ErrTokenExchange)
}

func TestToken_MalformedResponse(t *testing.T) {
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	source := newTestTokenSource(srv, false, clockwork.NewRealClock())
	_, err := source.Token(context.Background())

	assert.ErrorIs(t, err, domain.ErrTokenExchange)
}

func TestToken_NoCachingByDefault(t *testing.T) {
	exchanges := 0
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		exchanges++
		w.Write([]byte(`{"access_token":"abc123","expires_in":3600}`))
	})

	source := newTestTokenSource(srv, false, clockwork.NewRealClock())
	for i := 0; i < 3; i++ {
		_, err := source.Token(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 3, exchanges, "without caching every call exchanges anew")
}

func TestToken_CachingReusesToken(t *testing.T) {
	exchanges := 0
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		exchanges++
		w.Write([]byte(`{"access_token":"abc123","expires_in":3600}`))
	})

	clock := clockwork.NewFakeClock()
	source := newTestTokenSource(srv, true, clock)

	for i := 0; i < 3; i++ {
		token, err := source.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "abc123", token)
	}

	assert.Equal(t, 1, exchanges, "cached token should be reused while valid")
}

func TestToken_CachingRefreshesNearExpiry(t *testing.T) {
	exchanges := 0
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		exchanges++
		w.Write([]byte(`{"access_token":"abc123","expires_in":3600}`))
	})

	clock := clockwork.NewFakeClock()
	source := newTestTokenSource(srv, true, clock)

	_, err := source.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, exchanges)

	// Still comfortably within the token lifetime.
	clock.Advance(30 * time.Minute)
	_, err = source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, exchanges)

	// Inside the refresh margin before expiry.
	clock.Advance(30*time.Minute - 30*time.Second)
	_, err = source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, exchanges, "token near expiry must be exchanged again")
}

func TestToken_CachingDoesNotStoreFailedExchange(t *testing.T) {
	exchanges := 0
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		exchanges++
		if exchanges == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"access_token":"recovered","expires_in":3600}`))
	})

	clock := clockwork.NewFakeClock()
	source := newTestTokenSource(srv, true, clock)

	_, err := source.Token(context.Background())
	require.ErrorIs(t, err, domain.ErrTokenExchange)

	token, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "recovered", token)
	assert.Equal(t, 2, exchanges)
}
