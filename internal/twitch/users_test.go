package twitch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ootopi/heroku/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokenSource struct {
	token string
	err   error
	calls int
}

func (s *staticTokenSource) Token(ctx context.Context) (string, error) {
	s.calls++
	return s.token, s.err
}

func newTestUserClient(t *testing.T, handler http.HandlerFunc) (*UserClient, *staticTokenSource) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &staticTokenSource{token: "test-token"}
	client := NewUserClient("test-client-id", tokens)
	client.usersURL = srv.URL
	return client, tokens
}

func TestFetchUserByLogin_Success(t *testing.T) {
	var gotAuth, gotClientID, gotLogin string

	client, tokens := newTestUserClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotClientID = r.Header.Get("Client-Id")
		gotLogin = r.URL.Query().Get("login")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"12345","login":"shroud","description":"plays games","broadcaster_type":"partner"}]}`))
	})

	profile, err := client.FetchUserByLogin(context.Background(), "shroud")

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "test-client-id", gotClientID)
	assert.Equal(t, "shroud", gotLogin)
	assert.Equal(t, 1, tokens.calls)
	assert.Equal(t, &domain.Profile{
		ID:              "12345",
		Login:           "shroud",
		Description:     "plays games",
		BroadcasterType: "partner",
	}, profile)
}

func TestFetchUserByLogin_NoResults(t *testing.T) {
	client, _ := newTestUserClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	profile, err := client.FetchUserByLogin(context.Background(), "doesnotexist123")

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestFetchUserByLogin_UpstreamError(t *testing.T) {
	client, _ := newTestUserClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	profile, err := client.FetchUserByLogin(context.Background(), "shroud")

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestFetchUserByLogin_Unauthorized(t *testing.T) {
	client, _ := newTestUserClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":401,"message":"invalid access token"}`))
	})

	_, err := client.FetchUserByLogin(context.Background(), "shroud")

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestFetchUserByLogin_TokenFailurePropagates(t *testing.T) {
	requests := 0
	client, tokens := newTestUserClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})
	tokens.err = fmt.Errorf("credentials rejected: %w", domain.ErrTokenExchange)

	profile, err := client.FetchUserByLogin(context.Background(), "shroud")

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domain.ErrTokenExchange)
	assert.Equal(t, 0, requests, "no upstream call without a token")
}

func TestFetchUserByLogin_MultipleResultsTakesFirst(t *testing.T) {
	client, _ := newTestUserClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"id":"1","login":"first","description":"a","broadcaster_type":""},
			{"id":"2","login":"second","description":"b","broadcaster_type":""}
		]}`))
	})

	profile, err := client.FetchUserByLogin(context.Background(), "first")

	require.NoError(t, err)
	assert.Equal(t, "1", profile.ID)
	assert.Equal(t, "first", profile.Login)
}

func TestFetchUserByLogin_MalformedResponse(t *testing.T) {
	client, _ := newTestUserClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json</html>`))
	})

	_, err := client.FetchUserByLogin(context.Background(), "shroud")

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestFetchUserByLogin_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	requests := 0
	client, _ := newTestUserClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	})

	// Drive enough failures to trip the breaker, then verify calls are
	// rejected without reaching the server.
	for i := 0; i < 10; i++ {
		_, err := client.FetchUserByLogin(context.Background(), "shroud")
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	}

	served := requests
	_, err := client.FetchUserByLogin(context.Background(), "shroud")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Equal(t, served, requests, "open breaker must short-circuit the request")
}

func TestFetchUserByLogin_NotFoundDoesNotTripBreaker(t *testing.T) {
	client, _ := newTestUserClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	for i := 0; i < 20; i++ {
		_, err := client.FetchUserByLogin(context.Background(), "doesnotexist123")
		require.ErrorIs(t, err, domain.ErrProfileNotFound,
			"empty results are answers, not failures")
	}
}
