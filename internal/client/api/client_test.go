package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshit-singhania/recallforge/pkg/api"
)

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("http://localhost:8000", &memStorage{})

	assert.Equal(t, "http://localhost:8000", client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.logger)
}

func TestNewClient_Options(t *testing.T) {
	client := NewClient("http://localhost:8000", &memStorage{},
		WithTimeout(5*time.Second),
	)

	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestCreateToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/jwt/create/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var req api.CreateTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		assert.Equal(t, "pw123", req.Password)

		_ = json.NewEncoder(w).Encode(api.TokenPairResponse{
			Access:  "access-1",
			Refresh: "refresh-1",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, &memStorage{})

	pair, err := client.CreateToken(context.Background(), api.CreateTokenRequest{
		Username: "alice",
		Password: "pw123",
	})
	require.NoError(t, err)
	assert.Equal(t, "access-1", pair.Access)
	assert.Equal(t, "refresh-1", pair.Refresh)
}

func TestCreateToken_BadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{
			Detail: "No active account found with the given credentials",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, &memStorage{})

	_, err := client.CreateToken(context.Background(), api.CreateTokenRequest{
		Username: "alice",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "No active account")
}

func TestRegister_Conflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/users/", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{
			Detail: "A user with that username already exists.",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, &memStorage{})

	_, err := client.Register(context.Background(), api.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "longenough",
	})
	require.Error(t, err)
	assert.True(t, api.IsConflict(err))
}

func TestNextCard_Sentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/review/next/", r.URL.Path)
		// The no-cards case is a 200 with a sentinel message, not a 404.
		_, _ = w.Write([]byte(`{"message": "No cards due for review"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, seededStorage("access", "refresh"))

	card, err := client.NextCard(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, card)
}

func TestNextCard_DeckScoped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("deck"))
		_ = json.NewEncoder(w).Encode(api.Card{
			ID:    42,
			Front: "What is a goroutine?",
			Back:  "A lightweight thread managed by the Go runtime.",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, seededStorage("access", "refresh"))

	card, err := client.NextCard(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.EqualValues(t, 42, card.ID)
	assert.Equal(t, "What is a goroutine?", card.Front)
}

func TestNextCard_AllDecksOmitsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("deck"))
		_ = json.NewEncoder(w).Encode(api.Card{ID: 1, Front: "f", Back: "b"})
	}))
	defer server.Close()

	client := NewClient(server.URL, seededStorage("access", "refresh"))

	card, err := client.NextCard(context.Background(), 0)
	require.NoError(t, err)
	require.NotNil(t, card)
}

func TestRateCard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/review/42/rate/", r.URL.Path)

		var req api.RateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 5, req.Rating)

		_ = json.NewEncoder(w).Encode(api.RateResponse{IntervalDays: 6})
	}))
	defer server.Close()

	client := NewClient(server.URL, seededStorage("access", "refresh"))

	resp, err := client.RateCard(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, resp.IntervalDays)
}

func TestListDecks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/decks/", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]api.Deck{
			{ID: 1, Name: "Go Basics"},
			{ID: 2, Name: "Distributed Systems"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, seededStorage("access", "refresh"))

	decks, err := client.ListDecks(context.Background())
	require.NoError(t, err)
	require.Len(t, decks, 2)
	assert.Equal(t, "Go Basics", decks[0].Name)
}

func TestGetSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/ingest/9/", r.URL.Path)
		_ = json.NewEncoder(w).Encode(api.Source{ID: 9, Status: api.SourceProcessing})
	}))
	defer server.Close()

	client := NewClient(server.URL, seededStorage("access", "refresh"))

	source, err := client.GetSource(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, api.SourceProcessing, source.Status)
}

func TestDecodeResponse_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	client := NewClient(server.URL, seededStorage("access", "refresh"))

	_, err := client.ListDecks(context.Background())
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "upstream unavailable")
}
