package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/harshit-singhania/recallforge/internal/client/storage"
	"github.com/harshit-singhania/recallforge/pkg/api"
)

// API paths. The exact values are an external contract owned by the server.
const (
	pathCreateToken  = "/auth/jwt/create/"
	pathRefreshToken = "/auth/jwt/refresh/"
	pathCurrentUser  = "/auth/users/me/"
	pathRegister     = "/auth/users/"
	pathIngest       = "/api/v1/ingest/"
	pathReviewNext   = "/api/v1/review/next/"
	pathDecks        = "/api/v1/decks/"
	pathCards        = "/api/v1/cards/"
)

// Client is the HTTP client for the RecallForge server. It attaches the
// stored access token to every authenticated request and transparently
// recovers from a single 401 per request by refreshing the access token and
// replaying the request once.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     storage.TokenStorage
	logger     *slog.Logger
	refreshing singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger overrides the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new API client. tokens provides the persisted token
// pair; it is read on every request and rewritten by the refresh flow.
func NewClient(baseURL string, tokens storage.TokenStorage, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		logger:  slog.Default(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Carry the Authorization header across redirects
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateToken exchanges credentials for a fresh token pair.
func (c *Client) CreateToken(ctx context.Context, req api.CreateTokenRequest) (*api.TokenPairResponse, error) {
	var resp api.TokenPairResponse
	if err := c.doPublic(ctx, http.MethodPost, pathCreateToken, req, &resp); err != nil {
		return nil, fmt.Errorf("create token request failed: %w", err)
	}
	return &resp, nil
}

// Register creates a new account. It does not log the user in; callers
// follow up with CreateToken.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.User, error) {
	var resp api.User
	if err := c.doPublic(ctx, http.MethodPost, pathRegister, req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// CurrentUser fetches the profile of the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*api.User, error) {
	var resp api.User
	if err := c.doAuthenticated(ctx, http.MethodGet, pathCurrentUser, nil, &resp); err != nil {
		return nil, fmt.Errorf("current user request failed: %w", err)
	}
	return &resp, nil
}

// SubmitSource submits a URL for ingestion and returns the initial job
// record (status PENDING or PROCESSING).
func (c *Client) SubmitSource(ctx context.Context, req api.IngestRequest) (*api.Source, error) {
	var resp api.Source
	if err := c.doAuthenticated(ctx, http.MethodPost, pathIngest, req, &resp); err != nil {
		return nil, fmt.Errorf("ingest request failed: %w", err)
	}
	return &resp, nil
}

// GetSource fetches the current state of an ingestion job.
func (c *Client) GetSource(ctx context.Context, id int64) (*api.Source, error) {
	var resp api.Source
	path := fmt.Sprintf("%s%d/", pathIngest, id)
	if err := c.doAuthenticated(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get source request failed: %w", err)
	}
	return &resp, nil
}

// NextCard fetches the next card due for review, scoped to a deck when
// deckID is non-zero. It returns (nil, nil) when no card is due.
func (c *Client) NextCard(ctx context.Context, deckID int64) (*api.Card, error) {
	path := pathReviewNext
	if deckID != 0 {
		path += "?deck=" + url.QueryEscape(fmt.Sprintf("%d", deckID))
	}

	var resp api.NextCardResponse
	if err := c.doAuthenticated(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("next card request failed: %w", err)
	}
	if !resp.Due() {
		return nil, nil
	}
	card := resp.Card
	return &card, nil
}

// RateCard submits an SM-2 grade for a card and returns its new schedule.
func (c *Client) RateCard(ctx context.Context, cardID int64, rating int) (*api.RateResponse, error) {
	var resp api.RateResponse
	path := fmt.Sprintf("/api/v1/review/%d/rate/", cardID)
	req := api.RateRequest{Rating: rating}
	if err := c.doAuthenticated(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("rate card request failed: %w", err)
	}
	return &resp, nil
}

// ListDecks fetches the user's decks.
func (c *Client) ListDecks(ctx context.Context) ([]api.Deck, error) {
	var resp []api.Deck
	if err := c.doAuthenticated(ctx, http.MethodGet, pathDecks, nil, &resp); err != nil {
		return nil, fmt.Errorf("list decks request failed: %w", err)
	}
	return resp, nil
}

// ListCards fetches the cards of one deck.
func (c *Client) ListCards(ctx context.Context, deckID int64) ([]api.Card, error) {
	var resp []api.Card
	path := pathCards + "?deck=" + url.QueryEscape(fmt.Sprintf("%d", deckID))
	if err := c.doAuthenticated(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list cards request failed: %w", err)
	}
	return resp, nil
}

// doPublic performs a request without a bearer credential and without the
// refresh flow. Auth endpoints use it: a 401 there means rejected
// credentials, not an expired session.
func (c *Client) doPublic(ctx context.Context, method, path string, body, result any) error {
	payload, err := marshalBody(body)
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, method, path, payload, "")
	if err != nil {
		return err
	}
	return decodeResponse(resp, result)
}

// send builds and executes one HTTP request. The body is passed as raw bytes
// so a request can be resubmitted after a token refresh.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, accessToken string) (*http.Response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return payload, nil
}

// decodeResponse consumes the response body, mapping non-2xx statuses to
// *api.Error and decoding successful payloads into result.
func decodeResponse(resp *http.Response, result any) error {
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Text() != "" {
			return &api.Error{StatusCode: resp.StatusCode, Message: errResp.Text()}
		}
		return &api.Error{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
