package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/harshit-singhania/recallforge/internal/client/storage"
	"github.com/harshit-singhania/recallforge/pkg/api"
)

// attemptState tracks one outbound request through the unauthorized-recovery
// flow. A request moves strictly forward: sent → unauthorized → refreshing →
// retried. Once retried, a further 401 is propagated unchanged, which keeps
// the recovery to exactly one refresh and one replay per request.
type attemptState int

const (
	attemptSent attemptState = iota
	attemptUnauthorized
	attemptRefreshing
	attemptRetried
)

// attempt is the per-request recovery state.
type attempt struct {
	state attemptState
}

// doAuthenticated performs a request with the stored access token attached
// as a bearer credential. On a 401 it refreshes the access token once and
// resubmits the request once; the replay's outcome, success or failure, is
// what the caller observes.
func (c *Client) doAuthenticated(ctx context.Context, method, path string, body, result any) error {
	payload, err := marshalBody(body)
	if err != nil {
		return err
	}

	a := &attempt{state: attemptSent}

	resp, err := c.send(ctx, method, path, payload, c.currentAccessToken(ctx))
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return decodeResponse(resp, result)
	}

	// First 401 for this request. Keep the original error around: if the
	// refresh fails, this is what the caller gets.
	originalErr := decodeResponse(resp, nil)
	a.state = attemptUnauthorized

	newAccess, err := c.refreshAccessToken(ctx, a)
	if err != nil {
		c.logger.Debug("token refresh failed, propagating original 401",
			"path", path, "error", err)
		return originalErr
	}

	a.state = attemptRetried
	resp, err = c.send(ctx, method, path, payload, newAccess)
	if err != nil {
		return err
	}

	// The attempt is already retried, so a second 401 falls through here
	// and reaches the caller as-is. No second refresh.
	return decodeResponse(resp, result)
}

// refreshAccessToken exchanges the stored refresh token for a new access
// token. Concurrent callers are coalesced into a single in-flight refresh;
// all of them share its result.
func (c *Client) refreshAccessToken(ctx context.Context, a *attempt) (string, error) {
	a.state = attemptRefreshing

	v, err, _ := c.refreshing.Do("refresh", func() (any, error) {
		return c.doRefresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// doRefresh runs the out-of-band refresh call. Any failure is unrecoverable
// for the session: both tokens are removed so the next bootstrap lands in
// the anonymous state instead of retrying a dead pair forever.
func (c *Client) doRefresh(ctx context.Context) (string, error) {
	auth, err := c.tokens.GetAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("no refresh token available: %w", err)
	}
	if auth.RefreshToken == "" {
		c.clearTokens(ctx)
		return "", fmt.Errorf("no refresh token available")
	}

	var resp api.RefreshResponse
	req := api.RefreshRequest{Refresh: auth.RefreshToken}
	if err := c.doPublic(ctx, http.MethodPost, pathRefreshToken, req, &resp); err != nil {
		c.clearTokens(ctx)
		return "", fmt.Errorf("refresh token request failed: %w", err)
	}
	if resp.Access == "" {
		c.clearTokens(ctx)
		return "", fmt.Errorf("refresh response carried no access token")
	}

	// The refresh token is not rotated; persist the full pair in one write.
	newAuth := &storage.AuthData{
		AccessToken:  resp.Access,
		RefreshToken: auth.RefreshToken,
	}
	if err := c.tokens.SaveAuth(ctx, newAuth); err != nil {
		return "", fmt.Errorf("failed to save refreshed tokens: %w", err)
	}

	c.logger.Debug("access token refreshed")
	return resp.Access, nil
}

// currentAccessToken returns the stored access token, or "" when no pair is
// persisted. Requests without a token are sent bare and rejected by the
// server, which is how an expired or absent session is discovered.
func (c *Client) currentAccessToken(ctx context.Context) string {
	auth, err := c.tokens.GetAuth(ctx)
	if err != nil {
		return ""
	}
	return auth.AccessToken
}

func (c *Client) clearTokens(ctx context.Context) {
	if err := c.tokens.DeleteAuth(ctx); err != nil {
		c.logger.Warn("failed to clear stored tokens", "error", err)
	}
}
