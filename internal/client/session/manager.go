package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/harshit-singhania/recallforge/internal/client/storage"
	"github.com/harshit-singhania/recallforge/internal/validation"
	"github.com/harshit-singhania/recallforge/pkg/api"
)

// Status is the authentication state of the client process.
type Status int

const (
	// StatusBootstrapping is the initial state before Bootstrap resolves.
	StatusBootstrapping Status = iota
	// StatusAnonymous means no valid session exists.
	StatusAnonymous
	// StatusAuthenticated means an identity has been fetched and is owned
	// by the manager.
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusBootstrapping:
		return "bootstrapping"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ErrInvalidCredentials is returned when login credentials are rejected.
// The message is deliberately generic: whether the user exists is not
// disclosed.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthAPI is the subset of the API client the session manager depends on.
type AuthAPI interface {
	CreateToken(ctx context.Context, req api.CreateTokenRequest) (*api.TokenPairResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.User, error)
	CurrentUser(ctx context.Context) (*api.User, error)
}

// Manager is the single process-wide owner of "who is logged in". It is
// constructed with its collaborators and passed down explicitly; there is no
// ambient global session state.
type Manager struct {
	api    AuthAPI
	tokens storage.TokenStorage
	logger *slog.Logger
	status Status
	user   *api.User
}

// NewManager creates a session manager in the bootstrapping state. Call
// Bootstrap before relying on Status.
func NewManager(authAPI AuthAPI, tokens storage.TokenStorage, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		api:    authAPI,
		tokens: tokens,
		logger: logger,
		status: StatusBootstrapping,
	}
}

// Bootstrap resolves the initial session state from the persisted token
// pair. A stale or invalid pair is cleared and the session resolves to
// anonymous: an expired session is a normal background event, never an
// application error, so Bootstrap itself does not fail on it.
func (m *Manager) Bootstrap(ctx context.Context) error {
	_, err := m.tokens.GetAuth(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrAuthNotFound) {
			m.logger.Warn("failed to read stored tokens, starting anonymous", "error", err)
		}
		m.becomeAnonymous()
		return nil
	}

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		// A stored pair that cannot produce an identity must never leave
		// the user in an ambiguous state.
		m.logger.Debug("session bootstrap failed, degrading to anonymous", "error", err)
		if delErr := m.tokens.DeleteAuth(ctx); delErr != nil {
			m.logger.Warn("failed to clear stale tokens", "error", delErr)
		}
		m.becomeAnonymous()
		return nil
	}

	m.user = user
	m.status = StatusAuthenticated
	m.logger.Debug("session bootstrapped", "username", user.Username)
	return nil
}

// Login exchanges credentials for a token pair, persists it and fetches the
// identity. Rejected credentials surface as ErrInvalidCredentials.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if err := validation.ValidateUsername(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	// 1. Exchange credentials for a fresh token pair
	pair, err := m.api.CreateToken(ctx, api.CreateTokenRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		if api.IsUnauthorized(err) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("login failed: %w", err)
	}

	// 2. Persist both tokens together
	auth := &storage.AuthData{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	}
	if err := m.tokens.SaveAuth(ctx, auth); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}

	// 3. Fetch and store the identity
	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch user profile: %w", err)
	}

	m.user = user
	m.status = StatusAuthenticated
	m.logger.Debug("logged in", "username", user.Username)
	return nil
}

// Register creates the account server-side, then logs in with the same
// credentials. A conflict (username or email taken) is propagated verbatim.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	req := api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}
	if err := validation.ValidateRegistration(req); err != nil {
		return err
	}

	if _, err := m.api.Register(ctx, req); err != nil {
		if api.IsConflict(err) {
			return fmt.Errorf("registration rejected: %w", err)
		}
		return fmt.Errorf("registration failed: %w", err)
	}

	// Registration implies authentication.
	return m.Login(ctx, username, password)
}

// Logout clears the token pair and the in-memory identity. It is purely
// local and succeeds regardless of prior state.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.tokens.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}
	m.becomeAnonymous()
	return nil
}

// Status returns the current session state.
func (m *Manager) Status() Status {
	return m.status
}

// User returns the authenticated identity, or nil when anonymous.
func (m *Manager) User() *api.User {
	return m.user
}

// IsAuthenticated reports whether an identity is currently owned.
func (m *Manager) IsAuthenticated() bool {
	return m.status == StatusAuthenticated
}

func (m *Manager) becomeAnonymous() {
	m.user = nil
	m.status = StatusAnonymous
}
