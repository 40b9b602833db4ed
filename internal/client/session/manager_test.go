package session

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshit-singhania/recallforge/internal/client/storage"
	"github.com/harshit-singhania/recallforge/pkg/api"
)

// fakeAuthAPI scripts the three auth endpoints and records their calls.
type fakeAuthAPI struct {
	createTokenFunc func(req api.CreateTokenRequest) (*api.TokenPairResponse, error)
	registerFunc    func(req api.RegisterRequest) (*api.User, error)
	currentUserFunc func() (*api.User, error)

	createTokenCalls int
	registerCalls    int
	currentUserCalls int
}

func (f *fakeAuthAPI) CreateToken(ctx context.Context, req api.CreateTokenRequest) (*api.TokenPairResponse, error) {
	f.createTokenCalls++
	return f.createTokenFunc(req)
}

func (f *fakeAuthAPI) Register(ctx context.Context, req api.RegisterRequest) (*api.User, error) {
	f.registerCalls++
	return f.registerFunc(req)
}

func (f *fakeAuthAPI) CurrentUser(ctx context.Context) (*api.User, error) {
	f.currentUserCalls++
	return f.currentUserFunc()
}

// fakeStorage is an in-memory storage.TokenStorage.
type fakeStorage struct {
	data *storage.AuthData
}

func (f *fakeStorage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	copied := *auth
	f.data = &copied
	return nil
}

func (f *fakeStorage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	if f.data == nil {
		return nil, storage.ErrAuthNotFound
	}
	copied := *f.data
	return &copied, nil
}

func (f *fakeStorage) DeleteAuth(ctx context.Context) error {
	f.data = nil
	return nil
}

func TestBootstrap_NoTokens(t *testing.T) {
	authAPI := &fakeAuthAPI{
		currentUserFunc: func() (*api.User, error) {
			return nil, fmt.Errorf("must not be called")
		},
	}
	m := NewManager(authAPI, &fakeStorage{}, nil)

	require.NoError(t, m.Bootstrap(context.Background()))
	assert.Equal(t, StatusAnonymous, m.Status())
	assert.Nil(t, m.User())
	assert.Zero(t, authAPI.currentUserCalls, "no identity fetch without tokens")
}

func TestBootstrap_ValidTokens(t *testing.T) {
	authAPI := &fakeAuthAPI{
		currentUserFunc: func() (*api.User, error) {
			return &api.User{ID: 1, Username: "alice"}, nil
		},
	}
	tokens := &fakeStorage{data: &storage.AuthData{
		AccessToken:  "access",
		RefreshToken: "refresh",
	}}
	m := NewManager(authAPI, tokens, nil)

	require.NoError(t, m.Bootstrap(context.Background()))
	assert.Equal(t, StatusAuthenticated, m.Status())
	require.NotNil(t, m.User())
	assert.Equal(t, "alice", m.User().Username)
	assert.True(t, m.IsAuthenticated())
}

func TestBootstrap_StaleTokensDegradeToAnonymous(t *testing.T) {
	authAPI := &fakeAuthAPI{
		currentUserFunc: func() (*api.User, error) {
			return nil, &api.Error{StatusCode: http.StatusUnauthorized}
		},
	}
	tokens := &fakeStorage{data: &storage.AuthData{
		AccessToken:  "stale",
		RefreshToken: "stale",
	}}
	m := NewManager(authAPI, tokens, nil)

	// A dead session is not an application error.
	require.NoError(t, m.Bootstrap(context.Background()))
	assert.Equal(t, StatusAnonymous, m.Status())
	assert.Nil(t, m.User())
	assert.Nil(t, tokens.data, "stale pair is cleared")
}

func TestLogin(t *testing.T) {
	authAPI := &fakeAuthAPI{
		createTokenFunc: func(req api.CreateTokenRequest) (*api.TokenPairResponse, error) {
			assert.Equal(t, "alice", req.Username)
			assert.Equal(t, "pw123", req.Password)
			return &api.TokenPairResponse{Access: "access-1", Refresh: "refresh-1"}, nil
		},
		currentUserFunc: func() (*api.User, error) {
			return &api.User{ID: 1, Username: "alice"}, nil
		},
	}
	tokens := &fakeStorage{}
	m := NewManager(authAPI, tokens, nil)

	require.NoError(t, m.Login(context.Background(), "alice", "pw123"))

	assert.Equal(t, StatusAuthenticated, m.Status())
	require.NotNil(t, m.User())
	assert.Equal(t, "alice", m.User().Username)

	require.NotNil(t, tokens.data)
	assert.Equal(t, "access-1", tokens.data.AccessToken)
	assert.Equal(t, "refresh-1", tokens.data.RefreshToken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	authAPI := &fakeAuthAPI{
		createTokenFunc: func(req api.CreateTokenRequest) (*api.TokenPairResponse, error) {
			return nil, &api.Error{StatusCode: http.StatusUnauthorized, Message: "no active account"}
		},
	}
	tokens := &fakeStorage{}
	m := NewManager(authAPI, tokens, nil)

	err := m.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, StatusBootstrapping, m.Status(), "state unchanged on failure")
	assert.Nil(t, tokens.data, "no tokens saved on rejected credentials")
}

func TestLogin_RejectsBadUsernameLocally(t *testing.T) {
	authAPI := &fakeAuthAPI{}
	m := NewManager(authAPI, &fakeStorage{}, nil)

	err := m.Login(context.Background(), "a!", "pw123")
	require.Error(t, err)
	assert.Zero(t, authAPI.createTokenCalls, "invalid input never reaches the server")
}

func TestLogin_EmptyPassword(t *testing.T) {
	authAPI := &fakeAuthAPI{}
	m := NewManager(authAPI, &fakeStorage{}, nil)

	err := m.Login(context.Background(), "alice", "")
	require.Error(t, err)
	assert.Zero(t, authAPI.createTokenCalls)
}

func TestRegister_ThenLogin(t *testing.T) {
	authAPI := &fakeAuthAPI{
		registerFunc: func(req api.RegisterRequest) (*api.User, error) {
			return &api.User{ID: 2, Username: req.Username, Email: req.Email}, nil
		},
		createTokenFunc: func(req api.CreateTokenRequest) (*api.TokenPairResponse, error) {
			return &api.TokenPairResponse{Access: "access-2", Refresh: "refresh-2"}, nil
		},
		currentUserFunc: func() (*api.User, error) {
			return &api.User{ID: 2, Username: "bob"}, nil
		},
	}
	tokens := &fakeStorage{}
	m := NewManager(authAPI, tokens, nil)

	err := m.Register(context.Background(), "bob", "bob@example.com", "longenough")
	require.NoError(t, err)

	assert.Equal(t, 1, authAPI.registerCalls)
	assert.Equal(t, 1, authAPI.createTokenCalls, "registration logs the user in")
	assert.Equal(t, StatusAuthenticated, m.Status())
	require.NotNil(t, tokens.data)
	assert.Equal(t, "access-2", tokens.data.AccessToken)
}

func TestRegister_Conflict(t *testing.T) {
	authAPI := &fakeAuthAPI{
		registerFunc: func(req api.RegisterRequest) (*api.User, error) {
			return nil, &api.Error{StatusCode: http.StatusConflict, Message: "username taken"}
		},
	}
	m := NewManager(authAPI, &fakeStorage{}, nil)

	err := m.Register(context.Background(), "bob", "bob@example.com", "longenough")
	require.Error(t, err)
	assert.True(t, api.IsConflict(err))
	assert.Zero(t, authAPI.createTokenCalls, "no login attempt after a rejected registration")
}

func TestRegister_LocalValidation(t *testing.T) {
	authAPI := &fakeAuthAPI{}
	m := NewManager(authAPI, &fakeStorage{}, nil)

	err := m.Register(context.Background(), "bob", "not-an-email", "longenough")
	require.Error(t, err)
	assert.Zero(t, authAPI.registerCalls)

	err = m.Register(context.Background(), "bob", "bob@example.com", "short")
	require.Error(t, err)
	assert.Zero(t, authAPI.registerCalls)
}

func TestLogout(t *testing.T) {
	authAPI := &fakeAuthAPI{
		currentUserFunc: func() (*api.User, error) {
			return &api.User{ID: 1, Username: "alice"}, nil
		},
	}
	tokens := &fakeStorage{data: &storage.AuthData{
		AccessToken:  "access",
		RefreshToken: "refresh",
	}}
	m := NewManager(authAPI, tokens, nil)
	require.NoError(t, m.Bootstrap(context.Background()))
	require.True(t, m.IsAuthenticated())

	require.NoError(t, m.Logout(context.Background()))

	assert.Equal(t, StatusAnonymous, m.Status())
	assert.Nil(t, m.User())
	assert.Nil(t, tokens.data)
}

func TestLogout_WhenAnonymous(t *testing.T) {
	m := NewManager(&fakeAuthAPI{}, &fakeStorage{}, nil)

	require.NoError(t, m.Logout(context.Background()))
	assert.Equal(t, StatusAnonymous, m.Status())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "bootstrapping", StatusBootstrapping.String())
	assert.Equal(t, "anonymous", StatusAnonymous.String())
	assert.Equal(t, "authenticated", StatusAuthenticated.String())
}
