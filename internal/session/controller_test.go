// ABOUTME: Tests for the session controller lifecycle and guard queries
// ABOUTME: Uses a fake backend API against the real on-disk credential store

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabvoice/cli/internal/api"
	"github.com/collabvoice/cli/internal/credstore"
)

// fakeAPI scripts the backend responses the controller sees
type fakeAPI struct {
	loginPayload    *api.AuthPayload
	loginErr        error
	registerPayload *api.AuthPayload
	registerErr     error
	verifyProfile   *api.Profile
	verifyErr       error

	verifyCalls int
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*api.AuthPayload, error) {
	return f.loginPayload, f.loginErr
}

func (f *fakeAPI) Register(ctx context.Context, username, email, password string) (*api.AuthPayload, error) {
	return f.registerPayload, f.registerErr
}

func (f *fakeAPI) Verify(ctx context.Context, token string) (*api.Profile, error) {
	f.verifyCalls++
	return f.verifyProfile, f.verifyErr
}

func newTestController(t *testing.T, backend *fakeAPI) (*Controller, *credstore.Store) {
	t.Helper()
	store := credstore.New(t.TempDir())
	return NewController(backend, store), store
}

func TestInit_EmptyStore(t *testing.T) {
	backend := &fakeAPI{}
	ctrl, _ := newTestController(t, backend)

	state := ctrl.Init(context.Background())

	assert.Equal(t, StatusUnauthenticated, state.Status)
	assert.False(t, state.Authenticated)
	assert.False(t, state.Loading)
	assert.Zero(t, backend.verifyCalls, "no token stored, nothing to verify")
}

func TestInit_ValidStoredToken(t *testing.T) {
	profile := &api.Profile{ID: 1, Username: "dev", Email: "dev@example.com"}
	backend := &fakeAPI{verifyProfile: profile}
	ctrl, store := newTestController(t, backend)
	require.NoError(t, store.Set("stored-token", profile))

	state := ctrl.Init(context.Background())

	assert.Equal(t, StatusAuthenticated, state.Status)
	assert.True(t, state.Authenticated)
	require.NotNil(t, state.User)
	assert.Equal(t, "dev", state.User.Username)
	assert.Equal(t, 1, backend.verifyCalls)
}

func TestInit_OnlyVerifiesOnce(t *testing.T) {
	backend := &fakeAPI{verifyProfile: &api.Profile{ID: 1, Username: "dev"}}
	ctrl, store := newTestController(t, backend)
	require.NoError(t, store.Set("stored-token", nil))

	ctrl.Init(context.Background())
	ctrl.Init(context.Background())

	assert.Equal(t, 1, backend.verifyCalls)
}

func TestInit_RejectedTokenClearsStore(t *testing.T) {
	backend := &fakeAPI{verifyErr: api.ErrUnauthorized}
	ctrl, store := newTestController(t, backend)
	require.NoError(t, store.Set("expired-token", &api.Profile{ID: 1, Username: "dev"}))

	state := ctrl.Init(context.Background())

	assert.Equal(t, StatusUnauthenticated, state.Status)
	token, profile, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, profile)
}

func TestInit_NetworkFailureFailsClosed(t *testing.T) {
	backend := &fakeAPI{verifyErr: errors.New("cannot connect to backend")}
	ctrl, store := newTestController(t, backend)
	require.NoError(t, store.Set("stored-token", nil))

	state := ctrl.Init(context.Background())

	assert.Equal(t, StatusUnauthenticated, state.Status)
	token, _, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, token, "unverifiable session must be dropped, not kept")
}

func TestLogin_Success(t *testing.T) {
	backend := &fakeAPI{loginPayload: &api.AuthPayload{
		Token: "fresh-token",
		User:  api.Profile{ID: 2, Username: "dev", Email: "dev@example.com"},
	}}
	ctrl, store := newTestController(t, backend)

	result := ctrl.Login(context.Background(), "dev@example.com", "secret")

	require.True(t, result.OK)
	assert.Equal(t, "dev", result.User.Username)

	state := ctrl.Snapshot()
	assert.Equal(t, StatusAuthenticated, state.Status)

	token, profile, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	require.NotNil(t, profile)
	assert.Equal(t, "dev", profile.Username)
}

func TestLogin_ServerRejectionKeepsMessageAndCode(t *testing.T) {
	backend := &fakeAPI{loginErr: &api.APIError{
		Status:  404,
		Code:    api.CodeUserNotFound,
		Message: "User not found",
	}}
	ctrl, store := newTestController(t, backend)

	result := ctrl.Login(context.Background(), "ghost@example.com", "secret")

	require.False(t, result.OK)
	assert.Equal(t, "User not found", result.Err)
	assert.Equal(t, api.CodeUserNotFound, result.Code)

	// A failed login leaves state and storage untouched.
	assert.NotEqual(t, StatusAuthenticated, ctrl.Snapshot().Status)
	token, _, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestLogin_TransportErrorGetsFallbackMessage(t *testing.T) {
	backend := &fakeAPI{loginErr: errors.New("request timed out")}
	ctrl, _ := newTestController(t, backend)

	result := ctrl.Login(context.Background(), "dev@example.com", "secret")

	require.False(t, result.OK)
	assert.Equal(t, "Login failed: request timed out", result.Err)
	assert.Empty(t, result.Code)
}

func TestRegister_Success(t *testing.T) {
	backend := &fakeAPI{registerPayload: &api.AuthPayload{
		Token: "new-account-token",
		User:  api.Profile{ID: 3, Username: "newdev"},
	}}
	ctrl, store := newTestController(t, backend)

	result := ctrl.Register(context.Background(), "newdev", "new@example.com", "secret")

	require.True(t, result.OK)
	token, _, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "new-account-token", token)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	backend := &fakeAPI{registerErr: &api.APIError{
		Status:  400,
		Code:    api.CodeEmailRegistered,
		Message: "Email already registered",
	}}
	ctrl, _ := newTestController(t, backend)

	result := ctrl.Register(context.Background(), "dev", "taken@example.com", "secret")

	require.False(t, result.OK)
	assert.Equal(t, api.CodeEmailRegistered, result.Code)
}

func TestLogout_EmptiesStore(t *testing.T) {
	backend := &fakeAPI{loginPayload: &api.AuthPayload{
		Token: "fresh-token",
		User:  api.Profile{ID: 2, Username: "dev"},
	}}
	ctrl, store := newTestController(t, backend)
	require.True(t, ctrl.Login(context.Background(), "dev@example.com", "secret").OK)

	ctrl.Logout()

	assert.Equal(t, StatusUnauthenticated, ctrl.Snapshot().Status)
	token, profile, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, profile)
}

func TestAdoptToken_ThenRefreshBackfillsProfile(t *testing.T) {
	profile := &api.Profile{ID: 4, Username: "oauth-dev", Email: "oauth@example.com"}
	backend := &fakeAPI{verifyProfile: profile}
	ctrl, store := newTestController(t, backend)

	// Token-in-redirect delivers the token with no profile attached.
	require.NoError(t, ctrl.AdoptToken("redirect-token", nil))
	assert.True(t, ctrl.Snapshot().Authenticated)

	state := ctrl.Refresh(context.Background())

	assert.Equal(t, StatusAuthenticated, state.Status)
	require.NotNil(t, state.User)
	assert.Equal(t, "oauth-dev", state.User.Username)

	// The store now holds the full pair.
	token, stored, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "redirect-token", token)
	require.NotNil(t, stored)
	assert.Equal(t, "oauth-dev", stored.Username)
}

func TestRefresh_NoStoredToken(t *testing.T) {
	backend := &fakeAPI{}
	ctrl, _ := newTestController(t, backend)

	state := ctrl.Refresh(context.Background())

	assert.Equal(t, StatusUnauthenticated, state.Status)
	assert.Zero(t, backend.verifyCalls)
}

func TestRefresh_RejectedTokenFailsClosed(t *testing.T) {
	backend := &fakeAPI{verifyErr: api.ErrUnauthorized}
	ctrl, store := newTestController(t, backend)
	require.NoError(t, ctrl.AdoptToken("stale-token", nil))
	backend.verifyCalls = 0

	state := ctrl.Refresh(context.Background())

	assert.Equal(t, StatusUnauthenticated, state.Status)
	assert.Equal(t, 1, backend.verifyCalls)
	token, _, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, token)
}
