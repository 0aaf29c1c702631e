// ABOUTME: Process-wide session controller holding auth state and lifecycle
// ABOUTME: Owns init verification, login/register/logout, and guard status queries

package session

import (
	"context"
	"sync"

	"github.com/collabvoice/cli/internal/api"
)

// Status is the auth view-state machine. Verifying is transient and occurs
// once per Init (and once per Refresh for protected-view entry).
type Status string

const (
	StatusUnknown         Status = "unknown"
	StatusVerifying       Status = "verifying"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// State is a point-in-time snapshot of the session.
type State struct {
	Status        Status
	User          *api.Profile
	Authenticated bool
	Loading       bool
}

// AuthResult is returned by every auth-mutating operation. Callers branch on
// OK and never inspect transport-level detail; Code carries the server's
// structured error code for UI branching.
type AuthResult struct {
	OK   bool
	User *api.Profile
	Err  string
	Code string
}

// AuthAPI is the slice of the API client the controller needs. Narrowed to an
// interface so tests can substitute it.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.AuthPayload, error)
	Register(ctx context.Context, username, email, password string) (*api.AuthPayload, error)
	Verify(ctx context.Context, token string) (*api.Profile, error)
}

// CredentialStore is the durable slot the controller persists sessions into.
type CredentialStore interface {
	Set(token string, profile *api.Profile) error
	Get() (string, *api.Profile, error)
	Clear() error
}

// Controller is the canonical session-status provider. All screens and
// commands consult it; nothing else reads the credential store for decisions.
type Controller struct {
	api   AuthAPI
	store CredentialStore

	mu       sync.Mutex
	state    State
	initOnce sync.Once
}

// NewController constructs a controller in the loading state. Init must be
// called once before guard queries are meaningful.
func NewController(authAPI AuthAPI, store CredentialStore) *Controller {
	return &Controller{
		api:   authAPI,
		store: store,
		state: State{Status: StatusUnknown, Loading: true},
	}
}

// Init performs the one-time startup pass: read the store, verify any stored
// token, and settle on a terminal state. Loading flips to false regardless of
// outcome. Subsequent calls return the current snapshot without re-verifying.
func (c *Controller) Init(ctx context.Context) State {
	c.initOnce.Do(func() {
		token, _, err := c.store.Get()
		if err != nil || token == "" {
			c.setState(State{Status: StatusUnauthenticated})
			return
		}

		c.setState(State{Status: StatusVerifying, Loading: true})
		c.verifyStored(ctx, token)
	})
	return c.Snapshot()
}

// Login authenticates with email and password. On success the (token,
// profile) pair is persisted and state flips to authenticated. On failure the
// server's message is returned unmodified; state and storage are untouched.
func (c *Controller) Login(ctx context.Context, email, password string) AuthResult {
	payload, err := c.api.Login(ctx, email, password)
	if err != nil {
		return failedResult(err, "Login failed")
	}
	return c.adopt(payload)
}

// Register creates a new account. Same persistence and state contract as
// Login.
func (c *Controller) Register(ctx context.Context, username, email, password string) AuthResult {
	payload, err := c.api.Register(ctx, username, email, password)
	if err != nil {
		return failedResult(err, "Registration failed")
	}
	return c.adopt(payload)
}

// Logout clears the store and resets state. Purely local; the server keeps no
// session to invalidate.
func (c *Controller) Logout() {
	_ = c.store.Clear()
	c.setState(State{Status: StatusUnauthenticated})
}

// AdoptToken persists a token delivered out of band (OAuth redirect) and
// flips state to authenticated without verifying. profile may be nil for the
// token-in-redirect shape; the next Refresh fills it in from the server.
func (c *Controller) AdoptToken(token string, profile *api.Profile) error {
	if err := c.store.Set(token, profile); err != nil {
		return err
	}
	c.setState(State{Status: StatusAuthenticated, User: profile, Authenticated: true})
	return nil
}

// Snapshot returns the cached state. The redirect-if-authenticated guard
// reads this; it does not trigger any network activity.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Refresh re-verifies the stored token against the server and returns the
// settled state. The protected-view guard calls this on entry: verification
// failure of any kind clears storage and lands unauthenticated (fail closed).
func (c *Controller) Refresh(ctx context.Context) State {
	token, _, err := c.store.Get()
	if err != nil || token == "" {
		c.setState(State{Status: StatusUnauthenticated})
		return c.Snapshot()
	}

	c.verifyStored(ctx, token)
	return c.Snapshot()
}

// verifyStored validates token with the server and settles a terminal state.
func (c *Controller) verifyStored(ctx context.Context, token string) {
	profile, err := c.api.Verify(ctx, token)
	if err != nil {
		// Unauthorized and network failure are treated identically: the
		// session is dropped rather than preserved optimistically.
		_ = c.store.Clear()
		c.setState(State{Status: StatusUnauthenticated})
		return
	}

	// A token adopted from an OAuth redirect arrives without a profile;
	// fill the stored pair in from the canonical server response.
	if _, stored, _ := c.store.Get(); stored == nil {
		_ = c.store.Set(token, profile)
	}

	c.setState(State{Status: StatusAuthenticated, User: profile, Authenticated: true})
}

// adopt persists a successful auth payload and flips state.
func (c *Controller) adopt(payload *api.AuthPayload) AuthResult {
	user := payload.User
	if err := c.store.Set(payload.Token, &user); err != nil {
		return AuthResult{OK: false, Err: "failed to save credentials: " + err.Error()}
	}
	c.setState(State{Status: StatusAuthenticated, User: &user, Authenticated: true})
	return AuthResult{OK: true, User: &user}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// failedResult maps an API error to the result value surfaced to callers.
func failedResult(err error, fallback string) AuthResult {
	if apiErr, ok := api.AsAPIError(err); ok {
		return AuthResult{OK: false, Err: apiErr.Message, Code: apiErr.Code}
	}
	return AuthResult{OK: false, Err: fallback + ": " + err.Error()}
}
