// ABOUTME: One-shot state machines for the two OAuth redirect contracts
// ABOUTME: Code-exchange POSTs the code to the backend; token-in-redirect trusts the URL

package oauthflow

import (
	"context"
	"net/url"

	"github.com/collabvoice/cli/internal/api"
)

// Exchanger trades an authorization code for a session. *api.Client
// satisfies it.
type Exchanger interface {
	ExchangeOAuthCode(ctx context.Context, provider, code string) (*api.AuthPayload, error)
}

// SessionAdopter persists a freshly delivered session. *session.Controller
// satisfies it.
type SessionAdopter interface {
	AdoptToken(token string, profile *api.Profile) error
}

// CodeFlowState is the code-exchange machine: awaiting-code → exchanging →
// authenticated | error.
type CodeFlowState string

const (
	CodeAwaiting      CodeFlowState = "awaiting-code"
	CodeExchanging    CodeFlowState = "exchanging"
	CodeAuthenticated CodeFlowState = "authenticated"
	CodeError         CodeFlowState = "error"
)

// CodeFlow handles the authorization-code redirect contract. It is one-shot:
// once it reaches a terminal state it never transitions again.
type CodeFlow struct {
	Provider string

	exchanger Exchanger
	sessions  SessionAdopter

	state  CodeFlowState
	errMsg string
	user   *api.Profile
}

// NewCodeFlow creates a code-exchange flow for the named provider.
func NewCodeFlow(provider string, exchanger Exchanger, sessions SessionAdopter) *CodeFlow {
	return &CodeFlow{
		Provider:  provider,
		exchanger: exchanger,
		sessions:  sessions,
		state:     CodeAwaiting,
	}
}

// State returns the machine's current state.
func (f *CodeFlow) State() CodeFlowState { return f.state }

// Err returns the terminal error message, if the machine ended in error.
func (f *CodeFlow) Err() string { return f.errMsg }

// User returns the authenticated profile after a successful exchange.
func (f *CodeFlow) User() *api.Profile { return f.user }

// Run consumes the redirect query. A missing code is terminal without ever
// calling the backend; otherwise the code is exchanged and the returned
// (token, profile) pair persisted.
func (f *CodeFlow) Run(ctx context.Context, query url.Values) CodeFlowState {
	if f.state != CodeAwaiting {
		return f.state
	}

	redirect := ClassifyRedirect(query)
	code, ok := redirect.(CodeRedirect)
	if !ok {
		if errRedirect, isErr := redirect.(ErrorRedirect); isErr {
			f.fail("Authentication failed: " + errRedirect.Reason)
		} else {
			f.fail("No authorization code received from " + f.Provider)
		}
		return f.state
	}

	f.state = CodeExchanging
	payload, err := f.exchanger.ExchangeOAuthCode(ctx, f.Provider, code.Code)
	if err != nil {
		if apiErr, isAPI := api.AsAPIError(err); isAPI {
			f.fail(apiErr.Message)
		} else {
			f.fail("Failed to authenticate with " + f.Provider)
		}
		return f.state
	}

	user := payload.User
	if err := f.sessions.AdoptToken(payload.Token, &user); err != nil {
		f.fail("Failed to save credentials: " + err.Error())
		return f.state
	}

	f.user = &user
	f.state = CodeAuthenticated
	return f.state
}

func (f *CodeFlow) fail(msg string) {
	f.state = CodeError
	f.errMsg = msg
}

// TokenFlowState is the token-in-redirect machine: authenticating →
// success | error.
type TokenFlowState string

const (
	TokenAuthenticating TokenFlowState = "authenticating"
	TokenSuccess        TokenFlowState = "success"
	TokenError          TokenFlowState = "error"
)

// TokenFlow handles the token-in-redirect contract. The token is persisted
// without independent verification; the next guarded view validates it.
type TokenFlow struct {
	sessions SessionAdopter

	state    TokenFlowState
	errMsg   string
	provider string
}

// NewTokenFlow creates a token-in-redirect flow.
func NewTokenFlow(sessions SessionAdopter) *TokenFlow {
	return &TokenFlow{sessions: sessions, state: TokenAuthenticating}
}

// State returns the machine's current state.
func (f *TokenFlow) State() TokenFlowState { return f.state }

// Err returns the terminal error message, if the machine ended in error.
func (f *TokenFlow) Err() string { return f.errMsg }

// Provider names the provider reported by the redirect ("OAuth" if absent).
func (f *TokenFlow) Provider() string { return f.provider }

// Run consumes the redirect query. One-shot like CodeFlow.
func (f *TokenFlow) Run(query url.Values) TokenFlowState {
	if f.state != TokenAuthenticating {
		return f.state
	}

	switch redirect := ClassifyRedirect(query).(type) {
	case ErrorRedirect:
		f.provider = redirect.Provider
		f.fail("Authentication failed")
	case TokenRedirect:
		f.provider = redirect.Provider
		if err := f.sessions.AdoptToken(redirect.Token, nil); err != nil {
			f.fail("Failed to save credentials: " + err.Error())
			break
		}
		f.state = TokenSuccess
	default:
		f.provider = "OAuth"
		f.fail("No authentication token received")
	}
	return f.state
}

func (f *TokenFlow) fail(msg string) {
	f.state = TokenError
	f.errMsg = msg
}
