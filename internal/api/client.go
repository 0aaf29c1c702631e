// ABOUTME: HTTP client for the CollabVoice API
// ABOUTME: Wraps auth, session verification, and dashboard calls for CLI usage

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is the API client for the CollabVoice backend. One instance is
// shared by the whole process; its transport applies the bearer and
// anti-forgery pipeline to every outgoing request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL (including /api).
// tokens may be nil for an unauthenticated client.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: newAuthTransport(baseURL, tokens),
		},
	}
}

// CSRFToken fetches a fresh anti-forgery token. Exposed for the dashboard's
// diagnostics view; mutating calls fetch their own token in the transport.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+csrfTokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp)
	}

	var body csrfResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("invalid response from backend: %w", err)
	}
	return body.CSRFToken, nil
}

// Login calls POST /auth/login with credential login fields.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	var payload AuthPayload
	err := c.postJSON(ctx, "/auth/login", LoginRequest{Email: email, Password: password}, &payload)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// Register calls POST /auth/register with new-account fields.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthPayload, error) {
	var payload AuthPayload
	req := RegisterRequest{Username: username, Email: email, Password: password}
	if err := c.postJSON(ctx, "/auth/register", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ExchangeOAuthCode calls POST /auth/oauth/<provider>, trading an
// authorization code for a session token and profile.
func (c *Client) ExchangeOAuthCode(ctx context.Context, provider, code string) (*AuthPayload, error) {
	var payload AuthPayload
	if err := c.postJSON(ctx, "/auth/oauth/"+provider, oauthExchangeRequest{Code: code}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Verify validates a token against GET /auth/verify and returns the canonical
// profile. The token is passed explicitly so callers can validate a candidate
// that is not (or not yet) the stored one. A 401 maps to ErrUnauthorized.
func (c *Client) Verify(ctx context.Context, token string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/verify", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Explicit header wins over the transport's stored token.
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return &body.User, nil
}

// Repositories calls GET /github/repositories for the dashboard.
func (c *Client) Repositories(ctx context.Context) (*RepositoryList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/github/repositories", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var list RepositoryList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return &list, nil
}

// postJSON marshals in, POSTs it to path, and decodes a 2xx body into out.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages.
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses into an *APIError.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
		return &APIError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("backend returned status %d", resp.StatusCode),
		}
	}
	return &APIError{
		Status:  resp.StatusCode,
		Code:    errResp.Code,
		Message: errResp.Error,
	}
}
