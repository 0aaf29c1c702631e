// ABOUTME: Request interception pipeline for the API client
// ABOUTME: Attaches bearer credentials and a fresh anti-forgery token per mutating request

package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	csrfHeaderName   = "X-CSRFToken"
	csrfTokenPath    = "/auth/csrf-token"
	csrfFetchTimeout = 10 * time.Second
)

// TokenSource supplies the current bearer token, if any. The credential store
// satisfies this interface.
type TokenSource interface {
	Token() (string, bool)
}

// authTransport applies the outgoing request pipeline:
//  1. attach Authorization: Bearer <token> when a token is stored and the
//     caller did not already set one
//  2. for mutating verbs (except the anti-forgery endpoint itself), fetch a
//     fresh anti-forgery token and attach it as X-CSRFToken
//
// Each mutating request performs its own anti-forgery fetch. Tokens are never
// cached across requests, so concurrent requests cannot share a stale one.
type authTransport struct {
	base    http.RoundTripper
	tokens  TokenSource
	csrfURL string
	// csrfClient bypasses this transport; fetching the anti-forgery token
	// through it again would recurse forever.
	csrfClient *http.Client
}

func newAuthTransport(baseURL string, tokens TokenSource) *authTransport {
	return &authTransport{
		base:    http.DefaultTransport,
		tokens:  tokens,
		csrfURL: baseURL + csrfTokenPath,
		csrfClient: &http.Client{
			Timeout: csrfFetchTimeout,
		},
	}
}

// RoundTrip implements http.RoundTripper.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Per RoundTripper contract the request must not be mutated in place.
	req = req.Clone(req.Context())

	if req.Header.Get("Authorization") == "" && t.tokens != nil {
		if token, ok := t.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if isMutating(req.Method) && !strings.HasSuffix(req.URL.Path, csrfTokenPath) {
		token, err := t.fetchCSRFToken(req)
		if err != nil {
			// Non-fatal: the server is the final enforcer and will reject
			// the call itself if the header is required.
			slog.Warn("could not fetch anti-forgery token", "error", err)
		} else {
			req.Header.Set(csrfHeaderName, token)
		}
	}

	return t.base.RoundTrip(req)
}

// fetchCSRFToken performs the request-scoped anti-forgery fetch. It completes
// before the dependent mutating request is sent.
func (t *authTransport) fetchCSRFToken(parent *http.Request) (string, error) {
	req, err := http.NewRequestWithContext(parent.Context(), http.MethodGet, t.csrfURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := t.csrfClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anti-forgery endpoint returned status %d", resp.StatusCode)
	}

	var body csrfResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("invalid anti-forgery response: %w", err)
	}
	if body.CSRFToken == "" {
		return "", fmt.Errorf("anti-forgery response missing token")
	}
	return body.CSRFToken, nil
}

// isMutating reports whether the method is a state-changing verb.
func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
