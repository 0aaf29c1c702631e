// ABOUTME: Classification of OAuth provider redirects into tagged variants
// ABOUTME: Dispatches on which query parameters the redirect carries

package oauthflow

import "net/url"

// Redirect is the tagged variant produced from a provider redirect's query
// string. The two supported providers use genuinely different contracts, so
// the variants are dispatched to separate state machines rather than unified.
type Redirect interface {
	redirect()
}

// CodeRedirect is the authorization-code shape: the provider returned a
// one-time code that must be exchanged with the backend for a session.
type CodeRedirect struct {
	Code string
}

// TokenRedirect is the token-in-redirect shape: the backend already completed
// the exchange and delivered the session token in the URL.
type TokenRedirect struct {
	Token    string
	Provider string
}

// ErrorRedirect carries a provider- or backend-reported failure flag.
type ErrorRedirect struct {
	Reason   string
	Provider string
}

func (CodeRedirect) redirect()  {}
func (TokenRedirect) redirect() {}
func (ErrorRedirect) redirect() {}

// ClassifyRedirect inspects the redirect query parameters and returns the
// matching variant, or nil when the redirect carries none of the expected
// parameters (each flow turns that into its own terminal error).
func ClassifyRedirect(query url.Values) Redirect {
	provider := query.Get("provider")
	if provider == "" {
		provider = "OAuth"
	}

	if reason := query.Get("error"); reason != "" {
		return ErrorRedirect{Reason: reason, Provider: provider}
	}
	if code := query.Get("code"); code != "" {
		return CodeRedirect{Code: code}
	}
	if token := query.Get("token"); token != "" {
		return TokenRedirect{Token: token, Provider: provider}
	}
	return nil
}
