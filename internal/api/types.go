// ABOUTME: Wire types for the CollabVoice API
// ABOUTME: Mirrors the JSON shapes served by the identity and dashboard endpoints

package api

// Profile is the canonical user record as served by the backend. The client
// treats it as a cached copy of server truth and never mutates it locally.
type Profile struct {
	ID              int    `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	OAuthProvider   string `json:"oauth_provider,omitempty"`
	HasGithubAccess bool   `json:"has_github_access,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// AuthPayload is the success shape of login, register, and OAuth exchange.
type AuthPayload struct {
	Message string  `json:"message,omitempty"`
	Token   string  `json:"token"`
	User    Profile `json:"user"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// oauthExchangeRequest is the body of POST /auth/oauth/<provider>.
type oauthExchangeRequest struct {
	Code string `json:"code"`
}

// verifyResponse is the success shape of GET /auth/verify.
type verifyResponse struct {
	User Profile `json:"user"`
}

// csrfResponse is the shape of GET /auth/csrf-token.
type csrfResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// ErrorResponse represents an API error body. Code is the structured
// discriminator callers branch on; Error is the human-readable message.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RepoOwner identifies the owning account of a repository.
type RepoOwner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// Repository is one entry of GET /github/repositories.
type Repository struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	Private     bool      `json:"private"`
	HTMLURL     string    `json:"html_url"`
	CloneURL    string    `json:"clone_url"`
	SSHURL      string    `json:"ssh_url"`
	Language    string    `json:"language"`
	Stargazers  int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	UpdatedAt   string    `json:"updated_at"`
	CreatedAt   string    `json:"created_at"`
	Owner       RepoOwner `json:"owner"`
}

// RepositoryList is the full response of GET /github/repositories.
type RepositoryList struct {
	Repositories []Repository `json:"repositories"`
	TotalCount   int          `json:"total_count"`
}
