// ABOUTME: Auth handlers for the dev identity service
// ABOUTME: Login, register, verify, csrf-token, and the two OAuth redirect shapes

package devserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/collabvoice/cli/internal/api"
	"github.com/collabvoice/cli/internal/devserver/middleware"
)

// CSRFToken mints a fresh anti-forgery token.
func (s *Server) CSRFToken(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"csrfToken": s.MintCSRFToken()})
}

// Login handles POST /api/auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Invalid request body", api.CodeValidationFailed, http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeError(w, "Missing email or password", api.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	user, err := s.users.Authenticate(req.Email, req.Password)
	switch {
	case errors.Is(err, ErrUserNotFound):
		s.writeError(w, "User not found", api.CodeUserNotFound, http.StatusNotFound)
		return
	case err != nil:
		slog.Warn("Authentication failed", "email", req.Email)
		s.writeError(w, "Invalid credentials", api.CodeInvalidCredentials, http.StatusUnauthorized)
		return
	}

	s.respondWithSession(w, http.StatusOK, "Login successful", user)
}

// Register handles POST /api/auth/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Invalid request body", api.CodeValidationFailed, http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		s.writeError(w, "Missing required fields", api.CodeValidationFailed, http.StatusBadRequest)
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		s.writeError(w, "Invalid email format", api.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	user, err := s.users.Create(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, ErrEmailRegistered):
		s.writeError(w, "Email already registered", api.CodeEmailRegistered, http.StatusBadRequest)
		return
	case errors.Is(err, ErrUsernameTaken):
		s.writeError(w, "Username already taken", api.CodeUsernameTaken, http.StatusBadRequest)
		return
	case err != nil:
		s.writeError(w, "Failed to create account", "", http.StatusInternalServerError)
		return
	}

	s.respondWithSession(w, http.StatusCreated, "Registration successful", user)
}

// Verify handles GET /api/auth/verify. RequireAuth has already validated the
// bearer token and stashed the user ID.
func (s *Server) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		s.writeError(w, "Token is invalid or expired", "", http.StatusUnauthorized)
		return
	}
	user, found := s.users.ByID(userID)
	if !found {
		s.writeError(w, "Token is invalid or expired", "", http.StatusUnauthorized)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]api.Profile{"user": user.Profile()})
}

// handleOAuth dispatches /api/auth/oauth/<provider> and
// /api/auth/oauth/<provider>/start by path shape and method.
func (s *Server) handleOAuth(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/auth/oauth/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodPost:
		s.oauthExchange(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "start" && r.Method == http.MethodGet:
		s.oauthStart(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

// oauthExchange implements the code-exchange contract: POST {code} in,
// {token, user} out.
func (s *Server) oauthExchange(w http.ResponseWriter, r *http.Request, provider string) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		s.writeError(w, "OAuth failed", api.CodeOAuthFailed, http.StatusBadRequest)
		return
	}

	email, ok := s.redeemOAuthCode(req.Code)
	if !ok {
		s.writeError(w, "OAuth failed", api.CodeOAuthFailed, http.StatusBadRequest)
		return
	}

	user, err := s.users.UpsertOAuth(provider, email)
	if err != nil {
		s.writeError(w, "OAuth failed", api.CodeOAuthFailed, http.StatusInternalServerError)
		return
	}

	s.respondWithSession(w, http.StatusOK, "Logged in via "+provider, user)
}

// oauthStart simulates the provider dance for local development. Google gets
// the code-exchange shape; GitHub gets the token-in-redirect shape. The
// `deny=1` query parameter simulates the user declining consent.
func (s *Server) oauthStart(w http.ResponseWriter, r *http.Request, provider string) {
	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		s.writeError(w, "redirect_uri is required", api.CodeValidationFailed, http.StatusBadRequest)
		return
	}
	target, err := url.Parse(redirectURI)
	if err != nil || target.Hostname() != "127.0.0.1" && target.Hostname() != "localhost" {
		s.writeError(w, "redirect_uri must be a loopback address", api.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	query := url.Values{}
	if r.URL.Query().Get("deny") == "1" {
		query.Set("error", "access_denied")
		query.Set("provider", provider)
		target.RawQuery = query.Encode()
		http.Redirect(w, r, target.String(), http.StatusFound)
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		email = "dev@collabvoice.dev"
	}

	switch provider {
	case "google":
		query.Set("code", s.mintOAuthCode(email))
	default:
		user, err := s.users.UpsertOAuth(provider, email)
		if err != nil {
			s.writeError(w, "OAuth failed", api.CodeOAuthFailed, http.StatusInternalServerError)
			return
		}
		token, err := s.tokens.Issue(user.ID)
		if err != nil {
			s.writeError(w, "OAuth failed", api.CodeOAuthFailed, http.StatusInternalServerError)
			return
		}
		query.Set("token", token)
		query.Set("provider", provider)
	}

	target.RawQuery = query.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// mintOAuthCode stores a one-time authorization code bound to an email.
func (s *Server) mintOAuthCode(email string) string {
	code := uuid.NewString()
	s.cache.Set("oauth-code:"+code, email)
	return code
}

// redeemOAuthCode resolves and invalidates an authorization code.
func (s *Server) redeemOAuthCode(code string) (string, bool) {
	val, ok := s.cache.Take("oauth-code:" + code)
	if !ok {
		return "", false
	}
	email, ok := val.(string)
	return email, ok
}

// respondWithSession issues a token for user and writes the auth payload.
func (s *Server) respondWithSession(w http.ResponseWriter, status int, message string, user *User) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		slog.Error("Failed to issue token", "error", err)
		s.writeError(w, "Failed to create session", "", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, status, api.AuthPayload{
		Message: message,
		Token:   token,
		User:    user.Profile(),
	})
}
