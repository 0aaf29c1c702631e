// ABOUTME: Local stand-in for the CollabVoice identity and dashboard API
// ABOUTME: Wires handlers, middleware chain, and graceful shutdown

package devserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/collabvoice/cli/internal/config"
	"github.com/collabvoice/cli/internal/devserver/cache"
	"github.com/collabvoice/cli/internal/devserver/middleware"
)

// Server implements every endpoint the CLI consumes, with the same JSON
// shapes and error codes as the hosted service. Development only.
type Server struct {
	cfg    *config.Config
	users  *UserStore
	tokens *TokenIssuer
	cache  *cache.Cache

	authLimiter *middleware.RateLimiter
}

// NewServer builds a dev server from config.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg:    cfg,
		users:  NewUserStore(),
		tokens: NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLDays)*24*time.Hour),
		cache:  cache.New(time.Duration(cfg.CSRFTokenTTL) * time.Second),
	}
	if cfg.RateLimitEnabled {
		s.authLimiter = middleware.NewRateLimiter(cfg.RateLimitAuth, time.Minute)
	}
	return s
}

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Routes returns all API routes for registration.
func (s *Server) Routes() []Route {
	requireAuth := middleware.RequireAuth(s.tokens)
	limitAuth := middleware.RateLimit(s.authLimiter, middleware.ClientIP)

	return []Route{
		{Method: http.MethodGet, Path: "/api/health", Handler: s.Health},
		{Method: http.MethodGet, Path: "/api/auth/csrf-token", Handler: s.CSRFToken},
		{Method: http.MethodPost, Path: "/api/auth/login", Handler: limitAuth(s.Login)},
		{Method: http.MethodPost, Path: "/api/auth/register", Handler: limitAuth(s.Register)},
		{Method: http.MethodGet, Path: "/api/auth/verify", Handler: requireAuth(s.Verify)},
		{Method: http.MethodGet, Path: "/api/github/repositories", Handler: requireAuth(s.Repositories)},
	}
}

// Handler assembles the full middleware chain around the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	for _, route := range s.Routes() {
		route := route
		mux.HandleFunc(route.Path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != route.Method && r.Method != http.MethodOptions {
				s.writeError(w, "Method not allowed", "", http.StatusMethodNotAllowed)
				return
			}
			route.Handler(w, r)
		})
	}

	// Provider path segment keeps these two off the static route table.
	limitAuth := middleware.RateLimit(s.authLimiter, middleware.ClientIP)
	mux.HandleFunc("/api/auth/oauth/", limitAuth(s.handleOAuth))

	return middleware.Chain(
		mux.ServeHTTP,
		middleware.LogRequest,
		middleware.CORS(s.cfg.CORSAllowedOrigins),
		middleware.CSRF(s),
	)
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Dev server listening", "port", s.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Health reports liveness.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "CollabVoice dev server is running with auth enabled",
	})
}

// MintCSRFToken creates a short-lived anti-forgery token.
func (s *Server) MintCSRFToken() string {
	token := uuid.NewString()
	s.cache.SetWithTTL("csrf:"+token, true, time.Duration(s.cfg.CSRFTokenTTL)*time.Second)
	return token
}

// Consume implements middleware.TokenConsumer: a token is valid exactly once.
func (s *Server) Consume(token string) bool {
	_, ok := s.cache.Take("csrf:" + token)
	return ok
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message, code string, status int) {
	s.writeJSON(w, status, struct {
		Error string `json:"error"`
		Code  string `json:"code,omitempty"`
	}{Error: message, Code: code})
}
