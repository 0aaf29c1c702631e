// ABOUTME: Configuration loader for the collabvoice CLI and dev server
// ABOUTME: Loads settings from environment variables (and .env) with defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds runtime settings shared by the CLI and the embedded dev server.
type Config struct {
	// Client
	APIBaseURL string // base URL of the CollabVoice API, including /api

	// Dev server
	Port               string
	JWTSecret          string
	TokenTTLDays       int
	CSRFTokenTTL       int      // seconds a minted anti-forgery token stays valid
	CORSAllowedOrigins []string // allowed CORS origins (empty = block all cross-origin)

	// Rate limiting (auth endpoints only)
	RateLimitEnabled bool
	RateLimitAuth    int // requests per minute for login/register/oauth
}

const defaultAPIBaseURL = "http://localhost:8080/api"

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL: getEnv("COLLABVOICE_API_URL", defaultAPIBaseURL),

		Port:               getEnv("PORT", "8080"),
		JWTSecret:          getEnv("JWT_SECRET_KEY", "dev-secret-key"),
		TokenTTLDays:       getEnvInt("TOKEN_TTL_DAYS", 7),
		CSRFTokenTTL:       getEnvInt("CSRF_TOKEN_TTL", 300),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitAuth:    getEnvInt("RATE_LIMIT_AUTH", 30),
	}

	if cfg.TokenTTLDays < 1 {
		return nil, fmt.Errorf("TOKEN_TTL_DAYS must be at least 1, got %d", cfg.TokenTTLDays)
	}
	if cfg.RateLimitAuth < 1 || cfg.RateLimitAuth > 10000 {
		return nil, fmt.Errorf("RATE_LIMIT_AUTH must be between 1 and 10000, got %d", cfg.RateLimitAuth)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
