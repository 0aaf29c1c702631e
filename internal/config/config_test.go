// ABOUTME: Tests for environment-driven configuration loading
// ABOUTME: Covers defaults, overrides, and validation bounds

package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COLLABVOICE_API_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("TOKEN_TTL_DAYS", "")
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_AUTH", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8080/api" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TokenTTLDays != 7 {
		t.Errorf("TokenTTLDays = %d, want 7", cfg.TokenTTLDays)
	}
	if !cfg.RateLimitEnabled {
		t.Error("RateLimitEnabled = false, want true by default")
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Errorf("CORSAllowedOrigins = %v, want nil", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET_KEY", "prod-secret")
	t.Setenv("TOKEN_TTL_DAYS", "30")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://app.collabvoice.dev")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.JWTSecret != "prod-secret" {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
	if cfg.TokenTTLDays != 30 {
		t.Errorf("TokenTTLDays = %d, want 30", cfg.TokenTTLDays)
	}
	if cfg.RateLimitEnabled {
		t.Error("RateLimitEnabled = true, want false")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://app.collabvoice.dev" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_InvalidTokenTTL(t *testing.T) {
	t.Setenv("TOKEN_TTL_DAYS", "0")

	if _, err := Load(); err == nil {
		t.Error("expected error for TOKEN_TTL_DAYS=0")
	}
}

func TestLoad_RateLimitBounds(t *testing.T) {
	t.Setenv("TOKEN_TTL_DAYS", "")
	t.Setenv("RATE_LIMIT_AUTH", "20000")

	if _, err := Load(); err == nil {
		t.Error("expected error for out-of-range RATE_LIMIT_AUTH")
	}
}
