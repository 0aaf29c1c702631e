// ABOUTME: Tests for the session commands (login, logout, whoami, repos)
// ABOUTME: Runs them against the embedded dev server over httptest

package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/collabvoice/cli/internal/config"
	"github.com/collabvoice/cli/internal/devserver"
)

// setupBackend points the command plumbing at a fresh dev server and an
// isolated config directory.
func setupBackend(t *testing.T) {
	t.Helper()

	server := httptest.NewServer(devserver.NewServer(&config.Config{
		JWTSecret:    "test-secret",
		TokenTTLDays: 7,
		CSRFTokenTTL: 300,
	}).Handler())
	t.Cleanup(server.Close)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	prevURL, prevJSON := apiURL, jsonOutput
	apiURL = server.URL + "/api"
	jsonOutput = false
	t.Cleanup(func() {
		apiURL, jsonOutput = prevURL, prevJSON
	})
}

// setCredentials fills the login/register flag values for a test
func setCredentials(t *testing.T, username, email, password string) {
	t.Helper()
	prevU, prevE, prevP := registerUsername, registerEmail, registerPassword
	prevLE, prevLP := loginEmail, loginPassword
	registerUsername, registerEmail, registerPassword = username, email, password
	loginEmail, loginPassword = email, password
	t.Cleanup(func() {
		registerUsername, registerEmail, registerPassword = prevU, prevE, prevP
		loginEmail, loginPassword = prevLE, prevLP
	})
}

func TestRunRegisterThenWhoami(t *testing.T) {
	setupBackend(t)
	setCredentials(t, "dev", "dev@example.com", "secret")

	var out bytes.Buffer
	if code := runRegister(context.Background(), &out); code != 0 {
		t.Fatalf("register exit = %d, output: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "Logged in as dev") {
		t.Errorf("register output = %q, want Logged in as dev", out.String())
	}

	out.Reset()
	if code := runWhoami(context.Background(), &out); code != 0 {
		t.Fatalf("whoami exit = %d, output: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "dev@example.com") {
		t.Errorf("whoami output = %q, want the account email", out.String())
	}
}

func TestRunLogin_UnknownUserSuggestsRegister(t *testing.T) {
	setupBackend(t)
	setCredentials(t, "", "ghost@example.com", "secret")

	var out bytes.Buffer
	if code := runLogin(context.Background(), &out); code != 1 {
		t.Fatalf("login exit = %d, want 1; output: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "User not found") {
		t.Errorf("output = %q, want the server's message", out.String())
	}
	if !strings.Contains(out.String(), "collabvoice register") {
		t.Errorf("output = %q, want a register suggestion", out.String())
	}
}

func TestRunLogin_WrongPassword(t *testing.T) {
	setupBackend(t)
	setCredentials(t, "dev", "dev@example.com", "secret")

	var out bytes.Buffer
	if code := runRegister(context.Background(), &out); code != 0 {
		t.Fatalf("register exit = %d", code)
	}

	loginPassword = "wrong"
	out.Reset()
	if code := runLogin(context.Background(), &out); code != 1 {
		t.Fatalf("login exit = %d, want 1; output: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "Invalid credentials") {
		t.Errorf("output = %q, want Invalid credentials", out.String())
	}
	if strings.Contains(out.String(), "collabvoice register") {
		t.Error("wrong password must not suggest registering")
	}
}

func TestRunLogout_ForgetsSession(t *testing.T) {
	setupBackend(t)
	setCredentials(t, "dev", "dev@example.com", "secret")

	var out bytes.Buffer
	if code := runRegister(context.Background(), &out); code != 0 {
		t.Fatalf("register exit = %d", code)
	}

	out.Reset()
	if code := runLogout(&out); code != 0 {
		t.Fatalf("logout exit = %d", code)
	}

	out.Reset()
	if code := runWhoami(context.Background(), &out); code != 1 {
		t.Fatalf("whoami after logout exit = %d, want 1", code)
	}
	if !strings.Contains(out.String(), "Not logged in") {
		t.Errorf("output = %q, want Not logged in", out.String())
	}
}

func TestRunWhoami_NotLoggedIn(t *testing.T) {
	setupBackend(t)

	var out bytes.Buffer
	if code := runWhoami(context.Background(), &out); code != 1 {
		t.Fatalf("whoami exit = %d, want 1", code)
	}
}

func TestRunRepos_ListsAfterLogin(t *testing.T) {
	setupBackend(t)
	setCredentials(t, "dev", "dev@example.com", "secret")

	var out bytes.Buffer
	if code := runRegister(context.Background(), &out); code != 0 {
		t.Fatalf("register exit = %d", code)
	}

	out.Reset()
	if code := runRepos(context.Background(), &out); code != 0 {
		t.Fatalf("repos exit = %d, output: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "dev/") {
		t.Errorf("output = %q, want repositories owned by dev", out.String())
	}
}

func TestRunRepos_NotLoggedIn(t *testing.T) {
	setupBackend(t)

	var out bytes.Buffer
	if code := runRepos(context.Background(), &out); code != 1 {
		t.Fatalf("repos exit = %d, want 1", code)
	}
}

func TestGetAPIURL_Precedence(t *testing.T) {
	prev := apiURL
	t.Cleanup(func() { apiURL = prev })

	apiURL = ""
	t.Setenv("COLLABVOICE_API_URL", "")
	if got := GetAPIURL(); got != defaultAPIURL {
		t.Errorf("default = %q, want %q", got, defaultAPIURL)
	}

	t.Setenv("COLLABVOICE_API_URL", "http://env.example/api")
	if got := GetAPIURL(); got != "http://env.example/api" {
		t.Errorf("env = %q, want env URL", got)
	}

	apiURL = "http://flag.example/api"
	if got := GetAPIURL(); got != "http://flag.example/api" {
		t.Errorf("flag = %q, want flag URL", got)
	}
}
