// ABOUTME: Durable credential slot for the session token and cached profile
// ABOUTME: Stores both as one JSON file in the XDG config directory

package credstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/collabvoice/cli/internal/api"
)

// ErrNoToken is returned by Set when called without a token. A profile must
// never be stored without a corroborating token.
var ErrNoToken = errors.New("credstore: refusing to store profile without token")

// Store is a dumb durable slot for the (token, profile) pair. It performs no
// validation and has no expiry of its own; the session verifier decides
// whether a stored token is still good.
type Store struct {
	mu  sync.Mutex
	dir string
}

// credentials is the on-disk shape. Keeping token and profile in one file
// makes writes atomic with respect to the pair.
type credentials struct {
	Token string       `json:"token"`
	User  *api.Profile `json:"user,omitempty"`
}

// New creates a store rooted at the given config directory.
func New(configDir string) *Store {
	return &Store{dir: configDir}
}

// DefaultConfigDir returns the default config directory following XDG spec.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "collabvoice")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "collabvoice")
}

// credFile returns the path to the credentials JSON.
func (s *Store) credFile() string {
	return filepath.Join(s.dir, "credentials.json")
}

// Set persists the token and profile together. profile may be nil (a token
// delivered by OAuth redirect arrives before any profile is known), but a
// profile without a token is rejected.
func (s *Store) Set(token string, profile *api.Profile) error {
	if token == "" {
		return ErrNoToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(credentials{Token: token, User: profile}, "", "  ")
	if err != nil {
		return err
	}

	// Write-then-rename so a crash mid-write never leaves a torn pair.
	tmp, err := os.CreateTemp(s.dir, "credentials-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.credFile())
}

// Get retrieves the stored token and profile. Both are zero when nothing is
// stored; a present profile always comes with a token.
func (s *Store) Get() (string, *api.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.credFile())
	if os.IsNotExist(err) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	var creds credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		// Corrupt file: treat as empty rather than wedging the client.
		return "", nil, nil
	}
	if creds.Token == "" {
		return "", nil, nil
	}
	return creds.Token, creds.User, nil
}

// Clear removes the stored pair. Clearing an already-empty store is fine.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.credFile())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Token implements api.TokenSource for the request pipeline.
func (s *Store) Token() (string, bool) {
	token, _, err := s.Get()
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}
