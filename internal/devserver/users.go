// ABOUTME: In-memory user store for the dev identity service
// ABOUTME: Holds accounts with bcrypt password hashes and OAuth upserts

package devserver

import (
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/collabvoice/cli/internal/api"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
)

// User is a dev-server account. Password hash is nil for OAuth-only users.
type User struct {
	ID            int
	Username      string
	Email         string
	PasswordHash  []byte
	AvatarURL     string
	OAuthProvider string
	CreatedAt     time.Time
}

// Profile converts the account to its wire shape.
func (u *User) Profile() api.Profile {
	return api.Profile{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		AvatarURL:       u.AvatarURL,
		OAuthProvider:   u.OAuthProvider,
		HasGithubAccess: u.OAuthProvider == "github",
		CreatedAt:       u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// UserStore is a mutex-guarded account table with sequential IDs, mirroring
// the autoincrement rows of the real service.
type UserStore struct {
	mu     sync.Mutex
	byID   map[int]*User
	nextID int
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:   make(map[int]*User),
		nextID: 1,
	}
}

// Create registers a new password account. Email uniqueness is checked
// before username uniqueness, matching the real service's validation order.
func (s *UserStore) Create(username, email, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByEmail(email) != nil {
		return nil, ErrEmailRegistered
	}
	if s.findByUsername(username) != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           s.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	s.nextID++
	s.byID[user.ID] = user
	return user, nil
}

// Authenticate checks email and password. An unknown email and a wrong
// password are distinct failures so the API can report them separately.
func (s *UserStore) Authenticate(email, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findByEmail(email)
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpsertOAuth finds or creates an account for an OAuth identity. New accounts
// take their username from the email's local part.
func (s *UserStore) UpsertOAuth(provider, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user := s.findByEmail(email); user != nil {
		user.OAuthProvider = provider
		return user, nil
	}

	username := email
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}

	user := &User{
		ID:            s.nextID,
		Username:      username,
		Email:         email,
		OAuthProvider: provider,
		AvatarURL:     "https://avatars.collabvoice.dev/" + username,
		CreatedAt:     time.Now(),
	}
	s.nextID++
	s.byID[user.ID] = user
	return user, nil
}

// ByID looks an account up by its ID.
func (s *UserStore) ByID(id int) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	return user, ok
}

// callers hold s.mu
func (s *UserStore) findByEmail(email string) *User {
	for _, u := range s.byID {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *UserStore) findByUsername(username string) *User {
	for _, u := range s.byID {
		if u.Username == username {
			return u
		}
	}
	return nil
}
