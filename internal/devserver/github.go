// ABOUTME: Dashboard data handler serving sample GitHub repositories
// ABOUTME: Deterministic fixture data shaped like the hosted GitHub proxy

package devserver

import (
	"fmt"
	"net/http"

	"github.com/collabvoice/cli/internal/api"
	"github.com/collabvoice/cli/internal/devserver/middleware"
)

// Repositories handles GET /api/github/repositories with fixture data so the
// dashboard renders without a real GitHub connection.
func (s *Server) Repositories(w http.ResponseWriter, r *http.Request) {
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

	repos := sampleRepositories(user.Username)
	s.writeJSON(w, http.StatusOK, api.RepositoryList{
		Repositories: repos,
		TotalCount:   len(repos),
	})
}

func sampleRepositories(owner string) []api.Repository {
	avatar := "https://avatars.collabvoice.dev/" + owner
	mk := func(id int, name, description, language string, stars, forks int, private bool) api.Repository {
		return api.Repository{
			ID:          id,
			Name:        name,
			FullName:    owner + "/" + name,
			Description: description,
			Private:     private,
			HTMLURL:     fmt.Sprintf("https://github.com/%s/%s", owner, name),
			CloneURL:    fmt.Sprintf("https://github.com/%s/%s.git", owner, name),
			SSHURL:      fmt.Sprintf("git@github.com:%s/%s.git", owner, name),
			Language:    language,
			Stargazers:  stars,
			Forks:       forks,
			UpdatedAt:   "2025-08-20T14:03:00Z",
			CreatedAt:   "2024-11-02T09:30:00Z",
			Owner:       api.RepoOwner{Login: owner, AvatarURL: avatar},
		}
	}

	return []api.Repository{
		mk(1001, "voice-rooms", "Realtime voice rooms for pair programming", "TypeScript", 42, 7, false),
		mk(1002, "collab-editor", "CRDT-backed collaborative editor", "Go", 128, 19, false),
		mk(1003, "infra-notes", "Deployment runbooks and scratch notes", "Markdown", 3, 0, true),
	}
}
