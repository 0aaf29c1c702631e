// ABOUTME: Tests for the dashboard view component
// ABOUTME: Verifies rendering of the account header and repository states

package dashboard

import (
	"errors"
	"strings"
	"testing"

	"github.com/collabvoice/cli/internal/api"
)

func testUser() *api.Profile {
	return &api.Profile{ID: 1, Username: "dev", Email: "dev@example.com"}
}

func TestView_LoadingState(t *testing.T) {
	d := New(testUser(), 80, 24)

	view := d.View()
	if !strings.Contains(view, "Welcome, dev") {
		t.Error("missing account greeting")
	}
	if !strings.Contains(view, "Loading repositories") {
		t.Error("missing loading indicator")
	}
}

func TestView_RendersRepositories(t *testing.T) {
	d := New(testUser(), 80, 24)
	d.SetRepositories(&api.RepositoryList{
		Repositories: []api.Repository{
			{ID: 1, Name: "voice-rooms", FullName: "dev/voice-rooms", Language: "Go", Stargazers: 42},
			{ID: 2, Name: "infra-notes", FullName: "dev/infra-notes", Private: true},
		},
		TotalCount: 2,
	}, nil)

	view := d.View()
	if !strings.Contains(view, "voice-rooms") {
		t.Error("missing repository name")
	}
	if !strings.Contains(view, "private") {
		t.Error("missing private marker")
	}
	if strings.Contains(view, "Loading repositories") {
		t.Error("loading indicator still shown after data arrived")
	}
}

func TestView_EmptyList(t *testing.T) {
	d := New(testUser(), 80, 24)
	d.SetRepositories(&api.RepositoryList{}, nil)

	if !strings.Contains(d.View(), "No repositories connected") {
		t.Error("missing empty-state message")
	}
}

func TestView_FetchError(t *testing.T) {
	d := New(testUser(), 80, 24)
	d.SetRepositories(nil, errors.New("cannot connect to backend"))

	view := d.View()
	if !strings.Contains(view, "Failed to load repositories") {
		t.Error("missing error message")
	}
	if !strings.Contains(view, "cannot connect to backend") {
		t.Error("missing error detail")
	}
}

func TestSetUser_ReplacesGreeting(t *testing.T) {
	d := New(testUser(), 80, 24)
	d.SetUser(&api.Profile{ID: 2, Username: "other", Email: "other@example.com"})

	if !strings.Contains(d.View(), "Welcome, other") {
		t.Error("greeting not updated")
	}
}
