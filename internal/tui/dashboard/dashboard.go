// ABOUTME: Dashboard view component showing the account and its repositories
// ABOUTME: Render-only; the root app owns data loading and key handling

package dashboard

import (
	"fmt"
	"strings"

	"github.com/collabvoice/cli/internal/api"
	"github.com/collabvoice/cli/internal/tui/styles"
)

// Dashboard renders the signed-in landing view.
type Dashboard struct {
	user  *api.Profile
	repos *api.RepositoryList

	reposErr string
	loading  bool

	width  int
	height int
}

// New creates a dashboard for the given account, with repositories loading.
func New(user *api.Profile, width, height int) *Dashboard {
	return &Dashboard{user: user, loading: true, width: width, height: height}
}

// SetSize updates the render dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// SetUser replaces the displayed account (after a refresh).
func (d *Dashboard) SetUser(user *api.Profile) {
	d.user = user
}

// SetRepositories installs the fetched repository list or the fetch error.
func (d *Dashboard) SetRepositories(repos *api.RepositoryList, err error) {
	d.loading = false
	if err != nil {
		d.repos = nil
		d.reposErr = err.Error()
		return
	}
	d.repos = repos
	d.reposErr = ""
}

// View renders the dashboard content
func (d *Dashboard) View() string {
	var b strings.Builder

	if d.user != nil {
		b.WriteString(styles.Title.Render("Welcome, " + d.user.Username))
		b.WriteString("\n")
		b.WriteString(styles.Subtitle.Render(d.user.Email))
		b.WriteString("\n\n")
	}

	b.WriteString(styles.ValueStyle.Render("Repositories"))
	b.WriteString("\n")

	switch {
	case d.loading:
		b.WriteString(styles.Subtitle.Render("Loading repositories..."))
	case d.reposErr != "":
		b.WriteString(styles.StatusError.Render("Failed to load repositories: " + d.reposErr))
	case d.repos == nil || d.repos.TotalCount == 0:
		b.WriteString(styles.Subtitle.Render("No repositories connected."))
	default:
		for _, repo := range d.repos.Repositories {
			b.WriteString(d.renderRepo(repo))
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func (d *Dashboard) renderRepo(repo api.Repository) string {
	visibility := "public"
	if repo.Private {
		visibility = styles.KeyStyle.Render("private")
	}

	line := fmt.Sprintf("%s  %s", styles.ValueStyle.Render(repo.Name), visibility)
	detail := repo.Language
	if detail == "" {
		detail = "-"
	}
	detail = fmt.Sprintf("%s  ★ %d  ⑂ %d", detail, repo.Stargazers, repo.Forks)
	if repo.Description != "" {
		detail += "  " + repo.Description
	}

	return line + "\n  " + styles.Subtitle.Render(truncate(detail, d.width-4))
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
