// ABOUTME: Repos command for the CollabVoice CLI
// ABOUTME: Lists the connected GitHub repositories for the logged-in account

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/collabvoice/cli/internal/api"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List your GitHub repositories",
	Long: `List the GitHub repositories connected to your CollabVoice account.

Requires a valid session; run "collabvoice login" or "collabvoice oauth" first.

Exit codes:
  0 - Repositories listed
  1 - Not logged in (or session expired)
  2 - Error (connectivity)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runRepos(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(reposCmd)
}

// runRepos fetches and prints the repository list, returning exit code
func runRepos(ctx context.Context, w io.Writer) int {
	ctrl, client, _, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if state := ctrl.Init(ctx); !state.Authenticated {
		fmt.Fprintln(w, `Not logged in. Run "collabvoice login" or "collabvoice oauth <provider>".`)
		return 1
	}

	list, err := client.Repositories(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			ctrl.Logout()
			fmt.Fprintln(w, "Session expired. Log in again.")
			return 1
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatReposJSON(list))
	} else {
		fmt.Fprintln(w, formatReposHuman(list))
	}
	return 0
}

// formatReposHuman formats the repository list for human readability
func formatReposHuman(list *api.RepositoryList) string {
	if list.TotalCount == 0 {
		return "No repositories connected."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Repositories (%d):\n", list.TotalCount)
	for _, repo := range list.Repositories {
		visibility := "public"
		if repo.Private {
			visibility = "private"
		}
		language := repo.Language
		if language == "" {
			language = "-"
		}
		fmt.Fprintf(&b, "  %-30s %-10s %-12s ★ %d\n", repo.FullName, visibility, language, repo.Stargazers)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatReposJSON formats the repository list as JSON
func formatReposJSON(list *api.RepositoryList) string {
	data, _ := json.MarshalIndent(list, "", "  ")
	return string(data)
}
