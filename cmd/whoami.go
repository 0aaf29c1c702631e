// ABOUTME: Whoami command for the CollabVoice CLI
// ABOUTME: Verifies the stored session and prints the account profile

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/collabvoice/cli/internal/api"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently logged-in account",
	Long: `Verify the stored session token against the backend and print the profile
it belongs to.

A stored token that the backend rejects is discarded, so a failed whoami also
cleans up the stale session.

Exit codes:
  0 - Session valid
  1 - Not logged in (or session expired)
  2 - Error (connectivity)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWhoami(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// runWhoami verifies the stored session and returns exit code
func runWhoami(ctx context.Context, w io.Writer) int {
	ctrl, _, _, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	state := ctrl.Init(ctx)
	if !state.Authenticated || state.User == nil {
		fmt.Fprintln(w, `Not logged in. Run "collabvoice login" or "collabvoice oauth <provider>".`)
		return 1
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatProfileJSON(state.User))
	} else {
		fmt.Fprintln(w, formatProfileHuman(state.User))
	}
	return 0
}

// formatProfileHuman formats a profile for human readability
func formatProfileHuman(user *api.Profile) string {
	provider := user.OAuthProvider
	if provider == "" {
		provider = "password"
	}
	github := "no"
	if user.HasGithubAccess {
		github = "yes"
	}
	return fmt.Sprintf(`Username:       %s
Email:          %s
Sign-in:        %s
GitHub access:  %s
Member since:   %s`,
		user.Username,
		user.Email,
		provider,
		github,
		user.CreatedAt)
}

// formatProfileJSON formats a profile as JSON
func formatProfileJSON(user *api.Profile) string {
	data, _ := json.MarshalIndent(user, "", "  ")
	return string(data)
}
