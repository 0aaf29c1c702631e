// ABOUTME: Dashboard command for the CollabVoice CLI
// ABOUTME: Launches the interactive TUI with login, signup, and OAuth screens

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/collabvoice/cli/internal/credstore"
	"github.com/collabvoice/cli/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	Long: `Open the interactive terminal dashboard.

With a valid stored session you land directly on the dashboard; otherwise the
login screen is shown first, with sign-up and OAuth sign-in available from
there.`,
	Run: func(cmd *cobra.Command, args []string) {
		if exitCode := runDashboard(); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// runDashboard starts the TUI and returns exit code
func runDashboard() int {
	ctrl, client, _, err := newSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if err := tui.Run(ctrl, client, GetAPIURL(), credstore.DefaultConfigDir()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}
