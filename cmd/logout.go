// ABOUTME: Logout command for the CollabVoice CLI
// ABOUTME: Clears the stored session; no server call is made

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	Long: `Remove the stored session token and profile from your config directory.

Logout is purely local; the backend keeps no session state to invalidate.`,
	Run: func(cmd *cobra.Command, args []string) {
		if exitCode := runLogout(os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// runLogout clears the credential store and returns exit code
func runLogout(w io.Writer) int {
	ctrl, _, _, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	ctrl.Logout()
	fmt.Fprintln(w, "Logged out.")
	return 0
}
