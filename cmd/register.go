// ABOUTME: Register command for the CollabVoice CLI
// ABOUTME: Creates an account and persists the resulting session

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	registerUsername string
	registerEmail    string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a CollabVoice account",
	Long: `Create a new CollabVoice account with username, email, and password.

Registration logs you in immediately; the session token is stored the same
way "collabvoice login" stores it.

Exit codes:
  0 - Account created
  1 - Registration rejected (validation, duplicate email or username)
  2 - Error (connectivity, invalid input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runRegister(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerUsername, "username", "", "Desired username (prompted if omitted)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email (prompted if omitted)")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Account password (prompted if omitted)")
}

// runRegister executes the registration flow and returns exit code
func runRegister(ctx context.Context, w io.Writer) int {
	ctrl, _, _, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	username := registerUsername
	if username == "" {
		if username, err = promptLine(w, "Username: "); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}
	email := registerEmail
	if email == "" {
		if email, err = promptLine(w, "Email: "); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}
	password := registerPassword
	if password == "" {
		if password, err = promptPassword(w, "Password: "); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		confirm, err := promptPassword(w, "Confirm password: ")
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		if confirm != password {
			fmt.Fprintln(w, "Error: passwords do not match")
			return 2
		}
	}

	result := ctrl.Register(ctx, username, email, password)
	if !result.OK {
		fmt.Fprintf(w, "Registration failed: %s\n", result.Err)
		return 1
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(result))
	} else {
		fmt.Fprintf(w, "Account created. Logged in as %s\n", result.User.Username)
	}
	return 0
}
