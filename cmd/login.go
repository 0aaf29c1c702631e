// ABOUTME: Login command for the CollabVoice CLI
// ABOUTME: Authenticates with email/password and persists the session

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/collabvoice/cli/internal/api"
	"github.com/collabvoice/cli/internal/session"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password",
	Long: `Authenticate against the CollabVoice backend with email and password.

On success the session token is stored in your config directory and picked up
by every other command until you run "collabvoice logout".

Exit codes:
  0 - Logged in
  1 - Authentication rejected
  2 - Error (connectivity, invalid input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted if omitted)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted if omitted)")
}

// runLogin executes the login flow and returns exit code
func runLogin(ctx context.Context, w io.Writer) int {
	ctrl, _, _, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	email := loginEmail
	if email == "" {
		email, err = promptLine(w, "Email: ")
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}
	password := loginPassword
	if password == "" {
		password, err = promptPassword(w, "Password: ")
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	result := ctrl.Login(ctx, email, password)
	if !result.OK {
		fmt.Fprintf(w, "Login failed: %s\n", result.Err)
		if result.Code == api.CodeUserNotFound {
			fmt.Fprintln(w, `No account exists for that email. Create one with "collabvoice register".`)
		}
		return 1
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(result))
	} else {
		fmt.Fprintf(w, "Logged in as %s\n", result.User.Username)
	}
	return 0
}

// promptLine reads a single line from stdin.
func promptLine(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echoing when stdin is a terminal.
func promptPassword(w io.Writer, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(w, prompt)
	}

	fmt.Fprint(w, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// formatSessionJSON formats an auth result as JSON
func formatSessionJSON(result session.AuthResult) string {
	data, _ := json.MarshalIndent(struct {
		User *api.Profile `json:"user"`
	}{User: result.User}, "", "  ")
	return string(data)
}
