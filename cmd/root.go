// ABOUTME: Root command for the CollabVoice CLI
// ABOUTME: Handles global flags and shared session wiring

package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/collabvoice/cli/internal/api"
	"github.com/collabvoice/cli/internal/credstore"
	"github.com/collabvoice/cli/internal/session"
)

var (
	apiURL     string
	jsonOutput bool
)

const defaultAPIURL = "http://localhost:8080/api"

var errNoConfigDir = errors.New("could not determine a config directory for credentials")

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "collabvoice",
	Short: "CLI for CollabVoice",
	Long: `collabvoice is a command-line client for the CollabVoice collaborative coding service.

It manages your session (login, register, OAuth sign-in) and gives terminal
access to the dashboard, including your connected GitHub repositories.

Environment Variables:
  COLLABVOICE_API_URL  Backend API URL (default: http://localhost:8080/api)`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides COLLABVOICE_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("COLLABVOICE_API_URL"); envURL != "" {
		return envURL
	}
	return defaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// newSession wires the credential store, API client, and session controller
// that every auth-aware command shares. The store doubles as the client's
// token source so requests pick up the persisted session automatically.
func newSession() (*session.Controller, *api.Client, *credstore.Store, error) {
	dir := credstore.DefaultConfigDir()
	if dir == "" {
		return nil, nil, nil, errNoConfigDir
	}
	store := credstore.New(dir)
	client := api.New(GetAPIURL(), store)
	return session.NewController(client, store), client, store, nil
}
