// ABOUTME: Dev-server command for the CollabVoice CLI
// ABOUTME: Runs the local stand-in backend for offline development

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/collabvoice/cli/internal/config"
	"github.com/collabvoice/cli/internal/devserver"
	"github.com/collabvoice/cli/internal/logger"
)

var devServerCmd = &cobra.Command{
	Use:   "dev-server",
	Short: "Run a local CollabVoice backend",
	Long: `Run a local stand-in for the CollabVoice backend.

The dev server implements every endpoint the CLI consumes (login, register,
verify, CSRF tokens, the two OAuth redirect shapes, and the repository list)
with the same JSON shapes and error codes as the hosted service. Accounts
live in memory and are lost on exit.

Configuration comes from the environment (or a .env file): PORT, JWT_SECRET_KEY,
RATE_LIMIT_ENABLED, CORS_ALLOWED_ORIGINS.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runDevServer(ctx); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(devServerCmd)
}

// runDevServer runs the dev server until interrupted and returns exit code
func runDevServer(ctx context.Context) int {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	server := devserver.NewServer(cfg)
	if err := server.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}
