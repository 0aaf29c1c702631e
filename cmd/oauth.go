// ABOUTME: OAuth command for the CollabVoice CLI
// ABOUTME: Runs the browser sign-in dance against a loopback callback server

package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/collabvoice/cli/internal/oauthflow"
	"github.com/collabvoice/cli/internal/session"
)

var oauthTimeout time.Duration

var oauthCmd = &cobra.Command{
	Use:   "oauth <provider>",
	Short: "Log in through an OAuth provider",
	Long: `Sign in to CollabVoice through an OAuth provider (for example google or
github).

The command starts a loopback callback server, prints the provider URL to
open in your browser, and waits for the redirect. Google delivers an
authorization code that is exchanged with the backend; other providers
deliver the session token directly in the redirect.

Exit codes:
  0 - Logged in
  1 - Provider or backend rejected the sign-in
  2 - Error (connectivity, timeout)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runOAuth(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(oauthCmd)
	oauthCmd.Flags().DurationVar(&oauthTimeout, "timeout", 5*time.Minute, "How long to wait for the browser redirect")
}

// runOAuth executes the OAuth sign-in flow and returns exit code
func runOAuth(ctx context.Context, w io.Writer, provider string) int {
	ctrl, client, _, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	server, err := oauthflow.NewCallbackServer()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer server.Close()

	startURL := fmt.Sprintf("%s/auth/oauth/%s/start?redirect_uri=%s",
		GetAPIURL(), url.PathEscape(provider), url.QueryEscape(server.RedirectURL()))
	fmt.Fprintf(w, "Open this URL in your browser to continue:\n\n  %s\n\nWaiting for the redirect...\n", startURL)

	waitCtx, cancel := context.WithTimeout(ctx, oauthTimeout)
	defer cancel()

	query, err := server.Wait(waitCtx)
	if err != nil {
		fmt.Fprintf(w, "Error: no redirect received: %v\n", err)
		return 2
	}

	// The redirect shape, not the provider name, decides which contract we
	// got: an authorization code is exchanged, a token is adopted as-is.
	if query.Get("code") != "" {
		return runCodeFlow(ctx, w, ctrl, client, provider, query)
	}
	return runTokenFlow(ctx, w, ctrl, query)
}

// runCodeFlow drives the code-exchange contract to a terminal state.
func runCodeFlow(ctx context.Context, w io.Writer, ctrl *session.Controller, client oauthflow.Exchanger, provider string, query url.Values) int {
	flow := oauthflow.NewCodeFlow(provider, client, ctrl)
	if flow.Run(ctx, query) != oauthflow.CodeAuthenticated {
		fmt.Fprintf(w, "OAuth sign-in failed: %s\n", flow.Err())
		return 1
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatProfileJSON(flow.User()))
	} else {
		fmt.Fprintf(w, "Logged in as %s via %s\n", flow.User().Username, provider)
	}
	return 0
}

// runTokenFlow drives the token-in-redirect contract, then refreshes the
// session so the stored token is validated and the profile filled in.
func runTokenFlow(ctx context.Context, w io.Writer, ctrl *session.Controller, query url.Values) int {
	flow := oauthflow.NewTokenFlow(ctrl)
	if flow.Run(query) != oauthflow.TokenSuccess {
		fmt.Fprintf(w, "OAuth sign-in failed: %s\n", flow.Err())
		return 1
	}

	state := ctrl.Refresh(ctx)
	if !state.Authenticated || state.User == nil {
		fmt.Fprintln(w, "OAuth sign-in failed: the redirect token was rejected by the backend")
		return 1
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatProfileJSON(state.User))
	} else {
		fmt.Fprintf(w, "Logged in as %s via %s\n", state.User.Username, flow.Provider())
	}
	return 0
}
