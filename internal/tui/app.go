// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state, session guards, and routes input to child components

package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/collabvoice/cli/internal/api"
	"github.com/collabvoice/cli/internal/logger"
	"github.com/collabvoice/cli/internal/oauthflow"
	"github.com/collabvoice/cli/internal/session"
	"github.com/collabvoice/cli/internal/tui/authform"
	"github.com/collabvoice/cli/internal/tui/dashboard"
	"github.com/collabvoice/cli/internal/tui/debuglog"
	"github.com/collabvoice/cli/internal/tui/loading"
	"github.com/collabvoice/cli/internal/tui/styles"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenStartup Screen = iota
	ScreenLogin
	ScreenSignup
	ScreenOAuthWait
	ScreenOAuthLoading
	ScreenDashboard
)

// Layout constants
const (
	minTerminalWidth = 80
	panelPadding     = 4

	oauthWaitTimeout = 5 * time.Minute
)

// sessionCheckedMsg carries the settled state of the startup verification
type sessionCheckedMsg struct {
	state session.State
}

// authResultMsg carries the outcome of a login or signup submit
type authResultMsg struct {
	result session.AuthResult
	signup bool
}

// dashboardDataMsg carries the concurrent session re-check and repository fetch
type dashboardDataMsg struct {
	state    session.State
	repos    *api.RepositoryList
	reposErr error
}

// oauthRedirectMsg carries the provider redirect captured by the loopback server
type oauthRedirectMsg struct {
	query url.Values
	err   error
}

// codeExchangedMsg carries the outcome of the authorization-code exchange
type codeExchangedMsg struct {
	ok     bool
	errMsg string
}

// App is the root model for the TUI
type App struct {
	ctrl    *session.Controller
	client  *api.Client
	apiURL  string
	screen  Screen
	width   int
	height  int
	lastUpd time.Time

	// Child models
	form       *authform.Form
	loadScreen *loading.Loading
	dash       *dashboard.Dashboard

	// OAuth flow state
	oauthServer   *oauthflow.CallbackServer
	oauthProvider string
	oauthURL      string
}

// New creates a new TUI application
func New(ctrl *session.Controller, client *api.Client, apiURL string) *App {
	return &App{
		ctrl:   ctrl,
		client: client,
		apiURL: apiURL,
		screen: ScreenStartup,
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return func() tea.Msg {
		return sessionCheckedMsg{state: a.ctrl.Init(context.Background())}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.dash != nil {
			a.dash.SetSize(a.contentWidth(), a.contentHeight())
		}
		if a.form != nil {
			a.form.Update(msg)
		}
		if a.loadScreen != nil {
			a.loadScreen.Update(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.updateKeys(msg)

	case sessionCheckedMsg:
		if msg.state.Authenticated {
			return a.enterDashboard()
		}
		return a.showAuthForm(authform.ModeLogin)

	case authform.LoginSubmitMsg:
		return a, a.login(msg.Email, msg.Password)

	case authform.SignupSubmitMsg:
		return a, a.register(msg.Username, msg.Email, msg.Password)

	case authform.CancelledMsg:
		return a, tea.Quit

	case authResultMsg:
		return a.handleAuthResult(msg)

	case oauthRedirectMsg:
		return a.handleOAuthRedirect(msg)

	case codeExchangedMsg:
		if !msg.ok {
			debuglog.Log("oauth code exchange failed: %s", msg.errMsg)
			return a, a.loadScreen.Fail(msg.errMsg)
		}
		return a, nil

	case loading.DoneMsg:
		// Staged screen finished; the guard decides where we land.
		return a.enterDashboard()

	case loading.FailedMsg:
		a.loadScreen = nil
		return a.showAuthForm(authform.ModeLogin)

	case dashboardDataMsg:
		return a.handleDashboardData(msg)

	default:
		// Forward everything else to the active child (huh form internals,
		// spinner ticks).
		switch a.screen {
		case ScreenLogin, ScreenSignup:
			return a.updateForm(msg)
		case ScreenOAuthLoading:
			return a.updateLoading(msg)
		}
	}

	return a, nil
}

func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenLogin:
		switch msg.String() {
		case "ctrl+s":
			return a.showAuthForm(authform.ModeSignup)
		case "ctrl+g":
			return a.startOAuth("github")
		case "ctrl+o":
			return a.startOAuth("google")
		}
		return a.updateForm(msg)

	case ScreenSignup:
		if msg.String() == "ctrl+s" {
			return a.showAuthForm(authform.ModeLogin)
		}
		return a.updateForm(msg)

	case ScreenOAuthWait:
		if msg.String() == "esc" {
			a.closeOAuthServer()
			return a.showAuthForm(authform.ModeLogin)
		}

	case ScreenOAuthLoading:
		return a.updateLoading(msg)

	case ScreenDashboard:
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "r":
			return a, a.loadDashboard()
		case "l":
			a.ctrl.Logout()
			a.dash = nil
			return a.showAuthForm(authform.ModeLogin)
		}
	}
	return a, nil
}

func (a *App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.form == nil {
		return a, nil
	}
	model, cmd := a.form.Update(msg)
	a.form = model.(*authform.Form)
	return a, cmd
}

func (a *App) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.loadScreen == nil {
		return a, nil
	}
	model, cmd := a.loadScreen.Update(msg)
	a.loadScreen = model.(*loading.Loading)
	return a, cmd
}

// showAuthForm switches to the login or signup form. A live session redirects
// straight to the dashboard instead.
func (a *App) showAuthForm(mode authform.Mode) (tea.Model, tea.Cmd) {
	if a.ctrl.Snapshot().Authenticated {
		return a.enterDashboard()
	}
	a.form = authform.New(mode)
	if mode == authform.ModeSignup {
		a.screen = ScreenSignup
	} else {
		a.screen = ScreenLogin
	}
	return a, a.form.Init()
}

// enterDashboard switches to the dashboard and kicks off the guarded data
// load. The session is re-verified concurrently with the repository fetch.
func (a *App) enterDashboard() (tea.Model, tea.Cmd) {
	a.loadScreen = nil
	state := a.ctrl.Snapshot()
	a.dash = dashboard.New(state.User, a.contentWidth(), a.contentHeight())
	a.screen = ScreenDashboard
	return a, a.loadDashboard()
}

// loadDashboard re-checks the session and fetches repositories concurrently.
func (a *App) loadDashboard() tea.Cmd {
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(context.Background())

		var (
			state    session.State
			repos    *api.RepositoryList
			reposErr error
		)
		g.Go(func() error {
			state = a.ctrl.Refresh(ctx)
			return nil
		})
		g.Go(func() error {
			repos, reposErr = a.client.Repositories(ctx)
			return nil
		})
		_ = g.Wait()

		return dashboardDataMsg{state: state, repos: repos, reposErr: reposErr}
	}
}

func (a *App) handleDashboardData(msg dashboardDataMsg) (tea.Model, tea.Cmd) {
	// The re-check is the protected-view guard: a dead session means the
	// dashboard never renders data.
	if !msg.state.Authenticated || errors.Is(msg.reposErr, api.ErrUnauthorized) {
		a.ctrl.Logout()
		a.dash = nil
		return a.showAuthForm(authform.ModeLogin)
	}

	a.lastUpd = time.Now()
	if a.dash == nil {
		a.dash = dashboard.New(msg.state.User, a.contentWidth(), a.contentHeight())
	}
	a.dash.SetUser(msg.state.User)
	a.dash.SetRepositories(msg.repos, msg.reposErr)
	return a, nil
}

// login submits credentials off the Update loop
func (a *App) login(email, password string) tea.Cmd {
	return func() tea.Msg {
		return authResultMsg{result: a.ctrl.Login(context.Background(), email, password)}
	}
}

// register submits the signup form off the Update loop
func (a *App) register(username, email, password string) tea.Cmd {
	return func() tea.Msg {
		return authResultMsg{result: a.ctrl.Register(context.Background(), username, email, password), signup: true}
	}
}

func (a *App) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	if msg.result.OK {
		return a.enterDashboard()
	}

	errMsg := msg.result.Err
	if msg.result.Code == api.CodeUserNotFound {
		errMsg += " - press ctrl+s to create an account"
	}
	mode := authform.ModeLogin
	if msg.signup {
		mode = authform.ModeSignup
	}
	a.form = authform.New(mode)
	a.form.SetError(errMsg)
	return a, a.form.Init()
}

// startOAuth binds the loopback callback server and shows the provider URL.
func (a *App) startOAuth(provider string) (tea.Model, tea.Cmd) {
	server, err := oauthflow.NewCallbackServer()
	if err != nil {
		a.form = authform.New(authform.ModeLogin)
		a.form.SetError("Could not start sign-in: " + err.Error())
		a.screen = ScreenLogin
		return a, a.form.Init()
	}

	a.oauthServer = server
	a.oauthProvider = provider
	a.oauthURL = fmt.Sprintf("%s/auth/oauth/%s/start?redirect_uri=%s",
		a.apiURL, url.PathEscape(provider), url.QueryEscape(server.RedirectURL()))
	a.screen = ScreenOAuthWait

	return a, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), oauthWaitTimeout)
		defer cancel()
		query, err := server.Wait(ctx)
		return oauthRedirectMsg{query: query, err: err}
	}
}

func (a *App) closeOAuthServer() {
	if a.oauthServer != nil {
		a.oauthServer.Close()
		a.oauthServer = nil
	}
}

// handleOAuthRedirect dispatches the captured redirect to the matching flow.
func (a *App) handleOAuthRedirect(msg oauthRedirectMsg) (tea.Model, tea.Cmd) {
	a.closeOAuthServer()

	if msg.err != nil {
		a.form = authform.New(authform.ModeLogin)
		a.form.SetError("No sign-in redirect received")
		a.screen = ScreenLogin
		return a, a.form.Init()
	}

	a.loadScreen = loading.New(providerTitle(a.oauthProvider))
	a.screen = ScreenOAuthLoading

	// An authorization code is exchanged with the backend; anything else is
	// handled by the token-in-redirect machine.
	if msg.query.Get("code") != "" {
		return a, tea.Batch(a.loadScreen.Init(), a.exchangeCode(msg.query))
	}

	flow := oauthflow.NewTokenFlow(a.ctrl)
	if flow.Run(msg.query) != oauthflow.TokenSuccess {
		debuglog.Log("oauth token flow failed: %s", flow.Err())
		return a, tea.Batch(a.loadScreen.Init(), a.loadScreen.Fail(flow.Err()))
	}
	return a, a.loadScreen.Init()
}

// exchangeCode runs the code-exchange flow off the Update loop.
func (a *App) exchangeCode(query url.Values) tea.Cmd {
	provider := a.oauthProvider
	return func() tea.Msg {
		flow := oauthflow.NewCodeFlow(provider, a.client, a.ctrl)
		if flow.Run(context.Background(), query) != oauthflow.CodeAuthenticated {
			return codeExchangedMsg{errMsg: flow.Err()}
		}
		return codeExchangedMsg{ok: true}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenStartup:
		content = styles.Subtitle.Render("Checking your session...")
	case ScreenLogin, ScreenSignup:
		content = a.viewForm()
	case ScreenOAuthWait:
		content = a.viewOAuthWait()
	case ScreenOAuthLoading:
		content = a.viewLoading()
	case ScreenDashboard:
		content = a.viewDashboard()
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewForm() string {
	if a.form != nil {
		return a.form.View()
	}
	return ""
}

func (a *App) viewOAuthWait() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Sign in with " + providerTitle(a.oauthProvider)))
	b.WriteString("\n")
	b.WriteString("Open this URL in your browser to continue:\n\n")
	b.WriteString("  " + styles.ValueStyle.Render(a.oauthURL))
	b.WriteString("\n\n")
	b.WriteString(styles.Subtitle.Render("Waiting for the redirect..."))
	return b.String()
}

func (a *App) viewLoading() string {
	if a.loadScreen != nil {
		return a.loadScreen.View()
	}
	return ""
}

func (a *App) viewDashboard() string {
	if a.dash == nil {
		return styles.Panel.Render("Loading...")
	}
	return styles.ActivePanel.Width(a.contentWidth()).Render(a.dash.View())
}

// contentWidth calculates the width for the main content pane
func (a *App) contentWidth() int {
	if a.width < minTerminalWidth {
		return minTerminalWidth - panelPadding
	}
	return a.width - panelPadding
}

// contentHeight calculates the height available for content
func (a *App) contentHeight() int {
	// Header, footer, panel borders and padding
	return a.height - 8
}

// renderHeader creates the header bar with app branding and session context
func (a *App) renderHeader() string {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := " " + titleStyle.Render("CollabVoice")

	rightText := ""
	if state := a.ctrl.Snapshot(); state.Authenticated && state.User != nil {
		rightText = contextStyle.Render(state.User.Username) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Enter Submit", "ctrl+s Sign up", "ctrl+g GitHub", "ctrl+o Google", "Esc Quit"}
	case ScreenSignup:
		shortcuts = []string{"Enter Submit", "ctrl+s Log in", "Esc Quit"}
	case ScreenOAuthWait:
		shortcuts = []string{"Esc Cancel"}
	case ScreenDashboard:
		shortcuts = []string{"r Refresh", "l Logout", "q Quit"}
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	rightText := ""
	rightPlainText := ""
	if !a.lastUpd.IsZero() && a.screen == ScreenDashboard {
		elapsed := formatTimeSince(a.lastUpd)
		rightText = statusStyle.Render("Updated "+elapsed) + " "
		rightPlainText = "Updated " + elapsed + " "
	}

	leftWidth := lipgloss.Width(leftPlainText)
	rightWidth := lipgloss.Width(rightPlainText)
	fillWidth := width - 4 - leftWidth - rightWidth
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// providerTitle capitalizes a provider name for display
func providerTitle(p string) string {
	if p == "" {
		return "OAuth"
	}
	return strings.ToUpper(p[:1]) + p[1:]
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	}

	hours := int(d.Hours())
	if hours == 1 {
		return "1h ago"
	}
	return fmt.Sprintf("%dh ago", hours)
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder
	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())
	return sb.String()
}

// Run starts the TUI
func Run(ctrl *session.Controller, client *api.Client, apiURL, configDir string) error {
	if err := debuglog.Init(configDir); err == nil {
		defer debuglog.Close()
	}
	// bubbletea owns the terminal; slog output goes to the debug log.
	logger.InitWriter(debuglog.Writer())

	app := New(ctrl, client, apiURL)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
