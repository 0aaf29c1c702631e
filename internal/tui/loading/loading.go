// ABOUTME: Staged sign-in progress screen shown after an OAuth redirect
// ABOUTME: Cosmetic step sequence with spinner and progress bar, then hands off

package loading

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/collabvoice/cli/internal/tui/styles"
)

// stepInterval is how long each cosmetic step is shown. The sequence exists
// to smooth over the redirect handoff, not to reflect real work.
const stepInterval = 600 * time.Millisecond

// DoneMsg is sent once the step sequence completes.
type DoneMsg struct{}

// FailedMsg is sent after an error has been displayed.
type FailedMsg struct{}

type tickMsg struct{}

// Loading is the staged sign-in screen model.
type Loading struct {
	provider string
	steps    []string
	idx      int

	spinner  spinner.Model
	progress progress.Model

	errMsg string
	width  int
}

// New creates a loading screen for the named provider.
func New(provider string) *Loading {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	pr := progress.New(progress.WithSolidFill(string(styles.Primary)))

	return &Loading{
		provider: provider,
		steps: []string{
			"Connecting to " + provider + "...",
			"Verifying your account...",
			"Setting up your workspace...",
			"Almost there...",
		},
		spinner:  sp,
		progress: pr,
	}
}

// Fail switches the screen into its error display.
func (l *Loading) Fail(msg string) tea.Cmd {
	l.errMsg = msg
	return tea.Tick(3*stepInterval, func(time.Time) tea.Msg { return FailedMsg{} })
}

// Init implements tea.Model
func (l *Loading) Init() tea.Cmd {
	return tea.Batch(l.spinner.Tick, l.tick())
}

func (l *Loading) tick() tea.Cmd {
	return tea.Tick(stepInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update implements tea.Model
func (l *Loading) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width = msg.Width
		l.progress.Width = min(msg.Width-12, 48)
		return l, nil

	case tickMsg:
		if l.errMsg != "" {
			return l, nil
		}
		l.idx++
		if l.idx >= len(l.steps) {
			return l, func() tea.Msg { return DoneMsg{} }
		}
		return l, l.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd
	}
	return l, nil
}

// View implements tea.Model
func (l *Loading) View() string {
	if l.errMsg != "" {
		var b strings.Builder
		b.WriteString(styles.StatusError.Render("Authentication failed"))
		b.WriteString("\n\n")
		b.WriteString(l.errMsg)
		b.WriteString("\n\n")
		b.WriteString(styles.Subtitle.Render("Returning to login..."))
		return b.String()
	}

	step := l.steps[min(l.idx, len(l.steps)-1)]
	percent := float64(l.idx+1) / float64(len(l.steps))

	var b strings.Builder
	b.WriteString(styles.Title.Render("Signing in with " + l.provider))
	b.WriteString("\n\n")
	b.WriteString(l.spinner.View() + " " + step)
	b.WriteString("\n\n")
	b.WriteString(l.progress.ViewAs(percent))
	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
