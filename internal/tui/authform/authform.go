// ABOUTME: Login and sign-up forms as a bubbletea model
// ABOUTME: Wraps huh forms and emits submit messages for the root app to act on

package authform

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/collabvoice/cli/internal/tui/styles"
)

// Mode selects which form is shown
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

// LoginSubmitMsg is sent when the login form is submitted
type LoginSubmitMsg struct {
	Email    string
	Password string
}

// SignupSubmitMsg is sent when the sign-up form is submitted
type SignupSubmitMsg struct {
	Username string
	Email    string
	Password string
}

// CancelledMsg is sent when the user backs out of the form
type CancelledMsg struct{}

// Form is the auth form model. It is re-armed with SetError after a rejected
// submit so the user can correct their input.
type Form struct {
	mode Mode
	form *huh.Form

	email    string
	password string
	username string
	confirm  string

	errMsg string
	width  int
}

// New creates an auth form in the given mode
func New(mode Mode) *Form {
	f := &Form{mode: mode}
	f.form = f.createForm()
	return f
}

// Mode returns which form is showing
func (f *Form) Mode() Mode { return f.mode }

// SetError displays a server rejection and re-arms the form with the entered
// values preserved (passwords excepted).
func (f *Form) SetError(msg string) {
	f.errMsg = msg
	f.password = ""
	f.confirm = ""
	f.form = f.createForm()
}

// createTheme returns a huh theme matching the app palette
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Group.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(styles.Muted).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(styles.Muted)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(styles.Danger).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(styles.Danger)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(styles.Primary)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(styles.Muted)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(styles.Primary)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(styles.Text)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Primary).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(styles.Muted).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(styles.Muted)

	return t
}

func (f *Form) createForm() *huh.Form {
	if f.mode == ModeSignup {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Username").
					Placeholder("yourname").
					Value(&f.username).
					Validate(validateRequired("username")),
				huh.NewInput().
					Title("Email").
					Placeholder("you@example.com").
					Value(&f.email).
					Validate(validateEmail),
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&f.password).
					Validate(validateRequired("password")),
				huh.NewInput().
					Title("Confirm password").
					EchoMode(huh.EchoModePassword).
					Value(&f.confirm).
					Validate(func(string) error {
						if f.confirm != f.password {
							return errors.New("passwords do not match")
						}
						return nil
					}),
			).Title("Create your account").
				Description("Sign up for CollabVoice"),
		).WithTheme(createTheme())
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&f.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(validateRequired("password")),
		).Title("Welcome back").
			Description("Log in to CollabVoice"),
	).WithTheme(createTheme())
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return f, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		return f, f.submit()
	}
	return f, cmd
}

// submit emits the message for the completed form
func (f *Form) submit() tea.Cmd {
	if f.mode == ModeSignup {
		msg := SignupSubmitMsg{Username: f.username, Email: f.email, Password: f.password}
		return func() tea.Msg { return msg }
	}
	msg := LoginSubmitMsg{Email: f.email, Password: f.password}
	return func() tea.Msg { return msg }
}

// View implements tea.Model
func (f *Form) View() string {
	var b strings.Builder
	if f.errMsg != "" {
		b.WriteString(styles.StatusError.Render(f.errMsg))
		b.WriteString("\n\n")
	}
	b.WriteString(f.form.View())
	return b.String()
}

func validateRequired(name string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}

func validateEmail(value string) error {
	if !strings.Contains(value, "@") || strings.HasPrefix(value, "@") || strings.HasSuffix(value, "@") {
		return errors.New("enter a valid email address")
	}
	return nil
}
