// ABOUTME: Tests for the staged sign-in progress screen
// ABOUTME: Verifies step advancement, completion handoff, and the error display

package loading

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// advance feeds one cosmetic tick to the model
func advance(l *Loading) tea.Cmd {
	model, cmd := l.Update(tickMsg{})
	*l = *model.(*Loading)
	return cmd
}

func TestView_ShowsProviderAndFirstStep(t *testing.T) {
	l := New("GitHub")

	view := l.View()
	if !strings.Contains(view, "Signing in with GitHub") {
		t.Error("missing provider title")
	}
	if !strings.Contains(view, "Connecting to GitHub") {
		t.Error("missing first step text")
	}
}

func TestUpdate_StepsAdvanceThenDone(t *testing.T) {
	l := New("Google")

	for i := 0; i < len(l.steps)-1; i++ {
		if cmd := advance(l); cmd == nil {
			t.Fatalf("tick %d returned no follow-up command", i)
		}
	}

	// The final tick hands off instead of scheduling another.
	cmd := advance(l)
	if cmd == nil {
		t.Fatal("final tick returned no command")
	}
	if _, ok := cmd().(DoneMsg); !ok {
		t.Error("final tick did not produce DoneMsg")
	}
}

func TestFail_ShowsErrorAndStopsAdvancing(t *testing.T) {
	l := New("GitHub")
	cmd := l.Fail("Authentication failed")
	if cmd == nil {
		t.Fatal("Fail returned no command")
	}

	view := l.View()
	if !strings.Contains(view, "Authentication failed") {
		t.Error("missing error message")
	}
	if !strings.Contains(view, "Returning to login") {
		t.Error("missing return hint")
	}

	// Ticks after failure must not produce DoneMsg.
	if cmd := advance(l); cmd != nil {
		if _, ok := cmd().(DoneMsg); ok {
			t.Error("failed screen still completed")
		}
	}
}
