// Package dialogs holds the overlays that collect input for the session.
package dialogs

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/anchor/internal/session"
	"github.com/interpretive-systems/anchor/internal/tui/theme"
)

// Action represents what the dialog wants the parent to do.
type Action int

const (
	ActionContinue Action = iota // keep the dialog open
	ActionClose                  // close without changes
	ActionApplied                // close after changing the session
)

// Dialog is the interface all dialogs implement.
type Dialog interface {
	// Open resets the dialog for the session's current state.
	Open(s *session.Session) tea.Cmd

	// HandleKey processes keyboard input.
	HandleKey(msg tea.KeyMsg) (Action, tea.Cmd)

	// RenderOverlay returns the dialog lines.
	RenderOverlay(width int, th theme.Theme) []string
}
