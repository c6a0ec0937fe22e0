package components

import (
	"github.com/charmbracelet/lipgloss"

	tuiansi "github.com/interpretive-systems/anchor/internal/tui/ansi"
)

// StatusBar manages the bottom status bar.
type StatusBar struct {
	message string
	backend string
	phase   string
	count   string
}

func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// SetMessage shows a transient note instead of the help hint.
func (s *StatusBar) SetMessage(msg string) { s.message = msg }
func (s *StatusBar) Message() string       { return s.message }

func (s *StatusBar) SetBackend(addr string) { s.backend = addr }
func (s *StatusBar) SetPhase(phase string)  { s.phase = phase }

// SetCount shows a pending numeric prefix such as the 3 in "3j".
func (s *StatusBar) SetCount(count string) { s.count = count }

// Render renders the status bar.
func (s *StatusBar) Render(width int) string {
	left := "h: help"
	if s.count != "" {
		left += "  |  count " + s.count
	}
	if s.message != "" {
		left += "  |  " + s.message
	}
	right := s.phase
	if s.backend != "" {
		right = s.backend + "  " + right
	}
	faint := lipgloss.NewStyle().Faint(true)
	return tuiansi.JoinEnds(faint.Render(left), faint.Render(right), width)
}
