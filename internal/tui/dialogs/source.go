package dialogs

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/anchor/internal/session"
	"github.com/interpretive-systems/anchor/internal/topics"
	"github.com/interpretive-systems/anchor/internal/tui/theme"
)

// SourceDialog picks the content source mode.
type SourceDialog struct {
	session *session.Session
	modes   []topics.SourceMode
	index   int
}

func NewSourceDialog() *SourceDialog {
	return &SourceDialog{modes: topics.Modes()}
}

func (d *SourceDialog) Open(s *session.Session) tea.Cmd {
	d.session = s
	d.index = 0
	for i, m := range d.modes {
		if m == s.Mode() {
			d.index = i
		}
	}
	return nil
}

func (d *SourceDialog) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return ActionClose, nil
	case "j", "down":
		if d.index < len(d.modes)-1 {
			d.index++
		}
	case "k", "up":
		if d.index > 0 {
			d.index--
		}
	case "enter", " ":
		if d.modes[d.index] == d.session.Mode() {
			return ActionClose, nil
		}
		d.session.SelectMode(d.modes[d.index])
		return ActionApplied, nil
	}
	return ActionContinue, nil
}

func (d *SourceDialog) RenderOverlay(width int, th theme.Theme) []string {
	lines := []string{th.TitleText("Content source (j/k: move, enter: select, esc: cancel)")}
	for i, m := range d.modes {
		cur := "  "
		if i == d.index {
			cur = "> "
		}
		mark := "( )"
		if m == d.session.Mode() {
			mark = "(•)"
		}
		line := cur + mark + " " + m.Label()
		if i == d.index {
			line = th.SelectedLine(line)
		}
		lines = append(lines, line)
	}
	return lines
}
