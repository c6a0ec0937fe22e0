package dialogs

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/anchor/internal/logger"
	"github.com/interpretive-systems/anchor/internal/session"
	"github.com/interpretive-systems/anchor/internal/tui/theme"
)

const topicCharLimit = 200

// TopicDialog collects one topic and adds it to the registry. Enter does
// nothing until the registry would accept the typed text.
type TopicDialog struct {
	session *session.Session
	input   textinput.Model
}

func NewTopicDialog() *TopicDialog {
	return &TopicDialog{}
}

func (d *TopicDialog) Open(s *session.Session) tea.Cmd {
	d.session = s
	ti := textinput.New()
	ti.Placeholder = "e.g. AI, Climate Change, Elections"
	ti.Prompt = "> "
	ti.CharLimit = topicCharLimit
	d.input = ti
	return d.input.Focus()
}

func (d *TopicDialog) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return ActionClose, nil
	case "enter":
		if !d.canAdd() {
			return ActionContinue, nil
		}
		if err := d.session.AddTopic(d.input.Value()); err != nil {
			logger.Warnf("add topic: %v", err)
			return ActionContinue, nil
		}
		return ActionApplied, nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return ActionContinue, cmd
}

func (d *TopicDialog) canAdd() bool {
	return d.session != nil && d.session.Registry().CanAdd(d.input.Value())
}

func (d *TopicDialog) RenderOverlay(width int, th theme.Theme) []string {
	enter := th.AccentText("enter: add")
	if !d.canAdd() {
		enter = th.MutedText("enter: add (type a topic first)")
	}
	return []string{
		th.TitleText("Add topic") + "  " + enter + "  " + th.MutedText("esc: cancel"),
		d.input.View(),
	}
}
