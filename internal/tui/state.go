package tui

import (
	"github.com/interpretive-systems/anchor/internal/prefs"
	"github.com/interpretive-systems/anchor/internal/session"
	"github.com/interpretive-systems/anchor/internal/tui/components"
	"github.com/interpretive-systems/anchor/internal/tui/dialogs"
	"github.com/interpretive-systems/anchor/internal/tui/theme"
)

const (
	dialogTopic  = "topic"
	dialogSource = "source"
)

// State holds all console state outside the session itself.
type State struct {
	Session *session.Session

	// UI state
	Width    int
	Height   int
	ShowHelp bool

	// Active dialog: "", "topic" or "source".
	ActiveDialog string
	Dialogs      map[string]dialogs.Dialog

	// Components
	TopicList  *components.TopicList
	ResultView *components.ResultView
	Progress   *components.Progress
	StatusBar  *components.StatusBar

	Theme     theme.Theme
	ThemeName string
	Prefs     prefs.Prefs
}

// NewState creates initial console state around s.
func NewState(s *session.Session, themePath string) *State {
	st := &State{
		Session:   s,
		ThemeName: theme.Names[0],
		Theme:     theme.Load(themePath, theme.Names[0]),
		Dialogs: map[string]dialogs.Dialog{
			dialogTopic:  dialogs.NewTopicDialog(),
			dialogSource: dialogs.NewSourceDialog(),
		},
		TopicList:  components.NewTopicList(),
		ResultView: components.NewResultView(),
		Progress:   components.NewProgress(),
		StatusBar:  components.NewStatusBar(),
	}
	st.TopicList.SetTopics(s.Topics(), s.Registry().Cap())
	return st
}

// Dialog returns the active dialog or nil.
func (s *State) Dialog() dialogs.Dialog {
	if s.ActiveDialog == "" {
		return nil
	}
	return s.Dialogs[s.ActiveDialog]
}
