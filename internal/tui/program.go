// Package tui is the full-screen operator console. All session transitions
// happen in Update; backend calls run in commands and report back with
// outcome messages.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/anchor/internal/generation"
	"github.com/interpretive-systems/anchor/internal/logger"
	"github.com/interpretive-systems/anchor/internal/session"
	tuiansi "github.com/interpretive-systems/anchor/internal/tui/ansi"
	"github.com/interpretive-systems/anchor/internal/tui/dialogs"
	"github.com/interpretive-systems/anchor/internal/tui/theme"
)

const defaultTickInterval = 1500 * time.Millisecond

// Options configures the console.
type Options struct {
	Session      *session.Session
	PrefsPath    string
	ThemePath    string
	TickInterval time.Duration
	BackendURL   string
}

// Program is the bubbletea model for the console.
type Program struct {
	state      *State
	layout     *Layout
	keyHandler *KeyHandler

	ctx       context.Context
	cancel    context.CancelFunc
	prefsPath string
	themePath string
	tick      time.Duration
}

// New builds the console model. Cancelling ctx, or quitting, aborts an
// in-flight backend call.
func New(ctx context.Context, opts Options) Program {
	if opts.Session == nil {
		opts.Session = session.New(session.Options{})
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	cctx, cancel := context.WithCancel(ctx)
	st := NewState(opts.Session, opts.ThemePath)
	st.StatusBar.SetBackend(opts.BackendURL)
	p := Program{
		state:      st,
		layout:     NewLayout(),
		keyHandler: NewKeyHandler(),
		ctx:        cctx,
		cancel:     cancel,
		prefsPath:  opts.PrefsPath,
		themePath:  opts.ThemePath,
		tick:       opts.TickInterval,
	}
	p.syncStatus()
	return p
}

// Run instantiates and runs the console until the user quits.
func Run(ctx context.Context, opts Options) error {
	p := New(ctx, opts)
	defer p.cancel()
	if _, err := tea.NewProgram(p, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func (p Program) Init() tea.Cmd {
	if p.prefsPath == "" {
		return nil
	}
	return loadPrefs(p.prefsPath)
}

func (p Program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := p.update(msg)
	p.syncStatus()
	p.recalcViewport()
	return p, cmd
}

func (p Program) update(msg tea.Msg) tea.Cmd {
	s := p.state
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.Width, s.Height = msg.Width, msg.Height
		p.layout.SetSize(msg.Width, msg.Height)
		return nil

	case tea.KeyMsg:
		return p.handleKey(msg)

	case prefsMsg:
		s.Prefs = msg.p
		s.Session.ApplyPrefs(msg.p)
		if msg.p.Theme != "" {
			s.ThemeName = msg.p.Theme
			s.Theme = theme.Load(p.themePath, msg.p.Theme)
		}
		return nil

	case prefsSavedMsg:
		if msg.err != nil {
			logger.Warnf("save prefs: %v", msg.err)
			s.StatusBar.SetMessage("Could not save preferences.")
		}
		return nil

	case progressTickMsg:
		cur, ok := s.Session.Current()
		if !ok || cur.ID != msg.requestID || !s.Session.Phase().InFlight() {
			return nil
		}
		m, _ := s.Session.Advance()
		if m.Percent >= 100 {
			return nil
		}
		return progressTick(p.tick, msg.requestID)

	case outcomeMsg:
		res, err := s.Session.Complete(msg.out)
		if err != nil {
			return nil
		}
		s.ResultView.SetResult(msg.req, true, res)
		if res.Status == generation.ResultSuccess {
			s.StatusBar.SetMessage("Generation completed.")
		} else {
			s.StatusBar.SetMessage("Generation failed.")
		}
		return recordAttempt(s.Session, session.Attempt(msg.req, msg.out, res))

	case recordedMsg:
		if msg.err != nil {
			logger.Warnf("generation %s: %v", msg.id, msg.err)
		}
		return nil

	case spinner.TickMsg:
		if !s.Session.Phase().InFlight() {
			return nil
		}
		return s.Progress.Update(msg)
	}
	return nil
}

func (p Program) handleKey(msg tea.KeyMsg) tea.Cmd {
	s := p.state
	if msg.String() == "ctrl+c" {
		return p.quit()
	}

	if s.ShowHelp {
		switch msg.String() {
		case "q":
			return p.quit()
		case "h", "?", "esc":
			s.ShowHelp = false
		}
		return nil
	}

	if d := s.Dialog(); d != nil {
		action, cmd := d.HandleKey(msg)
		switch action {
		case dialogs.ActionApplied:
			name := s.ActiveDialog
			s.ActiveDialog = ""
			p.syncTopics()
			if name == dialogSource {
				return p.persistPrefs()
			}
		case dialogs.ActionClose:
			s.ActiveDialog = ""
		}
		return cmd
	}

	action, count := p.keyHandler.Handle(msg)
	switch action {
	case ActionQuit:
		return p.quit()
	case ActionToggleHelp:
		s.ShowHelp = true
	case ActionAddTopic:
		if !s.Session.CanAddTopic() {
			s.StatusBar.SetMessage(s.Session.Hint())
			return nil
		}
		return p.openDialog(dialogTopic)
	case ActionOpenSource:
		return p.openDialog(dialogSource)
	case ActionRemoveTopic:
		if err := s.Session.RemoveTopic(s.TopicList.Selected()); err == nil {
			p.syncTopics()
		}
	case ActionToggleKind:
		s.Session.ToggleKind()
		return p.persistPrefs()
	case ActionCycleTheme:
		s.ThemeName = theme.Next(s.ThemeName)
		s.Theme = theme.Load(p.themePath, s.ThemeName)
		return p.persistPrefs()
	case ActionSubmit:
		if !s.Session.CanSubmit() {
			s.StatusBar.SetMessage(p.submitHint())
			return nil
		}
		return p.submit()
	case ActionNewGeneration:
		if err := s.Session.Reset(); err != nil {
			s.StatusBar.SetMessage("Wait for the current generation to finish.")
			return nil
		}
		s.ResultView.SetResult(generation.Request{}, false, s.Session.Result())
		s.StatusBar.SetMessage("")
	case ActionClearSession:
		if err := s.Session.Clear(); err != nil {
			s.StatusBar.SetMessage("Wait for the current generation to finish.")
			return nil
		}
		s.ResultView.SetResult(generation.Request{}, false, s.Session.Result())
		s.StatusBar.SetMessage("Session cleared.")
		p.syncTopics()
	case ActionMoveDown:
		s.TopicList.MoveSelection(count)
	case ActionMoveUp:
		s.TopicList.MoveSelection(-count)
	case ActionPageDown:
		s.ResultView.Viewport().ViewDown()
	case ActionPageUp:
		s.ResultView.Viewport().ViewUp()
	case ActionHalfPageDown:
		s.ResultView.Viewport().HalfViewDown()
	case ActionHalfPageUp:
		s.ResultView.Viewport().HalfViewUp()
	}
	return nil
}

func (p Program) submit() tea.Cmd {
	s := p.state
	req, err := s.Session.Begin()
	switch {
	case errors.Is(err, generation.ErrInFlight):
		s.StatusBar.SetMessage("A generation is already in progress.")
		return nil
	case errors.Is(err, generation.ErrNoTopics):
		s.StatusBar.SetMessage(session.HintEmpty)
		return nil
	case err != nil:
		s.StatusBar.SetMessage(err.Error())
		return nil
	}
	s.StatusBar.SetMessage("")
	s.ResultView.SetResult(req, true, s.Session.Result())
	return tea.Batch(
		runGeneration(p.ctx, s.Session, req),
		progressTick(p.tick, req.ID),
		s.Progress.Tick,
	)
}

// submitHint explains why the submit action is unavailable.
func (p Program) submitHint() string {
	s := p.state
	if s.Session.Phase().InFlight() {
		return "A generation is already in progress."
	}
	if hint := s.Session.Hint(); hint != "" {
		return hint
	}
	return session.HintEmpty
}

func (p Program) openDialog(name string) tea.Cmd {
	s := p.state
	d, ok := s.Dialogs[name]
	if !ok {
		return nil
	}
	s.ActiveDialog = name
	p.keyHandler.ClearBuffer()
	return d.Open(s.Session)
}

func (p Program) persistPrefs() tea.Cmd {
	s := p.state
	s.Prefs = s.Session.Prefs(s.Prefs)
	s.Prefs.Theme = s.ThemeName
	return savePrefs(p.prefsPath, s.Prefs)
}

func (p Program) quit() tea.Cmd {
	p.cancel()
	return tea.Quit
}

func (p Program) syncTopics() {
	s := p.state
	s.TopicList.SetTopics(s.Session.Topics(), s.Session.Registry().Cap())
}

func (p Program) syncStatus() {
	s := p.state
	s.StatusBar.SetPhase(p.phaseLabel())
	s.StatusBar.SetCount(p.keyHandler.KeyBuffer())
}

func (p Program) phaseLabel() string {
	s := p.state
	switch s.Session.Phase() {
	case generation.PhaseSubmitting:
		return "submitting"
	case generation.PhaseReportingProgress:
		if m, ok := s.Session.Milestone(); ok {
			return fmt.Sprintf("%s %d%%", strings.ToLower(m.Label), m.Percent)
		}
		return "working"
	case generation.PhaseCompleted:
		return "completed"
	case generation.PhaseFailed:
		return "failed"
	default:
		return "ready"
	}
}

// recalcViewport sizes the result pane for the current overlay.
func (p Program) recalcViewport() {
	s := p.state
	if s.Width == 0 || s.Height == 0 {
		return
	}
	h := p.layout.ContentHeight(overlayHeight(p.overlayLines()))
	s.ResultView.SetSize(p.layout.RightWidth(), h)
	s.ResultView.Refresh(s.Theme)
}

func (p Program) View() string {
	s := p.state
	if s.Width == 0 || s.Height == 0 {
		return "Loading..."
	}
	overlay := p.overlayLines()
	contentHeight := p.layout.ContentHeight(overlayHeight(overlay))

	topLeft := s.Theme.TitleText("Anchor") + " | " + s.Session.Mode().Label() + " | " + s.Session.Kind().String()
	topRight := s.Theme.MutedText(p.phaseLabel())

	return p.layout.RenderFrame(
		topLeft, topRight,
		p.leftLines(contentHeight),
		p.rightLines(),
		overlay,
		s.StatusBar.Render(s.Width),
		s.Theme,
	)
}

func (p Program) leftLines(height int) []string {
	s := p.state
	submit := s.Theme.AccentText("enter: generate")
	if !s.Session.CanSubmit() {
		submit = s.Theme.MutedText("enter: disabled")
	}
	footer := []string{
		"",
		"Source: " + s.Session.Mode().Label(),
		"Output: " + s.Session.Kind().String(),
		submit,
	}
	if hint := s.Session.Hint(); hint != "" {
		footer = append(footer, "")
		for _, line := range tuiansi.WrapLine(hint, p.layout.LeftWidth()) {
			footer = append(footer, s.Theme.MutedText(line))
		}
	}
	listH := height - len(footer)
	if listH < 1 {
		listH = 1
	}
	return append(s.TopicList.Render(listH, s.Theme), footer...)
}

func (p Program) rightLines() []string {
	s := p.state
	if s.Session.Phase().InFlight() {
		topic := ""
		if cur, ok := s.Session.Current(); ok {
			topic = strings.Join(cur.Topics, ", ")
		}
		m, ok := s.Session.Milestone()
		return s.Progress.Lines(p.layout.RightWidth(), m, ok, topic, s.Theme)
	}
	return strings.Split(s.ResultView.View(), "\n")
}

func (p Program) overlayLines() []string {
	s := p.state
	var lines []string
	if s.ShowHelp {
		lines = append(lines, p.helpOverlayLines()...)
	}
	if d := s.Dialog(); d != nil {
		lines = append(lines, d.RenderOverlay(s.Width, s.Theme)...)
	}
	return lines
}

func (p Program) helpOverlayLines() []string {
	th := p.state.Theme
	return []string{
		th.TitleText("Keys (h/esc: close)"),
		"  a        add topic            d/x      remove selected topic",
		"  s        choose source        t        toggle video/audio",
		"  enter    generate             n        new generation",
		"  j/k      move selection       pgup/dn  scroll result",
		"  C        clear session        T        cycle theme",
		"  q        quit",
	}
}
