package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/interpretive-systems/anchor/internal/backend"
	"github.com/interpretive-systems/anchor/internal/generation"
	"github.com/interpretive-systems/anchor/internal/prefs"
	"github.com/interpretive-systems/anchor/internal/session"
	"github.com/interpretive-systems/anchor/internal/topics"
)

func newTestProgram(t *testing.T, handler http.HandlerFunc) Program {
	t.Helper()
	var b generation.Backend
	if handler != nil {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		c, err := backend.New(backend.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("backend.New: %v", err)
		}
		b = c
	}
	s := session.New(session.Options{MaxTopics: 1, Backend: b})
	p := New(context.Background(), Options{
		Session:      s,
		TickInterval: time.Millisecond,
		BackendURL:   "http://stub",
	})
	t.Cleanup(p.cancel)
	return step(t, p, tea.WindowSizeMsg{Width: 100, Height: 24})
}

func step(t *testing.T, p Program, msg tea.Msg) Program {
	t.Helper()
	m, _ := p.Update(msg)
	return m.(Program)
}

func keys(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText feeds each rune to the program as a separate key press.
func typeText(t *testing.T, p Program, text string) Program {
	for _, r := range text {
		p = step(t, p, keys(string(r)))
	}
	return p
}

// collect runs cmd and any batched commands, returning every message that
// is not a timer.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findOutcome(t *testing.T, msgs []tea.Msg) outcomeMsg {
	t.Helper()
	for _, m := range msgs {
		if o, ok := m.(outcomeMsg); ok {
			return o
		}
	}
	t.Fatalf("no outcome in %v", msgs)
	return outcomeMsg{}
}

func plain(p Program) string {
	return ansi.Strip(p.View())
}

func addTopic(t *testing.T, p Program, topic string) Program {
	t.Helper()
	p = step(t, p, keys("a"))
	if p.state.ActiveDialog != dialogTopic {
		t.Fatalf("expected topic dialog, got %q", p.state.ActiveDialog)
	}
	p = typeText(t, p, topic)
	return step(t, p, keys("enter"))
}

func TestView_InitialRender(t *testing.T) {
	p := newTestProgram(t, nil)
	out := plain(p)

	if !strings.HasPrefix(out, "Anchor | News + Reddit | video") {
		t.Fatalf("unexpected header: %q", strings.SplitN(out, "\n", 2)[0])
	}
	for _, want := range []string{"Topics 0/1", session.HintEmpty, "│", "ready", "h: help"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
	if got := len(strings.Split(out, "\n")); got != 24 {
		t.Fatalf("view should fill the terminal height, got %d lines", got)
	}
}

func TestView_Loading(t *testing.T) {
	p := New(context.Background(), Options{})
	defer p.cancel()
	if p.View() != "Loading..." {
		t.Fatalf("expected loading view before first resize")
	}
}

func TestAddTopicDialog(t *testing.T) {
	p := newTestProgram(t, nil)
	p = addTopic(t, p, "AI")

	if p.state.ActiveDialog != "" {
		t.Fatalf("dialog should close after adding")
	}
	out := plain(p)
	if !strings.Contains(out, "1. AI") || !strings.Contains(out, "Topics 1/1") {
		t.Fatalf("topic not rendered:\n%s", out)
	}
	if !strings.Contains(out, "Only one topic allowed") {
		t.Fatalf("expected single-topic hint:\n%s", out)
	}

	// The add action is unavailable once the registry is full.
	p = step(t, p, keys("a"))
	if p.state.ActiveDialog != "" {
		t.Fatalf("add dialog should not open at capacity")
	}
	if p.state.StatusBar.Message() != session.HintSingleOnly {
		t.Fatalf("unexpected status: %q", p.state.StatusBar.Message())
	}
	if got := p.state.Session.Topics(); len(got) != 1 || got[0] != "AI" {
		t.Fatalf("registry changed: %v", got)
	}
}

func TestAddTopicDialog_BlankEnterIgnored(t *testing.T) {
	p := newTestProgram(t, nil)
	p = addTopic(t, p, "   ")
	if p.state.ActiveDialog != dialogTopic {
		t.Fatalf("blank topic should keep the dialog open")
	}
	out := plain(p)
	if !strings.Contains(out, "enter: add (type a topic first)") {
		t.Fatalf("expected disabled add hint:\n%s", out)
	}
	if strings.Contains(out, "cannot be empty") {
		t.Fatalf("blank enter should not surface an error:\n%s", out)
	}
	if n := len(p.state.Session.Topics()); n != 0 {
		t.Fatalf("registry changed: %d topics", n)
	}

	p = typeText(t, p, "AI")
	if !strings.Contains(plain(p), "enter: add  ") {
		t.Fatalf("expected enabled add hint:\n%s", plain(p))
	}
	p = step(t, p, keys("enter"))
	if got := p.state.Session.Topics(); len(got) != 1 || got[0] != "AI" {
		t.Fatalf("expected trimmed topic, got %v", got)
	}
}

func TestCountPrefixShownInStatusBar(t *testing.T) {
	p := newTestProgram(t, nil)
	p = step(t, p, keys("3"))
	if !strings.Contains(plain(p), "count 3") {
		t.Fatalf("expected pending count in status bar:\n%s", plain(p))
	}
	p = step(t, p, keys("j"))
	if strings.Contains(plain(p), "count 3") {
		t.Fatalf("count should clear after use")
	}
}

func TestRemoveTopic(t *testing.T) {
	p := newTestProgram(t, nil)
	p = addTopic(t, p, "AI")
	p = step(t, p, keys("d"))
	if n := len(p.state.Session.Topics()); n != 0 {
		t.Fatalf("expected topic removed, have %d", n)
	}
	if !strings.Contains(plain(p), "Topics 0/1") {
		t.Fatalf("list not refreshed")
	}
}

func TestSourceDialog(t *testing.T) {
	p := newTestProgram(t, nil)
	p = step(t, p, keys("s"))
	if !strings.Contains(plain(p), "(•) News + Reddit") {
		t.Fatalf("expected current mode marked:\n%s", plain(p))
	}
	p = step(t, p, keys("j"))
	p = step(t, p, keys("j"))
	p = step(t, p, keys("enter"))
	if p.state.Session.Mode() != topics.SourceSocial {
		t.Fatalf("expected reddit mode, got %v", p.state.Session.Mode())
	}
	if !strings.HasPrefix(plain(p), "Anchor | Reddit | video") {
		t.Fatalf("header not updated: %q", strings.SplitN(plain(p), "\n", 2)[0])
	}
}

func TestSubmitWithoutTopic(t *testing.T) {
	p := newTestProgram(t, nil)
	m, cmd := p.Update(keys("enter"))
	p = m.(Program)
	if cmd != nil {
		t.Fatalf("submit without topics should not start work")
	}
	if p.state.Session.Phase() != generation.PhaseIdle {
		t.Fatalf("phase changed: %v", p.state.Session.Phase())
	}
	if p.state.StatusBar.Message() != session.HintEmpty {
		t.Fatalf("unexpected status: %q", p.state.StatusBar.Message())
	}
}

func TestSubmit_Success(t *testing.T) {
	p := newTestProgram(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"video_url":"https://cdn.example.com/ai.mp4"}`))
	})
	p = addTopic(t, p, "AI")

	m, cmd := p.Update(keys("enter"))
	p = m.(Program)
	if !p.state.Session.Phase().InFlight() {
		t.Fatalf("expected in-flight phase, got %v", p.state.Session.Phase())
	}
	if !strings.Contains(plain(p), "Generating") {
		t.Fatalf("expected progress pane:\n%s", plain(p))
	}

	// Second submit while busy is refused.
	p = step(t, p, keys("enter"))
	if p.state.StatusBar.Message() != "A generation is already in progress." {
		t.Fatalf("unexpected status: %q", p.state.StatusBar.Message())
	}

	msgs := collect(cmd)
	for _, msg := range msgs {
		if tick, ok := msg.(progressTickMsg); ok {
			p = step(t, p, tick)
		}
	}
	if _, ok := p.state.Session.Milestone(); !ok {
		t.Fatalf("progress tick should reach the first milestone")
	}
	if !strings.Contains(plain(p), "Collecting sources") {
		t.Fatalf("expected first milestone label:\n%s", plain(p))
	}

	p = step(t, p, findOutcome(t, msgs))
	if p.state.Session.Phase() != generation.PhaseCompleted {
		t.Fatalf("expected completed, got %v", p.state.Session.Phase())
	}
	out := plain(p)
	for _, want := range []string{"Your video is ready", "https://cdn.example.com/ai.mp4", "Share this video"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}

	p = step(t, p, keys("n"))
	if p.state.Session.Phase() != generation.PhaseIdle {
		t.Fatalf("expected idle after reset, got %v", p.state.Session.Phase())
	}
	if len(p.state.Session.Topics()) != 1 {
		t.Fatalf("reset must keep topics")
	}
}

func TestSubmit_Failure(t *testing.T) {
	p := newTestProgram(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"msg":"topic too long"}]}`))
	})
	p = addTopic(t, p, "AI")
	m, cmd := p.Update(keys("enter"))
	p = m.(Program)
	p = step(t, p, findOutcome(t, collect(cmd)))

	if p.state.Session.Phase() != generation.PhaseFailed {
		t.Fatalf("expected failed, got %v", p.state.Session.Phase())
	}
	out := plain(p)
	if !strings.Contains(out, "API Error (422)") || !strings.Contains(out, "topic too long") {
		t.Fatalf("expected classified error:\n%s", out)
	}
}

func TestStaleOutcomeIgnored(t *testing.T) {
	p := newTestProgram(t, nil)
	p = addTopic(t, p, "AI")
	p = step(t, p, keys("enter"))
	p = step(t, p, outcomeMsg{out: generation.Outcome{RequestID: "someone-else"}})
	if !p.state.Session.Phase().InFlight() {
		t.Fatalf("stale outcome must not finish the attempt")
	}
	p = step(t, p, progressTickMsg{requestID: "someone-else"})
	if _, ok := p.state.Session.Milestone(); ok {
		t.Fatalf("stale tick must not advance progress")
	}
}

func TestSubmitGatedWhileInFlight(t *testing.T) {
	p := newTestProgram(t, nil)
	p = addTopic(t, p, "AI")
	if !strings.Contains(plain(p), "enter: generate") {
		t.Fatalf("expected submit hint:\n%s", plain(p))
	}
	p = step(t, p, keys("enter"))
	first, _ := p.state.Session.Current()
	if !strings.Contains(plain(p), "enter: disabled") {
		t.Fatalf("expected disabled submit hint while in flight:\n%s", plain(p))
	}

	m, cmd := p.Update(keys("enter"))
	p = m.(Program)
	if cmd != nil {
		t.Fatalf("second submit should not start work")
	}
	if cur, _ := p.state.Session.Current(); cur.ID != first.ID {
		t.Fatalf("request replaced: %s -> %s", first.ID, cur.ID)
	}
	if p.state.StatusBar.Message() != "A generation is already in progress." {
		t.Fatalf("unexpected status: %q", p.state.StatusBar.Message())
	}
}

func TestNewGenerationRefusedInFlight(t *testing.T) {
	p := newTestProgram(t, nil)
	p = addTopic(t, p, "AI")
	p = step(t, p, keys("enter"))
	p = step(t, p, keys("n"))
	if !p.state.Session.Phase().InFlight() {
		t.Fatalf("reset should be refused while in flight")
	}
	if !strings.Contains(p.state.StatusBar.Message(), "Wait") {
		t.Fatalf("unexpected status: %q", p.state.StatusBar.Message())
	}
}

func TestToggleKindPersistsPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	p := New(context.Background(), Options{Session: session.New(session.Options{}), PrefsPath: path})
	defer p.cancel()
	p = step(t, p, tea.WindowSizeMsg{Width: 80, Height: 20})

	m, cmd := p.Update(keys("t"))
	p = m.(Program)
	if p.state.Session.Kind() != generation.KindAudio {
		t.Fatalf("expected audio kind")
	}
	for _, msg := range collect(cmd) {
		if saved, ok := msg.(prefsSavedMsg); ok && saved.err != nil {
			t.Fatalf("save prefs: %v", saved.err)
		}
	}
	if got := prefs.Load(path); got.ArtifactKind != "audio" || got.SourceMode != "both" {
		t.Fatalf("unexpected prefs on disk: %+v", got)
	}
}

func TestPrefsApplied(t *testing.T) {
	p := newTestProgram(t, nil)
	p = step(t, p, prefsMsg{p: prefs.Prefs{SourceMode: "news", ArtifactKind: "audio", Theme: "light"}})
	if !strings.HasPrefix(plain(p), "Anchor | News | audio") {
		t.Fatalf("prefs not applied: %q", strings.SplitN(plain(p), "\n", 2)[0])
	}
	if p.state.ThemeName != "light" {
		t.Fatalf("theme not applied: %q", p.state.ThemeName)
	}
}

func TestHelpOverlay(t *testing.T) {
	p := newTestProgram(t, nil)
	p = step(t, p, keys("h"))
	if !strings.Contains(plain(p), "toggle video/audio") {
		t.Fatalf("expected help overlay")
	}
	p = step(t, p, keys("esc"))
	if strings.Contains(plain(p), "toggle video/audio") {
		t.Fatalf("help should close on esc")
	}
}

func TestQuitCancelsContext(t *testing.T) {
	p := newTestProgram(t, nil)
	_, cmd := p.Update(keys("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
	if p.ctx.Err() == nil {
		t.Fatalf("quit should cancel the backend context")
	}
}
