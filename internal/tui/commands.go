package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/anchor/internal/generation"
	"github.com/interpretive-systems/anchor/internal/history"
	"github.com/interpretive-systems/anchor/internal/prefs"
	"github.com/interpretive-systems/anchor/internal/session"
)

const recordTimeout = 5 * time.Second

// loadPrefs loads user preferences.
func loadPrefs(path string) tea.Cmd {
	return func() tea.Msg {
		return prefsMsg{p: prefs.Load(path)}
	}
}

// savePrefs persists user preferences.
func savePrefs(path string, p prefs.Prefs) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}

// runGeneration performs the backend call off the update loop.
func runGeneration(ctx context.Context, s *session.Session, req generation.Request) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg{req: req, out: s.Execute(ctx, req)}
	}
}

// progressTick schedules the next milestone for the given attempt.
func progressTick(interval time.Duration, requestID string) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return progressTickMsg{requestID: requestID}
	})
}

// recordAttempt writes a finished attempt to the history store.
func recordAttempt(s *session.Session, a history.Attempt) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		return recordedMsg{id: a.ID, err: s.Record(ctx, a)}
	}
}
