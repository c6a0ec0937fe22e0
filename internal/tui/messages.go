package tui

import (
	"github.com/interpretive-systems/anchor/internal/generation"
	"github.com/interpretive-systems/anchor/internal/prefs"
)

// prefsMsg contains loaded preferences.
type prefsMsg struct {
	p prefs.Prefs
}

// prefsSavedMsg reports the result of persisting preferences.
type prefsSavedMsg struct {
	err error
}

// progressTickMsg advances the milestone of the attempt it was scheduled for.
type progressTickMsg struct {
	requestID string
}

// outcomeMsg carries the finished backend call back to the update loop.
type outcomeMsg struct {
	req generation.Request
	out generation.Outcome
}

// recordedMsg reports the result of writing the attempt history.
type recordedMsg struct {
	id  string
	err error
}
