package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyAction represents an action triggered by a key press.
type KeyAction int

const (
	ActionNone KeyAction = iota
	ActionQuit
	ActionToggleHelp
	ActionAddTopic
	ActionRemoveTopic
	ActionOpenSource
	ActionToggleKind
	ActionSubmit
	ActionNewGeneration
	ActionClearSession
	ActionCycleTheme
	ActionMoveUp
	ActionMoveDown
	ActionPageDown
	ActionPageUp
	ActionHalfPageDown
	ActionHalfPageUp
)

// KeyHandler maps key presses to actions and keeps a numeric count prefix
// for movement keys.
type KeyHandler struct {
	keyBuffer string
}

func NewKeyHandler() *KeyHandler {
	return &KeyHandler{}
}

// Handle processes a key message and returns the action with its count.
func (k *KeyHandler) Handle(msg tea.KeyMsg) (KeyAction, int) {
	key := msg.String()

	if isNumericKey(key) {
		k.keyBuffer += key
		return ActionNone, 0
	}

	count := 1
	if k.keyBuffer != "" {
		if n, err := strconv.Atoi(k.keyBuffer); err == nil && n > 0 {
			count = n
		}
	}
	k.keyBuffer = ""
	return keyToAction(key), count
}

// KeyBuffer returns the pending count prefix.
func (k *KeyHandler) KeyBuffer() string {
	return k.keyBuffer
}

func (k *KeyHandler) ClearBuffer() {
	k.keyBuffer = ""
}

func keyToAction(key string) KeyAction {
	switch key {
	case "ctrl+c", "q":
		return ActionQuit
	case "h", "?":
		return ActionToggleHelp
	case "a", "i":
		return ActionAddTopic
	case "d", "x", "delete":
		return ActionRemoveTopic
	case "s":
		return ActionOpenSource
	case "t":
		return ActionToggleKind
	case "enter", "g":
		return ActionSubmit
	case "n", "r":
		return ActionNewGeneration
	case "C":
		return ActionClearSession
	case "T":
		return ActionCycleTheme
	case "j", "down":
		return ActionMoveDown
	case "k", "up":
		return ActionMoveUp
	case "pgdown":
		return ActionPageDown
	case "pgup":
		return ActionPageUp
	case "J", "ctrl+d":
		return ActionHalfPageDown
	case "K", "ctrl+u":
		return ActionHalfPageUp
	default:
		return ActionNone
	}
}

func isNumericKey(key string) bool {
	return len(key) == 1 && key >= "0" && key <= "9"
}
