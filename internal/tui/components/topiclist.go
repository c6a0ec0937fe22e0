package components

import (
	"fmt"

	"github.com/interpretive-systems/anchor/internal/tui/theme"
)

// TopicList renders the registry contents in the left pane and tracks the
// focused row.
type TopicList struct {
	topics   []string
	capacity int
	selected int
	offset   int
}

func NewTopicList() *TopicList {
	return &TopicList{}
}

// SetTopics replaces the list, keeping the selection in range.
func (t *TopicList) SetTopics(list []string, capacity int) {
	t.topics = list
	t.capacity = capacity
	if t.selected >= len(list) {
		t.selected = len(list) - 1
	}
	if t.selected < 0 {
		t.selected = 0
	}
}

func (t *TopicList) Topics() []string { return t.topics }
func (t *TopicList) Selected() int    { return t.selected }

// MoveSelection moves the selection by delta and reports whether it changed.
func (t *TopicList) MoveSelection(delta int) bool {
	if len(t.topics) == 0 {
		return false
	}
	next := t.selected + delta
	if next < 0 {
		next = 0
	}
	if next >= len(t.topics) {
		next = len(t.topics) - 1
	}
	changed := next != t.selected
	t.selected = next
	return changed
}

// EnsureVisible scrolls so the selected row is inside a window of
// visibleCount rows.
func (t *TopicList) EnsureVisible(visibleCount int) {
	if len(t.topics) == 0 || visibleCount <= 0 {
		t.offset = 0
		return
	}
	maxStart := len(t.topics) - visibleCount
	if maxStart < 0 {
		maxStart = 0
	}
	if t.selected < t.offset {
		t.offset = t.selected
	} else if t.selected >= t.offset+visibleCount {
		t.offset = t.selected - visibleCount + 1
	}
	if t.offset > maxStart {
		t.offset = maxStart
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// Render returns at most height lines, starting with a counter header.
func (t *TopicList) Render(height int, th theme.Theme) []string {
	lines := make([]string, 0, height)
	lines = append(lines, th.TitleText(fmt.Sprintf("Topics %d/%d", len(t.topics), t.capacity)))
	if height <= 1 {
		return lines
	}
	if len(t.topics) == 0 {
		return append(lines, th.MutedText("  (none yet, press a)"))
	}

	rows := height - 1
	t.EnsureVisible(rows)
	end := t.offset + rows
	if end > len(t.topics) {
		end = len(t.topics)
	}
	for i := t.offset; i < end; i++ {
		line := fmt.Sprintf("  %d. %s", i+1, t.topics[i])
		if i == t.selected {
			line = th.SelectedLine(fmt.Sprintf("> %d. %s", i+1, t.topics[i]))
		}
		lines = append(lines, line)
	}
	return lines
}
