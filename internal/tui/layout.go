package tui

import (
	"strings"

	tuiansi "github.com/interpretive-systems/anchor/internal/tui/ansi"
	"github.com/interpretive-systems/anchor/internal/tui/theme"
)

const minPaneWidth = 24

// Layout manages screen layout calculations.
type Layout struct {
	width     int
	height    int
	leftWidth int
}

func NewLayout() *Layout {
	return &Layout{}
}

// SetSize updates the layout dimensions and derives the left pane width.
func (l *Layout) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.leftWidth = width / 3
}

func (l *Layout) Width() int  { return l.width }
func (l *Layout) Height() int { return l.height }

// LeftWidth returns the left pane width.
func (l *Layout) LeftWidth() int {
	if l.leftWidth < minPaneWidth {
		return minPaneWidth
	}
	return l.leftWidth
}

// RightWidth returns the right pane width.
func (l *Layout) RightWidth() int {
	w := l.width - l.LeftWidth() - 1
	if w < 1 {
		w = 1
	}
	return w
}

// ContentHeight returns the height available for the two panes.
func (l *Layout) ContentHeight(overlayHeight int) int {
	// top bar + top rule + bottom rule + bottom bar + overlays
	h := l.height - 4 - overlayHeight
	if h < 1 {
		h = 1
	}
	return h
}

// RenderFrame renders the top bar, the two panes, an optional overlay and
// the bottom bar.
func (l *Layout) RenderFrame(
	topLeft, topRight string,
	leftLines, rightLines []string,
	overlayLines []string,
	bottomBar string,
	th theme.Theme,
) string {
	var b strings.Builder

	b.WriteString(tuiansi.JoinEnds(topLeft, topRight, l.width))
	b.WriteByte('\n')
	b.WriteString(th.DividerText(strings.Repeat("─", l.width)))
	b.WriteByte('\n')

	leftW := l.LeftWidth()
	rightW := l.RightWidth()
	sep := th.DividerText("│")
	rows := l.ContentHeight(overlayHeight(overlayLines))
	for i := 0; i < rows; i++ {
		var left, right string
		if i < len(leftLines) {
			left = leftLines[i]
		}
		if i < len(rightLines) {
			right = rightLines[i]
		}
		b.WriteString(tuiansi.PadExact(left, leftW))
		b.WriteString(sep)
		b.WriteString(tuiansi.PadExact(right, rightW))
		if i < rows-1 {
			b.WriteByte('\n')
		}
	}

	if len(overlayLines) > 0 {
		b.WriteByte('\n')
		b.WriteString(th.DividerText(strings.Repeat("─", l.width)))
		for _, line := range overlayLines {
			b.WriteByte('\n')
			b.WriteString(tuiansi.PadExact(line, l.width))
		}
	}

	b.WriteByte('\n')
	b.WriteString(th.DividerText(strings.Repeat("─", l.width)))
	b.WriteByte('\n')
	b.WriteString(bottomBar)
	return b.String()
}

// overlayHeight counts the overlay rows including their divider.
func overlayHeight(lines []string) int {
	if len(lines) == 0 {
		return 0
	}
	return len(lines) + 1
}
