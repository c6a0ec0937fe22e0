// Package ansi holds ANSI-aware text helpers for the console panes.
package ansi

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// WrapLine word-wraps a single line to width, preserving escape codes. Words
// longer than width are broken.
func WrapLine(s string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	return strings.Split(ansi.Wrap(s, width, " -/"), "\n")
}

// WrapLines wraps multiple lines.
func WrapLines(lines []string, width int) []string {
	result := make([]string, 0, len(lines)*2)
	for _, line := range lines {
		result = append(result, WrapLine(line, width)...)
	}
	return result
}

// PadExact pads s with spaces to exactly w visual columns, truncating with an
// ellipsis when it is wider.
func PadExact(s string, w int) string {
	if w <= 0 {
		return ""
	}
	vw := ansi.StringWidth(s)
	switch {
	case vw == w:
		return s
	case vw < w:
		return s + strings.Repeat(" ", w-vw)
	default:
		return ansi.Truncate(s, w, "…")
	}
}

// JoinEnds places left and right on one line of width w. The right part is
// always kept visible; the left part is truncated first.
func JoinEnds(left, right string, w int) string {
	rightW := ansi.StringWidth(right)
	if rightW >= w {
		return ansi.Truncate(right, w, "…")
	}
	return PadExact(left, w-rightW-1) + " " + right
}
