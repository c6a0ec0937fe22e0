package topics

import (
	"fmt"
	"strings"
)

// SourceMode selects which upstream content feeds the backend pipeline.
// The zero value is SourceBoth.
type SourceMode int

const (
	SourceBoth SourceMode = iota
	SourceNews
	SourceSocial
)

// Modes lists the selectable source modes in display order.
func Modes() []SourceMode {
	return []SourceMode{SourceBoth, SourceNews, SourceSocial}
}

// String returns the wire value sent as source_type.
func (m SourceMode) String() string {
	switch m {
	case SourceNews:
		return "news"
	case SourceSocial:
		return "reddit"
	default:
		return "both"
	}
}

// Label returns the human readable name shown in the console.
func (m SourceMode) Label() string {
	switch m {
	case SourceNews:
		return "News"
	case SourceSocial:
		return "Reddit"
	default:
		return "News + Reddit"
	}
}

// ParseSourceMode accepts the wire values plus "social" as an alias for reddit.
func ParseSourceMode(s string) (SourceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return SourceBoth, nil
	case "news":
		return SourceNews, nil
	case "reddit", "social":
		return SourceSocial, nil
	default:
		return SourceBoth, fmt.Errorf("unknown source mode %q", s)
	}
}
