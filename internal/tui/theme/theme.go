// Package theme defines the console colour palette.
package theme

import (
	"encoding/json"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines customizable colors for rendering.
type Theme struct {
	AccentColor  string `json:"accentColor"`
	SuccessColor string `json:"successColor"`
	ErrorColor   string `json:"errorColor"`
	MutedColor   string `json:"mutedColor"`
	DividerColor string `json:"dividerColor"`
	SelectBg     string `json:"selectBgColor"`
}

func darkTheme() Theme {
	return Theme{
		AccentColor:  "63",
		SuccessColor: "34",
		ErrorColor:   "196",
		MutedColor:   "245",
		DividerColor: "240",
		SelectBg:     "236",
	}
}

func lightTheme() Theme {
	return Theme{
		AccentColor:  "27",
		SuccessColor: "22",
		ErrorColor:   "9",
		MutedColor:   "242",
		DividerColor: "244",
		SelectBg:     "254",
	}
}

// Names lists the built-in themes in cycle order.
var Names = []string{"dark", "light"}

// Get returns the requested base theme. Unknown names give dark.
func Get(name string) Theme {
	if name == "light" {
		return lightTheme()
	}
	return darkTheme()
}

// Next returns the theme after name in Names.
func Next(name string) string {
	for i, n := range Names {
		if n == name {
			return Names[(i+1)%len(Names)]
		}
	}
	return Names[0]
}

// Load merges the JSON overrides at path onto the named base theme.
// A missing or invalid file leaves the base theme untouched.
func Load(path, base string) Theme {
	t := Get(base)
	if path == "" {
		return t
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return t
	}
	var u Theme
	if err := json.Unmarshal(b, &u); err != nil {
		return t
	}
	merge := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	merge(&t.AccentColor, u.AccentColor)
	merge(&t.SuccessColor, u.SuccessColor)
	merge(&t.ErrorColor, u.ErrorColor)
	merge(&t.MutedColor, u.MutedColor)
	merge(&t.DividerColor, u.DividerColor)
	merge(&t.SelectBg, u.SelectBg)
	return t
}

func (t Theme) fg(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

func (t Theme) AccentText(s string) string  { return t.fg(t.AccentColor).Render(s) }
func (t Theme) SuccessText(s string) string { return t.fg(t.SuccessColor).Render(s) }
func (t Theme) ErrorText(s string) string   { return t.fg(t.ErrorColor).Render(s) }
func (t Theme) MutedText(s string) string   { return t.fg(t.MutedColor).Render(s) }
func (t Theme) DividerText(s string) string { return t.fg(t.DividerColor).Render(s) }

func (t Theme) TitleText(s string) string {
	return t.fg(t.AccentColor).Bold(true).Render(s)
}

// SelectedLine highlights the focused row of a list.
func (t Theme) SelectedLine(s string) string {
	return lipgloss.NewStyle().Bold(true).Background(lipgloss.Color(t.SelectBg)).Render(s)
}
