package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/anchor/internal/generation"
	"github.com/interpretive-systems/anchor/internal/tui/theme"
)

// Progress shows the spinner and milestone bar while an attempt is in flight.
type Progress struct {
	spinner spinner.Model
	bar     progress.Model
}

func NewProgress() *Progress {
	return &Progress{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

// Tick starts the spinner animation.
func (p *Progress) Tick() tea.Msg {
	return p.spinner.Tick()
}

// Update advances the spinner.
func (p *Progress) Update(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	return cmd
}

// Lines renders the in-flight pane.
func (p *Progress) Lines(width int, m generation.Milestone, ok bool, topic string, th theme.Theme) []string {
	label := "Submitting request"
	percent := 0.0
	if ok {
		label = m.Label
		percent = float64(m.Percent) / 100
	}
	barW := width - 6
	if barW < 4 {
		barW = 4
	}
	p.bar.Width = barW
	return []string{
		th.TitleText("Generating"),
		th.MutedText("Topic: " + topic),
		"",
		fmt.Sprintf("%s %s", p.spinner.View(), label),
		fmt.Sprintf("%s %3d%%", p.bar.ViewAs(percent), int(percent*100)),
		"",
		th.MutedText("This can take a few minutes."),
	}
}
