package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/dustin/go-humanize"

	"github.com/interpretive-systems/anchor/internal/generation"
	tuiansi "github.com/interpretive-systems/anchor/internal/tui/ansi"
	"github.com/interpretive-systems/anchor/internal/tui/theme"
)

// ResultView renders the outcome of the last attempt in a scrollable pane.
type ResultView struct {
	viewport viewport.Model
	result   generation.Result
	request  generation.Request
	hasReq   bool
}

func NewResultView() *ResultView {
	return &ResultView{viewport: viewport.New(0, 0)}
}

// SetSize updates the viewport dimensions.
func (r *ResultView) SetSize(width, height int) {
	r.viewport.Width = width
	r.viewport.Height = height
}

// SetResult stores the result and the request it belongs to.
func (r *ResultView) SetResult(req generation.Request, hasReq bool, res generation.Result) {
	r.request = req
	r.hasReq = hasReq
	r.result = res
	r.viewport.GotoTop()
}

func (r *ResultView) Viewport() *viewport.Model { return &r.viewport }

// Refresh re-renders content for the current width.
func (r *ResultView) Refresh(th theme.Theme) {
	r.viewport.SetContent(strings.Join(r.Lines(r.viewport.Width, th), "\n"))
}

func (r *ResultView) View() string {
	return r.viewport.View()
}

// Lines renders the result wrapped to width.
func (r *ResultView) Lines(width int, th theme.Theme) []string {
	var lines []string
	switch r.result.Status {
	case generation.ResultSuccess:
		lines = r.successLines(th)
	case generation.ResultFailure:
		lines = r.failureLines(th)
	default:
		lines = []string{th.MutedText("Pick a topic and press enter to generate.")}
	}
	return tuiansi.WrapLines(lines, width)
}

func (r *ResultView) successLines(th theme.Theme) []string {
	a := r.result.Artifact
	lines := []string{th.SuccessText("Your " + a.Kind.String() + " is ready")}
	if r.hasReq {
		lines = append(lines, th.MutedText("Topic: "+strings.Join(r.request.Topics, ", ")))
	}
	lines = append(lines, "")
	switch {
	case a.Kind == generation.KindVideo:
		lines = append(lines,
			"Video URL:",
			th.AccentText(a.URL),
			"",
			th.MutedText("Share this video by copying the link above."),
		)
	case a.Path != "":
		lines = append(lines,
			fmt.Sprintf("Audio (%s, %s) saved to:", humanize.Bytes(uint64(len(a.Data))), a.ContentType),
			th.AccentText(a.Path),
		)
	default:
		lines = append(lines, fmt.Sprintf("Audio received: %s of %s (not saved)", humanize.Bytes(uint64(len(a.Data))), a.ContentType))
	}
	lines = append(lines, "", th.MutedText("Press n to start a new generation."))
	return lines
}

func (r *ResultView) failureLines(th theme.Theme) []string {
	e := r.result.Err
	if e == nil {
		return []string{th.ErrorText("Generation failed")}
	}
	title := e.Kind.Title()
	if e.Status != 0 {
		title = fmt.Sprintf("%s (%d)", title, e.Status)
	}
	return []string{
		th.ErrorText(title),
		"",
		e.Message,
		"",
		th.MutedText("Press n to try again."),
	}
}
