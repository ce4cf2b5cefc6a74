package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Glamour output degrades below this wrap width, so narrower overlays
// still render at the floor.
const minNoteWrap = 24

// markdownRenderer caches a glamour renderer keyed by wrap width so the
// info overlay does not rebuild it on every frame.
type markdownRenderer struct {
	wrap     int
	renderer *glamour.TermRenderer
}

// render returns ANSI-styled terminal text for a note body, or the raw
// markdown unchanged when rendering fails.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrap := max(minNoteWrap, width)
	if r.renderer == nil || r.wrap != wrap {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.wrap = wrap
	}

	out, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
