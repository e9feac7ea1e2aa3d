package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders guidance text as markdown.
// It falls back to the plain text when glamour cannot be initialised.
func NewRenderer(width int) func(string) string {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(s string) string { return s }
	}
	return func(markdown string) string {
		out, err := r.Render(markdown)
		if err != nil {
			return markdown
		}
		return strings.TrimRight(out, "\n")
	}
}

// PlainRenderer returns text unchanged.
func PlainRenderer(s string) string { return s }
