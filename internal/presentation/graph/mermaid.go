// Package graph draws submission histories as Mermaid diagrams.
package graph

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/concord/pkg/domain"
)

// maxLabel bounds the message excerpt shown in a node.
const maxLabel = 40

// GenerateMermaid produces a Mermaid flowchart of the attempts of a history,
// oldest first. It applies semantic styling:
// - Success: ([Stadium])
// - Error: {{Hexagon}}
// - Fallback message used: dashed border
// The latest attempt is highlighted.
func GenerateMermaid(h *domain.History) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString(fmt.Sprintf("    start((\"%s\"))\n", sanitizeLabel(h.PageID)))

	prev := "start"
	for _, a := range h.Attempts {
		id := fmt.Sprintf("a%d", a.Seq)

		opener, closer := "([", "])"
		if a.Outcome.Status == domain.StatusError {
			opener, closer = "{{", "}}"
		}

		label := fmt.Sprintf("#%d %s", a.Seq, a.Outcome.Status)
		if d := a.FinishedAt.Sub(a.StartedAt); d > 0 {
			label += " " + d.Round(time.Millisecond).String()
		}
		if msg := excerpt(a.Outcome.Message); msg != "" {
			label += "<br/>" + msg
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label, closer))

		arrow := "-->"
		if a.Outcome.Kind != domain.KindNone {
			arrow = fmt.Sprintf("-- \"%s\" -->", a.Outcome.Kind)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", prev, arrow, id))
		prev = id
	}

	if len(h.Attempts) == 0 {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString("    classDef success fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef error fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef degraded stroke-dasharray: 5 5;\n")
	sb.WriteString("    classDef current stroke:#fbc02d,stroke-width:4px;\n")
	for _, a := range h.Attempts {
		id := fmt.Sprintf("a%d", a.Seq)
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", id, a.Outcome.Status))
		if a.Outcome.Degraded {
			sb.WriteString(fmt.Sprintf("    class %s degraded;\n", id))
		}
	}
	last := h.Attempts[len(h.Attempts)-1]
	sb.WriteString(fmt.Sprintf("    class a%d current;\n", last.Seq))

	return sb.String()
}

func excerpt(s string) string {
	s = sanitizeLabel(strings.Join(strings.Fields(s), " "))
	if r := []rune(s); len(r) > maxLabel {
		return string(r[:maxLabel-1]) + "…"
	}
	return s
}

// sanitizeLabel keeps quotes and brackets from closing the node early.
func sanitizeLabel(s string) string {
	return strings.NewReplacer(`"`, "'", "<", "&lt;", ">", "&gt;").Replace(s)
}
