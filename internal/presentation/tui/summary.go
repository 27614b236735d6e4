package tui

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stats is what the summary reports about a tree.
type Stats struct {
	Name     string
	Nodes    int
	Edges    int
	Failures []string // messages of failed insertions, in order
}

// Summary builds a markdown report around a rendered tree.
// lang tags the fenced block ("dot" or "mermaid").
func Summary(s Stats, lang, rendered string) string {
	var sb strings.Builder

	title := s.Name
	if title == "" {
		title = "tree"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	sb.WriteString("| Nodes | Edges | Unattached |\n")
	sb.WriteString("|---|---|---|\n")
	fmt.Fprintf(&sb, "| %d | %d | %d |\n\n", s.Nodes, s.Edges, len(s.Failures))

	if len(s.Failures) > 0 {
		sb.WriteString("## Failed insertions\n\n")
		for _, f := range s.Failures {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "```%s\n%s", lang, rendered)
	if !strings.HasSuffix(rendered, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	return sb.String()
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
